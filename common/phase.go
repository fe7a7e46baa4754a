package common

import "math"

// Phase bounds. A construction phase is one of five discrete stages:
// outline, foundation, structure, exterior, finished.
const (
	PhaseMin   = 0
	PhaseMax   = 4
	PhaseCount = PhaseMax - PhaseMin + 1
)

// ClampPhase limits a phase index to [PhaseMin, PhaseMax].
// The clamp is idempotent: a valid phase is returned unchanged.
//
// Parameters:
//   - phase: the raw phase index
//
// Returns:
//   - int: the nearest valid phase
func ClampPhase(phase int) int {
	if phase < PhaseMin {
		return PhaseMin
	}
	if phase > PhaseMax {
		return PhaseMax
	}
	return phase
}

// PhaseFromProgress is the single rule deriving a phase from a scroll fraction:
// floor(fraction * 5) clamped to [0, 4]. Non-finite fractions map to phase 0.
//
// Parameters:
//   - fraction: the scroll fraction, nominally in [0, 1]
//
// Returns:
//   - int: the construction phase
func PhaseFromProgress(fraction float64) int {
	if math.IsNaN(fraction) {
		return PhaseMin
	}
	f := Clamp(fraction, 0, 1)
	return ClampPhase(int(math.Floor(f * PhaseCount)))
}

// ProgressForPhase returns the scroll fraction at the center of the bucket that
// PhaseFromProgress maps to phase. Used by controllers that jump to a phase.
//
// Parameters:
//   - phase: the construction phase
//
// Returns:
//   - float64: the fraction at the center of the phase bucket
func ProgressForPhase(phase int) float64 {
	return (float64(ClampPhase(phase)) + 0.5) / PhaseCount
}
