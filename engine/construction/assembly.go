package construction

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
)

// AssemblyID identifies one of the five procedurally built sub-parts of the building.
// The value of an ID is also its activation phase.
type AssemblyID int

const (
	Outline AssemblyID = iota
	Foundation
	Structure
	Exterior
	Minaret

	AssemblyCount = int(Minaret) + 1
)

var assemblyNames = [AssemblyCount]string{"outline", "foundation", "structure", "exterior", "minaret"}

func (a AssemblyID) String() string {
	if a >= 0 && int(a) < AssemblyCount {
		return assemblyNames[a]
	}
	return fmt.Sprintf("assembly(%d)", int(a))
}

// Threshold returns the phase at which the assembly becomes active.
//
// Returns:
//   - int: the activation phase
func (a AssemblyID) Threshold() int {
	return int(a)
}

// Active reports whether the assembly is shown at phase. The outline is a guide that is
// superseded by the finished building, so it is active for every phase below the last.
//
// Parameters:
//   - phase: the clamped construction phase
//
// Returns:
//   - bool: true if the assembly is visible at phase
func (a AssemblyID) Active(phase int) bool {
	if a == Outline {
		return phase < common.PhaseMax
	}
	return phase >= a.Threshold()
}

// LocalProgress remaps the global build progress into the quarter of the range the assembly
// claims. The assembly with threshold p builds while the global progress crosses
// [(p-1)/4, p/4], so the four structural assemblies complete one after another. The outline
// claims no range and is always complete.
//
// Parameters:
//   - global: the build-progress scalar in [0, 1]
//
// Returns:
//   - float64: the local progress in [0, 1]
func (a AssemblyID) LocalProgress(global float64) float64 {
	p := a.Threshold()
	if p <= 0 {
		return 1
	}
	quarters := float64(common.PhaseMax)
	start := float64(p-1) / quarters
	return common.Clamp01((common.Clamp01(global) - start) * quarters)
}

// OutlineOpacity is the fade of the wireframe guide at phase: 1 - phase*fadePerPhase, floored
// at zero.
//
// Parameters:
//   - phase: the clamped construction phase
//   - fadePerPhase: opacity lost per phase
//
// Returns:
//   - float64: the opacity target
func OutlineOpacity(phase int, fadePerPhase float64) float64 {
	return max(0, 1-float64(phase)*fadePerPhase)
}

// AssemblyState is the committed state of one assembly.
type AssemblyState struct {
	ID            AssemblyID
	Visible       bool
	LocalProgress float64 // remapped from the smoothed build progress
	Scale         float64 // smoothed vertical scale (foundation, structure, minaret)
	Opacity       float64 // smoothed opacity (outline, exterior)
}

// Drawn reports whether the assembly's node is drawn. The outline and the exterior keep
// drawing after they deactivate until their opacity has faded out.
//
// Returns:
//   - bool: true if the node should be visible in the scene graph
func (a AssemblyState) Drawn() bool {
	switch a.ID {
	case Outline, Exterior:
		return a.Opacity > minVisibleOpacity
	default:
		return a.Visible && a.Scale > minVisibleScale
	}
}

// targets returns the vertical scale and opacity an assembly approaches.
func targets(id AssemblyID, phase int, local, fadePerPhase float64) (scale, opacity float64) {
	visible := id.Active(phase)
	switch id {
	case Outline:
		if !visible {
			return 1, 0
		}
		return 1, OutlineOpacity(phase, fadePerPhase)
	case Exterior:
		if !visible {
			return 1, 0
		}
		return 1, local
	default:
		// Solid assemblies grow rather than fade; visibility alone hides them.
		return local, 1
	}
}
