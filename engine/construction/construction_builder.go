package construction

import "github.com/go-gl/mathgl/mgl32"

type ModelBuilderOption func(*modelImpl)

// WithPalette recolors the building.
//
// Parameters:
//   - p: the palette
//
// Returns:
//   - ModelBuilderOption: option function to apply
func WithPalette(p Palette) ModelBuilderOption {
	return func(m *modelImpl) {
		m.palette = p
	}
}

// WithSmoothing sets the exponential rate for build progress, scale and opacity.
// Non-positive values are ignored.
//
// Parameters:
//   - k: rate per second
//
// Returns:
//   - ModelBuilderOption: option function to apply
func WithSmoothing(k float64) ModelBuilderOption {
	return func(m *modelImpl) {
		if k > 0 {
			m.smoothing = k
		}
	}
}

// WithOutlineFade sets the outline opacity lost per phase.
//
// Parameters:
//   - perPhase: opacity lost per phase, in [0, 1]
//
// Returns:
//   - ModelBuilderOption: option function to apply
func WithOutlineFade(perPhase float64) ModelBuilderOption {
	return func(m *modelImpl) {
		if perPhase >= 0 && perPhase <= 1 {
			m.outlineFade = perPhase
		}
	}
}

// WithIdleMotion sets the vertical bob and the yaw sway applied to the whole model.
//
// Parameters:
//   - bobAmplitude: bob height in world units
//   - bobRate: bob rate in radians per second
//   - swayDegrees: sway amplitude in degrees, kept below one degree
//   - swayRate: sway rate in radians per second
//
// Returns:
//   - ModelBuilderOption: option function to apply
func WithIdleMotion(bobAmplitude, bobRate, swayDegrees, swayRate float64) ModelBuilderOption {
	return func(m *modelImpl) {
		m.bobAmplitude = bobAmplitude
		m.bobRate = bobRate
		m.swayAmplitude = float64(mgl32.DegToRad(float32(min(swayDegrees, 1))))
		m.swayRate = swayRate
	}
}
