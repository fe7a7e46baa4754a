package director

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Orbit configures the ambient idle camera used on the hero section before the user scrolls.
type Orbit struct {
	Radius       float64    // distance from the vertical axis
	Rate         float64    // radians per second
	Height       float64    // base height of the eye
	BobAmplitude float64    // vertical bob in world units
	BobFrequency float64    // vertical bob in Hz
	LookAt       mgl32.Vec3 // fixed point slightly above the origin
	Fov          float32    // degrees
}

// DefaultOrbit circles the construction site once a minute.
func DefaultOrbit() Orbit {
	return Orbit{
		Radius:       15,
		Rate:         0.1,
		Height:       6,
		BobAmplitude: 0.5,
		BobFrequency: 0.5,
		LookAt:       mgl32.Vec3{0, 2, 0},
		Fov:          45,
	}
}

// Pose returns the orbit pose for an accumulated angle at elapsed time t.
//
// Parameters:
//   - angle: accumulated orbit angle in radians
//   - t: elapsed seconds, drives the vertical bob
//
// Returns:
//   - Pose: the orbit pose
func (o Orbit) Pose(angle, t float64) Pose {
	bob := o.BobAmplitude * math.Sin(2*math.Pi*o.BobFrequency*t)
	return Pose{
		Position: mgl32.Vec3{
			float32(o.Radius * math.Cos(angle)),
			float32(o.Height + bob),
			float32(o.Radius * math.Sin(angle)),
		},
		LookAt: o.LookAt,
		Fov:    o.Fov,
	}
}

// Breathing is the per-axis sinusoidal drift added to path positions.
type Breathing struct {
	Amplitude mgl32.Vec3 // world units per axis
	Frequency mgl32.Vec3 // radians per second per axis, distinct per axis
}

// DefaultBreathing drifts by a few centimetres at three unrelated rates.
func DefaultBreathing() Breathing {
	return Breathing{
		Amplitude: mgl32.Vec3{0.15, 0.1, 0.12},
		Frequency: mgl32.Vec3{0.5, 0.3, 0.4},
	}
}

// Offset returns the breathing offset at elapsed time t.
//
// Parameters:
//   - t: elapsed seconds
//
// Returns:
//   - mgl32.Vec3: the position offset
func (b Breathing) Offset(t float64) mgl32.Vec3 {
	var out mgl32.Vec3
	for i := range 3 {
		out[i] = b.Amplitude[i] * float32(math.Sin(t*float64(b.Frequency[i])))
	}
	return out
}
