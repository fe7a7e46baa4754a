package director

import (
	"math"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/go-gl/mathgl/mgl32"
)

// LightMood is the lighting target of one construction phase.
type LightMood struct {
	SunPosition      mgl32.Vec3
	SunIntensity     float32
	AmbientIntensity float32
	SunColor         common.Color
}

// DefaultMoods runs from a cool dawn at phase 0 to a warm golden hour at phase 4.
func DefaultMoods() []LightMood {
	return []LightMood{
		{SunPosition: mgl32.Vec3{10, 20, 10}, SunIntensity: 0.6, AmbientIntensity: 0.3, SunColor: common.MustHexColor("#8fb8ff")},
		{SunPosition: mgl32.Vec3{15, 18, 5}, SunIntensity: 0.9, AmbientIntensity: 0.35, SunColor: common.MustHexColor("#ffd9a0")},
		{SunPosition: mgl32.Vec3{5, 25, 10}, SunIntensity: 1.2, AmbientIntensity: 0.4, SunColor: common.MustHexColor("#fff2d6")},
		{SunPosition: mgl32.Vec3{-10, 20, 15}, SunIntensity: 1.4, AmbientIntensity: 0.45, SunColor: common.MustHexColor("#ffe0b0")},
		{SunPosition: mgl32.Vec3{-15, 12, 10}, SunIntensity: 1.6, AmbientIntensity: 0.5, SunColor: common.MustHexColor("#ffb870")},
	}
}

// LightBreathing animates the ambient and hemisphere terms independently of the phase.
type LightBreathing struct {
	AmbientAmplitude    float64
	AmbientFrequency    float64 // radians per second
	HemisphereBase      float64
	HemisphereAmplitude float64
	HemisphereFrequency float64 // radians per second
	HemispherePhase     float64 // radians
}

// DefaultLightBreathing keeps the two terms out of step with each other.
func DefaultLightBreathing() LightBreathing {
	return LightBreathing{
		AmbientAmplitude:    0.05,
		AmbientFrequency:    0.5,
		HemisphereBase:      0.4,
		HemisphereAmplitude: 0.05,
		HemisphereFrequency: 0.3,
		HemispherePhase:     1,
	}
}

// LightState is the smoothed light rig for one tick.
type LightState struct {
	SunPosition  mgl32.Vec3
	SunIntensity float32
	SunColor     common.Color
	Ambient      float32 // smoothed mood ambient plus breathing
	Hemisphere   float32 // breathing hemisphere intensity
}

// moodFor returns the mood of phase, clamping to the table bounds.
func moodFor(moods []LightMood, phase int) LightMood {
	if len(moods) == 0 {
		return LightMood{}
	}
	return moods[max(0, min(common.ClampPhase(phase), len(moods)-1))]
}

// lightRig holds the committed smoothed values between ticks.
type lightRig struct {
	sunPosition  mgl32.Vec3
	sunIntensity float64
	sunColor     common.Color
	ambient      float64
}

func (r *lightRig) snap(m LightMood) {
	r.sunPosition = m.SunPosition
	r.sunIntensity = float64(m.SunIntensity)
	r.sunColor = m.SunColor
	r.ambient = float64(m.AmbientIntensity)
}

func (r *lightRig) step(m LightMood, dt, k float64) {
	r.sunPosition = common.DampVec3(r.sunPosition, m.SunPosition, dt, k, 0)
	r.sunIntensity = common.Damp(r.sunIntensity, float64(m.SunIntensity), dt, k)
	r.sunColor = common.Color{
		R: float32(common.Damp(float64(r.sunColor.R), float64(m.SunColor.R), dt, k)),
		G: float32(common.Damp(float64(r.sunColor.G), float64(m.SunColor.G), dt, k)),
		B: float32(common.Damp(float64(r.sunColor.B), float64(m.SunColor.B), dt, k)),
	}
	r.ambient = common.Damp(r.ambient, float64(m.AmbientIntensity), dt, k)
}

func (r *lightRig) state(b LightBreathing, t float64) LightState {
	return LightState{
		SunPosition:  r.sunPosition,
		SunIntensity: float32(r.sunIntensity),
		SunColor:     r.sunColor,
		Ambient:      float32(r.ambient + b.AmbientAmplitude*math.Sin(t*b.AmbientFrequency)),
		Hemisphere:   float32(b.HemisphereBase + b.HemisphereAmplitude*math.Sin(t*b.HemisphereFrequency+b.HemispherePhase)),
	}
}
