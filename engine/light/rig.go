package light

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/director"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/environment"
)

// Rig is the fixed set of scene lights: one sun, one ambient term and one hemisphere.
// The director drives the sun and the mood ambient, the environment contributes its base
// ambient and the sky and ground colors.
type Rig interface {
	// Sun returns the directional light.
	//
	// Returns:
	//   - Light: the sun
	Sun() Light

	// Ambient returns the ambient light.
	//
	// Returns:
	//   - Light: the ambient term
	Ambient() Light

	// Hemisphere returns the hemisphere light.
	//
	// Returns:
	//   - Light: the hemisphere term
	Hemisphere() Light

	// Apply copies one tick of director lighting and environment state into the lights.
	//
	// Parameters:
	//   - mood: the director's smoothed light state
	//   - env: the environment state
	Apply(mood director.LightState, env environment.State)

	// Uniform marshals the rig into its GPU block.
	//
	// Returns:
	//   - GPULightUniform: the uniform block
	Uniform() GPULightUniform
}

type rigImpl struct {
	mu *sync.Mutex

	sun        *lightImpl
	ambient    *lightImpl
	hemisphere *lightImpl
}

var _ Rig = &rigImpl{}

// NewRig creates the three scene lights with neutral defaults.
//
// Returns:
//   - Rig: the rig
func NewRig() Rig {
	return &rigImpl{
		mu:         &sync.Mutex{},
		sun:        NewLight(LightTypeDirectional, WithDirection(1, 2, 1)).(*lightImpl),
		ambient:    NewLight(LightTypeAmbient, WithIntensity(0.35)).(*lightImpl),
		hemisphere: NewLight(LightTypeHemisphere, WithIntensity(0.4)).(*lightImpl),
	}
}

func (r *rigImpl) Sun() Light {
	return r.sun
}

func (r *rigImpl) Ambient() Light {
	return r.ambient
}

func (r *rigImpl) Hemisphere() Light {
	return r.hemisphere
}

// Apply averages the mood ambient with the environment's base ambient so neither source
// alone can wash out the scene.
func (r *rigImpl) Apply(mood director.LightState, env environment.State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := mood.SunPosition
	r.sun.SetDirection(p.X(), p.Y(), p.Z())
	r.sun.SetColor(mood.SunColor)
	r.sun.SetIntensity(mood.SunIntensity)

	r.ambient.SetColor(env.Horizon.Lerp(common.Color{R: 1, G: 1, B: 1}, 0.5))
	r.ambient.SetIntensity(0.5 * (mood.Ambient + env.Ambient))

	r.hemisphere.SetColor(env.Horizon)
	r.hemisphere.SetGroundColor(env.Ground)
	r.hemisphere.SetIntensity(mood.Hemisphere)
}

func (r *rigImpl) Uniform() GPULightUniform {
	r.mu.Lock()
	defer r.mu.Unlock()
	rgb := func(c common.Color) [3]float32 { return [3]float32{c.R, c.G, c.B} }
	return GPULightUniform{
		SunDirection:        r.sun.direction,
		SunIntensity:        r.sun.effective(),
		SunColor:            rgb(r.sun.color),
		AmbientIntensity:    r.ambient.effective(),
		AmbientColor:        rgb(r.ambient.color),
		HemisphereIntensity: r.hemisphere.effective(),
		SkyColor:            rgb(r.hemisphere.color),
		GroundColor:         rgb(r.hemisphere.groundColor),
	}
}
