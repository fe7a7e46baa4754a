// Package postfx holds the parameters of the screen-space effect chain applied after the 3D
// pass: bloom, vignette, chromatic aberration and an optional depth of field. Bloom intensity
// and vignette darkness follow the construction phase through exponential smoothing; the
// package keeps no other state. The GPU passes themselves live in the renderer.
package postfx

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/clock"
)

// Effect is one screen-space effect, listed in application order.
type Effect uint8

const (
	EffectBloom Effect = iota
	EffectVignette
	EffectChromaticAberration
	EffectDepthOfField
)

func (e Effect) String() string {
	switch e {
	case EffectBloom:
		return "bloom"
	case EffectVignette:
		return "vignette"
	case EffectChromaticAberration:
		return "chromatic-aberration"
	case EffectDepthOfField:
		return "depth-of-field"
	}
	return "unknown"
}

// Pass is one GPU pass of the effect chain.
type Pass uint8

const (
	PassBrightExtract Pass = iota
	PassBlurHorizontal
	PassBlurVertical
	PassComposite // vignette, chromatic aberration, bloom add and the loading overlay
	PassDepthOfField
)

func (p Pass) String() string {
	switch p {
	case PassBrightExtract:
		return "bright-extract"
	case PassBlurHorizontal:
		return "blur-h"
	case PassBlurVertical:
		return "blur-v"
	case PassComposite:
		return "composite"
	case PassDepthOfField:
		return "depth-of-field"
	}
	return "unknown"
}

// State is the smoothed effect parameters of one tick.
type State struct {
	Phase            int
	BloomIntensity   float32
	VignetteDarkness float32
}

// Compositor is the post-processing parameter set.
type Compositor interface {
	// Update smooths the phase-driven parameters toward their targets.
	//
	// Parameters:
	//   - t: the tick time
	//   - phase: the construction phase, clamped to [0, 4]
	//
	// Returns:
	//   - State: the committed state
	Update(t clock.Time, phase int) State

	// State returns the last committed state.
	//
	// Returns:
	//   - State: the committed state
	State() State

	// Params returns the effect parameters.
	//
	// Returns:
	//   - Params: the parameters
	Params() Params

	// Effects returns the enabled effects in application order.
	//
	// Returns:
	//   - []Effect: the enabled effects
	Effects() []Effect

	// Passes returns the GPU passes needed by the enabled effects, in order.
	//
	// Returns:
	//   - []Pass: the passes
	Passes() []Pass

	// Uniform returns the effect uniform for the committed state. Disabled effects carry zero
	// strength. The renderer fills the target-dependent fields.
	//
	// Returns:
	//   - GPUPostUniform: the uniform block
	Uniform() GPUPostUniform

	// Reset forgets the committed state; the next Update snaps to its targets.
	Reset()
}

type compositorImpl struct {
	mu *sync.Mutex

	params      Params
	smoothing   float64
	state       State
	initialized bool
}

var _ Compositor = &compositorImpl{}

// NewCompositor creates a compositor committed to the phase 0 targets.
//
// Parameters:
//   - options: functional options overriding the defaults
//
// Returns:
//   - Compositor: the compositor
func NewCompositor(options ...CompositorBuilderOption) Compositor {
	c := &compositorImpl{
		mu:        &sync.Mutex{},
		params:    DefaultParams(),
		smoothing: 2,
	}
	for _, option := range options {
		option(c)
	}
	c.state = c.target(common.PhaseMin)
	return c
}

// target is the unsmoothed parameter set at phase.
func (c *compositorImpl) target(phase int) State {
	p := c.params
	phase = common.ClampPhase(phase)
	return State{
		Phase:            phase,
		BloomIntensity:   float32(math.Max(0, p.BloomBase+p.BloomPerPhase*float64(phase))),
		VignetteDarkness: float32(common.Clamp01(p.VignetteBase + p.VignettePerPhase*float64(phase))),
	}
}

func (c *compositorImpl) Update(t clock.Time, phase int) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	tgt := c.target(phase)
	if !c.initialized {
		c.initialized = true
		c.state = tgt
		return c.state
	}
	dt := math.Max(0, common.Finite(t.Delta, 0))
	c.state = State{
		Phase:            tgt.Phase,
		BloomIntensity:   float32(common.Damp(float64(c.state.BloomIntensity), float64(tgt.BloomIntensity), dt, c.smoothing)),
		VignetteDarkness: float32(common.Damp(float64(c.state.VignetteDarkness), float64(tgt.VignetteDarkness), dt, c.smoothing)),
	}
	return c.state
}

func (c *compositorImpl) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *compositorImpl) Params() Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

func (c *compositorImpl) Effects() []Effect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params.effects()
}

func (c *compositorImpl) Passes() []Pass {
	c.mu.Lock()
	defer c.mu.Unlock()
	var passes []Pass
	if c.params.BloomEnabled {
		passes = append(passes, PassBrightExtract, PassBlurHorizontal, PassBlurVertical)
	}
	passes = append(passes, PassComposite)
	if c.params.DepthOfFieldEnabled {
		passes = append(passes, PassDepthOfField)
	}
	return passes
}

func (c *compositorImpl) Uniform() GPUPostUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, s := c.params, c.state
	u := GPUPostUniform{
		BloomThreshold: p.BloomThreshold,
		BloomRadius:    p.BloomRadius,
		VignetteOffset: p.VignetteOffset,
		FocusDistance:  p.FocusDistance,
		Aperture:       p.Aperture,
		MaxBlur:        p.MaxBlur,
	}
	if p.BloomEnabled {
		u.BloomIntensity = s.BloomIntensity
	}
	if p.VignetteEnabled {
		u.VignetteDarkness = s.VignetteDarkness
	}
	if p.ChromaticEnabled {
		u.ChromaticOffset = p.ChromaticOffset
	}
	return u
}

func (c *compositorImpl) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initialized = false
	c.state = c.target(common.PhaseMin)
}
