package postfx

// Params tunes the effect chain.
type Params struct {
	BloomEnabled   bool
	BloomBase      float64 // intensity at phase 0
	BloomPerPhase  float64 // intensity added per phase
	BloomThreshold float32 // luminance above which pixels glow
	BloomRadius    float32 // blur spread in fractions of the blur kernel

	VignetteEnabled  bool
	VignetteOffset   float32 // radius where darkening starts
	VignetteBase     float64 // darkness at phase 0
	VignettePerPhase float64

	ChromaticEnabled bool
	ChromaticOffset  float32 // per-channel UV offset at the screen edge

	DepthOfFieldEnabled bool
	FocusDistance       float32 // world units from the camera
	Aperture            float32
	MaxBlur             float32 // UV units
}

// DefaultParams enables everything except depth of field.
func DefaultParams() Params {
	return Params{
		BloomEnabled:   true,
		BloomBase:      0.6,
		BloomPerPhase:  0.1,
		BloomThreshold: 0.8,
		BloomRadius:    0.4,

		VignetteEnabled:  true,
		VignetteOffset:   0.3,
		VignetteBase:     0.5,
		VignettePerPhase: -0.025,

		ChromaticEnabled: true,
		ChromaticOffset:  0.0015,

		FocusDistance: 15,
		Aperture:      0.025,
		MaxBlur:       0.01,
	}
}

func (p Params) effects() []Effect {
	var out []Effect
	for _, e := range []struct {
		effect  Effect
		enabled bool
	}{
		{EffectBloom, p.BloomEnabled},
		{EffectVignette, p.VignetteEnabled},
		{EffectChromaticAberration, p.ChromaticEnabled},
		{EffectDepthOfField, p.DepthOfFieldEnabled},
	} {
		if e.enabled {
			out = append(out, e.effect)
		}
	}
	return out
}
