package environment

import (
	"math"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
)

// Params is the tunable environment.
type Params struct {
	Zenith      common.Color
	Horizon     common.Color
	FogColor    common.Color
	FogNear     float32
	FogFar      float32
	GroundColor common.Color
	GroundSize  float64

	AmbientBase      float64
	AmbientAmplitude float64
	AmbientFrequency float64 // radians per second

	CloudCount     int
	CloudColor     common.Color
	CloudBound     float64 // clouds wrap inside [-bound, bound) along x
	CloudHeightMin float64
	CloudHeightMax float64
	CloudSpeed     float64 // world units per second of cloud time
	CloudTimeScale float64 // cloud time per second of elapsed time

	StarCount        int
	StarColor        common.Color
	StarRadius       float64
	TwinkleAmplitude float64
}

// DefaultParams is a dusk sky over a dark ground.
func DefaultParams() Params {
	return Params{
		Zenith:      common.MustHexColor("#0b1026"),
		Horizon:     common.MustHexColor("#3b4a6b"),
		FogColor:    common.MustHexColor("#1a2238"),
		FogNear:     30,
		FogFar:      120,
		GroundColor: common.MustHexColor("#1c1f26"),
		GroundSize:  200,

		AmbientBase:      0.35,
		AmbientAmplitude: 0.05,
		AmbientFrequency: 0.4,

		CloudCount:     12,
		CloudColor:     common.MustHexColor("#c8d2e6"),
		CloudBound:     100,
		CloudHeightMin: 25,
		CloudHeightMax: 40,
		CloudSpeed:     1,
		CloudTimeScale: 0.2,

		StarCount:        300,
		StarColor:        common.MustHexColor("#ffffff"),
		StarRadius:       90,
		TwinkleAmplitude: 0.4,
	}
}

// sanitized repairs values that would break the animation: negative counts, an empty wrap
// bound, an inverted fog range or a twinkle deeper than the full brightness.
func (p Params) sanitized() Params {
	d := DefaultParams()
	p.CloudCount = max(p.CloudCount, 0)
	p.StarCount = max(p.StarCount, 0)
	if !(p.CloudBound > 0) || math.IsInf(p.CloudBound, 0) {
		p.CloudBound = d.CloudBound
	}
	if p.CloudHeightMax < p.CloudHeightMin {
		p.CloudHeightMin, p.CloudHeightMax = p.CloudHeightMax, p.CloudHeightMin
	}
	if !(p.StarRadius > 0) {
		p.StarRadius = d.StarRadius
	}
	if !(p.GroundSize > 0) {
		p.GroundSize = d.GroundSize
	}
	if !(p.FogNear >= 0) || !(p.FogFar > p.FogNear) {
		p.FogNear, p.FogFar = d.FogNear, d.FogFar
	}
	p.TwinkleAmplitude = common.Clamp(common.Finite(p.TwinkleAmplitude, 0), 0, 0.5)
	p.CloudTimeScale = common.Finite(p.CloudTimeScale, d.CloudTimeScale)
	p.CloudSpeed = common.Finite(p.CloudSpeed, d.CloudSpeed)
	return p
}
