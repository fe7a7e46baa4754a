package particle

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
)

// Params parameterizes a particle field. Every preset is a Params value; there is one
// simulation code path for all of them.
type Params struct {
	Name    string
	Count   int
	Color   common.Color
	Size    float32 // billboard size in world units
	Spread  float64 // horizontal half-width of the field
	Speed   float64 // base speed in world units per second
	Opacity float32
}

// Preset names accepted by Preset.
const (
	PresetMotes    = "motes"
	PresetDust     = "dust"
	PresetSparkles = "sparkles"
)

// Motes are the general ambient particles: teal, medium-sized, drifting slowly.
func Motes() Params {
	return Params{Name: PresetMotes, Count: 200, Color: common.MustHexColor("#2dd4bf"), Size: 0.08, Spread: 20, Speed: 0.3, Opacity: 0.8}
}

// Dust is a fine white haze of many small, slow particles.
func Dust() Params {
	return Params{Name: PresetDust, Count: 400, Color: common.MustHexColor("#ffffff"), Size: 0.03, Spread: 15, Speed: 0.15, Opacity: 0.4}
}

// Sparkles are few, coarse, fast gold particles.
func Sparkles() Params {
	return Params{Name: PresetSparkles, Count: 80, Color: common.MustHexColor("#fbbf24"), Size: 0.15, Spread: 12, Speed: 0.5, Opacity: 0.9}
}

// Preset looks up a preset by name.
//
// Parameters:
//   - name: one of PresetMotes, PresetDust or PresetSparkles
//
// Returns:
//   - Params: the preset parameters
//   - bool: false if the name is unknown
func Preset(name string) (Params, bool) {
	switch name {
	case PresetMotes:
		return Motes(), true
	case PresetDust:
		return Dust(), true
	case PresetSparkles:
		return Sparkles(), true
	}
	return Params{}, false
}

// PresetNames lists the known presets in a stable order.
//
// Returns:
//   - []string: the names
func PresetNames() []string {
	names := []string{PresetMotes, PresetDust, PresetSparkles}
	slices.Sort(names)
	return names
}

// Floor is the lowest height a particle of the field may occupy.
func (p Params) Floor() float64 {
	return -0.1 * p.Spread
}

// Ceiling is the height above which a particle is reinjected.
func (p Params) Ceiling() float64 {
	return 0.5 * p.Spread
}
