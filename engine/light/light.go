package light

import "github.com/Carmen-Shannon/oxy-cinematic/common"

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional represents a light with no position, only direction.
	// Used for the sun. Affects all fragments uniformly with no distance attenuation.
	LightTypeDirectional LightType = iota

	// LightTypeAmbient represents a flat term added to every fragment regardless of its normal.
	LightTypeAmbient

	// LightTypeHemisphere blends between a sky color for upward-facing normals and a ground
	// color for downward-facing normals.
	LightTypeHemisphere
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType   LightType
	direction   [3]float32
	color       common.Color
	groundColor common.Color
	intensity   float32
	enabled     bool
}

// Light defines the interface for a light source in the scene.
//
// All light types share this interface; type-specific properties (the direction of the sun,
// the ground color of the hemisphere) return zero values when not applicable.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type
	Type() LightType

	// Direction returns the normalized direction from the scene toward the light.
	// Meaningless for ambient and hemisphere lights.
	//
	// Returns:
	//   - [3]float32: normalized direction as (x, y, z)
	Direction() [3]float32

	// Color returns the light color. For a hemisphere light this is the sky color.
	//
	// Returns:
	//   - common.Color: the color
	Color() common.Color

	// GroundColor returns the ground color of a hemisphere light.
	//
	// Returns:
	//   - common.Color: the color
	GroundColor() common.Color

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// Enabled returns whether this light contributes to rendering.
	// Disabled lights marshal with zero intensity.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// SetDirection sets the direction toward the light and normalizes it.
	//
	// Parameters:
	//   - x, y, z: direction components (will be normalized)
	SetDirection(x, y, z float32)

	// SetColor sets the light color.
	//
	// Parameters:
	//   - c: the color
	SetColor(c common.Color)

	// SetGroundColor sets the ground color of a hemisphere light.
	//
	// Parameters:
	//   - c: the color
	SetGroundColor(c common.Color)

	// SetIntensity sets the scalar intensity multiplier. Negative values clamp to zero.
	//
	// Parameters:
	//   - intensity: the intensity value
	SetIntensity(intensity float32)

	// SetEnabled enables or disables the light for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with sensible defaults and
// any provided options applied.
//
// Parameters:
//   - lightType: the kind of light to create
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType: lightType,
		direction: [3]float32{0, 1, 0},
		color:     common.Color{R: 1, G: 1, B: 1},
		intensity: 1.0,
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Direction() [3]float32 {
	return l.direction
}

func (l *lightImpl) Color() common.Color {
	return l.color
}

func (l *lightImpl) GroundColor() common.Color {
	return l.groundColor
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) SetDirection(x, y, z float32) {
	l.direction = normalize3(x, y, z)
}

func (l *lightImpl) SetColor(c common.Color) {
	l.color = c
}

func (l *lightImpl) SetGroundColor(c common.Color) {
	l.groundColor = c
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = max(intensity, 0)
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

// effective is the intensity the GPU sees.
func (l *lightImpl) effective() float32 {
	if !l.enabled {
		return 0
	}
	return l.intensity
}
