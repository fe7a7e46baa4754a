package postfx

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUPostUniformSource is the WGSL definition of the PostUniform struct.
// Matches GPUPostUniform layout exactly (64 bytes).
const GPUPostUniformSource = `struct PostUniform {
    bloom_intensity: f32,
    bloom_threshold: f32,
    bloom_radius: f32,
    vignette_offset: f32,
    vignette_darkness: f32,
    chromatic_offset: f32,
    overlay_alpha: f32,
    focus_distance: f32,
    aperture: f32,
    max_blur: f32,
    texel: vec2<f32>,
    near: f32,
    far: f32,
    _pad0: f32,
    _pad1: f32,
};
`

// GPUPostUniform is the uniform block shared by every post pass.
// Size: 64 bytes.
type GPUPostUniform struct {
	BloomIntensity   float32    // offset  0
	BloomThreshold   float32    // offset  4
	BloomRadius      float32    // offset  8
	VignetteOffset   float32    // offset 12
	VignetteDarkness float32    // offset 16
	ChromaticOffset  float32    // offset 20
	OverlayAlpha     float32    // offset 24: loading overlay, 1 is fully covered
	FocusDistance    float32    // offset 28
	Aperture         float32    // offset 32
	MaxBlur          float32    // offset 36
	Texel            [2]float32 // offset 40: 1/width, 1/height of the bloom target
	Near             float32    // offset 48
	Far              float32    // offset 52
	_pad0            float32
	_pad1            float32
}

// Size returns the size of the GPUPostUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUPostUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniform into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUPostUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	vals := [...]float32{
		g.BloomIntensity, g.BloomThreshold, g.BloomRadius, g.VignetteOffset,
		g.VignetteDarkness, g.ChromaticOffset, g.OverlayAlpha, g.FocusDistance,
		g.Aperture, g.MaxBlur, g.Texel[0], g.Texel[1],
		g.Near, g.Far,
	}
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}
