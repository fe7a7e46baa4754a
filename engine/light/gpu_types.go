package light

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPULightUniformSource is the canonical WGSL definition of the LightUniform struct.
// Matches GPULightUniform layout exactly (80 bytes, uniform aligned).
const GPULightUniformSource = `struct LightUniform {
    sun_direction: vec3<f32>,
    sun_intensity: f32,
    sun_color: vec3<f32>,
    ambient_intensity: f32,
    ambient_color: vec3<f32>,
    hemisphere_intensity: f32,
    sky_color: vec3<f32>,
    _pad0: f32,
    ground_color: vec3<f32>,
    _pad1: f32,
};
`

// GPULightUniform is the GPU-aligned representation of the light rig.
// Matches the WGSL LightUniform struct layout exactly (see GPULightUniformSource).
// Size: 80 bytes.
type GPULightUniform struct {
	SunDirection        [3]float32 // offset  0: normalized, pointing toward the sun
	SunIntensity        float32    // offset 12
	SunColor            [3]float32 // offset 16
	AmbientIntensity    float32    // offset 28
	AmbientColor        [3]float32 // offset 32
	HemisphereIntensity float32    // offset 44
	SkyColor            [3]float32 // offset 48
	_pad0               float32    // offset 60
	GroundColor         [3]float32 // offset 64
	_pad1               float32    // offset 76: padding to 80 bytes
}

// Size returns the size of the GPULightUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (g *GPULightUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULightUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 80-byte buffer ready for GPU upload
func (g *GPULightUniform) Marshal() []byte {
	buf := make([]byte, 80)
	put := func(off int, v float32) {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
	}
	put3 := func(off int, v [3]float32) {
		put(off, v[0])
		put(off+4, v[1])
		put(off+8, v[2])
	}
	put3(0, g.SunDirection)
	put(12, g.SunIntensity)
	put3(16, g.SunColor)
	put(28, g.AmbientIntensity)
	put3(32, g.AmbientColor)
	put(44, g.HemisphereIntensity)
	put3(48, g.SkyColor)
	put3(64, g.GroundColor)
	return buf
}
