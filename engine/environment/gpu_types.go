package environment

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUSkyUniformSource is the WGSL definition of the SkyUniform struct.
// Matches GPUSkyUniform layout exactly (48 bytes).
const GPUSkyUniformSource = `struct SkyUniform {
    zenith: vec3<f32>,
    time: f32,
    horizon: vec3<f32>,
    fog_near: f32,
    fog_color: vec3<f32>,
    fog_far: f32,
};
`

// GPUSkyUniform is the sky gradient and fog block shared by the sky and mesh passes.
// Size: 48 bytes.
type GPUSkyUniform struct {
	Zenith   [3]float32 // offset  0
	Time     float32    // offset 12
	Horizon  [3]float32 // offset 16
	FogNear  float32    // offset 28
	FogColor [3]float32 // offset 32
	FogFar   float32    // offset 44
}

// Size returns the size of the GPUSkyUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPUSkyUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniform into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUSkyUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	vals := [...]float32{
		g.Zenith[0], g.Zenith[1], g.Zenith[2], g.Time,
		g.Horizon[0], g.Horizon[1], g.Horizon[2], g.FogNear,
		g.FogColor[0], g.FogColor[1], g.FogColor[2], g.FogFar,
	}
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// GPUSpriteSource is the WGSL declaration matching GPUSprite.
const GPUSpriteSource = `struct Sprite {
    position: vec3<f32>,
    size: f32,
    color: vec4<f32>,
};
`

// GPUSprite is one camera-facing sprite instance: a cloud or a star.
// Size: 32 bytes.
type GPUSprite struct {
	Position [3]float32 // offset  0
	Size     float32    // offset 12: world-space size
	Color    [4]float32 // offset 16: rgb and opacity
}

// GPUSpriteSize is the stride of GPUSprite in bytes.
const GPUSpriteSize = uint64(unsafe.Sizeof(GPUSprite{}))
