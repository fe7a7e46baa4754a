package particle

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUParticleSource is the WGSL declaration of the per-instance particle data and the per-field
// uniform, matching GPUParticle and GPUFieldUniform.
const GPUParticleSource = `struct FieldUniform {
    color: vec3<f32>,
    size: f32,
    opacity: f32,
    time: f32,
    _pad0: f32,
    _pad1: f32,
};

struct Particle {
    position: vec3<f32>,
    phase: f32,
};
`

// GPUParticle is one instance of the particle vertex buffer.
// Size: 16 bytes.
type GPUParticle struct {
	Position [3]float32 // offset  0: world-space position
	Phase    float32    // offset 12: phase offset, drives twinkle in the shader
}

// GPUParticleSize is the stride of GPUParticle in bytes.
const GPUParticleSize = uint64(unsafe.Sizeof(GPUParticle{}))

// GPUFieldUniform is the per-field uniform block.
// Size: 32 bytes.
type GPUFieldUniform struct {
	Color     [3]float32 // offset  0
	PointSize float32    // offset 12
	Opacity   float32    // offset 16
	Time      float32    // offset 20
	_pad0     float32
	_pad1     float32
}

// Size returns the size of the GPUFieldUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUFieldUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniform into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUFieldUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i, v := range [...]float32{g.Color[0], g.Color[1], g.Color[2], g.PointSize, g.Opacity, g.Time} {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}
