package camera

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUCameraUniformSource is the canonical WGSL definition of the CameraUniform struct.
// Matches GPUCameraUniform layout exactly (160 bytes).
const GPUCameraUniformSource = `struct CameraUniform {
    view_proj: mat4x4<f32>,
    view: mat4x4<f32>,
    position: vec3<f32>,
    near: f32,
    far: f32,
    fov: f32,
    aspect: f32,
    _pad: f32,
};
`

// GPUCameraUniform is the GPU-aligned representation of the camera uniform buffer.
// Size: 160 bytes (WGSL uniform aligned).
type GPUCameraUniform struct {
	ViewProj mgl32.Mat4 // offset   0: combined view-projection matrix
	View     mgl32.Mat4 // offset  64: view matrix, used for view depth and billboards
	Position mgl32.Vec3 // offset 128: world-space camera position
	Near     float32    // offset 140
	Far      float32    // offset 144
	Fov      float32    // offset 148: radians
	Aspect   float32    // offset 152
	_pad     float32    // offset 156: padding to 160 bytes
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (160)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	put := func(off int, v float32) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
	}
	for i := range 16 {
		put(i*4, g.ViewProj[i])
		put(64+i*4, g.View[i])
	}
	for i := range 3 {
		put(128+i*4, g.Position[i])
	}
	put(140, g.Near)
	put(144, g.Far)
	put(148, g.Fov)
	put(152, g.Aspect)
	return buf
}
