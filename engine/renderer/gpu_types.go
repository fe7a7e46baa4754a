package renderer

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-cinematic/engine/scenegraph"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUObjectDataSource is the WGSL definition of the ObjectData struct.
// Matches GPUObjectData layout exactly (96 bytes).
const GPUObjectDataSource = `struct ObjectData {
    model: mat4x4<f32>,
    tint: vec3<f32>,
    opacity: f32,
    blend: f32,
    _pad0: f32,
    _pad1: f32,
    _pad2: f32,
};
`

// GPUObjectData is one draw item as seen by the mesh and line shaders, which index an array
// of them with the instance index.
// Size: 96 bytes.
type GPUObjectData struct {
	Model   mgl32.Mat4 // offset  0: world transform
	Tint    [3]float32 // offset 64: multiplied into the vertex colour
	Opacity float32    // offset 76
	Blend   float32    // offset 80: 1 when the output alpha is opacity, 0 when it carries depth
	_pad    [3]float32 // offset 84
}

// GPUObjectDataSize is the stride of GPUObjectData in bytes.
const GPUObjectDataSize = uint64(unsafe.Sizeof(GPUObjectData{}))

// NewGPUObjectData converts a draw item into its GPU record. Opaque items are drawn at full
// opacity with depth in the alpha channel so that depth of field can read it back.
//
// Parameters:
//   - item: the resolved draw item
//
// Returns:
//   - GPUObjectData: the record
func NewGPUObjectData(item scenegraph.DrawItem) GPUObjectData {
	d := GPUObjectData{
		Model:   item.World,
		Tint:    [3]float32{item.Tint.R, item.Tint.G, item.Tint.B},
		Opacity: item.Opacity,
		Blend:   1,
	}
	if item.Layer == scenegraph.LayerOpaque {
		d.Opacity = 1
		d.Blend = 0
	}
	return d
}

// Size returns the size of the GPUObjectData struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPUObjectData) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the record into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUObjectData) Marshal() []byte {
	buf := make([]byte, g.Size())
	off := 0
	for _, v := range g.Model {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
		off += 4
	}
	for _, v := range [...]float32{g.Tint[0], g.Tint[1], g.Tint[2], g.Opacity, g.Blend} {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
		off += 4
	}
	return buf
}
