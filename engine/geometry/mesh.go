// Package geometry builds indexed meshes from primitive solids. Every primitive sits on the
// ground plane (its base at y = 0) so that scaling a mesh in Y grows it upward from the ground.
package geometry

import (
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Topology selects how the index buffer of a mesh is assembled.
type Topology uint8

const (
	Triangles Topology = iota
	Lines
)

// Vertex is the interleaved vertex layout uploaded to the GPU.
// Size: 40 bytes.
type Vertex struct {
	Position [3]float32 // offset  0
	Normal   [3]float32 // offset 12
	Color    [4]float32 // offset 24
}

// VertexSize is the stride of Vertex in bytes.
const VertexSize = uint64(unsafe.Sizeof(Vertex{}))

// Mesh is an indexed mesh in local space.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Topology Topology
}

// Append merges src into m, transforming its positions and normals by transform.
// Both meshes must share a topology.
//
// Parameters:
//   - src: the mesh to merge
//   - transform: local-to-m transform applied to src
func (m *Mesh) Append(src Mesh, transform mgl32.Mat4) {
	normalMat := transform.Mat3().Inv().Transpose()
	base := uint32(len(m.Vertices))
	for _, v := range src.Vertices {
		p := transform.Mul4x1(mgl32.Vec4{v.Position[0], v.Position[1], v.Position[2], 1})
		n := normalMat.Mul3x1(mgl32.Vec3(v.Normal))
		if n.Len() > 0 {
			n = n.Normalize()
		}
		m.Vertices = append(m.Vertices, Vertex{
			Position: [3]float32{p.X(), p.Y(), p.Z()},
			Normal:   [3]float32(n),
			Color:    v.Color,
		})
	}
	for _, i := range src.Indices {
		m.Indices = append(m.Indices, base+i)
	}
}

// Bounds returns the axis-aligned bounds of the mesh. An empty mesh returns zero vectors.
//
// Returns:
//   - mgl32.Vec3: minimum corner
//   - mgl32.Vec3: maximum corner
func (m Mesh) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	if len(m.Vertices) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	lo := mgl32.Vec3(m.Vertices[0].Position)
	hi := lo
	for _, v := range m.Vertices[1:] {
		for k := range 3 {
			lo[k] = min(lo[k], v.Position[k])
			hi[k] = max(hi[k], v.Position[k])
		}
	}
	return lo, hi
}

func rgba(c common.Color, a float32) [4]float32 {
	return [4]float32{c.R, c.G, c.B, a}
}

// quad appends one face given its center, unit axes u and v (u x v is the outward normal)
// and half lengths along each axis.
func (m *Mesh) quad(center, u, v mgl32.Vec3, hu, hv float32, color [4]float32) {
	n := u.Cross(v).Normalize()
	du, dv := u.Mul(hu), v.Mul(hv)
	corners := [4]mgl32.Vec3{
		center.Sub(du).Sub(dv),
		center.Add(du).Sub(dv),
		center.Add(du).Add(dv),
		center.Sub(du).Add(dv),
	}
	base := uint32(len(m.Vertices))
	for _, c := range corners {
		m.Vertices = append(m.Vertices, Vertex{Position: [3]float32(c), Normal: [3]float32(n), Color: color})
	}
	m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
}

// Box builds a box of the given size with its base centered on the origin.
//
// Parameters:
//   - size: full extents along X, Y and Z
//   - color: vertex color
//
// Returns:
//   - Mesh: the triangle mesh (24 vertices, 36 indices)
func Box(size mgl32.Vec3, color common.Color) Mesh {
	h := size.Mul(0.5)
	c := rgba(color, 1)
	center := mgl32.Vec3{0, h.Y(), 0}
	m := Mesh{Topology: Triangles}
	faces := [6][2]mgl32.Vec3{
		{{0, 0, -1}, {0, 1, 0}},  // +X
		{{0, 0, 1}, {0, 1, 0}},   // -X
		{{1, 0, 0}, {0, 0, -1}},  // +Y
		{{1, 0, 0}, {0, 0, 1}},   // -Y
		{{1, 0, 0}, {0, 1, 0}},   // +Z
		{{-1, 0, 0}, {0, 1, 0}},  // -Z
	}
	extent := func(axis mgl32.Vec3) float32 {
		return float32(math.Abs(float64(axis.Dot(h))))
	}
	for _, f := range faces {
		u, v := f[0], f[1]
		n := u.Cross(v)
		m.quad(center.Add(n.Mul(extent(n))), u, v, extent(u), extent(v), c)
	}
	return m
}

// ring returns the unit circle point at segment i of segments.
func ring(i, segments int) (float32, float32) {
	a := 2 * math.Pi * float64(i) / float64(segments)
	return float32(math.Cos(a)), float32(math.Sin(a))
}

// cap appends a flat disc at height y facing up (or down when up is false).
func (m *Mesh) cap(radius, y float32, segments int, up bool, color [4]float32) {
	n := [3]float32{0, -1, 0}
	if up {
		n = [3]float32{0, 1, 0}
	}
	center := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, Vertex{Position: [3]float32{0, y, 0}, Normal: n, Color: color})
	for i := 0; i <= segments; i++ {
		cx, sz := ring(i, segments)
		m.Vertices = append(m.Vertices, Vertex{Position: [3]float32{cx * radius, y, sz * radius}, Normal: n, Color: color})
	}
	for i := range uint32(segments) {
		p0, p1 := center+1+i, center+2+i
		if up {
			m.Indices = append(m.Indices, center, p1, p0)
		} else {
			m.Indices = append(m.Indices, center, p0, p1)
		}
	}
}

// Cylinder builds a capped cylinder standing on the origin.
//
// Parameters:
//   - radius: cylinder radius
//   - height: cylinder height
//   - segments: number of radial segments (minimum 3)
//   - color: vertex color
//
// Returns:
//   - Mesh: the triangle mesh
func Cylinder(radius, height float32, segments int, color common.Color) Mesh {
	segments = max(segments, 3)
	c := rgba(color, 1)
	m := Mesh{Topology: Triangles}
	for i := 0; i <= segments; i++ {
		cx, sz := ring(i, segments)
		n := [3]float32{cx, 0, sz}
		m.Vertices = append(m.Vertices,
			Vertex{Position: [3]float32{cx * radius, 0, sz * radius}, Normal: n, Color: c},
			Vertex{Position: [3]float32{cx * radius, height, sz * radius}, Normal: n, Color: c},
		)
	}
	for i := range uint32(segments) {
		b0, t0, b1, t1 := 2*i, 2*i+1, 2*i+2, 2*i+3
		m.Indices = append(m.Indices, b0, t0, t1, b0, t1, b1)
	}
	m.cap(radius, height, segments, true, c)
	m.cap(radius, 0, segments, false, c)
	return m
}

// Cone builds a cone standing on the origin with its apex at height.
//
// Parameters:
//   - radius: base radius
//   - height: apex height
//   - segments: number of radial segments (minimum 3)
//   - color: vertex color
//
// Returns:
//   - Mesh: the triangle mesh
func Cone(radius, height float32, segments int, color common.Color) Mesh {
	segments = max(segments, 3)
	c := rgba(color, 1)
	m := Mesh{Topology: Triangles}
	slope := mgl32.Vec2{height, radius}.Normalize()
	for i := range segments {
		c0, s0 := ring(i, segments)
		c1, s1 := ring(i+1, segments)
		mid := 2 * math.Pi * (float64(i) + 0.5) / float64(segments)
		cm, sm := float32(math.Cos(mid)), float32(math.Sin(mid))
		n0 := [3]float32{c0 * slope[0], slope[1], s0 * slope[0]}
		n1 := [3]float32{c1 * slope[0], slope[1], s1 * slope[0]}
		na := [3]float32{cm * slope[0], slope[1], sm * slope[0]}
		base := uint32(len(m.Vertices))
		m.Vertices = append(m.Vertices,
			Vertex{Position: [3]float32{c0 * radius, 0, s0 * radius}, Normal: n0, Color: c},
			Vertex{Position: [3]float32{0, height, 0}, Normal: na, Color: c},
			Vertex{Position: [3]float32{c1 * radius, 0, s1 * radius}, Normal: n1, Color: c},
		)
		m.Indices = append(m.Indices, base, base+1, base+2)
	}
	m.cap(radius, 0, segments, false, c)
	return m
}

// Dome builds a hemisphere resting on the origin.
//
// Parameters:
//   - radius: sphere radius
//   - segments: number of radial segments (minimum 3)
//   - rings: number of latitude rings (minimum 2)
//   - color: vertex color
//
// Returns:
//   - Mesh: the triangle mesh
func Dome(radius float32, segments, rings int, color common.Color) Mesh {
	segments = max(segments, 3)
	rings = max(rings, 2)
	c := rgba(color, 1)
	m := Mesh{Topology: Triangles}
	stride := uint32(segments + 1)
	for j := 0; j <= rings; j++ {
		phi := math.Pi / 2 * float64(j) / float64(rings)
		cp, sp := float32(math.Cos(phi)), float32(math.Sin(phi))
		for i := 0; i <= segments; i++ {
			cx, sz := ring(i, segments)
			n := [3]float32{cp * cx, sp, cp * sz}
			m.Vertices = append(m.Vertices, Vertex{
				Position: [3]float32{n[0] * radius, n[1] * radius, n[2] * radius},
				Normal:   n,
				Color:    c,
			})
		}
	}
	for j := range uint32(rings) {
		for i := range uint32(segments) {
			b0 := j*stride + i
			b1, t0, t1 := b0+1, b0+stride, b0+stride+1
			m.Indices = append(m.Indices, b0, t0, t1, b0, t1, b1)
		}
	}
	return m
}

// WireBox builds the twelve edges of a box with its base centered on the origin.
//
// Parameters:
//   - size: full extents along X, Y and Z
//   - color: vertex color
//
// Returns:
//   - Mesh: the line mesh (8 vertices, 24 indices)
func WireBox(size mgl32.Vec3, color common.Color) Mesh {
	hx, hz := size.X()/2, size.Z()/2
	c := rgba(color, 1)
	m := Mesh{Topology: Lines}
	for _, y := range [2]float32{0, size.Y()} {
		for _, p := range [4][2]float32{{-hx, -hz}, {hx, -hz}, {hx, hz}, {-hx, hz}} {
			m.Vertices = append(m.Vertices, Vertex{
				Position: [3]float32{p[0], y, p[1]},
				Normal:   [3]float32{0, 1, 0},
				Color:    c,
			})
		}
	}
	m.Indices = []uint32{
		0, 1, 1, 2, 2, 3, 3, 0, // bottom
		4, 5, 5, 6, 6, 7, 7, 4, // top
		0, 4, 1, 5, 2, 6, 3, 7, // verticals
	}
	return m
}
