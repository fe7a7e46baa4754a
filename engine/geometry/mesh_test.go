package geometry

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/go-gl/mathgl/mgl32"
)

var white = common.Color{R: 1, G: 1, B: 1}

// triangleNormal returns the geometric normal implied by the winding of triangle t.
func triangleNormal(m Mesh, t int) mgl32.Vec3 {
	a := mgl32.Vec3(m.Vertices[m.Indices[3*t]].Position)
	b := mgl32.Vec3(m.Vertices[m.Indices[3*t+1]].Position)
	c := mgl32.Vec3(m.Vertices[m.Indices[3*t+2]].Position)
	return b.Sub(a).Cross(c.Sub(a))
}

func checkMesh(t *testing.T, name string, m Mesh) {
	t.Helper()
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		t.Fatalf("%s: empty mesh", name)
	}
	for _, i := range m.Indices {
		if int(i) >= len(m.Vertices) {
			t.Fatalf("%s: index %d out of range %d", name, i, len(m.Vertices))
		}
	}
	lo, _ := m.Bounds()
	if lo.Y() < -1e-5 {
		t.Fatalf("%s: base below ground at %v", name, lo.Y())
	}
	if m.Topology != Triangles {
		return
	}
	if len(m.Indices)%3 != 0 {
		t.Fatalf("%s: index count %d not a multiple of 3", name, len(m.Indices))
	}
	// Front faces are counter-clockwise, so the winding normal must agree with the vertex normal.
	for tri := range len(m.Indices) / 3 {
		wn := triangleNormal(m, tri)
		if wn.Len() < 1e-7 {
			continue
		}
		vn := mgl32.Vec3(m.Vertices[m.Indices[3*tri]].Normal)
		if wn.Dot(vn) <= 0 {
			t.Fatalf("%s: triangle %d wound against its normal", name, tri)
		}
	}
}

func TestPrimitives(t *testing.T) {
	tests := []struct {
		name string
		mesh Mesh
		hi   mgl32.Vec3
	}{
		{"box", Box(mgl32.Vec3{2, 4, 6}, white), mgl32.Vec3{1, 4, 3}},
		{"cylinder", Cylinder(1, 3, 16, white), mgl32.Vec3{1, 3, 1}},
		{"cone", Cone(1, 2, 12, white), mgl32.Vec3{1, 2, 1}},
		{"dome", Dome(2, 16, 8, white), mgl32.Vec3{2, 2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkMesh(t, tt.name, tt.mesh)
			_, hi := tt.mesh.Bounds()
			if !hi.ApproxEqualThreshold(tt.hi, 1e-4) {
				t.Fatalf("max bound = %v, want %v", hi, tt.hi)
			}
		})
	}
}

func TestBoxCounts(t *testing.T) {
	m := Box(mgl32.Vec3{1, 1, 1}, white)
	if len(m.Vertices) != 24 || len(m.Indices) != 36 {
		t.Fatalf("box has %d vertices and %d indices", len(m.Vertices), len(m.Indices))
	}
}

func TestWireBoxEdges(t *testing.T) {
	m := WireBox(mgl32.Vec3{2, 2, 2}, white)
	if m.Topology != Lines || len(m.Indices) != 24 {
		t.Fatalf("wire box topology %v with %d indices", m.Topology, len(m.Indices))
	}
	checkMesh(t, "wirebox", m)
}

func TestAppendTransformsAndOffsetsIndices(t *testing.T) {
	var dst Mesh
	box := Box(mgl32.Vec3{1, 1, 1}, white)
	dst.Append(box, mgl32.Ident4())
	dst.Append(box, mgl32.Translate3D(5, 0, 0))
	if len(dst.Vertices) != 48 || len(dst.Indices) != 72 {
		t.Fatalf("merged mesh has %d vertices and %d indices", len(dst.Vertices), len(dst.Indices))
	}
	if dst.Indices[36] != 24 {
		t.Fatalf("second box indices not offset, first = %d", dst.Indices[36])
	}
	_, hi := dst.Bounds()
	if !hi.ApproxEqual(mgl32.Vec3{5.5, 1, 0.5}) {
		t.Fatalf("merged max bound = %v", hi)
	}
	checkMesh(t, "merged", dst)
}

func TestPrimitiveMinimumSegments(t *testing.T) {
	m := Cylinder(1, 1, 1, white)
	checkMesh(t, "thin cylinder", m)
}
