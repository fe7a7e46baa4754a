package construction

import (
	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/geometry"
	"github.com/go-gl/mathgl/mgl32"
)

// Palette colors the procedural building.
type Palette struct {
	Concrete common.Color
	Steel    common.Color
	Stone    common.Color
	Dome     common.Color
	Minaret  common.Color
	Gold     common.Color
	Guide    common.Color
}

// DefaultPalette is sandstone walls, a teal dome and gold finishing.
func DefaultPalette() Palette {
	return Palette{
		Concrete: common.MustHexColor("#9ca3af"),
		Steel:    common.MustHexColor("#64748b"),
		Stone:    common.MustHexColor("#e7d3a8"),
		Dome:     common.MustHexColor("#14b8a6"),
		Minaret:  common.MustHexColor("#f5f5f4"),
		Gold:     common.MustHexColor("#fbbf24"),
		Guide:    common.MustHexColor("#67e8f9"),
	}
}

// Site dimensions shared by the meshes and the node layout.
const (
	slabWidth    = 10
	slabHeight   = 0.6
	slabDepth    = 8
	storeyHeight = 5.4
	drumHeight   = 0.6
	domeRadius   = 3
	minaretTop   = 13.5
)

// minaretBase is where the minaret stands, beside the slab.
var minaretBase = mgl32.Vec3{6.5, 0, -3}

// ornamentBase is the top of the dome, where the finial sits.
var ornamentBase = mgl32.Vec3{0, slabHeight + storeyHeight + drumHeight + domeRadius, 0}

const segments = 24

func at(x, y, z float32) mgl32.Mat4 {
	return mgl32.Translate3D(x, y, z)
}

func foundationMesh(p Palette) geometry.Mesh {
	var m geometry.Mesh
	m.Append(geometry.Box(mgl32.Vec3{slabWidth + 1, 0.2, slabDepth + 1}, p.Concrete.Scale(0.85)), mgl32.Ident4())
	m.Append(geometry.Box(mgl32.Vec3{slabWidth, slabHeight, slabDepth}, p.Concrete), mgl32.Ident4())
	return m
}

func structureMesh(p Palette) geometry.Mesh {
	var m geometry.Mesh
	const colHeight = storeyHeight - 0.4
	for _, x := range []float32{-4.5, 0, 4.5} {
		for _, z := range []float32{-3.5, 3.5} {
			m.Append(geometry.Box(mgl32.Vec3{0.4, colHeight, 0.4}, p.Steel), at(x, 0, z))
		}
	}
	for _, z := range []float32{-3.5, 3.5} {
		m.Append(geometry.Box(mgl32.Vec3{9.4, 0.4, 0.4}, p.Steel), at(0, colHeight, z))
	}
	for _, x := range []float32{-4.5, 4.5} {
		m.Append(geometry.Box(mgl32.Vec3{0.4, 0.4, 7.4}, p.Steel), at(x, colHeight, 0))
	}
	m.Append(geometry.Box(mgl32.Vec3{9.4, 0.2, 7.4}, p.Concrete), at(0, colHeight/2, 0))
	return m
}

func exteriorMesh(p Palette) geometry.Mesh {
	var m geometry.Mesh
	for _, z := range []float32{-3.7, 3.7} {
		m.Append(geometry.Box(mgl32.Vec3{9.6, storeyHeight, 0.2}, p.Stone), at(0, 0, z))
	}
	for _, x := range []float32{-4.7, 4.7} {
		m.Append(geometry.Box(mgl32.Vec3{0.2, storeyHeight, 7.2}, p.Stone), at(x, 0, 0))
	}
	m.Append(geometry.Box(mgl32.Vec3{9.8, 0.3, 7.8}, p.Stone.Scale(0.9)), at(0, storeyHeight-0.3, 0))
	m.Append(geometry.Cylinder(domeRadius+0.1, drumHeight, segments, p.Stone), at(0, storeyHeight, 0))
	m.Append(geometry.Dome(domeRadius, segments, 12, p.Dome), at(0, storeyHeight+drumHeight, 0))
	return m
}

func minaretMesh(p Palette) geometry.Mesh {
	var m geometry.Mesh
	m.Append(geometry.Cylinder(0.5, 10, segments/2, p.Minaret), mgl32.Ident4())
	m.Append(geometry.Cylinder(0.9, 0.3, segments/2, p.Stone), at(0, 7, 0))
	m.Append(geometry.Cylinder(0.35, 2, segments/2, p.Minaret), at(0, 10, 0))
	m.Append(geometry.Cone(0.5, minaretTop-12, segments/2, p.Dome), at(0, 12, 0))
	return m
}

func ornamentMesh(p Palette) geometry.Mesh {
	var m geometry.Mesh
	m.Append(geometry.Cylinder(0.06, 0.5, 8, p.Gold), mgl32.Ident4())
	m.Append(geometry.Dome(0.2, 12, 6, p.Gold), at(0, 0.5, 0))
	m.Append(geometry.Cone(0.1, 0.7, 8, p.Gold), at(0, 0.7, 0))
	return m
}

func outlineMesh(p Palette) geometry.Mesh {
	m := geometry.Mesh{Topology: geometry.Lines}
	m.Append(geometry.WireBox(mgl32.Vec3{slabWidth, slabHeight + storeyHeight, slabDepth}, p.Guide), mgl32.Ident4())
	m.Append(geometry.WireBox(mgl32.Vec3{2 * domeRadius, drumHeight + domeRadius, 2 * domeRadius}, p.Guide),
		at(0, slabHeight+storeyHeight, 0))
	m.Append(geometry.WireBox(mgl32.Vec3{1, minaretTop, 1}, p.Guide), at(minaretBase.X(), 0, minaretBase.Z()))
	return m
}
