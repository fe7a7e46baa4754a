// Package scenegraph is an arena of drawable nodes addressed by integer handles. A node's world
// transform is its parent's world transform times its own local transform, recomputed every
// frame by Resolve. Parents are always created before their children, so one forward pass over
// the arena resolves the whole hierarchy and no ownership cycles can form.
package scenegraph

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Handle addresses a node inside an Arena.
type Handle int32

// Root is the parent handle of top-level nodes.
const Root Handle = -1

// ErrUnknownHandle is returned when a handle does not address a node of the arena.
var ErrUnknownHandle = errors.New("scenegraph: unknown handle")

// Layer groups draw items by how they are rendered.
type Layer uint8

const (
	LayerOpaque Layer = iota
	LayerTransparent
	LayerLines
)

func (l Layer) String() string {
	switch l {
	case LayerOpaque:
		return "opaque"
	case LayerTransparent:
		return "transparent"
	case LayerLines:
		return "lines"
	}
	return fmt.Sprintf("layer(%d)", uint8(l))
}

// Transform is a parent-relative transform.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3 // Euler angles in radians
	Scale    mgl32.Vec3
}

// IdentityTransform places a node on its parent with unit scale.
func IdentityTransform() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

// Matrix returns the local model matrix.
func (t Transform) Matrix() mgl32.Mat4 {
	return common.ModelMatrix(t.Position, t.Rotation, t.Scale)
}

// NodeDesc describes a node at creation.
type NodeDesc struct {
	Name      string
	Parent    Handle
	Transform Transform
	Mesh      string // mesh key, empty for pure grouping nodes
	Layer     Layer
	Tint      common.Color // multiplies vertex colors; the zero value means untinted
	Opacity   float32
	Visible   bool
}

type node struct {
	desc    NodeDesc
	world   mgl32.Mat4
	opacity float32 // effective opacity after multiplying ancestors
	visible bool    // effective visibility after ancestors
}

// DrawItem is one resolved node ready to render.
type DrawItem struct {
	Handle  Handle
	Mesh    string
	Layer   Layer
	World   mgl32.Mat4
	Tint    common.Color
	Opacity float32
}

// Arena owns every node of a scene for the lifetime of a mount.
type Arena interface {
	// Add appends a node. The parent must already exist, or be Root.
	//
	// Parameters:
	//   - desc: the node description
	//
	// Returns:
	//   - Handle: the new node's handle
	//   - error: ErrUnknownHandle if the parent does not exist
	Add(desc NodeDesc) (Handle, error)

	// Lookup finds a node by name.
	//
	// Parameters:
	//   - name: the node name
	//
	// Returns:
	//   - Handle: the node's handle
	//   - bool: false if no node has that name
	Lookup(name string) (Handle, bool)

	// Len returns the number of nodes.
	//
	// Returns:
	//   - int: node count
	Len() int

	// SetTransform replaces a node's local transform.
	SetTransform(h Handle, t Transform) error

	// SetVisible toggles a node and, through Resolve, its subtree.
	SetVisible(h Handle, visible bool) error

	// SetOpacity sets a node's own opacity, multiplied into its subtree by Resolve.
	SetOpacity(h Handle, opacity float32) error

	// Transform returns a node's local transform.
	Transform(h Handle) (Transform, error)

	// World returns the world matrix computed by the last Resolve.
	World(h Handle) (mgl32.Mat4, error)

	// Resolve recomputes world matrices, effective visibility and effective opacity in one
	// forward pass.
	Resolve()

	// DrawList appends every visible node that carries a mesh to dst, ordered by layer and then
	// by creation order, and returns the extended slice.
	//
	// Parameters:
	//   - dst: the slice to append to, usually the previous frame's list truncated to zero
	//
	// Returns:
	//   - []DrawItem: the draw list
	DrawList(dst []DrawItem) []DrawItem

	// Clear drops every node.
	Clear()
}

type arena struct {
	mu     *sync.Mutex
	nodes  []node
	byName map[string]Handle
}

var _ Arena = &arena{}

// NewArena creates an empty Arena.
//
// Returns:
//   - Arena: the arena
func NewArena() Arena {
	return &arena{
		mu:     &sync.Mutex{},
		byName: make(map[string]Handle),
	}
}

func (a *arena) valid(h Handle) bool {
	return h >= 0 && int(h) < len(a.nodes)
}

func (a *arena) Add(desc NodeDesc) (Handle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if desc.Parent != Root && !a.valid(desc.Parent) {
		return Root, fmt.Errorf("add %q: parent %d: %w", desc.Name, desc.Parent, ErrUnknownHandle)
	}
	if desc.Tint == (common.Color{}) {
		desc.Tint = common.Color{R: 1, G: 1, B: 1}
	}
	h := Handle(len(a.nodes))
	a.nodes = append(a.nodes, node{desc: desc, world: mgl32.Ident4()})
	if desc.Name != "" {
		a.byName[desc.Name] = h
	}
	return h, nil
}

func (a *arena) Lookup(name string) (Handle, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	h, ok := a.byName[name]
	return h, ok
}

func (a *arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.nodes)
}

func (a *arena) SetTransform(h Handle, t Transform) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.valid(h) {
		return fmt.Errorf("set transform %d: %w", h, ErrUnknownHandle)
	}
	a.nodes[h].desc.Transform = t
	return nil
}

func (a *arena) SetVisible(h Handle, visible bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.valid(h) {
		return fmt.Errorf("set visible %d: %w", h, ErrUnknownHandle)
	}
	a.nodes[h].desc.Visible = visible
	return nil
}

func (a *arena) SetOpacity(h Handle, opacity float32) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.valid(h) {
		return fmt.Errorf("set opacity %d: %w", h, ErrUnknownHandle)
	}
	a.nodes[h].desc.Opacity = opacity
	return nil
}

func (a *arena) Transform(h Handle) (Transform, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.valid(h) {
		return Transform{}, fmt.Errorf("transform %d: %w", h, ErrUnknownHandle)
	}
	return a.nodes[h].desc.Transform, nil
}

func (a *arena) World(h Handle) (mgl32.Mat4, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.valid(h) {
		return mgl32.Mat4{}, fmt.Errorf("world %d: %w", h, ErrUnknownHandle)
	}
	return a.nodes[h].world, nil
}

func (a *arena) Resolve() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.nodes {
		n := &a.nodes[i]
		local := n.desc.Transform.Matrix()
		n.opacity = clampOpacity(n.desc.Opacity)
		n.visible = n.desc.Visible
		if p := n.desc.Parent; p != Root {
			parent := &a.nodes[p]
			n.world = parent.world.Mul4(local)
			n.opacity *= parent.opacity
			n.visible = n.visible && parent.visible
			continue
		}
		n.world = local
	}
}

// clampOpacity clamps an opacity to [0, 1].
func clampOpacity(v float32) float32 {
	return float32(common.Clamp01(float64(v)))
}

func (a *arena) DrawList(dst []DrawItem) []DrawItem {
	a.mu.Lock()
	defer a.mu.Unlock()
	start := len(dst)
	for i, n := range a.nodes {
		if n.desc.Mesh == "" || !n.visible || n.opacity <= 0 {
			continue
		}
		dst = append(dst, DrawItem{
			Handle:  Handle(i),
			Mesh:    n.desc.Mesh,
			Layer:   n.desc.Layer,
			World:   n.world,
			Tint:    n.desc.Tint,
			Opacity: n.opacity,
		})
	}
	slices.SortStableFunc(dst[start:], func(x, y DrawItem) int {
		return int(x.Layer) - int(y.Layer)
	})
	return dst
}

func (a *arena) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nodes = a.nodes[:0]
	clear(a.byName)
}
