// Package construction assembles the building from primitive solids and reveals it in five
// phases. A smoothed build-progress scalar follows phase/4 and each structural assembly claims
// one quarter of it, so the foundation, the skeleton, the envelope and the minaret build one
// after another. Every displayed scale and opacity is smoothed toward its target.
package construction

import (
	"fmt"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/clock"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/geometry"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/scenegraph"
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh keys registered by the model.
const (
	MeshOutline    = "construction/outline"
	MeshFoundation = "construction/foundation"
	MeshStructure  = "construction/structure"
	MeshExterior   = "construction/exterior"
	MeshMinaret    = "construction/minaret"
	MeshOrnament   = "construction/ornament"
)

var assemblyMeshes = [AssemblyCount]string{MeshOutline, MeshFoundation, MeshStructure, MeshExterior, MeshMinaret}

// Below these a node is not drawn: a growing assembly needs a measurable height and a fading
// one a measurable opacity.
const (
	minVisibleScale   = 1e-3
	minVisibleOpacity = 1e-3
)

// State is the committed model state of one tick.
type State struct {
	Phase           int
	PhaseChanged    bool    // the clamped phase differs from the previous tick, or this is the first tick
	BuildProgress   float64 // smoothed toward phase/4
	Assemblies      [AssemblyCount]AssemblyState
	OrnamentVisible bool
	Bob             float64 // idle vertical offset of the model root
	Sway            float64 // idle yaw of the model root in radians
}

// Assembly returns the state of one assembly.
//
// Parameters:
//   - id: the assembly
//
// Returns:
//   - AssemblyState: its committed state
func (s State) Assembly(id AssemblyID) AssemblyState {
	return s.Assemblies[id]
}

// Model is the phased procedural building.
type Model interface {
	// Update advances the model by one tick.
	//
	// Parameters:
	//   - t: the tick time
	//   - phase: the construction phase, clamped to [0, 4]
	//
	// Returns:
	//   - State: the committed state
	Update(t clock.Time, phase int) State

	// State returns the last committed state.
	//
	// Returns:
	//   - State: the committed state
	State() State

	// Meshes returns every mesh of the model keyed by mesh name. The meshes never change after
	// construction.
	//
	// Returns:
	//   - map[string]geometry.Mesh: the meshes
	Meshes() map[string]geometry.Mesh

	// ActiveMeshes appends the mesh keys visible at phase to dst.
	//
	// Parameters:
	//   - dst: slice to append to
	//   - phase: the construction phase
	//
	// Returns:
	//   - []string: the extended slice
	ActiveMeshes(dst []string, phase int) []string

	// Attach registers the model's nodes in arena under parent.
	//
	// Parameters:
	//   - arena: the scene arena
	//   - parent: the parent node, or scenegraph.Root
	//
	// Returns:
	//   - error: error if a node cannot be added
	Attach(arena scenegraph.Arena, parent scenegraph.Handle) error

	// Apply writes the committed state into the attached nodes.
	//
	// Returns:
	//   - error: error if the model is not attached
	Apply() error

	// Reset forgets the committed state; the next Update snaps to its targets.
	Reset()
}

type modelImpl struct {
	mu *sync.Mutex

	palette       Palette
	smoothing     float64
	outlineFade   float64
	bobAmplitude  float64
	bobRate       float64 // radians per second
	swayAmplitude float64 // radians
	swayRate      float64 // radians per second

	meshes      map[string]geometry.Mesh
	state       State
	initialized bool

	arena    scenegraph.Arena
	root     scenegraph.Handle
	nodes    [AssemblyCount]scenegraph.Handle
	ornament scenegraph.Handle
}

var _ Model = &modelImpl{}

// NewModel builds the building meshes and returns a Model at phase 0.
//
// Parameters:
//   - options: functional options overriding the defaults
//
// Returns:
//   - Model: the model
func NewModel(options ...ModelBuilderOption) Model {
	m := &modelImpl{
		mu:            &sync.Mutex{},
		palette:       DefaultPalette(),
		smoothing:     3,
		outlineFade:   0.3,
		bobAmplitude:  0.05,
		bobRate:       0.8,
		swayAmplitude: 0.5 * math.Pi / 180,
		swayRate:      0.3,
		root:          scenegraph.Root,
		ornament:      scenegraph.Root,
	}
	for _, option := range options {
		option(m)
	}
	m.meshes = map[string]geometry.Mesh{
		MeshOutline:    outlineMesh(m.palette),
		MeshFoundation: foundationMesh(m.palette),
		MeshStructure:  structureMesh(m.palette),
		MeshExterior:   exteriorMesh(m.palette),
		MeshMinaret:    minaretMesh(m.palette),
		MeshOrnament:   ornamentMesh(m.palette),
	}
	for i := range m.nodes {
		m.nodes[i] = scenegraph.Root
		m.state.Assemblies[i].ID = AssemblyID(i)
	}
	return m
}

func (m *modelImpl) Update(t clock.Time, phase int) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	phase = common.ClampPhase(phase)
	dt := math.Max(0, common.Finite(t.Delta, 0))
	goal := float64(phase) / float64(common.PhaseMax)

	s := &m.state
	s.PhaseChanged = !m.initialized || phase != s.Phase
	s.Phase = phase
	if !m.initialized {
		s.BuildProgress = goal
	} else {
		s.BuildProgress = common.Damp(s.BuildProgress, goal, dt, m.smoothing)
	}

	for i := range s.Assemblies {
		a := &s.Assemblies[i]
		a.Visible = a.ID.Active(phase)
		a.LocalProgress = a.ID.LocalProgress(s.BuildProgress)
		scale, opacity := targets(a.ID, phase, a.LocalProgress, m.outlineFade)
		if !m.initialized {
			a.Scale, a.Opacity = scale, opacity
			continue
		}
		a.Scale = common.Damp(a.Scale, scale, dt, m.smoothing)
		a.Opacity = common.Damp(a.Opacity, opacity, dt, m.smoothing)
	}
	s.OrnamentVisible = phase == common.PhaseMax
	s.Bob = m.bobAmplitude * math.Sin(t.Elapsed*m.bobRate)
	s.Sway = m.swayAmplitude * math.Sin(t.Elapsed*m.swayRate)
	m.initialized = true
	return m.state
}

func (m *modelImpl) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *modelImpl) Meshes() map[string]geometry.Mesh {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]geometry.Mesh, len(m.meshes))
	for k, v := range m.meshes {
		out[k] = v
	}
	return out
}

func (m *modelImpl) ActiveMeshes(dst []string, phase int) []string {
	phase = common.ClampPhase(phase)
	for i, key := range assemblyMeshes {
		if AssemblyID(i).Active(phase) {
			dst = append(dst, key)
		}
	}
	if phase == common.PhaseMax {
		dst = append(dst, MeshOrnament)
	}
	return dst
}

func (m *modelImpl) Attach(arena scenegraph.Arena, parent scenegraph.Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	root, err := arena.Add(scenegraph.NodeDesc{
		Name:      "construction",
		Parent:    parent,
		Transform: scenegraph.IdentityTransform(),
		Opacity:   1,
		Visible:   true,
	})
	if err != nil {
		return fmt.Errorf("attach construction: %w", err)
	}

	layout := [AssemblyCount]struct {
		base  mgl32.Vec3
		layer scenegraph.Layer
	}{
		Outline:    {mgl32.Vec3{}, scenegraph.LayerLines},
		Foundation: {mgl32.Vec3{}, scenegraph.LayerOpaque},
		Structure:  {mgl32.Vec3{0, slabHeight, 0}, scenegraph.LayerOpaque},
		Exterior:   {mgl32.Vec3{0, slabHeight, 0}, scenegraph.LayerTransparent},
		Minaret:    {minaretBase, scenegraph.LayerOpaque},
	}
	for i, l := range layout {
		id := AssemblyID(i)
		tr := scenegraph.IdentityTransform()
		tr.Position = l.base
		h, err := arena.Add(scenegraph.NodeDesc{
			Name:      "construction/" + id.String(),
			Parent:    root,
			Transform: tr,
			Mesh:      assemblyMeshes[i],
			Layer:     l.layer,
		})
		if err != nil {
			return fmt.Errorf("attach %s: %w", id, err)
		}
		m.nodes[i] = h
	}

	tr := scenegraph.IdentityTransform()
	tr.Position = ornamentBase
	ornament, err := arena.Add(scenegraph.NodeDesc{
		Name:      "construction/ornament",
		Parent:    root,
		Transform: tr,
		Mesh:      MeshOrnament,
		Layer:     scenegraph.LayerOpaque,
		Opacity:   1,
	})
	if err != nil {
		return fmt.Errorf("attach ornament: %w", err)
	}

	m.arena, m.root, m.ornament = arena, root, ornament
	return m.apply()
}

func (m *modelImpl) Apply() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.apply()
}

// apply writes the committed state into the arena. Caller must hold the mutex.
func (m *modelImpl) apply() error {
	if m.arena == nil {
		return fmt.Errorf("construction: apply before attach")
	}
	s := m.state

	rootTr := scenegraph.IdentityTransform()
	rootTr.Position = mgl32.Vec3{0, float32(s.Bob), 0}
	rootTr.Rotation = mgl32.Vec3{0, float32(s.Sway), 0}
	if err := m.arena.SetTransform(m.root, rootTr); err != nil {
		return err
	}

	for i, a := range s.Assemblies {
		h := m.nodes[i]
		tr, err := m.arena.Transform(h)
		if err != nil {
			return err
		}
		tr.Scale = mgl32.Vec3{1, float32(a.Scale), 1}
		if err := m.arena.SetTransform(h, tr); err != nil {
			return err
		}
		if err := m.arena.SetVisible(h, a.Drawn()); err != nil {
			return err
		}
		if err := m.arena.SetOpacity(h, float32(a.Opacity)); err != nil {
			return err
		}
	}
	return m.arena.SetVisible(m.ornament, s.OrnamentVisible)
}

func (m *modelImpl) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initialized = false
}
