// Package scene composes the director, the building, the particle fields, the environment and
// the post-processing parameters into one Frame per tick. It owns the node arena and the
// worker pool that advances the independent components in parallel.
package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/camera"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/clock"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/construction"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/director"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/environment"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/geometry"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/light"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/particle"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/postfx"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/scenegraph"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrReleased is returned by Update after Release.
var ErrReleased = errors.New("scene: released")

// Scene is the per-tick composition of every component.
// Update must be called from a single goroutine; the accessors are safe from any goroutine.
type Scene interface {
	// Update advances every component by one tick in dependency order and returns the frame.
	// The director runs first, then the building, then the particle fields and the
	// environment in parallel, then the light rig and the post parameters.
	//
	// Parameters:
	//   - t: the tick time
	//   - in: the input snapshot sampled at the start of the tick
	//
	// Returns:
	//   - *Frame: the frame, valid until the next Update
	//   - error: ErrReleased after Release, or a recovered component failure
	Update(t clock.Time, in Input) (*Frame, error)

	// Resize applies a new viewport to the camera projection.
	//
	// Parameters:
	//   - vp: the viewport in pixels; empty viewports are ignored
	Resize(vp common.Viewport)

	// Meshes returns every static mesh the frames can reference, keyed by mesh name.
	//
	// Returns:
	//   - map[string]geometry.Mesh: the meshes
	Meshes() map[string]geometry.Mesh

	// Camera returns the scene camera.
	Camera() camera.Camera

	// Director returns the camera and lighting controller.
	Director() director.Director

	// Model returns the procedural building.
	Model() construction.Model

	// Environment returns the background compositor.
	Environment() environment.Environment

	// Compositor returns the post-processing parameters.
	Compositor() postfx.Compositor

	// Fields returns the particle fields in draw order.
	Fields() []particle.Field

	// Arena returns the node arena.
	Arena() scenegraph.Arena

	// Reset returns every smoothed component to its cold state; the next Update snaps.
	Reset()

	// Release stops the worker pool. It is idempotent.
	Release()
}

type scene struct {
	mu     *sync.Mutex
	logger *slog.Logger

	cam      camera.Camera
	dir      director.Director
	model    construction.Model
	env      environment.Environment
	post     postfx.Compositor
	fields   []particle.Field
	rig      light.Rig
	arena    scenegraph.Arena
	viewport common.Viewport
	seed     uint64

	frame    Frame
	first    bool
	released bool

	// workPool advances the particle fields and the environment each tick. Workers persist
	// across frames, avoiding per-frame goroutine spawn/teardown overhead.
	workPool    worker.DynamicWorkerPool
	workWorkers int
	taskErrs    []error
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a Scene. Components not supplied through options are built with their
// defaults; the three particle presets are created when no fields are given.
//
// Parameters:
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
//   - error: error if the nodes cannot be attached to the arena
func NewScene(options ...SceneBuilderOption) (Scene, error) {
	s := &scene{
		mu:          &sync.Mutex{},
		logger:      slog.Default(),
		seed:        1,
		viewport:    common.Viewport{Width: 1280, Height: 720},
		workWorkers: max(min(runtime.NumCPU()-1, 4), 1),
		first:       true,
	}
	for _, option := range options {
		option(s)
	}
	s.logger = s.logger.With("component", "scene")

	if s.dir == nil {
		s.dir = director.NewDirector()
	}
	if s.model == nil {
		s.model = construction.NewModel()
	}
	if s.env == nil {
		s.env = environment.NewEnvironment(environment.WithSeed(s.seed))
	}
	if s.post == nil {
		s.post = postfx.NewCompositor()
	}
	if s.fields == nil {
		for i, name := range []string{particle.PresetMotes, particle.PresetDust, particle.PresetSparkles} {
			p, _ := particle.Preset(name)
			s.fields = append(s.fields, particle.NewField(p, particle.WithSeed(s.seed+uint64(i)+1)))
		}
	}
	if s.cam == nil {
		s.cam = camera.NewCamera()
	}
	s.cam.SetController(s.dir)
	s.cam.SetAspect(s.viewport.Aspect())
	s.rig = light.NewRig()

	s.arena = scenegraph.NewArena()
	if err := s.env.Attach(s.arena, scenegraph.Root); err != nil {
		return nil, fmt.Errorf("new scene: %w", err)
	}
	if err := s.model.Attach(s.arena, scenegraph.Root); err != nil {
		return nil, fmt.Errorf("new scene: %w", err)
	}

	// Queue size of 256 accommodates the handful of per-tick tasks with headroom.
	s.workPool = worker.NewDynamicWorkerPool(s.workWorkers, 256, 1*time.Second)
	s.frame.Particles = make([]ParticleBatch, len(s.fields))
	return s, nil
}

func (s *scene) Update(t clock.Time, in Input) (*Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil, ErrReleased
	}
	f := &s.frame
	f.Time, f.Input, f.Viewport = t, in, s.viewport

	// Camera and lighting come first; everything screen-space reads them.
	f.Director = s.dir.Update(t, director.Input{
		Progress: in.Progress,
		Phase:    in.Phase,
		HeroMode: in.HeroMode,
		Zoom:     in.Zoom,
		Pan:      in.Pan,
	})
	s.cam.SetFov(mgl32.DegToRad(f.Director.Fov))
	s.cam.Update()
	f.Camera = s.cam.Uniform()

	f.Construction = s.model.Update(t, in.Phase)
	if err := s.model.Apply(); err != nil {
		return nil, err
	}

	if err := s.advanceIndependent(t); err != nil {
		return nil, err
	}

	f.Environment = s.env.State()
	s.rig.Apply(f.Director.Light, f.Environment)
	f.Light = s.rig.Uniform()
	f.Sky = s.env.Uniform()

	s.post.Update(t, f.Construction.Phase)
	f.Post = s.post.Uniform()
	f.Post.Near, f.Post.Far = f.Camera.Near, f.Camera.Far
	f.Post.OverlayAlpha = f.OverlayAlpha
	f.Passes = s.post.Passes()

	s.arena.Resolve()
	f.Draws = s.arena.DrawList(f.Draws[:0])

	f.Rebuild = s.first || f.Construction.PhaseChanged
	s.first = false
	if f.Rebuild {
		f.ActiveMeshes = append(f.ActiveMeshes[:0], environment.MeshGround)
		f.ActiveMeshes = s.model.ActiveMeshes(f.ActiveMeshes, f.Construction.Phase)
	}

	for i, field := range s.fields {
		b := &f.Particles[i]
		b.Name = field.Params().Name
		b.Uniform = field.Uniform()
		b.Instances = field.Instances(b.Instances[:0])
	}
	f.Clouds, f.Stars = s.env.Sprites(f.Clouds[:0], f.Stars[:0])
	return f, nil
}

// advanceIndependent updates the particle fields and the environment on the worker pool.
// They never read each other, so they run in parallel behind a per-tick barrier.
// Caller must hold the mutex.
func (s *scene) advanceIndependent(t clock.Time) error {
	jobs := make([]func(), 0, len(s.fields)+1)
	for _, field := range s.fields {
		jobs = append(jobs, func() { field.Update(t) })
	}
	jobs = append(jobs, func() { s.env.Update(t) })

	// A WaitGroup provides per-frame barrier sync since pool.Wait() blocks until
	// workers idle-exit which is unsuitable for frame-rate workloads.
	var wg sync.WaitGroup
	var errMu sync.Mutex
	s.taskErrs = s.taskErrs[:0]
	for id, job := range jobs {
		wg.Add(1)
		s.workPool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (res any, err error) {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						err = fmt.Errorf("scene task %d: %v", id, r)
						errMu.Lock()
						s.taskErrs = append(s.taskErrs, err)
						errMu.Unlock()
					}
				}()
				job()
				return nil, nil
			},
		})
	}
	wg.Wait()
	if len(s.taskErrs) > 0 {
		err := errors.Join(s.taskErrs...)
		s.logger.Error("component update failed", "error", err)
		return err
	}
	return nil
}

func (s *scene) Resize(vp common.Viewport) {
	if vp.Empty() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = vp
	s.cam.SetAspect(vp.Aspect())
}

func (s *scene) Meshes() map[string]geometry.Mesh {
	out := s.env.Meshes()
	maps.Copy(out, s.model.Meshes())
	return out
}

func (s *scene) Camera() camera.Camera {
	return s.cam
}

func (s *scene) Director() director.Director {
	return s.dir
}

func (s *scene) Model() construction.Model {
	return s.model
}

func (s *scene) Environment() environment.Environment {
	return s.env
}

func (s *scene) Compositor() postfx.Compositor {
	return s.post
}

func (s *scene) Fields() []particle.Field {
	return slices.Clone(s.fields)
}

func (s *scene) Arena() scenegraph.Arena {
	return s.arena
}

func (s *scene) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dir.Reset()
	s.model.Reset()
	s.post.Reset()
	for _, f := range s.fields {
		f.Reset()
	}
	s.first = true
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.released = true
	s.workPool.Stop()
	s.logger.Debug("scene released")
}
