// Package engine owns the lifecycle of the cinematic scene: mount, the per-tick loop,
// capability and context-loss fallback, the viewport probe, the loading overlay and unmount.
// It talks to the GPU only through the RenderTarget interface so that the whole lifecycle
// runs without a window or a device.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/clock"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/director"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/geometry"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/profiler"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// Fallback panel texts.
const (
	FallbackMessage    = "This device cannot display the interactive 3D view. The building story continues below."
	ContextLostMessage = "The 3D view stopped because the graphics device was lost. The building story continues below."
)

var (
	// ErrNotLive is returned by Tick when the engine is not mounted with a working target.
	ErrNotLive = errors.New("engine: not live")

	// ErrAlreadyMounted is returned by Mount on any call after the first.
	ErrAlreadyMounted = errors.New("engine: already mounted")
)

// State is the lifecycle stage.
type State uint8

const (
	StateIdle      State = iota // created, not mounted
	StateLive                   // mounted with a working render target
	StateFallback               // mounted, showing the static fallback; the loop never runs
	StateUnmounted              // torn down; terminal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLive:
		return "live"
	case StateFallback:
		return "fallback"
	case StateUnmounted:
		return "unmounted"
	}
	return "unknown"
}

// RenderTarget draws frames. Implementations own every GPU resource they allocate and free
// all of them in Release.
type RenderTarget interface {
	// Draw renders one frame. An error wrapping common.ErrContextLost is permanent.
	Draw(f *scene.Frame) error

	// Resize reconfigures the target for a new viewport.
	Resize(vp common.Viewport)

	// Release frees every GPU resource. It is idempotent.
	Release()
}

// RenderTargetFactory is the capability probe: it either returns a working target for the
// viewport and the scene meshes or an error meaning no 3D context is available.
type RenderTargetFactory func(vp common.Viewport, meshes map[string]geometry.Mesh) (RenderTarget, error)

// FallbackSink displays the static fallback panel.
type FallbackSink interface {
	ShowFallback(message string)
}

// FallbackFunc adapts a function to FallbackSink.
type FallbackFunc func(message string)

// ShowFallback calls f(message).
func (f FallbackFunc) ShowFallback(message string) {
	f(message)
}

// Engine is the scene lifecycle.
type Engine interface {
	// Mount creates every component and probes for a render target. When the probe fails the
	// fallback panel is shown and the engine enters StateFallback without holding any GPU
	// resource; that is not an error.
	//
	// Returns:
	//   - error: ErrAlreadyMounted on a second call
	Mount() error

	// Unmount stops the loop before its next tick and releases the render target and the
	// components. It is idempotent.
	Unmount()

	// Run ticks at the configured rate until ctx is done, Unmount is called or the engine
	// falls back. It returns immediately unless the engine is live.
	//
	// Parameters:
	//   - ctx: cancels the loop
	//
	// Returns:
	//   - error: the context error when ctx ended the loop, nil otherwise
	Run(ctx context.Context) error

	// Tick runs one frame: queued resize, input snapshot, scene update and draw.
	//
	// Returns:
	//   - error: ErrNotLive when not live, or the draw failure
	Tick() error

	// State returns the lifecycle stage.
	State() State

	// SetProgress records the scroll progress for the next tick.
	SetProgress(progress float64)

	// SetPhase records the construction phase for the next tick.
	SetPhase(phase int)

	// SetHeroMode records whether the hero section is on screen.
	SetHeroMode(hero bool)

	// SetZoom records the user dolly factor for the next tick.
	SetZoom(zoom float64)

	// SetPan records the user pan offset for the next tick.
	SetPan(pan mgl32.Vec2)

	// Resize queues a viewport change; it is applied at the start of the next tick.
	Resize(vp common.Viewport)

	// Mobile reports whether the last viewport probe selected the mobile policy.
	Mobile() bool

	// Scene returns the mounted scene, or nil when not live.
	Scene() scene.Scene
}

type engine struct {
	mu     *sync.Mutex
	logger *slog.Logger

	factory      RenderTargetFactory
	sink         FallbackSink
	clk          clock.Clock
	sceneOptions []scene.SceneBuilderOption

	tickRate         time.Duration
	loadingDelay     float64 // seconds of fully covered overlay
	fadeDuration     float64 // seconds of overlay fade-out
	mobileBreakpoint int
	maxDrawFailures  int

	profiler         *profiler.Profiler
	profilingEnabled bool

	state    State
	scn      scene.Scene
	target   RenderTarget
	viewport common.Viewport
	mobile   bool
	failures int

	input *scene.InputBuffer

	pendingMu *sync.Mutex
	pending   *common.Viewport

	quit     chan struct{}
	quitOnce sync.Once
	loopDone chan struct{}
}

var _ Engine = &engine{}

// NewEngine creates an idle engine.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:               &sync.Mutex{},
		logger:           slog.Default(),
		tickRate:         time.Second / 60,
		loadingDelay:     1.2,
		fadeDuration:     0.8,
		mobileBreakpoint: 768,
		maxDrawFailures:  3,
		viewport:         common.Viewport{Width: 1280, Height: 720},
		input:            scene.NewInputBuffer(),
		pendingMu:        &sync.Mutex{},
		quit:             make(chan struct{}),
	}
	for _, opt := range options {
		opt(e)
	}
	e.logger = e.logger.With("component", "engine")
	if e.clk == nil {
		e.clk = clock.NewWallClock(clock.DefaultMaxDelta)
	}
	if e.sink == nil {
		e.sink = FallbackFunc(func(message string) {
			e.logger.Warn("fallback panel", "message", message)
		})
	}
	e.profiler = profiler.NewProfiler(e.logger)
	return e
}

func (e *engine) Mount() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateIdle {
		return ErrAlreadyMounted
	}

	e.probeViewport(e.viewport)
	opts := append([]scene.SceneBuilderOption{
		scene.WithLogger(e.logger),
		scene.WithViewport(e.viewport),
	}, e.sceneOptions...)
	scn, err := scene.NewScene(opts...)
	if err != nil {
		e.fallBack(FallbackMessage, fmt.Errorf("mount: %w", err))
		return nil
	}
	scn.Director().SetControls(e.controls())

	if e.factory == nil {
		scn.Release()
		e.fallBack(FallbackMessage, errors.New("mount: no render target factory"))
		return nil
	}
	target, err := e.factory(e.viewport, scn.Meshes())
	if err != nil {
		scn.Release()
		e.fallBack(FallbackMessage, fmt.Errorf("capability probe: %w", err))
		return nil
	}

	e.scn, e.target = scn, target
	e.clk.Reset()
	e.state = StateLive
	e.logger.Info("mounted",
		slog.Int("width", e.viewport.Width),
		slog.Int("height", e.viewport.Height),
		slog.Bool("mobile", e.mobile),
	)
	return nil
}

// fallBack releases whatever is held and shows the panel. Caller must hold the mutex.
func (e *engine) fallBack(message string, cause error) {
	e.releaseHeld()
	e.state = StateFallback
	e.logger.Warn("falling back to static panel", "error", cause)
	e.sink.ShowFallback(message)
}

// releaseHeld frees the render target and the scene. Caller must hold the mutex.
func (e *engine) releaseHeld() {
	if e.target != nil {
		e.target.Release()
		e.target = nil
	}
	if e.scn != nil {
		e.scn.Release()
		e.scn = nil
	}
}

func (e *engine) Unmount() {
	e.quitOnce.Do(func() { close(e.quit) })

	e.mu.Lock()
	done := e.loopDone
	e.mu.Unlock()
	if done != nil {
		<-done
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateUnmounted {
		return
	}
	e.releaseHeld()
	e.state = StateUnmounted
	e.logger.Info("unmounted")
}

func (e *engine) Run(ctx context.Context) (err error) {
	e.mu.Lock()
	if e.state != StateLive || e.loopDone != nil {
		e.mu.Unlock()
		return nil
	}
	done := make(chan struct{})
	e.loopDone = done
	e.mu.Unlock()

	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			e.mu.Lock()
			e.fallBack(FallbackMessage, fmt.Errorf("loop panic: %v", r))
			e.mu.Unlock()
			err = nil
		}
	}()

	ticker := time.NewTicker(e.tickRate)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.quit:
			return nil
		case <-ticker.C:
			if err := e.Tick(); err != nil && e.State() != StateLive {
				return nil
			}
		}
	}
}

func (e *engine) Tick() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateLive {
		return ErrNotLive
	}

	e.applyPendingResize()
	in := e.input.Snapshot()
	t := e.clk.Tick()

	f, err := e.scn.Update(t, in)
	if err != nil {
		e.fallBack(FallbackMessage, fmt.Errorf("scene update: %w", err))
		return err
	}
	f.SetOverlayAlpha(e.overlayAlpha(t.Elapsed))

	if err := e.target.Draw(f); err != nil {
		e.failures++
		if errors.Is(err, common.ErrContextLost) || e.failures >= e.maxDrawFailures {
			e.fallBack(ContextLostMessage, err)
			return err
		}
		e.logger.Warn("frame dropped", "error", err, "consecutive", e.failures)
		return err
	}
	e.failures = 0

	if e.profilingEnabled {
		e.profiler.Tick()
	}
	return nil
}

// overlayAlpha covers the scene fully during the loading delay, then fades out.
func (e *engine) overlayAlpha(elapsed float64) float32 {
	if elapsed < e.loadingDelay {
		return 1
	}
	if e.fadeDuration <= 0 {
		return 0
	}
	return float32(1 - common.Clamp01((elapsed-e.loadingDelay)/e.fadeDuration))
}

// applyPendingResize applies the queued viewport. Caller must hold the mutex.
func (e *engine) applyPendingResize() {
	e.pendingMu.Lock()
	vp := e.pending
	e.pending = nil
	e.pendingMu.Unlock()
	if vp == nil || *vp == e.viewport {
		return
	}
	e.probeViewport(*vp)
	e.scn.Resize(*vp)
	e.scn.Director().SetControls(e.controls())
	e.target.Resize(*vp)
	e.logger.Debug("resized", slog.Int("width", vp.Width), slog.Int("height", vp.Height), slog.Bool("mobile", e.mobile))
}

// probeViewport records the viewport and reruns the mobile probe. Caller must hold the mutex.
func (e *engine) probeViewport(vp common.Viewport) {
	e.viewport = vp
	e.mobile = vp.Width < e.mobileBreakpoint
}

func (e *engine) controls() director.Controls {
	if e.mobile {
		return director.MobileControls()
	}
	return director.DesktopControls()
}

func (e *engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *engine) SetProgress(progress float64) {
	e.input.SetProgress(progress)
}

func (e *engine) SetPhase(phase int) {
	e.input.SetPhase(phase)
}

func (e *engine) SetHeroMode(hero bool) {
	e.input.SetHeroMode(hero)
}

func (e *engine) SetZoom(zoom float64) {
	e.input.SetZoom(zoom)
}

func (e *engine) SetPan(pan mgl32.Vec2) {
	e.input.SetPan(pan)
}

func (e *engine) Resize(vp common.Viewport) {
	if vp.Empty() {
		return
	}
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	e.pending = &vp
}

func (e *engine) Mobile() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mobile
}

func (e *engine) Scene() scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scn
}
