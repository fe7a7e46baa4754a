package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/clock"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/geometry"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

type fakeTarget struct {
	mu       sync.Mutex
	frames   []scene.Frame
	resizes  []common.Viewport
	released int
	drawErr  error
}

func (t *fakeTarget) Draw(f *scene.Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.drawErr != nil {
		return t.drawErr
	}
	t.frames = append(t.frames, *f)
	return nil
}

func (t *fakeTarget) Resize(vp common.Viewport) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resizes = append(t.resizes, vp)
}

func (t *fakeTarget) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.released++
}

func (t *fakeTarget) last() scene.Frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frames[len(t.frames)-1]
}

type recordingSink struct {
	mu       sync.Mutex
	messages []string
}

func (s *recordingSink) ShowFallback(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, target *fakeTarget, options ...EngineBuilderOption) (Engine, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	base := []EngineBuilderOption{
		WithLogger(quietLogger()),
		WithClock(clock.NewManual(0.1)),
		WithFallbackSink(sink),
		WithSceneOptions(scene.WithSeed(7), scene.WithComputeWorkers(2)),
	}
	if target != nil {
		base = append(base, WithRenderTargetFactory(func(common.Viewport, map[string]geometry.Mesh) (RenderTarget, error) {
			return target, nil
		}))
	}
	e := NewEngine(append(base, options...)...)
	t.Cleanup(e.Unmount)
	return e, sink
}

func TestMissingCapabilityFallsBack(t *testing.T) {
	probeErr := errors.New("no adapter")
	e, sink := newTestEngine(t, nil, WithRenderTargetFactory(func(common.Viewport, map[string]geometry.Mesh) (RenderTarget, error) {
		return nil, probeErr
	}))
	if err := e.Mount(); err != nil {
		t.Fatalf("Mount = %v", err)
	}
	if e.State() != StateFallback {
		t.Fatalf("state = %v", e.State())
	}
	if sink.count() != 1 || sink.messages[0] != FallbackMessage {
		t.Fatalf("fallback messages = %v", sink.messages)
	}
	if e.Scene() != nil {
		t.Fatal("scene kept after fallback")
	}
	if err := e.Tick(); !errors.Is(err, ErrNotLive) {
		t.Fatalf("Tick = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return in fallback")
	}
}

func TestNoFactoryFallsBack(t *testing.T) {
	e, sink := newTestEngine(t, nil)
	if err := e.Mount(); err != nil {
		t.Fatal(err)
	}
	if e.State() != StateFallback || sink.count() != 1 {
		t.Fatalf("state %v, %d messages", e.State(), sink.count())
	}
}

func TestMountUnmount(t *testing.T) {
	target := &fakeTarget{}
	e, _ := newTestEngine(t, target)
	if e.State() != StateIdle {
		t.Fatalf("initial state = %v", e.State())
	}
	if err := e.Mount(); err != nil {
		t.Fatal(err)
	}
	if e.State() != StateLive || e.Scene() == nil {
		t.Fatalf("state = %v", e.State())
	}
	if err := e.Mount(); !errors.Is(err, ErrAlreadyMounted) {
		t.Fatalf("second Mount = %v", err)
	}
	if err := e.Tick(); err != nil {
		t.Fatal(err)
	}

	e.Unmount()
	e.Unmount()
	if e.State() != StateUnmounted {
		t.Fatalf("state = %v", e.State())
	}
	if target.released != 1 {
		t.Fatalf("target released %d times", target.released)
	}
	if err := e.Tick(); !errors.Is(err, ErrNotLive) {
		t.Fatalf("Tick after unmount = %v", err)
	}
}

func TestLoadingOverlayFades(t *testing.T) {
	target := &fakeTarget{}
	e, _ := newTestEngine(t, target, WithLoadingOverlay(0.3, 0.4))
	if err := e.Mount(); err != nil {
		t.Fatal(err)
	}
	// Manual clock steps 0.1s: elapsed 0.1 .. 0.8.
	want := []float32{1, 1, 1, 0.75, 0.5, 0.25, 0, 0}
	for i, w := range want {
		if err := e.Tick(); err != nil {
			t.Fatal(err)
		}
		got := target.last().OverlayAlpha
		if d := got - w; d > 1e-4 || d < -1e-4 {
			t.Fatalf("tick %d: overlay = %v, want %v", i, got, w)
		}
		if target.last().Post.OverlayAlpha != got {
			t.Fatalf("tick %d: post uniform overlay disagrees", i)
		}
	}
}

func TestMobileProbe(t *testing.T) {
	target := &fakeTarget{}
	e, _ := newTestEngine(t, target, WithViewport(common.Viewport{Width: 390, Height: 844}))
	if err := e.Mount(); err != nil {
		t.Fatal(err)
	}
	if !e.Mobile() {
		t.Fatal("narrow viewport not mobile")
	}
	if c := e.Scene().Director().Controls(); c.AutoRotate || c.PanEnabled {
		t.Fatalf("mobile controls = %+v", c)
	}

	wide := common.Viewport{Width: 1920, Height: 1080}
	e.Resize(wide)
	if !e.Mobile() {
		t.Fatal("resize applied before the next tick")
	}
	if err := e.Tick(); err != nil {
		t.Fatal(err)
	}
	if e.Mobile() {
		t.Fatal("wide viewport still mobile")
	}
	if !e.Scene().Director().Controls().AutoRotate {
		t.Fatal("desktop controls not restored")
	}
	if len(target.resizes) != 1 || target.resizes[0] != wide {
		t.Fatalf("target resizes = %v", target.resizes)
	}
	if got := target.last().Viewport; got != wide {
		t.Fatalf("frame viewport = %v", got)
	}
}

func TestContextLostFallsBack(t *testing.T) {
	target := &fakeTarget{}
	e, sink := newTestEngine(t, target)
	if err := e.Mount(); err != nil {
		t.Fatal(err)
	}
	if err := e.Tick(); err != nil {
		t.Fatal(err)
	}
	target.drawErr = common.ErrContextLost
	if err := e.Tick(); !errors.Is(err, common.ErrContextLost) {
		t.Fatalf("Tick = %v", err)
	}
	if e.State() != StateFallback {
		t.Fatalf("state = %v", e.State())
	}
	if sink.count() != 1 || sink.messages[0] != ContextLostMessage {
		t.Fatalf("messages = %v", sink.messages)
	}
	if target.released != 1 {
		t.Fatalf("target released %d times", target.released)
	}
}

func TestRepeatedDrawFailuresFallBack(t *testing.T) {
	target := &fakeTarget{drawErr: errors.New("surface timeout")}
	e, sink := newTestEngine(t, target, WithMaxDrawFailures(3))
	if err := e.Mount(); err != nil {
		t.Fatal(err)
	}
	for i := range 2 {
		if err := e.Tick(); err == nil {
			t.Fatalf("tick %d: no error", i)
		}
		if e.State() != StateLive {
			t.Fatalf("tick %d: fell back early", i)
		}
	}
	_ = e.Tick()
	if e.State() != StateFallback || sink.count() != 1 {
		t.Fatalf("state %v, %d messages", e.State(), sink.count())
	}
}

func TestDrawRecoveryResetsFailures(t *testing.T) {
	transient := errors.New("surface outdated")
	target := &fakeTarget{}
	e, _ := newTestEngine(t, target, WithMaxDrawFailures(2))
	if err := e.Mount(); err != nil {
		t.Fatal(err)
	}
	for _, fail := range []bool{true, false, true, false, true} {
		target.drawErr = nil
		if fail {
			target.drawErr = transient
		}
		_ = e.Tick()
	}
	if e.State() != StateLive {
		t.Fatalf("isolated failures caused %v", e.State())
	}
}

func TestInputReachesFrame(t *testing.T) {
	target := &fakeTarget{}
	e, _ := newTestEngine(t, target)
	if err := e.Mount(); err != nil {
		t.Fatal(err)
	}
	e.SetProgress(0.75)
	e.SetPhase(3)
	e.SetHeroMode(true)
	e.SetZoom(1.2)
	e.SetPan(mgl32.Vec2{1, 0})
	if err := e.Tick(); err != nil {
		t.Fatal(err)
	}
	in := target.last().Input
	if in.Progress != 0.75 || in.Phase != 3 || !in.HeroMode || in.Zoom != 1.2 || in.Pan != (mgl32.Vec2{1, 0}) {
		t.Fatalf("frame input = %+v", in)
	}
	if got := target.last().Construction.Phase; got != 3 {
		t.Fatalf("construction phase = %d", got)
	}
}

func TestRunStopsOnUnmount(t *testing.T) {
	target := &fakeTarget{}
	e, _ := newTestEngine(t, target, WithTickRate(500))
	if err := e.Mount(); err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		target.mu.Lock()
		n := len(target.frames)
		target.mu.Unlock()
		if n >= 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("loop did not tick")
		}
		time.Sleep(5 * time.Millisecond)
	}

	e.Unmount()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
	target.mu.Lock()
	n := len(target.frames)
	target.mu.Unlock()
	time.Sleep(20 * time.Millisecond)
	target.mu.Lock()
	defer target.mu.Unlock()
	if len(target.frames) != n {
		t.Fatal("frames drawn after unmount")
	}
}

func TestRunStopsOnContext(t *testing.T) {
	target := &fakeTarget{}
	e, _ := newTestEngine(t, target, WithTickRate(500))
	if err := e.Mount(); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := e.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run = %v", err)
	}
	if e.State() != StateLive {
		t.Fatalf("state = %v", e.State())
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateIdle, "idle"},
		{StateLive, "live"},
		{StateFallback, "fallback"},
		{StateUnmounted, "unmounted"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d) = %q, want %q", tt.s, got, tt.want)
		}
	}
}
