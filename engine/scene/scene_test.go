package scene

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/clock"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/construction"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/director"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/environment"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/particle"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/scenegraph"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestScene(t *testing.T, options ...SceneBuilderOption) Scene {
	t.Helper()
	s, err := NewScene(append([]SceneBuilderOption{WithLogger(testLogger()), WithSeed(3)}, options...)...)
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	t.Cleanup(s.Release)
	return s
}

func run(t *testing.T, s Scene, c clock.Clock, in Input, ticks int) *Frame {
	t.Helper()
	var f *Frame
	var err error
	for range ticks {
		if f, err = s.Update(c.Tick(), in); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}
	return f
}

func drawn(f *Frame) map[string]scenegraph.DrawItem {
	out := map[string]scenegraph.DrawItem{}
	for _, d := range f.Draws {
		out[d.Mesh] = d
	}
	return out
}

func TestColdStart(t *testing.T) {
	s := newTestScene(t)
	f := run(t, s, clock.NewManual(1.0/60), Input{Progress: 0, Phase: 0}, 120)

	first := director.DefaultKeyframes()[0].Position
	if d := f.Director.Position.Sub(first).Len(); d > 0.5 {
		t.Fatalf("camera %v is %v from the first keyframe %v", f.Director.Position, d, first)
	}
	if f.Camera.Position != f.Director.Position {
		t.Fatal("camera uniform does not follow the director")
	}

	items := drawn(f)
	outline, ok := items[construction.MeshOutline]
	if !ok || outline.Opacity != 1 {
		t.Fatalf("outline = %+v, present %v", outline, ok)
	}
	for _, mesh := range []string{construction.MeshFoundation, construction.MeshStructure, construction.MeshExterior, construction.MeshMinaret, construction.MeshOrnament} {
		if _, ok := items[mesh]; ok {
			t.Fatalf("%s drawn at phase 0", mesh)
		}
	}
	if _, ok := items[environment.MeshGround]; !ok {
		t.Fatal("ground not drawn")
	}
}

func TestMidCampaign(t *testing.T) {
	s := newTestScene(t)
	f := run(t, s, clock.NewManual(1.0/60), Input{Progress: 0.5, Phase: 2}, 600)

	n := len(s.Director().Keyframes())
	if want := int(0.5 * float64(n-1)); f.Director.Segment != want {
		t.Fatalf("segment = %d, want %d", f.Director.Segment, want)
	}
	c := f.Construction
	for _, id := range []construction.AssemblyID{construction.Foundation, construction.Structure} {
		if lp := c.Assembly(id).LocalProgress; lp < 0.999 {
			t.Fatalf("%s local progress %v", id, lp)
		}
	}
	if lp := c.Assembly(construction.Exterior).LocalProgress; lp != 0 {
		t.Fatalf("exterior local progress %v", lp)
	}
}

func TestCompletion(t *testing.T) {
	s := newTestScene(t)
	f := run(t, s, clock.NewManual(1.0/60), Input{Progress: 1, Phase: 4}, 900)

	for _, a := range f.Construction.Assemblies {
		if a.ID != construction.Outline && a.LocalProgress < 0.999 {
			t.Fatalf("%s local progress %v", a.ID, a.LocalProgress)
		}
	}
	items := drawn(f)
	if _, ok := items[construction.MeshOutline]; ok {
		t.Fatal("outline drawn at completion")
	}
	if _, ok := items[construction.MeshOrnament]; !ok {
		t.Fatal("ornament missing at completion")
	}
	if !slices.Contains(s.Compositor().Passes(), f.Passes[len(f.Passes)-1]) {
		t.Fatal("frame passes disagree with the compositor")
	}
}

func TestRebuildOnlyOnPhaseChange(t *testing.T) {
	s := newTestScene(t)
	c := clock.NewManual(1.0 / 60)
	want := []bool{true, false, false, true, false}
	phases := []int{0, 0, 0, 3, 3}
	for i, phase := range phases {
		f, err := s.Update(c.Tick(), Input{Phase: phase, Progress: common.ProgressForPhase(phase)})
		if err != nil {
			t.Fatal(err)
		}
		if f.Rebuild != want[i] {
			t.Fatalf("tick %d: rebuild = %v, want %v", i, f.Rebuild, want[i])
		}
		if f.Rebuild && !slices.Contains(f.ActiveMeshes, environment.MeshGround) {
			t.Fatalf("tick %d: active meshes %v lack the ground", i, f.ActiveMeshes)
		}
	}
}

func TestMalformedInputIsClamped(t *testing.T) {
	s := newTestScene(t)
	c := clock.NewManual(1.0 / 60)
	for _, in := range []Input{
		{Progress: -3, Phase: -9},
		{Progress: 42, Phase: 99},
		{Progress: math.NaN(), Phase: 2, Zoom: math.NaN()},
	} {
		f, err := s.Update(c.Tick(), in)
		if err != nil {
			t.Fatalf("input %+v: %v", in, err)
		}
		if p := f.Director.Progress; p < 0 || p > 1 {
			t.Fatalf("progress %v escaped [0, 1]", p)
		}
		if ph := f.Construction.Phase; ph < 0 || ph > 4 {
			t.Fatalf("phase %d escaped [0, 4]", ph)
		}
	}
}

func TestSeededScenesAgree(t *testing.T) {
	a, b := newTestScene(t), newTestScene(t)
	ca, cb := clock.NewManual(1.0/30), clock.NewManual(1.0/30)
	in := Input{Progress: 0.3, Phase: 1}
	fa, fb := run(t, a, ca, in, 60), run(t, b, cb, in, 60)
	if len(fa.Particles) != 3 {
		t.Fatalf("particle batches = %d", len(fa.Particles))
	}
	for i := range fa.Particles {
		if !slices.Equal(fa.Particles[i].Instances, fb.Particles[i].Instances) {
			t.Fatalf("batch %s differs between equally seeded scenes", fa.Particles[i].Name)
		}
	}
	if !slices.Equal(fa.Stars, fb.Stars) || !slices.Equal(fa.Clouds, fb.Clouds) {
		t.Fatal("environment sprites differ")
	}
}

func TestResizeUpdatesAspect(t *testing.T) {
	s := newTestScene(t)
	s.Resize(common.Viewport{Width: 800, Height: 400})
	if got := s.Camera().Aspect(); got != 2 {
		t.Fatalf("aspect = %v", got)
	}
	s.Resize(common.Viewport{})
	if got := s.Camera().Aspect(); got != 2 {
		t.Fatalf("empty viewport changed aspect to %v", got)
	}
}

type panicField struct {
	particle.Field
}

func (panicField) Update(clock.Time) {
	panic("boom")
}

func TestComponentPanicSurfacesAsError(t *testing.T) {
	s := newTestScene(t, WithFields(panicField{particle.NewField(particle.Dust())}))
	if _, err := s.Update(clock.Time{Delta: 0.016}, Input{}); err == nil {
		t.Fatal("panic in a field update was swallowed")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	s := newTestScene(t)
	s.Release()
	s.Release()
	if _, err := s.Update(clock.Time{}, Input{}); !errors.Is(err, ErrReleased) {
		t.Fatalf("Update after Release = %v", err)
	}
}

func TestInputBuffer(t *testing.T) {
	b := NewInputBuffer()
	b.SetProgress(0.4)
	b.SetPhase(2)
	b.SetHeroMode(true)
	b.SetZoom(1.2)
	got := b.Snapshot()
	if got.Progress != 0.4 || got.Phase != 2 || !got.HeroMode || got.Zoom != 1.2 {
		t.Fatalf("snapshot = %+v", got)
	}
	b.Set(Input{})
	if b.Snapshot() != (Input{}) {
		t.Fatal("Set did not replace the snapshot")
	}
}

func TestFrameOverlay(t *testing.T) {
	var f Frame
	f.SetOverlayAlpha(2)
	if f.OverlayAlpha != 1 || f.Post.OverlayAlpha != 1 {
		t.Fatalf("overlay = %v / %v", f.OverlayAlpha, f.Post.OverlayAlpha)
	}
}
