package environment

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-cinematic/engine/clock"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/scenegraph"
)

func TestEnvironmentIsDeterministic(t *testing.T) {
	run := func() State {
		e := NewEnvironment(WithSeed(42))
		c := clock.NewManual(1.0/60, 0.5, 3, 0)
		for range 300 {
			e.Update(c.Tick())
		}
		return e.State()
	}
	a, b := run(), run()
	if a.Ambient != b.Ambient || len(a.Clouds) != len(b.Clouds) || len(a.Stars) != len(b.Stars) {
		t.Fatal("same seed and deltas produced different environments")
	}
	for i := range a.Clouds {
		if a.Clouds[i] != b.Clouds[i] {
			t.Fatalf("cloud %d differs: %v vs %v", i, a.Clouds[i], b.Clouds[i])
		}
	}
	for i := range a.Stars {
		if a.Stars[i] != b.Stars[i] {
			t.Fatalf("star %d differs", i)
		}
	}
}

func TestCloudsDriftAndWrap(t *testing.T) {
	p := DefaultParams()
	e := NewEnvironment(WithSeed(1))
	start := e.State().Clouds

	e.Update(clock.Time{Elapsed: 1})
	moved := e.State().Clouds
	for i := range start {
		if moved[i].Position.X() == start[i].Position.X() {
			t.Fatalf("cloud %d did not drift", i)
		}
		if moved[i].Position.Y() != start[i].Position.Y() || moved[i].Position.Z() != start[i].Position.Z() {
			t.Fatalf("cloud %d left its drift lane", i)
		}
	}

	for _, elapsed := range []float64{10, 1e3, 1e5, 1e7} {
		e.Update(clock.Time{Elapsed: elapsed})
		for i, c := range e.State().Clouds {
			if x := float64(c.Position.X()); x < -p.CloudBound || x > p.CloudBound {
				t.Fatalf("elapsed %v: cloud %d at x=%v outside the wrap bound", elapsed, i, x)
			}
		}
	}
}

func TestStarsTwinkleWithinRange(t *testing.T) {
	p := DefaultParams()
	e := NewEnvironment(WithSeed(8))
	lo, hi := float32(1-2*p.TwinkleAmplitude)-1e-5, float32(1)+1e-5
	changed := false
	first := e.State().Stars
	for step := range 200 {
		e.Update(clock.Time{Elapsed: float64(step) * 0.1})
		for i, s := range e.State().Stars {
			if s.Brightness < lo || s.Brightness > hi {
				t.Fatalf("star %d brightness %v outside [%v, %v]", i, s.Brightness, lo, hi)
			}
			r := float64(s.Position.Len())
			if math.Abs(r-p.StarRadius) > 1e-3 || s.Position.Y() <= 0 {
				t.Fatalf("star %d off the upper hemisphere: %v", i, s.Position)
			}
			if s.Brightness != first[i].Brightness {
				changed = true
			}
		}
	}
	if !changed {
		t.Fatal("stars never twinkled")
	}
}

func TestAmbientBreathes(t *testing.T) {
	p := DefaultParams()
	e := NewEnvironment()
	seen := map[float32]bool{}
	for step := range 50 {
		e.Update(clock.Time{Elapsed: float64(step) * 0.3})
		a := e.State().Ambient
		if math.Abs(float64(a)-p.AmbientBase) > p.AmbientAmplitude+1e-6 {
			t.Fatalf("ambient %v strays beyond the breathing amplitude", a)
		}
		seen[a] = true
	}
	if len(seen) < 2 {
		t.Fatal("ambient is static")
	}
}

func TestNonFiniteElapsedKeepsLastState(t *testing.T) {
	e := NewEnvironment()
	e.Update(clock.Time{Elapsed: 2})
	before := e.State()
	e.Update(clock.Time{Elapsed: math.NaN()})
	if after := e.State(); after.Elapsed != before.Elapsed || after.Ambient != before.Ambient {
		t.Fatalf("NaN elapsed changed the state: %v -> %v", before.Elapsed, after.Elapsed)
	}
}

func TestSanitizedParams(t *testing.T) {
	p := DefaultParams()
	p.CloudCount = -3
	p.CloudBound = 0
	p.FogNear, p.FogFar = 50, 10
	p.TwinkleAmplitude = 2
	e := NewEnvironment(WithParams(p))
	got := e.Params()
	if got.CloudCount != 0 || got.CloudBound <= 0 || got.FogFar <= got.FogNear || got.TwinkleAmplitude > 0.5 {
		t.Fatalf("params not repaired: %+v", got)
	}
	if len(e.State().Clouds) != 0 {
		t.Fatal("negative cloud count produced clouds")
	}
}

func TestGroundAttachesFlushWithOrigin(t *testing.T) {
	e := NewEnvironment()
	arena := scenegraph.NewArena()
	if err := e.Attach(arena, scenegraph.Root); err != nil {
		t.Fatal(err)
	}
	arena.Resolve()
	items := arena.DrawList(nil)
	if len(items) != 1 || items[0].Mesh != MeshGround {
		t.Fatalf("draw list = %+v", items)
	}
	mesh := e.Meshes()[MeshGround]
	_, hi := mesh.Bounds()
	top := items[0].World.Mul4x1(hi.Vec4(1)).Y()
	if math.Abs(float64(top)) > 1e-5 {
		t.Fatalf("ground top at y=%v", top)
	}
}

func TestSpritesAndUniform(t *testing.T) {
	p := DefaultParams()
	e := NewEnvironment()
	clouds, stars := e.Sprites(nil, nil)
	if len(clouds) != p.CloudCount || len(stars) != p.StarCount {
		t.Fatalf("sprites = %d clouds, %d stars", len(clouds), len(stars))
	}
	u := e.Uniform()
	if len(u.Marshal()) != 48 || u.FogNear != p.FogNear || u.FogFar != p.FogFar {
		t.Fatalf("uniform = %+v", u)
	}
	if GPUSpriteSize != 32 {
		t.Fatalf("sprite stride = %d", GPUSpriteSize)
	}
}
