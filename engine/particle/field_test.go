package particle

import (
	"math"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/oxy-cinematic/engine/clock"
)

func checkContained(t *testing.T, f Field, tick int) {
	t.Helper()
	p := f.Params()
	for i, pos := range f.Positions(nil) {
		y := float64(pos.Y())
		if y < p.Floor() || y > p.Ceiling() {
			t.Fatalf("%s tick %d particle %d at height %v outside [%v, %v]", p.Name, tick, i, y, p.Floor(), p.Ceiling())
		}
		limit := p.Spread * wrapFactor
		if math.Abs(float64(pos.X())) > limit+1e-5 || math.Abs(float64(pos.Z())) > limit+1e-5 {
			t.Fatalf("%s tick %d particle %d escaped horizontally: %v", p.Name, tick, i, pos)
		}
	}
}

func TestParticlesStayContained(t *testing.T) {
	for _, params := range []Params{Motes(), Dust(), Sparkles()} {
		t.Run(params.Name, func(t *testing.T) {
			f := NewField(params, WithSeed(7))
			checkContained(t, f, 0)
			c := clock.NewManual(1.0/60, 5, 30, 0.001)
			for tick := 1; tick <= 5000; tick++ {
				f.Update(c.Tick())
				if tick%250 == 0 || tick <= 3 {
					checkContained(t, f, tick)
				}
			}
			if f.Reinjected() == 0 {
				t.Fatal("no particle was ever reinjected")
			}
		})
	}
}

func TestHugeDeltaReinjects(t *testing.T) {
	f := NewField(Sparkles(), WithSeed(3))
	c := clock.NewManual(0)
	f.Update(c.Advance(1e6))
	checkContained(t, f, 1)
	if f.Reinjected() != uint64(f.Count()) {
		t.Fatalf("reinjected %d of %d", f.Reinjected(), f.Count())
	}
}

func TestFieldIsDeterministicPerSeed(t *testing.T) {
	run := func(seed uint64) []GPUParticle {
		f := NewField(Motes(), WithSeed(seed))
		c := clock.NewManual(1.0 / 60)
		for range 600 {
			f.Update(c.Tick())
		}
		return f.Instances(nil)
	}
	a, b := run(11), run(11)
	if !slices.Equal(a, b) {
		t.Fatal("same seed produced different fields")
	}
	if slices.Equal(a, run(12)) {
		t.Fatal("different seeds produced identical fields")
	}
}

func TestParticlesRiseAndDrift(t *testing.T) {
	f := NewField(Params{Name: "probe", Count: 50, Size: 0.1, Spread: 100, Speed: 1, Opacity: 1}, WithSeed(5))
	before := f.Positions(nil)
	c := clock.NewManual(0.1)
	for range 10 {
		f.Update(c.Tick())
	}
	after := f.Positions(nil)
	moved := 0
	for i := range before {
		if float64(before[i].Y()) > f.Params().Ceiling()-2 {
			continue
		}
		if after[i].Y() <= before[i].Y() {
			t.Fatalf("particle %d did not rise: %v -> %v", i, before[i], after[i])
		}
		if after[i].X() != before[i].X() {
			moved++
		}
	}
	if moved == 0 {
		t.Fatal("no horizontal drift")
	}
}

func TestPresetsShareOneMechanism(t *testing.T) {
	names := PresetNames()
	if len(names) != 3 {
		t.Fatalf("presets = %v", names)
	}
	for _, n := range names {
		p, ok := Preset(n)
		if !ok || p.Name != n {
			t.Fatalf("Preset(%q) = %+v, %v", n, p, ok)
		}
		if f := NewField(p); f.Count() != p.Count {
			t.Fatalf("%s: count %d, want %d", n, f.Count(), p.Count)
		}
	}
	if _, ok := Preset("smoke"); ok {
		t.Fatal("unknown preset accepted")
	}
	if Sparkles().Size <= Dust().Size {
		t.Fatal("sparkles should be coarser than dust")
	}
}

func TestDegenerateParams(t *testing.T) {
	f := NewField(Params{Count: -4, Spread: math.NaN(), Speed: math.Inf(1)})
	if f.Count() != 0 {
		t.Fatalf("count = %d", f.Count())
	}
	f.Update(clock.Time{Delta: 1, Elapsed: 1})
	if p := f.Params(); p.Spread != 1 {
		t.Fatalf("spread = %v", p.Spread)
	}
}

func TestResetRestoresInitialDistribution(t *testing.T) {
	f := NewField(Dust(), WithSeed(9))
	initial := f.Instances(nil)
	c := clock.NewManual(0.5)
	for range 20 {
		f.Update(c.Tick())
	}
	f.Reset()
	if !slices.Equal(initial, f.Instances(nil)) || f.Reinjected() != 0 {
		t.Fatal("Reset did not restore the seeded field")
	}
}

func TestUniformMarshal(t *testing.T) {
	u := NewField(Motes()).Uniform()
	if len(u.Marshal()) != 32 {
		t.Fatalf("uniform is %d bytes", len(u.Marshal()))
	}
	if GPUParticleSize != 16 {
		t.Fatalf("instance stride = %d", GPUParticleSize)
	}
}

func TestHeightInRoundsInward(t *testing.T) {
	tests := []struct {
		name   string
		y      float64
		spread float64
	}{
		{name: "floor of spread 12", y: -1.2, spread: 12},
		{name: "floor of spread 0.7", y: -0.07, spread: 0.7},
		{name: "ceiling of spread 0.7", y: 0.35, spread: 0.7},
		{name: "below floor", y: -100, spread: 12},
		{name: "above ceiling", y: 100, spread: 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Params{Spread: tt.spread}
			got := float64(heightIn(tt.y, p.Floor(), p.Ceiling()))
			if got < p.Floor() || got > p.Ceiling() {
				t.Fatalf("heightIn(%v) = %v outside [%v, %v]", tt.y, got, p.Floor(), p.Ceiling())
			}
		})
	}
}

func TestWideFieldStaysAboveFloor(t *testing.T) {
	params := Dust()
	params.Spread = 12
	params.Speed = 0
	f := NewField(params, WithSeed(11))
	c := clock.NewManual(1.0 / 60)
	for tick := 0; tick <= 600; tick++ {
		checkContained(t, f, tick)
		f.Update(c.Tick())
	}
}
