package postfx

import (
	"math"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/oxy-cinematic/engine/clock"
)

func TestDefaultChainOrder(t *testing.T) {
	c := NewCompositor()
	want := []Effect{EffectBloom, EffectVignette, EffectChromaticAberration}
	if got := c.Effects(); !slices.Equal(got, want) {
		t.Fatalf("effects = %v, want %v", got, want)
	}
	wantPasses := []Pass{PassBrightExtract, PassBlurHorizontal, PassBlurVertical, PassComposite}
	if got := c.Passes(); !slices.Equal(got, wantPasses) {
		t.Fatalf("passes = %v, want %v", got, wantPasses)
	}
}

func TestDepthOfFieldIsOptIn(t *testing.T) {
	c := NewCompositor(WithDepthOfField(true))
	effects := c.Effects()
	if effects[len(effects)-1] != EffectDepthOfField {
		t.Fatalf("depth of field not last: %v", effects)
	}
	passes := c.Passes()
	if passes[len(passes)-1] != PassDepthOfField {
		t.Fatalf("passes = %v", passes)
	}
}

func TestBloomOffDropsItsPasses(t *testing.T) {
	p := DefaultParams()
	p.BloomEnabled = false
	c := NewCompositor(WithParams(p))
	if got := c.Passes(); !slices.Equal(got, []Pass{PassComposite}) {
		t.Fatalf("passes = %v", got)
	}
	c.Update(clock.Time{}, 4)
	if u := c.Uniform(); u.BloomIntensity != 0 {
		t.Fatalf("disabled bloom has intensity %v", u.BloomIntensity)
	}
}

func TestBloomRisesWithPhaseSmoothly(t *testing.T) {
	p := DefaultParams()
	c := NewCompositor()
	first := c.Update(clock.Time{}, 0)
	if math.Abs(float64(first.BloomIntensity)-p.BloomBase) > 1e-6 {
		t.Fatalf("phase 0 bloom = %v", first.BloomIntensity)
	}

	mc := clock.NewManual(1.0 / 60)
	prev := first.BloomIntensity
	target := float32(p.BloomBase + 4*p.BloomPerPhase)
	for range 600 {
		s := c.Update(mc.Tick(), 4)
		if s.BloomIntensity < prev {
			t.Fatal("bloom fell while rising toward a higher target")
		}
		if s.BloomIntensity-prev > 0.05 {
			t.Fatalf("bloom jumped by %v in one tick", s.BloomIntensity-prev)
		}
		prev = s.BloomIntensity
	}
	if math.Abs(float64(prev-target)) > 1e-3 {
		t.Fatalf("bloom settled at %v, want %v", prev, target)
	}
	if s := c.State(); s.VignetteDarkness >= float32(p.VignetteBase) {
		t.Fatalf("vignette did not ease at phase 4: %v", s.VignetteDarkness)
	}
}

func TestPhaseIsClamped(t *testing.T) {
	c := NewCompositor()
	if s := c.Update(clock.Time{}, 99); s.Phase != 4 {
		t.Fatalf("phase = %d", s.Phase)
	}
	c.Reset()
	if s := c.Update(clock.Time{}, -7); s.Phase != 0 {
		t.Fatalf("phase = %d", s.Phase)
	}
}

func TestUniformLayout(t *testing.T) {
	c := NewCompositor()
	u := c.Uniform()
	if len(u.Marshal()) != 64 {
		t.Fatalf("uniform is %d bytes", len(u.Marshal()))
	}
	if u.ChromaticOffset != 0.0015 || u.BloomThreshold != 0.8 {
		t.Fatalf("uniform = %+v", u)
	}
	for _, e := range []Effect{EffectBloom, EffectVignette, EffectChromaticAberration, EffectDepthOfField} {
		if e.String() == "unknown" {
			t.Fatalf("effect %d has no name", e)
		}
	}
}

func TestBadDeltaKeepsState(t *testing.T) {
	c := NewCompositor()
	want := c.Update(clock.Time{}, 0)
	for _, dt := range []float64{math.NaN(), math.Inf(-1), -1} {
		got := c.Update(clock.Time{Delta: dt}, 4)
		if got.BloomIntensity != want.BloomIntensity || got.VignetteDarkness != want.VignetteDarkness {
			t.Fatalf("delta %v moved the state to %+v, want %+v", dt, got, want)
		}
	}
}
