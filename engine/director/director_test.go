package director

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-cinematic/engine/clock"
	"github.com/go-gl/mathgl/mgl32"
)

const frame = 1.0 / 60

func run(d Director, c *clock.Manual, in Input, ticks int) State {
	var s State
	for range ticks {
		s = d.Update(c.Tick(), in)
	}
	return s
}

func TestSegmentIndexStaysInBounds(t *testing.T) {
	for n := 2; n <= 8; n++ {
		for i := 0; i <= 1000; i++ {
			p := float64(i) / 1000
			seg, local := SegmentIndex(p, n)
			if seg < 0 || seg > n-2 {
				t.Fatalf("n=%d p=%v: segment %d out of [0,%d]", n, p, seg, n-2)
			}
			if local < 0 || local > 1 {
				t.Fatalf("n=%d p=%v: local %v out of [0,1]", n, p, local)
			}
		}
		if seg, local := SegmentIndex(1, n); seg != n-2 || local != 1 {
			t.Fatalf("n=%d p=1: got (%d, %v), want (%d, 1)", n, seg, local, n-2)
		}
		if seg, local := SegmentIndex(0, n); seg != 0 || local != 0 {
			t.Fatalf("n=%d p=0: got (%d, %v)", n, seg, local)
		}
	}
	for _, p := range []float64{-3, 7, math.NaN(), math.Inf(1)} {
		if seg, _ := SegmentIndex(p, 5); seg < 0 || seg > 3 {
			t.Fatalf("p=%v: segment %d", p, seg)
		}
	}
}

func TestSampleEndpointsAndDegeneratePaths(t *testing.T) {
	kf := DefaultKeyframes()
	first, _, _ := Sample(kf, 0)
	if first.Position != kf[0].Position || first.Fov != kf[0].Fov {
		t.Fatalf("p=0 sampled %+v", first)
	}
	last, seg, _ := Sample(kf, 1)
	if !last.Position.ApproxEqual(kf[len(kf)-1].Position) || seg != len(kf)-2 {
		t.Fatalf("p=1 sampled %+v in segment %d", last, seg)
	}

	single := []Keyframe{{Position: mgl32.Vec3{1, 2, 3}, LookAt: mgl32.Vec3{0, 1, 0}, Fov: 60}}
	for _, p := range []float64{0, 0.5, 1} {
		pose, seg, eased := Sample(single, p)
		if pose.Position != single[0].Position || seg != 0 || eased != 0 {
			t.Fatalf("single keyframe p=%v sampled %+v", p, pose)
		}
	}
	if pose, _, _ := Sample(nil, 0.5); pose != (Pose{}) {
		t.Fatalf("empty path sampled %+v", pose)
	}
}

func TestColdStartSettlesOnFirstKeyframe(t *testing.T) {
	d := NewDirector()
	c := clock.NewManual(frame)
	s := run(d, c, Input{Progress: 0, Phase: 0}, 1200)

	if s.Mode != ModePath {
		t.Fatalf("mode = %v", s.Mode)
	}
	want := DefaultKeyframes()[0]
	// Breathing keeps the eye within its amplitude of the keyframe.
	if dist := s.Position.Sub(want.Position).Len(); dist > 0.25 {
		t.Fatalf("eye %v is %v from first keyframe", s.Position, dist)
	}
	if s.LookAt != want.LookAt || s.Fov != want.Fov {
		t.Fatalf("look-at %v fov %v", s.LookAt, s.Fov)
	}
	if d.Position() != s.Position || d.Target() != s.LookAt {
		t.Fatal("controller view disagrees with state")
	}
}

func TestMidCampaignInterpolatesSegment(t *testing.T) {
	d := NewDirector(WithBreathing(Breathing{}))
	c := clock.NewManual(frame)
	s := run(d, c, Input{Progress: 0.5, Phase: 2}, 1200)

	kf := DefaultKeyframes()
	wantSeg := int(math.Floor(0.5 * float64(len(kf)-1)))
	if s.Segment != wantSeg {
		t.Fatalf("segment = %d, want %d", s.Segment, wantSeg)
	}
	if !s.Position.ApproxEqualThreshold(kf[2].Position, 1e-3) {
		t.Fatalf("eye = %v, want %v", s.Position, kf[2].Position)
	}
}

func TestModeSwitchNeverPops(t *testing.T) {
	d := NewDirector()
	c := clock.NewManual(frame)
	run(d, c, Input{Progress: 0, HeroMode: true}, 300)
	if st := d.State(); st.Mode != ModeOrbit {
		t.Fatalf("hero at p=0 should orbit, got %v", st.Mode)
	}

	inputs := []Input{
		{Progress: 1, Phase: 4},
		{Progress: 0, Phase: 0, HeroMode: true},
		{Progress: 0.6, Phase: 3},
		{Progress: 0.01, HeroMode: true},
	}
	prev := d.Position()
	for _, in := range inputs {
		for range 90 {
			tm := c.Tick()
			s := d.Update(tm, in)
			step := float64(s.Position.Sub(prev).Len())
			if bound := d.MaxStep(tm.Delta); step > bound+1e-4 {
				t.Fatalf("input %+v: step %v exceeds bound %v", in, step, bound)
			}
			prev = s.Position
		}
	}
}

func TestOrbitIgnoresScrollAndRespectsAutoRotate(t *testing.T) {
	a := NewDirector(WithControls(MobileControls()))
	b := NewDirector(WithControls(MobileControls()))
	ca, cb := clock.NewManual(frame), clock.NewManual(frame)
	sa := run(a, ca, Input{Progress: 0.01, HeroMode: true}, 200)
	sb := run(b, cb, Input{Progress: 0.04, HeroMode: true}, 200)
	if sa.Target.Position != sb.Target.Position {
		t.Fatalf("orbit target depends on scroll: %v vs %v", sa.Target.Position, sb.Target.Position)
	}
	// Without auto-rotate the angle stays at 0, so only the bob moves the eye.
	if sa.Target.Position.Z() != 0 {
		t.Fatalf("orbit rotated with auto-rotate off: %v", sa.Target.Position)
	}

	r := NewDirector()
	cr := clock.NewManual(frame)
	sr := run(r, cr, Input{HeroMode: true}, 200)
	if sr.Target.Position.Z() == 0 {
		t.Fatal("orbit did not rotate with auto-rotate on")
	}
}

func TestLightRigSmoothsAndClampsPhase(t *testing.T) {
	d := NewDirector()
	c := clock.NewManual(frame)
	moods := DefaultMoods()

	s := d.Update(c.Tick(), Input{Phase: -3})
	if s.Phase != 0 || s.Light.SunIntensity != moods[0].SunIntensity {
		t.Fatalf("phase -3 gave phase %d intensity %v", s.Phase, s.Light.SunIntensity)
	}

	s = d.Update(c.Tick(), Input{Phase: 9})
	if s.Phase != 4 {
		t.Fatalf("phase 9 clamped to %d", s.Phase)
	}
	if s.Light.SunIntensity == moods[4].SunIntensity {
		t.Fatal("light snapped to the new mood")
	}
	if s.Light.SunIntensity <= moods[0].SunIntensity {
		t.Fatal("light did not move toward the new mood")
	}

	s = run(d, c, Input{Phase: 4}, 1200)
	if s.Light.SunIntensity != moods[4].SunIntensity || s.Light.SunColor != moods[4].SunColor {
		t.Fatalf("light settled at %+v, want mood %+v", s.Light, moods[4])
	}
	if s.Light.SunPosition != moods[4].SunPosition {
		t.Fatalf("sun at %v", s.Light.SunPosition)
	}
}

func TestAmbientAndHemisphereBreathe(t *testing.T) {
	d := NewDirector()
	c := clock.NewManual(0.5)
	seen := map[float32]bool{}
	hemi := map[float32]bool{}
	for range 20 {
		s := d.Update(c.Tick(), Input{Phase: 2})
		seen[s.Light.Ambient] = true
		hemi[s.Light.Hemisphere] = true
		b := DefaultLightBreathing()
		if math.Abs(float64(s.Light.Hemisphere)-b.HemisphereBase) > b.HemisphereAmplitude+1e-6 {
			t.Fatalf("hemisphere %v outside breathing band", s.Light.Hemisphere)
		}
	}
	if len(seen) < 10 || len(hemi) < 10 {
		t.Fatalf("lights are static: %d ambient values, %d hemisphere values", len(seen), len(hemi))
	}
}

func TestFovSmoothsTowardTarget(t *testing.T) {
	d := NewDirector()
	c := clock.NewManual(frame)
	d.Update(c.Tick(), Input{Progress: 0})
	s := d.Update(c.Tick(), Input{Progress: 1})
	kf := DefaultKeyframes()
	if s.Fov == kf[len(kf)-1].Fov || s.Fov == kf[0].Fov {
		t.Fatalf("fov %v did not smooth", s.Fov)
	}
	s = run(d, c, Input{Progress: 1}, 1200)
	if s.Fov != kf[len(kf)-1].Fov {
		t.Fatalf("fov settled at %v", s.Fov)
	}
}

func TestNonFiniteInputIsSanitized(t *testing.T) {
	d := NewDirector()
	c := clock.NewManual(frame)
	s := d.Update(c.Tick(), Input{Progress: math.NaN(), Zoom: math.Inf(1)})
	if s.Progress != 0 {
		t.Fatalf("NaN progress became %v", s.Progress)
	}
	for i := range 3 {
		if f := float64(s.Position[i]); math.IsNaN(f) || math.IsInf(f, 0) {
			t.Fatalf("eye not finite: %v", s.Position)
		}
	}
}

func TestControls(t *testing.T) {
	desk, mob := DesktopControls(), MobileControls()
	tests := []struct {
		name string
		c    Controls
		in   float64
		want float64
	}{
		{"desktop zero means none", desk, 0, 1},
		{"desktop clamps low", desk, 0.1, 0.6},
		{"desktop clamps high", desk, 5, 1.6},
		{"mobile narrow band", mob, 1.5, 1.1},
		{"nan means none", mob, math.NaN(), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.ZoomFactor(tt.in); got != tt.want {
				t.Fatalf("ZoomFactor(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
	if off := mob.PanOffset(mgl32.Vec2{3, 3}); off != (mgl32.Vec2{}) {
		t.Fatalf("mobile pan = %v", off)
	}
	if off := desk.PanOffset(mgl32.Vec2{30, 40}); math.Abs(float64(off.Len())-desk.PanLimit) > 1e-4 {
		t.Fatalf("desktop pan length %v, want %v", off.Len(), desk.PanLimit)
	}
}
