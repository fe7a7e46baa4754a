package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestClamp01SanitizesNonFinite(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"inside", 0.25, 0.25},
		{"below", -3, 0},
		{"above", 7, 1},
		{"nan", math.NaN(), 0},
		{"plus inf", math.Inf(1), 1},
		{"minus inf", math.Inf(-1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp01(tt.in); got != tt.want {
				t.Fatalf("Clamp01(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEaseInOutCubic(t *testing.T) {
	if got := EaseInOutCubic(0); got != 0 {
		t.Fatalf("ease(0) = %v", got)
	}
	if got := EaseInOutCubic(1); got != 1 {
		t.Fatalf("ease(1) = %v", got)
	}
	if got := EaseInOutCubic(0.5); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("ease(0.5) = %v", got)
	}
	prev := 0.0
	for i := 1; i <= 100; i++ {
		v := EaseInOutCubic(float64(i) / 100)
		if v < prev {
			t.Fatalf("ease not monotonic at %d: %v < %v", i, v, prev)
		}
		prev = v
	}
}

func TestDampConvergesAndSnaps(t *testing.T) {
	v := 0.0
	for range 600 {
		v = Damp(v, 1, 1.0/60, 3)
	}
	if v != 1 {
		t.Fatalf("Damp did not settle on target, got %v", v)
	}
	if got := Damp(0, 1, 10, 3); got != 1 {
		t.Fatalf("long frame should land on target, got %v", got)
	}
}

func TestDampVec3BoundsStep(t *testing.T) {
	cur := mgl32.Vec3{0, 0, 0}
	target := mgl32.Vec3{1000, 0, 0}
	dt, maxSpeed := 1.0/60, 30.0
	next := DampVec3(cur, target, dt, 4, maxSpeed*dt)
	if step := float64(next.Sub(cur).Len()); step > maxSpeed*dt+1e-5 {
		t.Fatalf("step %v exceeds bound %v", step, maxSpeed*dt)
	}
	unbounded := DampVec3(cur, target, dt, 4, 0)
	if unbounded.Sub(cur).Len() <= next.Sub(cur).Len() {
		t.Fatalf("maxStep 0 should disable the bound")
	}
}

func TestPerspectiveMapsNearAndFarToWebGPUDepth(t *testing.T) {
	near, far := float32(0.5), float32(200)
	m := Perspective(mgl32.DegToRad(45), 16.0/9.0, near, far)
	depth := func(z float32) float32 {
		clip := m.Mul4x1(mgl32.Vec4{0, 0, -z, 1})
		return clip.Z() / clip.W()
	}
	if d := depth(near); math.Abs(float64(d)) > 1e-5 {
		t.Fatalf("near depth = %v, want 0", d)
	}
	if d := depth(far); math.Abs(float64(d-1)) > 1e-4 {
		t.Fatalf("far depth = %v, want 1", d)
	}
}

func TestModelMatrixTranslatesAndScales(t *testing.T) {
	m := ModelMatrix(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{}, mgl32.Vec3{2, 2, 2})
	p := m.Mul4x1(mgl32.Vec4{1, 1, 1, 1})
	if !p.Vec3().ApproxEqual(mgl32.Vec3{3, 4, 5}) {
		t.Fatalf("got %v", p)
	}
}

