package common

import (
	"math"
	"testing"
)

func TestClampPhaseIsIdempotent(t *testing.T) {
	for in := -10; in <= 10; in++ {
		once := ClampPhase(in)
		if once < PhaseMin || once > PhaseMax {
			t.Fatalf("ClampPhase(%d) = %d out of range", in, once)
		}
		if twice := ClampPhase(once); twice != once {
			t.Fatalf("ClampPhase not idempotent for %d: %d then %d", in, once, twice)
		}
		switch {
		case in < PhaseMin && once != PhaseMin:
			t.Fatalf("ClampPhase(%d) = %d, want %d", in, once, PhaseMin)
		case in > PhaseMax && once != PhaseMax:
			t.Fatalf("ClampPhase(%d) = %d, want %d", in, once, PhaseMax)
		case in >= PhaseMin && in <= PhaseMax && once != in:
			t.Fatalf("valid phase %d changed to %d", in, once)
		}
	}
}

func TestPhaseFromProgress(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{0.19, 0},
		{0.2, 1},
		{0.5, 2},
		{0.79, 3},
		{0.8, 4},
		{1, 4},
		{1.5, 4},
		{-0.2, 0},
		{math.NaN(), 0},
		{math.Inf(1), 4},
	}
	for _, tt := range tests {
		if got := PhaseFromProgress(tt.in); got != tt.want {
			t.Errorf("PhaseFromProgress(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestProgressForPhaseRoundTrips(t *testing.T) {
	for p := PhaseMin; p <= PhaseMax; p++ {
		if got := PhaseFromProgress(ProgressForPhase(p)); got != p {
			t.Fatalf("round trip of phase %d gave %d", p, got)
		}
	}
}
