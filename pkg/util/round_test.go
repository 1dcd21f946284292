package util

import (
	"math"
	"testing"
)

func TestRoundHalfUp(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{23.944154, 23.9},
		{12.75, 12.8},
		{0.05, 0.1},
		{0.04999, 0.0},
		{99.99820274763425, 100.0},
		{17.70116017298494, 17.7},
	}
	for _, c := range cases {
		if got := RoundHalfUp(c.in, 1); got != c.want {
			t.Fatalf("RoundHalfUp(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRoundHalfUpNonFinite(t *testing.T) {
	if got := RoundHalfUp(math.NaN(), 1); !math.IsNaN(got) {
		t.Fatalf("expected NaN passthrough, got %v", got)
	}
	if got := RoundHalfUp(math.Inf(1), 1); !math.IsInf(got, 1) {
		t.Fatalf("expected +Inf passthrough, got %v", got)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(-1, 0, 100) != 0 || Clamp(120, 0, 100) != 100 || Clamp(42, 0, 100) != 42 {
		t.Fatalf("clamp bounds not honoured")
	}
}
