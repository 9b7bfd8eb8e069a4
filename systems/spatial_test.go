package systems

import (
	"math"
	"testing"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{0.25, 0.25},
		{1, 0},
		{1.009, 0.009},
		{-0.25, 0.75},
		{-1e-18, 0},
		{3.5, 0.5},
	}

	for _, tt := range tests {
		got := Wrap(tt.in)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Wrap(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if got < 0 || got >= 1 {
			t.Errorf("Wrap(%v) = %v, outside [0, 1)", tt.in, got)
		}
	}
}

func TestToroidalDelta(t *testing.T) {
	tests := []struct {
		name           string
		x1, y1, x2, y2 float64
		wantDX, wantDY float64
	}{
		{"direct", 0.2, 0.2, 0.3, 0.4, 0.1, 0.2},
		{"wrap x forward", 0.95, 0.5, 0.05, 0.5, 0.1, 0},
		{"wrap x backward", 0.05, 0.5, 0.95, 0.5, -0.1, 0},
		{"wrap y", 0.5, 0.02, 0.5, 0.98, 0, -0.04},
		{"same point", 0.3, 0.3, 0.3, 0.3, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dx, dy := ToroidalDelta(tt.x1, tt.y1, tt.x2, tt.y2)
			if math.Abs(dx-tt.wantDX) > 1e-9 || math.Abs(dy-tt.wantDY) > 1e-9 {
				t.Errorf("ToroidalDelta = (%v, %v), want (%v, %v)", dx, dy, tt.wantDX, tt.wantDY)
			}
		})
	}
}

func TestToroidalDistanceSymmetric(t *testing.T) {
	d1 := ToroidalDistance(0.9, 0.1, 0.1, 0.9)
	d2 := ToroidalDistance(0.1, 0.9, 0.9, 0.1)

	if math.Abs(d1-d2) > 1e-12 {
		t.Errorf("distance not symmetric: %v vs %v", d1, d2)
	}
	if want := math.Hypot(0.2, 0.2); math.Abs(d1-want) > 1e-9 {
		t.Errorf("distance = %v, want %v", d1, want)
	}
}

func TestNormalizeHeading(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{2 * math.Pi, 0},
		{-math.Pi / 2, 3 * math.Pi / 2},
		{5 * math.Pi, math.Pi},
	}

	for _, tt := range tests {
		got := NormalizeHeading(tt.in)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeHeading(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if got < 0 || got >= 2*math.Pi {
			t.Errorf("NormalizeHeading(%v) = %v, outside [0, 2π)", tt.in, got)
		}
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi / 2, math.Pi / 2},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{math.Pi, -math.Pi},
	}

	for _, tt := range tests {
		if got := normalizeAngle(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("normalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
