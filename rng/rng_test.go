package rng

import "testing"

func TestSameSeedSameStream(t *testing.T) {
	a := New(42)
	b := New(42)

	for i := 0; i < 100; i++ {
		if x, y := a.Float64(), b.Float64(); x != y {
			t.Fatalf("draw %d diverged: %v != %v", i, x, y)
		}
		if x, y := a.Intn(17), b.Intn(17); x != y {
			t.Fatalf("index draw %d diverged: %d != %d", i, x, y)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)

	same := 0
	for i := 0; i < 20; i++ {
		if a.Float64() == b.Float64() {
			same++
		}
	}
	if same == 20 {
		t.Error("streams with different seeds are identical")
	}
}

func TestRangeBounds(t *testing.T) {
	r := New(7)
	tests := []struct {
		name   string
		lo, hi float64
	}{
		{"unit", 0, 1},
		{"symmetric", -1, 1},
		{"narrow", 0.25, 0.26},
		{"negative", -3, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 1000; i++ {
				v := r.Range(tt.lo, tt.hi)
				if v < tt.lo || v >= tt.hi {
					t.Fatalf("Range(%v, %v) = %v, out of bounds", tt.lo, tt.hi, v)
				}
			}
		})
	}
}

func TestIntnCoversRange(t *testing.T) {
	r := New(3)
	seen := make([]bool, 5)
	for i := 0; i < 500; i++ {
		n := r.Intn(5)
		if n < 0 || n >= 5 {
			t.Fatalf("Intn(5) = %d", n)
		}
		seen[n] = true
	}
	for i, ok := range seen {
		if !ok {
			t.Errorf("index %d never drawn", i)
		}
	}
}

func TestSeed(t *testing.T) {
	if got := New(99).Seed(); got != 99 {
		t.Errorf("Seed() = %d, want 99", got)
	}
}
