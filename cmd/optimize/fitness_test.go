package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/forage/config"
)

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()

	raw := pv.ExtractFromConfig(cfg)
	if len(raw) != pv.Dim() {
		t.Fatalf("extracted %d values for %d specs", len(raw), pv.Dim())
	}

	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-12 {
			t.Errorf("%s: %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}

	shifted := make([]float64, len(raw))
	for i, spec := range pv.Specs {
		shifted[i] = (spec.Min + spec.Max) / 2
	}
	pv.ApplyToConfig(cfg, shifted)
	got := pv.ExtractFromConfig(cfg)
	for i := range shifted {
		if got[i] != shifted[i] {
			t.Errorf("%s applied as %v, want %v", pv.Specs[i].Name, got[i], shifted[i])
		}
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("mid-range parameters give an invalid config: %v", err)
	}
}

func TestParamVectorClamp(t *testing.T) {
	pv := NewParamVector()
	v := make([]float64, pv.Dim())
	for i, spec := range pv.Specs {
		if i%2 == 0 {
			v[i] = spec.Min - 1
		} else {
			v[i] = spec.Max + 1
		}
	}

	for i, c := range pv.Clamp(v) {
		spec := pv.Specs[i]
		if c < spec.Min || c > spec.Max {
			t.Errorf("%s clamped to %v, outside [%v, %v]", spec.Name, c, spec.Min, spec.Max)
		}
	}
}

func TestComputeTrend(t *testing.T) {
	tests := []struct {
		name string
		avgs []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single", []float64{3}, 0},
		{"flat", []float64{2, 2, 2, 2}, 0},
		{"falling", []float64{4, 3, 2, 1}, 0},
		{"all zero", []float64{0, 0, 0}, 0},
		{"steep rise saturates", []float64{0, 10, 20, 30}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeTrend(tt.avgs); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("computeTrend(%v) = %v, want %v", tt.avgs, got, tt.want)
			}
		})
	}
}

func TestComputeFitness(t *testing.T) {
	// Tail is the last quarter, rounded up: the final two of eight.
	avgs := []float64{0, 0, 0, 0, 0, 0, 2, 4}

	if got := computeFitness(avgs, 0); got != -3 {
		t.Errorf("fitness = %v, want -3", got)
	}
	if got := computeFitness(avgs, 1); math.Abs(got-(-3.6)) > 1e-12 {
		t.Errorf("fitness with full trend = %v, want -3.6", got)
	}
	if got := computeFitness(nil, 0); got != 0 {
		t.Errorf("empty run fitness = %v, want 0", got)
	}
}

func TestEvaluatorTracksBest(t *testing.T) {
	cfg := config.Default()
	cfg.World.Animals = 4
	cfg.World.Foods = 6
	cfg.Generation.AgeLimit = 20
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, 2, []int64{1, 2}, cfg)

	f := fe.Evaluate(pv.ExtractFromConfig(cfg))
	if f > 0 {
		t.Errorf("fitness = %v, want <= 0", f)
	}
	if fe.BestHallOfFame() == nil {
		t.Error("best hall of fame not recorded")
	}
}
