// Package main provides CMA-ES optimization for forage simulation parameters.
package main

import (
	"github.com/pthm-cable/forage/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Genetics
			{Name: "mutation_rate", Path: "genetics.mutation_rate", Min: 0.001, Max: 0.1, Default: 0.01},
			{Name: "mutation_strength", Path: "genetics.mutation_strength", Min: 0.05, Max: 1.0, Default: 0.3},
			// Movement (max_speed locked)
			{Name: "speed_accel", Path: "movement.speed_accel", Min: 0.0001, Max: 0.002, Default: 0.0005},
			{Name: "rotation_accel", Path: "movement.rotation_accel", Min: 0.02, Max: 0.5, Default: 0.15707963},
			// Eye (sectors locked, it fixes the genome length)
			{Name: "fov_angle", Path: "eye.fov_angle", Min: 1.0, Max: 6.2831853, Default: 3.92699082},
			{Name: "fov_range", Path: "eye.fov_range", Min: 0.05, Max: 0.5, Default: 0.25},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	// Order must match Specs order
	cfg.Genetics.MutationRate = clamped[0]
	cfg.Genetics.MutationStrength = clamped[1]
	cfg.Movement.SpeedAccel = clamped[2]
	cfg.Movement.RotationAccel = clamped[3]
	cfg.Eye.FOVAngle = clamped[4]
	cfg.Eye.FOVRange = clamped[5]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Genetics.MutationRate,
		cfg.Genetics.MutationStrength,
		cfg.Movement.SpeedAccel,
		cfg.Movement.RotationAccel,
		cfg.Eye.FOVAngle,
		cfg.Eye.FOVRange,
	}
}
