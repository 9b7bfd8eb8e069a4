// Package rng provides the seedable random source shared by every stochastic
// decision in a simulation run.
package rng

import "math/rand"

// Source is the only way simulation components draw randomness.
// Implementations must be deterministic for a given seed.
type Source interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
	// Range returns a uniform value in [lo, hi).
	Range(lo, hi float64) float64
	// Intn returns a uniform index in [0, n). Panics if n <= 0.
	Intn(n int) int
}

// Rand is the default Source backed by math/rand.
type Rand struct {
	r    *rand.Rand
	seed int64
}

// New creates a Source seeded once with seed.
func New(seed int64) *Rand {
	return &Rand{
		r:    rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the seed the source was created with.
func (r *Rand) Seed() int64 {
	return r.seed
}

// Float64 returns a uniform value in [0, 1).
func (r *Rand) Float64() float64 {
	return r.r.Float64()
}

// Range returns a uniform value in [lo, hi).
func (r *Rand) Range(lo, hi float64) float64 {
	return lo + r.r.Float64()*(hi-lo)
}

// Intn returns a uniform index in [0, n).
func (r *Rand) Intn(n int) int {
	return r.r.Intn(n)
}
