package genetic

import "github.com/pthm-cable/forage/rng"

// Mutate perturbs genome in place: each gene, with probability MutationRate,
// gets a uniform offset from [-MutationStrength, +MutationStrength).
func (a Algorithm) Mutate(src rng.Source, genome []float64) {
	for i := range genome {
		if src.Float64() < a.MutationRate {
			genome[i] += src.Range(-a.MutationStrength, a.MutationStrength)
		}
	}
}
