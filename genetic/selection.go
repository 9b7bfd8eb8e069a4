package genetic

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/forage/rng"
)

// roulette is a fitness-proportionate selector built once per generation.
type roulette struct {
	cumulative []float64
	total      float64
}

// newRoulette builds the wheel. Negative fitness counts as zero.
func newRoulette(fitness []float64) roulette {
	weights := make([]float64, len(fitness))
	for i, f := range fitness {
		if f > 0 {
			weights[i] = f
		}
	}

	cumulative := make([]float64, len(weights))
	floats.CumSum(cumulative, weights)

	return roulette{
		cumulative: cumulative,
		total:      cumulative[len(cumulative)-1],
	}
}

// spin returns the index of one selected individual, with replacement.
// When every fitness is zero the choice is uniform.
func (r roulette) spin(src rng.Source) int {
	n := len(r.cumulative)
	if r.total <= 0 {
		return src.Intn(n)
	}

	target := src.Float64() * r.total
	idx := sort.Search(n, func(i int) bool { return r.cumulative[i] > target })
	if idx == n {
		// Rounding at the top of the wheel; take the last non-zero slot.
		idx = n - 1
		for idx > 0 && r.cumulative[idx] == r.cumulative[idx-1] {
			idx--
		}
	}
	return idx
}
