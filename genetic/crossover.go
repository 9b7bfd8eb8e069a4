package genetic

import "github.com/pthm-cable/forage/rng"

// UniformCrossover returns a child taking each gene from a or b with equal
// probability. a and b must have the same length.
func UniformCrossover(src rng.Source, a, b []float64) []float64 {
	child := make([]float64, len(a))
	for i := range child {
		if src.Float64() < 0.5 {
			child[i] = a[i]
		} else {
			child[i] = b[i]
		}
	}
	return child
}
