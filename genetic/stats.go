package genetic

import (
	"log/slog"

	"gonum.org/v1/gonum/floats"
)

// Statistics summarizes the fitness of one concluded generation.
// Indices refer to the first occurrence in population order.
type Statistics struct {
	Min      float64
	Max      float64
	Avg      float64
	MinIndex int
	MaxIndex int
}

// ComputeStatistics summarizes a non-empty fitness slice.
func ComputeStatistics(fitness []float64) Statistics {
	minIdx := floats.MinIdx(fitness)
	maxIdx := floats.MaxIdx(fitness)

	return Statistics{
		Min:      fitness[minIdx],
		Max:      fitness[maxIdx],
		Avg:      floats.Sum(fitness) / float64(len(fitness)),
		MinIndex: minIdx,
		MaxIndex: maxIdx,
	}
}

// LogValue implements slog.LogValuer.
func (s Statistics) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("min", s.Min),
		slog.Float64("max", s.Max),
		slog.Float64("avg", s.Avg),
		slog.Int("min_index", s.MinIndex),
		slog.Int("max_index", s.MaxIndex),
	)
}
