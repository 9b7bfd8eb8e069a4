package telemetry

import (
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/forage/genetic"
)

// NewRunID returns a fresh identifier stamped on every row of one run.
func NewRunID() string {
	return uuid.NewString()
}

// GenerationRecord holds the fitness summary of one concluded generation.
type GenerationRecord struct {
	RunID      string `csv:"run_id"`
	Generation int    `csv:"generation"`
	Ticks      int    `csv:"ticks"`

	// Fitness distribution
	MinFitness float64 `csv:"min_fitness"`
	MaxFitness float64 `csv:"max_fitness"`
	AvgFitness float64 `csv:"avg_fitness"`
	StdFitness float64 `csv:"std_fitness"`
	P10Fitness float64 `csv:"p10_fitness"`
	P50Fitness float64 `csv:"p50_fitness"`
	P90Fitness float64 `csv:"p90_fitness"`

	// Indices into the population, first occurrence
	MinIndex int `csv:"min_index"`
	MaxIndex int `csv:"max_index"`

	FoodRespawns int `csv:"food_respawns"`
}

// NewGenerationRecord builds a record from the statistics the genetic
// algorithm reported and the raw per-animal fitness values.
func NewGenerationRecord(runID string, generation, ticks int, stats genetic.Statistics, fitness []float64, foodRespawns int) GenerationRecord {
	rec := GenerationRecord{
		RunID:        runID,
		Generation:   generation,
		Ticks:        ticks,
		MinFitness:   stats.Min,
		MaxFitness:   stats.Max,
		AvgFitness:   stats.Avg,
		MinIndex:     stats.MinIndex,
		MaxIndex:     stats.MaxIndex,
		FoodRespawns: foodRespawns,
	}

	if len(fitness) > 0 {
		_, rec.StdFitness = stat.PopMeanStdDev(fitness, nil)

		sorted := make([]float64, len(fitness))
		copy(sorted, fitness)
		sort.Float64s(sorted)

		rec.P10Fitness = Percentile(sorted, 0.10)
		rec.P50Fitness = Percentile(sorted, 0.50)
		rec.P90Fitness = Percentile(sorted, 0.90)
	}

	return rec
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// LogValue implements slog.LogValuer for structured logging.
func (r GenerationRecord) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", r.RunID),
		slog.Int("generation", r.Generation),
		slog.Int("ticks", r.Ticks),
		slog.Float64("min", r.MinFitness),
		slog.Float64("max", r.MaxFitness),
		slog.Float64("avg", r.AvgFitness),
		slog.Float64("std", r.StdFitness),
		slog.Float64("p10", r.P10Fitness),
		slog.Float64("p50", r.P50Fitness),
		slog.Float64("p90", r.P90Fitness),
		slog.Int("min_index", r.MinIndex),
		slog.Int("max_index", r.MaxIndex),
		slog.Int("food_respawns", r.FoodRespawns),
	)
}

// LogStats logs the generation summary using slog.
func (r GenerationRecord) LogStats() {
	slog.Info("generation",
		"generation", r.Generation,
		"min", r.MinFitness,
		"max", r.MaxFitness,
		"avg", r.AvgFitness,
		"std", r.StdFitness,
		"p50", r.P50Fitness,
		"min_index", r.MinIndex,
		"max_index", r.MaxIndex,
		"food_respawns", r.FoodRespawns,
	)
}
