package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/sim"
	"github.com/pthm-cable/forage/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	generations int
	seeds       []int64
	baseConfig  *config.Config

	// Best run tracking
	mu             sync.Mutex
	bestFitness    float64
	bestHallOfFame *telemetry.HallOfFame
	lastTrend      float64 // trend from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, generations int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		generations: generations,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestHallOfFame returns the hall of fame from the best evaluation.
func (fe *FitnessEvaluator) BestHallOfFame() *telemetry.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHallOfFame
}

// LastTrend returns the trend score from the most recent evaluation.
func (fe *FitnessEvaluator) LastTrend() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastTrend
}

// tailFraction is the share of final generations averaged for fitness.
const tailFraction = 0.25

// runResult holds the results from a single simulation run.
type runResult struct {
	avgFitness []float64 // population average per generation
	hallOfFame *telemetry.HallOfFame
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness    float64
	trend      float64
	hallOfFame *telemetry.HallOfFame
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the negated late-run food intake, so better foragers score lower.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	// Run all seeds in parallel
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(cfg, s)
			trend := computeTrend(result.avgFitness)
			results[idx] = seedResult{
				fitness:    computeFitness(result.avgFitness, trend),
				trend:      trend,
				hallOfFame: result.hallOfFame,
			}
		}(i, seed)
	}
	wg.Wait()

	// Aggregate results
	var totalFitness, totalTrend float64
	bestSeedFitness := math.Inf(1)
	var bestSeedHallOfFame *telemetry.HallOfFame

	for _, r := range results {
		totalFitness += r.fitness
		totalTrend += r.trend
		if r.fitness < bestSeedFitness {
			bestSeedFitness = r.fitness
			bestSeedHallOfFame = r.hallOfFame
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	// Update best tracking
	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestHallOfFame = bestSeedHallOfFame
	}
	fe.lastTrend = totalTrend / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation trains one seed for the configured number of generations.
// An invalid config scores as an empty run.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) *runResult {
	result := &runResult{
		hallOfFame: telemetry.NewHallOfFame(cfg.Telemetry.HallOfFameSize),
	}

	s, err := sim.New(cfg, sim.Options{
		Seed: seed,
		Observer: func(r sim.GenerationReport) {
			result.avgFitness = append(result.avgFitness, r.Stats.Avg)
			result.hallOfFame.Consider("", r.Generation, r.Stats.MaxIndex, r.Stats.Max, r.Champion)
		},
	})
	if err != nil {
		return result
	}

	for g := 0; g < fe.generations; g++ {
		s.Train()
	}
	return result
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(tailAvg × (1.0 + 0.2 × trend))
// The late-run average dominates; a rising trend adds up to 20%.
func computeFitness(avgs []float64, trend float64) float64 {
	if len(avgs) == 0 {
		return 0
	}
	tail := int(math.Ceil(float64(len(avgs)) * tailFraction))
	tailAvg := stat.Mean(avgs[len(avgs)-tail:], nil)
	return -(tailAvg * (1.0 + 0.2*trend))
}

// computeTrend scores how steadily average fitness rises, in [0, 1].
// It is the regression slope over the run, scaled by the run's mean.
func computeTrend(avgs []float64) float64 {
	if len(avgs) < 2 {
		return 0
	}
	mean := stat.Mean(avgs, nil)
	if mean <= 0 {
		return 0
	}

	xs := make([]float64, len(avgs))
	for i := range xs {
		xs[i] = float64(i)
	}
	_, slope := stat.LinearRegression(xs, avgs, nil, false)

	return clamp01(slope * float64(len(avgs)) / mean)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
