// Package genetic evolves fixed-length real-valued genomes with roulette
// selection, uniform crossover and uniform mutation.
package genetic

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/neural"
	"github.com/pthm-cable/forage/rng"
)

// ErrEmptyPopulation is returned when Evolve is given no individuals.
var ErrEmptyPopulation = errors.New("empty population")

// Individual is one genome with the fitness it earned.
type Individual struct {
	Genome  []float64
	Fitness float64
}

// Algorithm holds the mutation parameters. It carries no per-run state.
type Algorithm struct {
	MutationRate     float64 // per-gene probability, [0, 1]
	MutationStrength float64 // max absolute offset
}

// New creates an algorithm from the genetics configuration.
func New(cfg config.GeneticsConfig) Algorithm {
	return Algorithm{
		MutationRate:     cfg.MutationRate,
		MutationStrength: cfg.MutationStrength,
	}
}

// Evolve produces the next generation from a scored population.
// Statistics are computed over the fitness values exactly as presented.
// The returned slice has the same length as population, and every genome
// has the same length as the inputs. Input genomes are not modified.
func (a Algorithm) Evolve(src rng.Source, population []Individual) ([][]float64, Statistics, error) {
	if len(population) == 0 {
		return nil, Statistics{}, ErrEmptyPopulation
	}

	genomeLen := len(population[0].Genome)
	fitness := make([]float64, len(population))
	for i, ind := range population {
		if len(ind.Genome) != genomeLen {
			return nil, Statistics{}, fmt.Errorf("individual %d has %d genes, want %d: %w",
				i, len(ind.Genome), genomeLen, neural.ErrShapeMismatch)
		}
		fitness[i] = ind.Fitness
	}

	stats := ComputeStatistics(fitness)
	wheel := newRoulette(fitness)

	next := make([][]float64, len(population))
	for i := range next {
		parentA := population[wheel.spin(src)].Genome
		parentB := population[wheel.spin(src)].Genome

		child := UniformCrossover(src, parentA, parentB)
		a.Mutate(src, child)
		next[i] = child
	}

	return next, stats, nil
}
