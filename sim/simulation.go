// Package sim runs the foraging simulation: a World of animals evolving
// across generations under a genetic algorithm.
package sim

import (
	"fmt"
	"time"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/genetic"
	"github.com/pthm-cable/forage/rng"
	"github.com/pthm-cable/forage/telemetry"
)

// GenerationReport describes a generation that has just concluded.
type GenerationReport struct {
	Generation   int // index of the concluded generation, starting at 0
	Ticks        int
	Stats        genetic.Statistics
	Fitness      []float64   // per animal, index order
	Genomes      [][]float64 // per animal, index order
	Champion     []float64   // Genomes[Stats.MaxIndex]
	World        Snapshot    // the concluded world as it stood at its last tick
	FoodRespawns int
}

// GenerationObserver is called after each evolution, once the next
// generation's world is in place.
type GenerationObserver func(GenerationReport)

// Options configures a Simulation.
type Options struct {
	Seed     int64
	Observer GenerationObserver
	Perf     *telemetry.PerfCollector
}

// Simulation owns one World, the genetic algorithm and the random source.
// It is not safe for concurrent use.
type Simulation struct {
	cfg      *config.Config
	src      *rng.Rand
	ga       genetic.Algorithm
	world    *World
	observer GenerationObserver
	perf     *telemetry.PerfCollector

	age        int
	generation int
}

// New validates cfg and creates a simulation whose first generation has
// random brains. The config is cloned; later changes by the caller have no effect.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	src := rng.New(opts.Seed)
	world, err := newWorld(cfg, src, nil)
	if err != nil {
		return nil, fmt.Errorf("building world: %w", err)
	}

	return &Simulation{
		cfg:      cfg,
		src:      src,
		ga:       genetic.New(cfg.Genetics),
		world:    world,
		observer: opts.Observer,
		perf:     opts.Perf,
	}, nil
}

// Step advances one tick. When the generation's age limit has been reached
// it evolves instead, returning the concluded generation's statistics and true.
func (s *Simulation) Step() (genetic.Statistics, bool) {
	if s.age < s.cfg.Generation.AgeLimit {
		s.world.Tick(s.src, s.perf)
		s.age++
		return genetic.Statistics{}, false
	}
	return s.evolve(), true
}

// Train runs the current generation to its age limit, then evolves.
func (s *Simulation) Train() genetic.Statistics {
	for s.age < s.cfg.Generation.AgeLimit {
		s.world.Tick(s.src, s.perf)
		s.age++
	}
	return s.evolve()
}

// evolve replaces the population with the next generation.
func (s *Simulation) evolve() genetic.Statistics {
	start := time.Now()

	genomes, fitness := s.world.population()
	population := make([]genetic.Individual, len(genomes))
	for i := range genomes {
		population[i] = genetic.Individual{Genome: genomes[i], Fitness: fitness[i]}
	}

	next, stats, err := s.ga.Evolve(s.src, population)
	if err != nil {
		// The config was validated, so population and genome shapes are fixed.
		panic(fmt.Sprintf("sim: evolving generation %d: %v", s.generation, err))
	}

	report := GenerationReport{
		Generation:   s.generation,
		Ticks:        s.age,
		Stats:        stats,
		Fitness:      fitness,
		Genomes:      genomes,
		Champion:     genomes[stats.MaxIndex],
		World:        s.world.Snapshot(),
		FoodRespawns: s.world.foodRespawns(),
	}

	world, err := newWorld(s.cfg, s.src, next)
	if err != nil {
		panic(fmt.Sprintf("sim: building generation %d: %v", s.generation+1, err))
	}

	s.world = world
	s.age = 0
	s.generation++

	if s.perf != nil {
		s.perf.RecordEvolve(time.Since(start))
	}

	if s.observer != nil {
		s.observer(report)
	}

	return stats
}

// World returns a copied snapshot of the current world.
func (s *Simulation) World() Snapshot {
	return s.world.Snapshot()
}

// Genomes returns a copy of every animal's genome, in index order.
func (s *Simulation) Genomes() [][]float64 {
	genomes, _ := s.world.population()
	return genomes
}

// Age returns the number of ticks run in the current generation.
func (s *Simulation) Age() int {
	return s.age
}

// Generation returns how many generations have concluded.
func (s *Simulation) Generation() int {
	return s.generation
}

// Config returns the simulation's configuration. Callers must not modify it.
func (s *Simulation) Config() *config.Config {
	return s.cfg
}
