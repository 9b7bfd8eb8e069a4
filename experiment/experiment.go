// Package experiment wires a Simulation to telemetry output for headless runs.
package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/genetic"
	"github.com/pthm-cable/forage/sim"
	"github.com/pthm-cable/forage/telemetry"
)

// Options configures an experiment.
type Options struct {
	Seed      int64
	LogStats  bool   // log every generation via slog
	OutputDir string // CSV, config, hall of fame and snapshots (empty = disabled)
	StatsDB   string // SQLite generation history (empty = disabled)
}

// Experiment runs generations and records each one.
type Experiment struct {
	cfg   *config.Config
	runID string
	seed  int64

	sim      *sim.Simulation
	logStats bool

	// Telemetry
	perf          *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	store         *telemetry.StatsStore
	hallOfFame    *telemetry.HallOfFame
	milestones    *telemetry.MilestoneDetector

	// Report from the most recent evolution, set by the observer
	last    sim.GenerationReport
	hasLast bool
}

// New creates an experiment and opens its outputs.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Experiment, error) {
	e := &Experiment{
		cfg:        cfg,
		runID:      telemetry.NewRunID(),
		seed:       opts.Seed,
		logStats:   opts.LogStats,
		perf:       telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		hallOfFame: telemetry.NewHallOfFame(cfg.Telemetry.HallOfFameSize),
		milestones: telemetry.NewMilestoneDetector(cfg.Telemetry.Milestones),
	}

	s, err := sim.New(cfg, sim.Options{
		Seed:     opts.Seed,
		Observer: e.observe,
		Perf:     e.perf,
	})
	if err != nil {
		return nil, err
	}
	e.sim = s

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	e.outputManager = om
	if err := om.WriteConfig(s.Config()); err != nil {
		om.Close()
		return nil, err
	}

	if opts.StatsDB != "" {
		store := telemetry.NewStatsStore(opts.StatsDB)
		if err := store.Init(ctx); err != nil {
			om.Close()
			return nil, err
		}
		e.store = store
	}

	return e, nil
}

// observe is the simulation's generation observer.
func (e *Experiment) observe(report sim.GenerationReport) {
	e.last = report
	e.hasLast = true
}

// RunGeneration trains one full generation and records it.
func (e *Experiment) RunGeneration(ctx context.Context) (genetic.Statistics, error) {
	e.hasLast = false
	stats := e.sim.Train()
	if !e.hasLast {
		return stats, fmt.Errorf("generation %d: no report from simulation", e.sim.Generation())
	}
	e.recordGeneration(ctx, e.last)
	return stats, nil
}

// Run trains up to generations generations (0 = until ctx is done).
func (e *Experiment) Run(ctx context.Context, generations int) error {
	for i := 0; generations == 0 || i < generations; i++ {
		if err := ctx.Err(); err != nil {
			slog.Info("stopping", "reason", err, "generation", e.sim.Generation())
			return nil
		}
		if _, err := e.RunGeneration(ctx); err != nil {
			return err
		}
	}
	slog.Info("max generations reached", "generation", e.sim.Generation())
	return nil
}

// RunID returns the identifier stamped on this run's telemetry.
func (e *Experiment) RunID() string {
	return e.runID
}

// Simulation returns the underlying simulation.
func (e *Experiment) Simulation() *sim.Simulation {
	return e.sim
}

// HallOfFame returns the champions recorded so far.
func (e *Experiment) HallOfFame() *telemetry.HallOfFame {
	return e.hallOfFame
}

// Close writes the hall of fame and closes all outputs.
func (e *Experiment) Close() error {
	var firstErr error

	if err := e.outputManager.WriteHallOfFame(e.hallOfFame); err != nil {
		firstErr = err
	}
	if err := e.outputManager.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
