package experiment

import (
	"context"
	"log/slog"

	"github.com/pthm-cable/forage/sim"
	"github.com/pthm-cable/forage/telemetry"
)

// recordGeneration logs and persists a concluded generation. Output errors
// are logged and do not stop the run.
func (e *Experiment) recordGeneration(ctx context.Context, report sim.GenerationReport) {
	rec := telemetry.NewGenerationRecord(e.runID, report.Generation, report.Ticks,
		report.Stats, report.Fitness, report.FoodRespawns)
	perfStats := e.perf.Stats()

	// Log stats if enabled (console output)
	if e.logStats {
		rec.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if err := e.outputManager.WriteGeneration(rec); err != nil {
		slog.Error("failed to write generation", "error", err)
	}
	if err := e.outputManager.WritePerf(perfStats, e.runID, report.Generation); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	if e.store != nil {
		if err := e.store.SaveGeneration(ctx, rec); err != nil {
			slog.Error("failed to store generation", "error", err)
		}
	}

	if e.hallOfFame.Consider(e.runID, report.Generation, report.Stats.MaxIndex, report.Stats.Max, report.Champion) && e.logStats {
		slog.Info("hall of fame entry",
			"generation", report.Generation,
			"fitness", report.Stats.Max,
			"top", e.hallOfFame.TopFitness(),
		)
	}

	// Check for milestones
	for _, m := range e.milestones.Check(rec) {
		if e.logStats {
			m.LogMilestone()
		}

		if err := e.outputManager.WriteMilestone(m); err != nil {
			slog.Error("failed to write milestone", "error", err)
		}
		if e.store != nil {
			if err := e.store.SaveMilestone(ctx, m); err != nil {
				slog.Error("failed to store milestone", "error", err)
			}
		}

		// Save snapshot on milestone
		if dir := e.outputManager.SnapshotDir(); dir != "" {
			e.saveSnapshot(dir, report, &m)
		}
	}
}

// saveSnapshot writes the concluded generation that earned a milestone.
func (e *Experiment) saveSnapshot(dir string, report sim.GenerationReport, milestone *telemetry.Milestone) {
	path, err := telemetry.SaveSnapshot(e.createSnapshot(report, milestone), dir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	if e.logStats {
		slog.Info("snapshot saved", "path", path, "generation", report.Generation)
	}
}

// createSnapshot builds a snapshot of a concluded generation: every animal's
// genome and its pose at the generation's last tick.
func (e *Experiment) createSnapshot(report sim.GenerationReport, milestone *telemetry.Milestone) *telemetry.Snapshot {
	world := report.World

	snapshot := &telemetry.Snapshot{
		Version:    telemetry.SnapshotVersion,
		RunID:      e.runID,
		Seed:       e.seed,
		Generation: report.Generation,
		Animals:    make([]telemetry.AnimalState, len(world.Animals)),
		Foods:      make([]telemetry.FoodState, len(world.Foods)),
		Milestone:  milestone,
	}

	for i, a := range world.Animals {
		snapshot.Animals[i] = telemetry.AnimalState{
			X:        a.X,
			Y:        a.Y,
			Rotation: a.Rotation,
			Genome:   report.Genomes[i],
		}
	}
	for i, f := range world.Foods {
		snapshot.Foods[i] = telemetry.FoodState{X: f.X, Y: f.Y}
	}

	return snapshot
}
