package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate a few ticks
	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseMovement)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseFeeding)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	// Verify we got timing data
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}

	// Verify phases are tracked
	if len(stats.PhaseAvg) == 0 {
		t.Error("expected phase averages to be populated")
	}

	if _, ok := stats.PhaseAvg[PhaseMovement]; !ok {
		t.Error("expected movement phase to be tracked")
	}

	if _, ok := stats.PhaseAvg[PhaseFeeding]; !ok {
		t.Error("expected feeding phase to be tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5) // Small window

	// Fill window completely
	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseMovement)
		pc.EndTick()
	}

	stats := pc.Stats()

	// Should have data
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}

	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate with uneven phase durations
	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(100 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	fastPct := stats.PhasePct["fast"]
	slowPct := stats.PhasePct["slow"]

	// Slow phase should take more % than fast
	if slowPct <= fastPct {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", slowPct, fastPct)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	// Empty collector should return zero values without panicking
	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}

	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}

	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	stats := PerfStats{
		AvgTickDuration: 250 * time.Microsecond,
		MinTickDuration: 100 * time.Microsecond,
		MaxTickDuration: 900 * time.Microsecond,
		TicksPerSecond:  4000,
		EvolveDuration:  1500 * time.Microsecond,
		PhasePct: map[string]float64{
			PhaseMovement: 80,
			PhaseFeeding:  20,
		},
	}

	row := stats.ToCSV("run", 12)

	if row.RunID != "run" || row.Generation != 12 {
		t.Errorf("identity = %q/%d", row.RunID, row.Generation)
	}
	if row.AvgTickUS != 250 || row.MinTickUS != 100 || row.MaxTickUS != 900 {
		t.Errorf("tick us = %d/%d/%d", row.AvgTickUS, row.MinTickUS, row.MaxTickUS)
	}
	if row.MovementPct != 80 || row.FeedingPct != 20 {
		t.Errorf("phase pct = %v/%v", row.MovementPct, row.FeedingPct)
	}
	if row.EvolveUS != 1500 {
		t.Errorf("evolve us = %d, want 1500", row.EvolveUS)
	}
}

func TestPerfCollector_EvolveOutsideTickWindow(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 3; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseMovement)
		pc.EndTick()
	}
	before := pc.Stats()

	pc.RecordEvolve(50 * time.Millisecond)
	after := pc.Stats()

	if after.Samples != 3 {
		t.Errorf("samples = %d after an evolution, want 3", after.Samples)
	}
	if after.MaxTickDuration != before.MaxTickDuration || after.AvgTickDuration != before.AvgTickDuration {
		t.Errorf("evolution changed tick stats: max %v -> %v, avg %v -> %v",
			before.MaxTickDuration, after.MaxTickDuration, before.AvgTickDuration, after.AvgTickDuration)
	}
	if after.EvolveDuration != 50*time.Millisecond || after.Evolutions != 1 {
		t.Errorf("evolve = %v x%d, want 50ms x1", after.EvolveDuration, after.Evolutions)
	}
}

func TestPerfCollector_EvolveWithoutTicks(t *testing.T) {
	pc := NewPerfCollector(10)
	pc.RecordEvolve(time.Millisecond)

	stats := pc.Stats()
	if stats.Samples != 0 || stats.AvgTickDuration != 0 {
		t.Errorf("samples = %d, avg = %v, want empty tick stats", stats.Samples, stats.AvgTickDuration)
	}
	if stats.EvolveDuration != time.Millisecond {
		t.Errorf("evolve = %v, want 1ms", stats.EvolveDuration)
	}
}
