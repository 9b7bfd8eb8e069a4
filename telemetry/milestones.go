package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/forage/config"
)

// MilestoneType identifies the kind of milestone.
type MilestoneType string

const (
	MilestoneForageBreakthrough MilestoneType = "forage_breakthrough"
	MilestoneNewRecord          MilestoneType = "new_record"
	MilestoneStagnation         MilestoneType = "stagnation"
)

// Milestone marks a generation worth looking at.
type Milestone struct {
	RunID       string        `csv:"run_id"`
	Type        MilestoneType `csv:"type"`
	Generation  int           `csv:"generation"`
	Description string        `csv:"description"`
}

// LogMilestone logs the milestone using slog.
func (m Milestone) LogMilestone() {
	slog.Info("milestone",
		"type", string(m.Type),
		"generation", m.Generation,
		"description", m.Description,
	)
}

// MilestoneDetector flags breakthroughs, record highs and stagnation
// across generations.
type MilestoneDetector struct {
	cfg config.MilestonesConfig

	// Rolling history of average fitness (circular buffer)
	history     []float64
	historySize int
	historyIdx  int
	historyFull bool

	bestMax            float64
	seenAny            bool
	sinceBest          int  // generations since bestMax improved
	stagnationReported bool // once per plateau
}

// NewMilestoneDetector creates a detector from configuration.
func NewMilestoneDetector(cfg config.MilestonesConfig) *MilestoneDetector {
	size := cfg.HistorySize
	if size < 3 {
		size = 3 // minimum for a meaningful rolling mean
	}
	return &MilestoneDetector{
		cfg:         cfg,
		history:     make([]float64, size),
		historySize: size,
	}
}

// Check analyzes the latest generation and returns any triggered milestones.
func (md *MilestoneDetector) Check(rec GenerationRecord) []Milestone {
	var milestones []Milestone

	if m := md.checkBreakthrough(rec); m != nil {
		milestones = append(milestones, *m)
	}
	if m := md.checkRecord(rec); m != nil {
		milestones = append(milestones, *m)
	}
	if m := md.checkStagnation(rec); m != nil {
		milestones = append(milestones, *m)
	}

	md.addToHistory(rec.AvgFitness)

	return milestones
}

func (md *MilestoneDetector) addToHistory(avg float64) {
	md.history[md.historyIdx] = avg
	md.historyIdx = (md.historyIdx + 1) % md.historySize
	if md.historyIdx == 0 {
		md.historyFull = true
	}
}

func (md *MilestoneDetector) getHistory() []float64 {
	if md.historyFull {
		return md.history
	}
	return md.history[:md.historyIdx]
}

// checkBreakthrough fires when average fitness jumps well above the rolling mean.
func (md *MilestoneDetector) checkBreakthrough(rec GenerationRecord) *Milestone {
	history := md.getHistory()
	if len(history) < 3 {
		return nil
	}

	var sum float64
	for _, h := range history {
		sum += h
	}
	rollingAvg := sum / float64(len(history))
	if rollingAvg <= 0 {
		return nil
	}

	if rec.AvgFitness > rollingAvg*md.cfg.BreakthroughMultiple && rec.AvgFitness >= md.cfg.MinBreakthroughAvg {
		return &Milestone{
			RunID:       rec.RunID,
			Type:        MilestoneForageBreakthrough,
			Generation:  rec.Generation,
			Description: fmt.Sprintf("Average fitness %.2f is %.1fx rolling mean (%.2f)", rec.AvgFitness, rec.AvgFitness/rollingAvg, rollingAvg),
		}
	}
	return nil
}

// checkRecord fires when max fitness beats every earlier generation.
func (md *MilestoneDetector) checkRecord(rec GenerationRecord) *Milestone {
	if !md.seenAny {
		md.seenAny = true
		md.bestMax = rec.MaxFitness
		return nil
	}

	if rec.MaxFitness <= md.bestMax {
		md.sinceBest++
		return nil
	}

	prev := md.bestMax
	md.bestMax = rec.MaxFitness
	md.sinceBest = 0
	md.stagnationReported = false

	return &Milestone{
		RunID:       rec.RunID,
		Type:        MilestoneNewRecord,
		Generation:  rec.Generation,
		Description: fmt.Sprintf("Max fitness %.0f beats previous best %.0f", rec.MaxFitness, prev),
	}
}

// checkStagnation fires once when the best max has not improved for the
// configured number of generations.
func (md *MilestoneDetector) checkStagnation(rec GenerationRecord) *Milestone {
	if md.cfg.StagnationWindow <= 0 || md.stagnationReported {
		return nil
	}
	if md.sinceBest < md.cfg.StagnationWindow {
		return nil
	}

	md.stagnationReported = true
	return &Milestone{
		RunID:       rec.RunID,
		Type:        MilestoneStagnation,
		Generation:  rec.Generation,
		Description: fmt.Sprintf("No new max fitness for %d generations (best %.0f)", md.sinceBest, md.bestMax),
	}
}
