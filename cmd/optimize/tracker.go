package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"
)

// evalTracker writes one CSV row per evaluation and keeps the best
// parameters seen so far.
type evalTracker struct {
	params   *ParamVector
	w        *csv.Writer
	maxEvals int
	start    time.Time

	count       int
	bestFitness float64
	bestParams  []float64
}

// newEvalTracker writes the CSV header: eval, fitness, then one column per parameter.
func newEvalTracker(w io.Writer, params *ParamVector, maxEvals int) (*evalTracker, error) {
	t := &evalTracker{
		params:      params,
		w:           csv.NewWriter(w),
		maxEvals:    maxEvals,
		start:       time.Now(),
		bestFitness: math.Inf(1),
	}

	header := []string{"eval", "fitness"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	if err := t.w.Write(header); err != nil {
		return nil, err
	}
	t.w.Flush()
	return t, t.w.Error()
}

// record logs an evaluation of the raw parameter vector. The clamped
// values are the ones the simulation actually ran with.
func (t *evalTracker) record(raw []float64, fitness float64) error {
	t.count++
	clamped := t.params.Clamp(raw)

	if fitness < t.bestFitness {
		t.bestFitness = fitness
		t.bestParams = clamped
	}

	row := []string{strconv.Itoa(t.count), strconv.FormatFloat(fitness, 'f', 6, 64)}
	for _, v := range clamped {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	if err := t.w.Write(row); err != nil {
		return err
	}
	t.w.Flush()
	return t.w.Error()
}

// best returns the best clamped parameters, or nil before any evaluation.
func (t *evalTracker) best() ([]float64, float64) {
	return t.bestParams, t.bestFitness
}

// progress formats a one-line status for the latest evaluation.
// Fitness = -(tailAvg × (1 + 0.2×trend)), so the food average is recovered from it.
func (t *evalTracker) progress(fitness, trend float64) string {
	elapsed := time.Since(t.start)
	var remaining time.Duration
	if t.count > 0 && t.maxEvals > t.count {
		remaining = time.Duration(t.maxEvals-t.count) * (elapsed / time.Duration(t.count))
	}

	food := -fitness / (1.0 + 0.2*trend)
	return fmt.Sprintf("Eval %d/%d: food=%.2f trend=%.2f (best=%.2f) | elapsed: %s, ETA: %s",
		t.count, t.maxEvals, food, trend, t.bestFitness,
		formatDuration(elapsed), formatDuration(remaining))
}

// formatDuration formats a duration as 1h02m03s, or 2m03s under an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// writeBestParams reports each tuned parameter by config path, next to the
// base config's value.
func writeBestParams(w io.Writer, params *ParamVector, best, base []float64) {
	fmt.Fprintln(w, "Best parameters:")
	for i, spec := range params.Specs {
		fmt.Fprintf(w, "  %-28s %.6f (base %.6f)\n", spec.Path+":", best[i], base[i])
	}
}
