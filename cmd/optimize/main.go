// Package main provides CMA-ES optimization for finding simulation parameters
// under which foraging behaviour evolves fastest.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/forage/config"
)

// options holds the optimizer's command line.
type options struct {
	configPath   string
	outputDir    string
	generations  int
	seeds        int
	maxEvals     int
	population   int
	fromDefaults bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.IntVar(&opts.generations, "generations", 40, "Generations trained per seed")
	flag.IntVar(&opts.seeds, "seeds", 3, "Number of seeds per evaluation")
	flag.IntVar(&opts.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	flag.IntVar(&opts.population, "population", 0, "CMA-ES population size (0 = auto)")
	flag.StringVar(&opts.outputDir, "output", "", "Output directory for results")
	flag.BoolVar(&opts.fromDefaults, "from-defaults", false, "Start the search from the parameter defaults instead of the base config")
	flag.Parse()

	if opts.outputDir == "" {
		slog.Error("--output is required")
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		slog.Error("optimization failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	baseCfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	params := NewParamVector()
	base := params.ExtractFromConfig(baseCfg)
	start := base
	if opts.fromDefaults {
		start = params.DefaultVector()
	}

	// Fixed seeds so every evaluation sees the same worlds
	evalSeeds := make([]int64, opts.seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, opts.generations, evalSeeds, baseCfg)

	logFile, err := os.Create(filepath.Join(opts.outputDir, "optimize_log.csv"))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()

	tracker, err := newEvalTracker(logFile, params, opts.maxEvals)
	if err != nil {
		return fmt.Errorf("writing log header: %w", err)
	}

	// The search runs in normalized [0,1] space
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			fitness := evaluator.Evaluate(raw)
			if err := tracker.record(raw, fitness); err != nil {
				slog.Error("failed to log evaluation", "error", err)
			}
			fmt.Println(tracker.progress(fitness, evaluator.LastTrend()))
			return fitness
		},
	}

	popSize := opts.population
	if popSize == 0 {
		// Auto-size: 4 + floor(3*ln(n))
		popSize = 4 + int(3.0*math.Log(float64(params.Dim())))
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	settings := &optimize.Settings{FuncEvaluations: opts.maxEvals}

	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		params.Dim(), popSize, opts.maxEvals)
	fmt.Printf("Seeds per evaluation: %d, generations per run: %d, from defaults: %v\n",
		opts.seeds, opts.generations, opts.fromDefaults)

	began := time.Now()
	result, err := optimize.Minimize(problem, params.Normalize(start), settings, method)
	if err != nil {
		slog.Info("optimization ended", "reason", err)
	}

	// Best params may come from any evaluation, not just the final one
	best, bestFitness := tracker.best()
	if best == nil && result != nil {
		best = params.Clamp(params.Denormalize(result.X))
	}
	if best == nil {
		return fmt.Errorf("no evaluations completed")
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", tracker.count, formatDuration(time.Since(began)))
	fmt.Printf("Best fitness: %.3f\n\n", bestFitness)
	writeBestParams(os.Stdout, params, best, base)

	return writeResults(opts.outputDir, baseCfg, params, best, evaluator)
}

// writeResults saves the best config and the best run's hall of fame.
func writeResults(dir string, baseCfg *config.Config, params *ParamVector, best []float64, evaluator *FitnessEvaluator) error {
	bestCfg := baseCfg.Clone()
	params.ApplyToConfig(bestCfg, best)

	configPath := filepath.Join(dir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configPath); err != nil {
		return err
	}
	fmt.Printf("\nBest config saved to: %s\n", configPath)

	hof := evaluator.BestHallOfFame()
	if hof == nil {
		return nil
	}
	data, err := hof.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling hall of fame: %w", err)
	}
	hofPath := filepath.Join(dir, "hall_of_fame.json")
	if err := os.WriteFile(hofPath, data, 0644); err != nil {
		return fmt.Errorf("writing hall of fame: %w", err)
	}
	fmt.Printf("Hall of fame saved to: %s\n", hofPath)
	return nil
}
