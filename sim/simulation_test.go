package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/rng"
	"github.com/pthm-cable/forage/telemetry"
)

// smallConfig returns a fast configuration for tests.
func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.World.Animals = 8
	cfg.World.Foods = 12
	cfg.Generation.AgeLimit = 50
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{"no animals", func(c *config.Config) { c.World.Animals = 0 }},
		{"no sectors", func(c *config.Config) { c.Eye.Sectors = 0 }},
		{"zero age limit", func(c *config.Config) { c.Generation.AgeLimit = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig()
			tt.modify(cfg)

			_, err := New(cfg, Options{Seed: 1})
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("New error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestNewClonesConfig(t *testing.T) {
	cfg := smallConfig()
	s, err := New(cfg, Options{Seed: 1})
	if err != nil {
		t.Fatal(err)
	}

	cfg.Generation.AgeLimit = 1
	if s.Config().Generation.AgeLimit != 50 {
		t.Errorf("simulation saw caller's config change: age limit %d", s.Config().Generation.AgeLimit)
	}
}

func TestInitialWorld(t *testing.T) {
	s, err := New(smallConfig(), Options{Seed: 3})
	if err != nil {
		t.Fatal(err)
	}

	snap := s.World()
	if len(snap.Animals) != 8 || len(snap.Foods) != 12 {
		t.Fatalf("snapshot has %d animals and %d foods, want 8 and 12", len(snap.Animals), len(snap.Foods))
	}
	if s.Age() != 0 || s.Generation() != 0 {
		t.Errorf("age = %d, generation = %d, want 0, 0", s.Age(), s.Generation())
	}

	for i, a := range snap.Animals {
		if a.X < 0 || a.X >= 1 || a.Y < 0 || a.Y >= 1 {
			t.Errorf("animal %d at (%v, %v), outside the arena", i, a.X, a.Y)
		}
		if a.Rotation < 0 || a.Rotation >= 2*math.Pi {
			t.Errorf("animal %d rotation %v, outside [0, 2π)", i, a.Rotation)
		}
	}
}

func TestStepTransition(t *testing.T) {
	cfg := smallConfig()
	cfg.Generation.AgeLimit = 3

	s, err := New(cfg, Options{Seed: 1})
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 3; i++ {
		if _, evolved := s.Step(); evolved {
			t.Fatalf("step %d evolved early", i)
		}
		if s.Age() != i {
			t.Fatalf("age after step %d = %d", i, s.Age())
		}
	}

	if _, evolved := s.Step(); !evolved {
		t.Fatal("step at the age limit did not evolve")
	}
	if s.Age() != 0 || s.Generation() != 1 {
		t.Errorf("after evolving: age = %d, generation = %d, want 0, 1", s.Age(), s.Generation())
	}
}

func TestTrainRunsFullGeneration(t *testing.T) {
	var reports []GenerationReport
	s, err := New(smallConfig(), Options{
		Seed:     1,
		Observer: func(r GenerationReport) { reports = append(reports, r) },
	})
	if err != nil {
		t.Fatal(err)
	}

	stats := s.Train()

	if len(reports) != 1 {
		t.Fatalf("observer called %d times, want 1", len(reports))
	}
	r := reports[0]
	if r.Ticks != 50 {
		t.Errorf("ticks = %d, want the full age limit 50", r.Ticks)
	}
	if r.Generation != 0 || s.Generation() != 1 || s.Age() != 0 {
		t.Errorf("report generation %d, simulation generation %d, age %d", r.Generation, s.Generation(), s.Age())
	}
	if r.Stats != stats {
		t.Errorf("report stats %+v differ from returned %+v", r.Stats, stats)
	}
	if len(r.Fitness) != 8 {
		t.Errorf("fitness has %d entries, want 8", len(r.Fitness))
	}
	if len(r.Champion) != s.Config().Derived.GenomeLength {
		t.Errorf("champion genome length = %d, want %d", len(r.Champion), s.Config().Derived.GenomeLength)
	}

	total := 0.0
	for _, f := range r.Fitness {
		total += f
	}
	if int(total) != r.FoodRespawns {
		t.Errorf("fitness total %v != food respawns %d", total, r.FoodRespawns)
	}
}

func TestTrainMidGeneration(t *testing.T) {
	var ticks int
	s, err := New(smallConfig(), Options{
		Seed:     1,
		Observer: func(r GenerationReport) { ticks = r.Ticks },
	})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 20; i++ {
		s.Step()
	}
	s.Train()

	if ticks != 50 {
		t.Errorf("generation ran %d ticks, want 50", ticks)
	}
}

func TestPopulationSizeConstant(t *testing.T) {
	s, err := New(smallConfig(), Options{Seed: 9})
	if err != nil {
		t.Fatal(err)
	}

	for g := 0; g < 4; g++ {
		s.Train()
		snap := s.World()
		if len(snap.Animals) != 8 || len(snap.Foods) != 12 {
			t.Fatalf("generation %d: %d animals, %d foods", g+1, len(snap.Animals), len(snap.Foods))
		}
	}
}

func TestDeterminism(t *testing.T) {
	run := func() ([]float64, Snapshot) {
		s, err := New(smallConfig(), Options{Seed: 1234})
		if err != nil {
			t.Fatal(err)
		}
		var avgs []float64
		for g := 0; g < 3; g++ {
			avgs = append(avgs, s.Train().Avg)
		}
		for i := 0; i < 10; i++ {
			s.Step()
		}
		return avgs, s.World()
	}

	avgA, snapA := run()
	avgB, snapB := run()

	for i := range avgA {
		if avgA[i] != avgB[i] {
			t.Fatalf("generation %d avg differs: %v vs %v", i, avgA[i], avgB[i])
		}
	}
	for i := range snapA.Animals {
		if snapA.Animals[i] != snapB.Animals[i] {
			t.Fatalf("animal %d differs: %+v vs %+v", i, snapA.Animals[i], snapB.Animals[i])
		}
	}
	for i := range snapA.Foods {
		if snapA.Foods[i] != snapB.Foods[i] {
			t.Fatalf("food %d differs: %+v vs %+v", i, snapA.Foods[i], snapB.Foods[i])
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a, _ := New(smallConfig(), Options{Seed: 1})
	b, _ := New(smallConfig(), Options{Seed: 2})

	if a.World().Animals[0] == b.World().Animals[0] {
		t.Error("different seeds produced the same first animal")
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	s, err := New(smallConfig(), Options{Seed: 5})
	if err != nil {
		t.Fatal(err)
	}

	snap := s.World()
	orig := snap.Animals[0]
	snap.Animals[0].X = 42
	snap.Foods[0].Y = 42

	again := s.World()
	if again.Animals[0] != orig {
		t.Error("modifying a snapshot changed the world")
	}
	if again.Foods[0].Y == 42 {
		t.Error("modifying a snapshot changed the food")
	}
}

func TestWorldConsumption(t *testing.T) {
	cfg := smallConfig()
	cfg.World.Animals = 1
	cfg.World.Foods = 1

	src := rng.New(7)
	w, err := newWorld(cfg, src, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Put the animal right on the food. One tick moves it by at most
	// speed_accel, well inside the consumption radius.
	*w.posMap.Get(w.animals[0]) = components.Position{X: 0.5, Y: 0.5}
	*w.posMap.Get(w.foods[0]) = components.Position{X: 0.5, Y: 0.5}

	eaten := w.Tick(src, nil)

	if eaten != 1 || w.Fitness(0) != 1 {
		t.Fatalf("eaten = %d, fitness = %d, want 1, 1", eaten, w.Fitness(0))
	}
	if w.foodRespawns() != 1 {
		t.Errorf("food respawns = %d, want 1", w.foodRespawns())
	}

	food := w.Snapshot().Foods[0]
	if food.X == 0.5 && food.Y == 0.5 {
		t.Error("eaten food was not relocated")
	}
}

func TestWorldFromGenomesShapeMismatch(t *testing.T) {
	cfg := smallConfig()
	_, err := newWorld(cfg, rng.New(1), [][]float64{make([]float64, 3)})
	if err == nil {
		t.Error("newWorld accepted a genome of the wrong length")
	}
}

func TestPerfPhasesRecorded(t *testing.T) {
	perf := telemetry.NewPerfCollector(100)
	s, err := New(smallConfig(), Options{Seed: 1, Perf: perf})
	if err != nil {
		t.Fatal(err)
	}

	s.Train()

	stats := perf.Stats()
	for _, phase := range []string{telemetry.PhaseMovement, telemetry.PhaseFeeding} {
		if _, ok := stats.PhaseAvg[phase]; !ok {
			t.Errorf("phase %q not recorded", phase)
		}
	}

	// The evolution is timed separately and is not a tick sample.
	if stats.Samples != 50 {
		t.Errorf("perf window holds %d samples, want the 50 physics ticks", stats.Samples)
	}
	if stats.Evolutions != 1 {
		t.Errorf("evolutions = %d, want 1", stats.Evolutions)
	}
}

func BenchmarkTick(b *testing.B) {
	cfg := config.Default()
	src := rng.New(1)
	w, err := newWorld(cfg, src, nil)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Tick(src, nil)
	}
}

func TestGenomesAreCopies(t *testing.T) {
	s, err := New(smallConfig(), Options{Seed: 1})
	if err != nil {
		t.Fatal(err)
	}

	got := s.Genomes()
	if len(got) != 8 || len(got[0]) != s.Config().Derived.GenomeLength {
		t.Fatalf("Genomes returned %d genomes of length %d", len(got), len(got[0]))
	}

	orig := got[0][0]
	got[0][0] = orig + 99
	if s.Genomes()[0][0] != orig {
		t.Error("Genomes aliases the brains")
	}
}

func TestReportDescribesConcludedGeneration(t *testing.T) {
	cfg := smallConfig()
	cfg.Generation.AgeLimit = 5

	var report GenerationReport
	s, err := New(cfg, Options{Seed: 11, Observer: func(r GenerationReport) { report = r }})
	if err != nil {
		t.Fatal(err)
	}

	genomes := s.Genomes()
	for i := 0; i < 5; i++ {
		s.Step()
	}
	final := s.World()

	if _, evolved := s.Step(); !evolved {
		t.Fatal("step at the age limit did not evolve")
	}

	if len(report.Genomes) != len(genomes) {
		t.Fatalf("report has %d genomes, want %d", len(report.Genomes), len(genomes))
	}
	for i := range genomes {
		for j := range genomes[i] {
			if report.Genomes[i][j] != genomes[i][j] {
				t.Fatalf("report genome %d differs from the concluded generation at gene %d", i, j)
			}
		}
	}
	for j, g := range report.Champion {
		if g != report.Genomes[report.Stats.MaxIndex][j] {
			t.Fatalf("champion differs from the genome at max index %d", report.Stats.MaxIndex)
		}
	}

	for i := range final.Animals {
		if report.World.Animals[i] != final.Animals[i] {
			t.Errorf("report animal %d = %+v, want final pose %+v", i, report.World.Animals[i], final.Animals[i])
		}
	}
	for i := range final.Foods {
		if report.World.Foods[i] != final.Foods[i] {
			t.Errorf("report food %d = %+v, want %+v", i, report.World.Foods[i], final.Foods[i])
		}
	}
}
