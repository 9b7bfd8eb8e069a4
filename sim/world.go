package sim

import (
	"fmt"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/neural"
	"github.com/pthm-cable/forage/rng"
	"github.com/pthm-cable/forage/systems"
	"github.com/pthm-cable/forage/telemetry"
)

// World is one generation's arena: animals and food on the unit torus.
// Entity slices fix the iteration order; an animal's index is its identity
// for statistics.
type World struct {
	world *ecs.World

	animalMapper *ecs.Map4[
		components.Position,
		components.Rotation,
		components.Speed,
		components.Forager,
	]
	foodMapper *ecs.Map2[components.Position, components.Food]

	posMap     *ecs.Map[components.Position]
	rotMap     *ecs.Map[components.Rotation]
	foragerMap *ecs.Map[components.Forager]
	foodMap    *ecs.Map[components.Food]

	animals []ecs.Entity
	foods   []ecs.Entity

	movement *systems.MovementSystem
	feeding  *systems.FeedingSystem

	// Food positions gathered at the start of each tick
	foodPositions []components.Position
}

// newWorld builds a world with randomly placed food and one animal per genome.
// A nil genomes slice creates cfg.World.Animals animals with random brains.
func newWorld(cfg *config.Config, src rng.Source, genomes [][]float64) (*World, error) {
	eye := systems.NewEye(cfg.Eye)
	top := neural.NewTopology(eye.Sectors, cfg.Derived.Hidden)

	w := ecs.NewWorld()
	world := &World{
		world: w,
		animalMapper: ecs.NewMap4[
			components.Position,
			components.Rotation,
			components.Speed,
			components.Forager,
		](w),
		foodMapper:    ecs.NewMap2[components.Position, components.Food](w),
		posMap:        ecs.NewMap[components.Position](w),
		rotMap:        ecs.NewMap[components.Rotation](w),
		foragerMap:    ecs.NewMap[components.Forager](w),
		foodMap:       ecs.NewMap[components.Food](w),
		movement:      systems.NewMovementSystem(w, eye, cfg.Movement),
		feeding:       systems.NewFeedingSystem(w, cfg.World.ConsumptionRadius),
		foodPositions: make([]components.Position, 0, cfg.World.Foods),
	}

	if genomes == nil {
		for i := 0; i < cfg.World.Animals; i++ {
			brain, err := neural.Random(top, src)
			if err != nil {
				return nil, fmt.Errorf("animal %d: %w", i, err)
			}
			world.spawnAnimal(brain, src)
		}
	} else {
		for i, genome := range genomes {
			brain, err := neural.FromGenome(top, genome)
			if err != nil {
				return nil, fmt.Errorf("animal %d: %w", i, err)
			}
			world.spawnAnimal(brain, src)
		}
	}

	for i := 0; i < cfg.World.Foods; i++ {
		world.spawnFood(src)
	}

	return world, nil
}

// spawnAnimal places an animal at a random pose with zero speed and fitness.
func (w *World) spawnAnimal(brain *neural.Brain, src rng.Source) {
	pos := components.Position{X: src.Float64(), Y: src.Float64()}
	rot := components.Rotation{Angle: src.Range(0, 2*math.Pi)}
	speed := components.Speed{}
	forager := components.Forager{Brain: brain}

	w.animals = append(w.animals, w.animalMapper.NewEntity(&pos, &rot, &speed, &forager))
}

func (w *World) spawnFood(src rng.Source) {
	pos := components.Position{X: src.Float64(), Y: src.Float64()}
	food := components.Food{}

	w.foods = append(w.foods, w.foodMapper.NewEntity(&pos, &food))
}

// Tick advances the world by one step: every animal moves, then every
// animal eats. Returns the number of food items eaten.
func (w *World) Tick(src rng.Source, perf *telemetry.PerfCollector) int {
	if perf != nil {
		perf.StartTick()
		perf.StartPhase(telemetry.PhaseMovement)
	}

	w.foodPositions = w.foodPositions[:0]
	for _, f := range w.foods {
		w.foodPositions = append(w.foodPositions, *w.posMap.Get(f))
	}
	w.movement.Update(w.animals, w.foodPositions)

	if perf != nil {
		perf.StartPhase(telemetry.PhaseFeeding)
	}

	eaten := w.feeding.Update(w.animals, w.foods, src)

	if perf != nil {
		perf.EndTick()
	}

	return eaten
}

// population returns every animal's genome and fitness in index order.
func (w *World) population() (genomes [][]float64, fitness []float64) {
	genomes = make([][]float64, len(w.animals))
	fitness = make([]float64, len(w.animals))
	for i, e := range w.animals {
		f := w.foragerMap.Get(e)
		genomes[i] = f.Brain.Genome()
		fitness[i] = float64(f.Fitness)
	}
	return genomes, fitness
}

// foodRespawns totals how many times food was eaten and relocated.
func (w *World) foodRespawns() int {
	total := 0
	for _, f := range w.foods {
		total += w.foodMap.Get(f).Respawns
	}
	return total
}

// AnimalCount returns the number of animals.
func (w *World) AnimalCount() int {
	return len(w.animals)
}

// Fitness returns the current fitness of the animal at index i.
func (w *World) Fitness(i int) int {
	return w.foragerMap.Get(w.animals[i]).Fitness
}

// Snapshot returns a copied view of every food and animal, in index order.
func (w *World) Snapshot() Snapshot {
	snap := Snapshot{
		Foods:   make([]FoodView, len(w.foods)),
		Animals: make([]AnimalView, len(w.animals)),
	}

	for i, f := range w.foods {
		pos := w.posMap.Get(f)
		snap.Foods[i] = FoodView{X: pos.X, Y: pos.Y}
	}
	for i, a := range w.animals {
		pos := w.posMap.Get(a)
		rot := w.rotMap.Get(a)
		snap.Animals[i] = AnimalView{X: pos.X, Y: pos.Y, Rotation: rot.Angle}
	}

	return snap
}

// Snapshot is a read-only copy of the world for rendering or export.
type Snapshot struct {
	Foods   []FoodView   `json:"foods"`
	Animals []AnimalView `json:"animals"`
}

// FoodView is a food item's position.
type FoodView struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// AnimalView is an animal's position and heading in radians.
type AnimalView struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
}
