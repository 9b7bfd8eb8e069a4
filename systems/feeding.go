package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/rng"
)

// FeedingSystem lets animals eat food within the consumption radius.
type FeedingSystem struct {
	radius float64

	posMap     *ecs.Map[components.Position]
	foragerMap *ecs.Map[components.Forager]
	foodMap    *ecs.Map[components.Food]
}

// NewFeedingSystem creates a new feeding system.
func NewFeedingSystem(w *ecs.World, radius float64) *FeedingSystem {
	return &FeedingSystem{
		radius:     radius,
		posMap:     ecs.NewMap[components.Position](w),
		foragerMap: ecs.NewMap[components.Forager](w),
		foodMap:    ecs.NewMap[components.Food](w),
	}
}

// Update checks every animal against every food, in slice order.
// Eaten food is relocated immediately, so a later animal in the same tick
// tests the new position. Returns the number of food items eaten.
func (s *FeedingSystem) Update(animals, foods []ecs.Entity, src rng.Source) int {
	eaten := 0

	for _, a := range animals {
		apos := s.posMap.Get(a)
		forager := s.foragerMap.Get(a)

		for _, f := range foods {
			fpos := s.posMap.Get(f)
			if ToroidalDistance(apos.X, apos.Y, fpos.X, fpos.Y) >= s.radius {
				continue
			}

			forager.Fitness++
			eaten++

			fpos.X = src.Float64()
			fpos.Y = src.Float64()
			s.foodMap.Get(f).Respawns++
		}
	}

	return eaten
}
