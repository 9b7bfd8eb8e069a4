package systems

import (
	"fmt"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/config"
)

// MovementSystem runs each animal's eye and brain, then moves it.
type MovementSystem struct {
	eye      Eye
	movement config.MovementConfig

	posMap     *ecs.Map[components.Position]
	rotMap     *ecs.Map[components.Rotation]
	speedMap   *ecs.Map[components.Speed]
	foragerMap *ecs.Map[components.Forager]

	// Reused per-animal sensor buffer
	inputs []float64
}

// NewMovementSystem creates a new movement system.
func NewMovementSystem(w *ecs.World, eye Eye, movement config.MovementConfig) *MovementSystem {
	return &MovementSystem{
		eye:        eye,
		movement:   movement,
		posMap:     ecs.NewMap[components.Position](w),
		rotMap:     ecs.NewMap[components.Rotation](w),
		speedMap:   ecs.NewMap[components.Speed](w),
		foragerMap: ecs.NewMap[components.Forager](w),
		inputs:     make([]float64, eye.Sectors),
	}
}

// Update senses, thinks and moves every animal in slice order.
// foods holds the food positions as they stand at the start of the tick.
func (s *MovementSystem) Update(animals []ecs.Entity, foods []components.Position) {
	for i, e := range animals {
		pos := s.posMap.Get(e)
		rot := s.rotMap.Get(e)
		speed := s.speedMap.Get(e)
		forager := s.foragerMap.Get(e)

		s.eye.SenseInto(s.inputs, *pos, rot.Angle, foods)

		speedOut, rotationOut, err := forager.Brain.Propagate(s.inputs)
		if err != nil {
			// Brain topology is checked against the eye when the world is built.
			panic(fmt.Sprintf("systems: animal %d: %v", i, err))
		}

		Advance(pos, rot, speed,
			speedOut*s.movement.SpeedAccel,
			rotationOut*s.movement.RotationAccel,
			s.movement.MaxSpeed,
		)
	}
}

// Advance applies steering deltas and moves one animal along its heading,
// wrapping onto the torus.
func Advance(pos *components.Position, rot *components.Rotation, speed *components.Speed, speedDelta, rotationDelta, maxSpeed float64) {
	speed.Value = clamp(speed.Value+speedDelta, 0, maxSpeed)
	rot.Angle = NormalizeHeading(rot.Angle + rotationDelta)

	pos.X = Wrap(pos.X + math.Cos(rot.Angle)*speed.Value)
	pos.Y = Wrap(pos.Y + math.Sin(rot.Angle)*speed.Value)
}
