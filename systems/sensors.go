package systems

import (
	"math"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/config"
)

// Eye maps nearby food onto angular sectors across the field of view.
// It is stateless; the same Eye serves every animal.
type Eye struct {
	FOVAngle float64 // radians, (0, 2π]
	FOVRange float64 // arena units
	Sectors  int
}

// NewEye creates an eye from configuration.
func NewEye(cfg config.EyeConfig) Eye {
	return Eye{
		FOVAngle: cfg.FOVAngle,
		FOVRange: cfg.FOVRange,
		Sectors:  cfg.Sectors,
	}
}

// Sense returns the perceived food density per sector, each entry in [0, 1].
// Sector 0 is the leftmost edge of the field of view (most negative relative angle).
func (e Eye) Sense(pos components.Position, heading float64, foods []components.Position) []float64 {
	sectors := make([]float64, e.Sectors)
	e.SenseInto(sectors, pos, heading, foods)
	return sectors
}

// SenseInto is Sense writing into dst, which must have length Sectors.
func (e Eye) SenseInto(dst []float64, pos components.Position, heading float64, foods []components.Position) {
	for i := range dst {
		dst[i] = 0
	}

	halfFOV := e.FOVAngle / 2

	for _, food := range foods {
		// Compute delta with toroidal wrapping
		dx, dy := ToroidalDelta(pos.X, pos.Y, food.X, food.Y)
		dist := math.Hypot(dx, dy)

		if dist > e.FOVRange {
			continue
		}

		// Angle to food relative to heading
		relativeAngle := normalizeAngle(math.Atan2(dy, dx) - heading)

		// Check if within FOV
		if relativeAngle < -halfFOV || relativeAngle > halfFOV {
			continue
		}

		// Map to sector
		t := (relativeAngle + halfFOV) / e.FOVAngle // [0, 1]
		sectorIdx := int(t * float64(e.Sectors))
		if sectorIdx >= e.Sectors {
			sectorIdx = e.Sectors - 1
		} else if sectorIdx < 0 {
			sectorIdx = 0
		}

		// Distance weight: closer = stronger signal
		dst[sectorIdx] += clamp01((e.FOVRange - dist) / e.FOVRange)
	}

	for i := range dst {
		dst[i] = clamp01(dst[i])
	}
}
