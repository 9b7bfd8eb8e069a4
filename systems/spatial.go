// Package systems contains the per-tick ECS systems and the geometry they share.
package systems

import "math"

// Wrap maps a coordinate onto the unit torus [0, 1).
func Wrap(v float64) float64 {
	v -= math.Floor(v)
	if v >= 1 {
		v = 0
	}
	return v
}

// ToroidalDelta returns the shortest displacement from (x1,y1) to (x2,y2)
// on the unit torus. Each component is in [-0.5, 0.5].
func ToroidalDelta(x1, y1, x2, y2 float64) (dx, dy float64) {
	dx = x2 - x1
	dy = y2 - y1

	if dx > 0.5 {
		dx -= 1
	} else if dx < -0.5 {
		dx += 1
	}
	if dy > 0.5 {
		dy -= 1
	} else if dy < -0.5 {
		dy += 1
	}

	return dx, dy
}

// ToroidalDistance returns the shortest distance between two points on the unit torus.
func ToroidalDistance(x1, y1, x2, y2 float64) float64 {
	dx, dy := ToroidalDelta(x1, y1, x2, y2)
	return math.Hypot(dx, dy)
}
