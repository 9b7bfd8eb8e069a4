package components

// Position represents an entity's location on the unit torus [0,1)x[0,1).
type Position struct {
	X, Y float64
}

// Rotation represents an animal's heading in radians, kept in [0, 2π).
// Heading 0 faces +X.
type Rotation struct {
	Angle float64
}

// Speed is the distance an animal travels per tick, in [0, max_speed].
type Speed struct {
	Value float64
}
