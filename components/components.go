// Package components defines ECS components for the simulation.
package components

import "github.com/pthm-cable/forage/neural"

// Forager holds an animal's controller and its score for the current generation.
type Forager struct {
	Brain   *neural.Brain
	Fitness int // Food eaten this generation
}

// Food marks a food entity. Respawns counts how many times it has been
// eaten and relocated within the current generation.
type Food struct {
	Respawns int
}
