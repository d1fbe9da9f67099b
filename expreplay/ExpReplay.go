// Package expreplay implements the transition store between the agent
// observing a transition and learning from it.
//
// The advisor learns strictly online: every update consumes exactly one
// transition, and a transition is only ever used once.
package expreplay

import (
	"github.com/samuelfneumann/fuzzppo/timestep"
)

// ExperienceReplayer stores transitions until a learner samples them
type ExperienceReplayer interface {
	// Add adds a transition to the buffer
	Add(t timestep.Transition) error

	// Sample removes and returns the next transition to learn from
	Sample() (timestep.Transition, error)

	// Capacity returns the current number of samples in the buffer
	Capacity() int

	// MaxCapacity returns the maximum allowable samples in the buffer
	MaxCapacity() int
}
