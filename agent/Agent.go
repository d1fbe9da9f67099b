// Package agent defines an agent interface
package agent

import (
	"github.com/samuelfneumann/fuzzppo/timestep"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which learns weights, and a Policy
// which chooses actions in each state. The Policy chooses which actions
// are taken, and the Learner uses these actions to update the Policy.
type Agent interface {
	Learner
	Policy
}

// A Closer is an agent that must be closed after it is done learning
type Closer interface {
	Agent
	Close() error
}

// Learner implements a learning algorithm that defines how weights are
// updated.
type Learner interface {
	// Step performs a single update to the learner. Step is a no-op
	// when no complete transition has been observed since the last
	// call.
	Step() error

	// Observe records that an action lead to some timestep
	Observe(action int, nextObs timestep.TimeStep) error

	// ObserveFirst records the first timestep of a session
	ObserveFirst(timestep.TimeStep) error
}

// Policy represents a policy that an agent can have.
//
// For a given agent, the Policy and Learner should have pointers to the
// same weights so that any changes the learner makes to the weights are
// reflected in the actions the Policy chooses
type Policy interface {
	SelectAction(t timestep.TimeStep) (Decision, error)
}

// Decision is an action selected by a Policy together with the action
// probabilities it was sampled from.
type Decision struct {
	Action int
	Probs  []float64
}
