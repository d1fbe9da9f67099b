package expreplay

import (
	"github.com/samuelfneumann/fuzzppo/timestep"
)

// onlineCache implements an experience replay buffer for sampling
// completely online.
//
// The cache holds at most a single transition. Adding a transition
// replaces any transition not yet sampled, and sampling empties the
// cache, so each transition is learned from at most once.
type onlineCache struct {
	transition timestep.Transition
	full       bool
}

// NewOnline returns a new online replay buffer
func NewOnline() ExperienceReplayer {
	return &onlineCache{}
}

// Add stores t as the next transition to sample
func (o *onlineCache) Add(t timestep.Transition) error {
	if t.State == nil || t.NextState == nil {
		return &ExpReplayError{Op: "add", Err: errIncompleteTransition}
	}
	o.transition = t
	o.full = true

	return nil
}

// Sample removes and returns the cached transition
func (o *onlineCache) Sample() (timestep.Transition, error) {
	if !o.full {
		err := &ExpReplayError{
			Op:  "sample",
			Err: errEmptyCache,
		}
		return timestep.Transition{}, err
	}
	o.full = false
	return o.transition, nil
}

// Capacity returns the current number of elements in the cache that
// are available for sampling
func (o *onlineCache) Capacity() int {
	if o.full {
		return 1
	}
	return 0
}

// MaxCapacity returns the maximum number of elements that are allowed
// in the cache
func (o *onlineCache) MaxCapacity() int {
	return 1
}
