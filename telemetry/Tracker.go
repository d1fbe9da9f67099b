// Package telemetry implements Trackers, which record the decisions
// made at each step of a session
package telemetry

import (
	"github.com/pkg/errors"
)

// Step is the telemetry of one completed request: the reward received
// with it, the action returned, and the action probabilities of the
// policy after any update.
type Step struct {
	Number int
	Reward float64
	Probs  []float64
	Action int
}

// Tracker keeps track of session data. Close flushes any data and
// releases resources; calling Close more than once is not an error.
type Tracker interface {
	Track(s Step) error
	Close() error
}

// multi fans a Step out to several Trackers
type multi struct {
	trackers []Tracker
}

// Multi returns a Tracker that tracks each Step with all trackers in
// order
func Multi(trackers ...Tracker) Tracker {
	return &multi{trackers: append([]Tracker(nil), trackers...)}
}

// Track tracks s with each Tracker, stopping at the first error
func (m *multi) Track(s Step) error {
	for _, t := range m.trackers {
		if err := t.Track(s); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every Tracker and returns the first error encountered
func (m *multi) Close() error {
	var first error
	for _, t := range m.trackers {
		if err := t.Close(); err != nil && first == nil {
			first = errors.Wrap(err, "close")
		}
	}
	return first
}
