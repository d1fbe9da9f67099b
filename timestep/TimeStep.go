// Package timestep implements timesteps of the advisor-fuzzer interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either the
// first step of a session or any later step
type StepType int

const (
	First StepType = iota
	Mid
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	default:
		return "Mid"
	}
}

// TimeStep packages together a single request from the fuzzer. Reward
// is the reward earned by the action returned on the previous
// TimeStep, and is meaningless on the first TimeStep of a session.
type TimeStep struct {
	stepType    StepType
	Reward      float64
	Observation *mat.VecDense
	Number      int
}

// New returns a new TimeStep. Steps are numbered from 1.
func New(t StepType, r float64, o *mat.VecDense, n int) TimeStep {
	return TimeStep{t, r, o, n}
}

// First returns whether a TimeStep is the first in a session
func (t *TimeStep) First() bool {
	return t.stepType == First
}

// Mid returns whether a TimeStep follows some earlier TimeStep
func (t *TimeStep) Mid() bool {
	return t.stepType == Mid
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Step Number:  %v"

	return fmt.Sprintf(str, t.stepType, t.Reward, t.Number)
}

// Transition packages together a (s, a, r, s') tuple. The reward is
// the one received together with the next state.
type Transition struct {
	State     *mat.VecDense
	Action    int
	Reward    float64
	NextState *mat.VecDense
}

// NewTransition creates a new transition from the state and action of
// one TimeStep and the reward and observation of the TimeStep after it
func NewTransition(step TimeStep, action int,
	nextStep TimeStep) Transition {
	return Transition{
		State:     step.Observation,
		Action:    action,
		Reward:    nextStep.Reward,
		NextState: nextStep.Observation,
	}
}

func (t Transition) String() string {
	return fmt.Sprintf("Transition | Action: %v  |  Reward:  %.2f", t.Action,
		t.Reward)
}
