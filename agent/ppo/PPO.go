// Package ppo implements a single-transition clipped actor-critic
// agent in the style of Proximal Policy Optimization.
//
// Each time a transition (s, a, r, s') completes, the agent takes one
// gradient step on the state value function towards r + γv(s'), then
// one gradient step on the clipped surrogate objective of a categorical
// policy, using the TD error of the value function before its update as
// the advantage. The old policy probabilities are taken from the policy
// immediately before the policy update, so the probability ratio is 1
// in value but still carries the policy gradient.
package ppo

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samuelfneumann/fuzzppo/agent"
	"github.com/samuelfneumann/fuzzppo/expreplay"
	"github.com/samuelfneumann/fuzzppo/initwfn"
	ts "github.com/samuelfneumann/fuzzppo/timestep"
	"github.com/samuelfneumann/fuzzppo/utils/floatutils"
)

// ErrNonFinite is returned when finiteness checks are enabled and a
// reward, observation, or loss is NaN or ±Inf
var ErrNonFinite = errors.New("non-finite value")

// UpdateStats describes the last update of a PPO agent
type UpdateStats struct {
	Updates    int
	TDTarget   float64
	Value      float64
	Advantage  float64
	ValueLoss  float64
	ProbOld    float64
	Ratio      float64
	PolicyLoss float64

	// Surrogate is the clipped surrogate objective of the update and
	// Clipped whether its clipped term was selected
	Surrogate float64
	Clipped   bool
}

// PPO implements the single-transition clipped actor-critic agent
type PPO struct {
	policy *categorical
	value  *stateValue
	replay expreplay.ExperienceReplayer

	prevStep ts.TimeStep
	started  bool

	gamma       float64
	clip        float64
	checkFinite bool
	numActions  int

	stats  UpdateStats
	logger zerolog.Logger
}

// New creates a new PPO agent. The policy and value network weights are
// initialized from seed and seed+1, action sampling uses seed+2, and
// the policy and value biases are drawn from U(±1/√fanIn) seeded with
// seed+3 and seed+4.
func New(c Config, seed uint64) (*PPO, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	hidden := c.Hidden
	if hidden == nil {
		hidden = DefaultHidden()
	}

	policy, err := newCategorical(c.Features, c.Actions, hidden, c.Clip,
		c.InitWFn.Seeded(seed), initwfn.FanInBias(seed+3),
		c.PolicySolver.Solver, seed+2)
	if err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	value, err := newStateValue(c.Features, hidden,
		c.InitWFn.Seeded(seed+1), initwfn.FanInBias(seed+4),
		c.ValueSolver.Solver)
	if err != nil {
		policy.Close()
		return nil, fmt.Errorf("new: %v", err)
	}

	return &PPO{
		policy:      policy,
		value:       value,
		replay:      expreplay.NewOnline(),
		gamma:       c.Gamma,
		clip:        c.Clip,
		checkFinite: c.CheckFinite,
		numActions:  c.Actions,
		logger:      c.logger(),
	}, nil
}

// ObserveFirst records the first timestep of a session
func (p *PPO) ObserveFirst(t ts.TimeStep) error {
	if !t.First() {
		p.logger.Warn().Int("step", t.Number).
			Msg("ObserveFirst() called on a timestep that is not first")
	}
	if err := p.validate(t); err != nil {
		return errors.Wrap(err, "observeFirst")
	}
	p.prevStep = t
	p.started = true
	return nil
}

// Observe records that taking action in the previously observed
// timestep lead to nextStep
func (p *PPO) Observe(action int, nextStep ts.TimeStep) error {
	if !p.started {
		return fmt.Errorf("observe: no previous timestep observed")
	}
	if err := p.validate(nextStep); err != nil {
		return errors.Wrap(err, "observe")
	}

	transition := ts.NewTransition(p.prevStep, action, nextStep)
	if err := p.replay.Add(transition); err != nil {
		return errors.Wrap(err, "observe: could not cache transition")
	}
	p.prevStep = nextStep
	return nil
}

// Step updates the value function and then the policy on the last
// observed transition. Step does nothing if there is no transition
// that has not yet been learned from.
func (p *PPO) Step() error {
	t, err := p.replay.Sample()
	if expreplay.IsEmptyBuffer(err) {
		return nil
	} else if err != nil {
		return errors.Wrap(err, "step")
	}
	state := t.State.RawVector().Data
	nextState := t.NextState.RawVector().Data

	nextValue, err := p.value.Predict(nextState)
	if err != nil {
		return errors.Wrap(err, "step: could not predict next state value")
	}
	tdTarget := TDTarget(t.Reward, p.gamma, nextValue)

	value, valueLoss, err := p.value.Train(state, tdTarget)
	if err != nil {
		return errors.Wrap(err, "step: could not update value function")
	}
	advantage := Advantage(tdTarget, value)

	probs, err := p.policy.Probabilities(state)
	if err != nil {
		return errors.Wrap(err, "step: could not compute old probabilities")
	}
	probOld := probs[t.Action]

	ratio, policyLoss, err := p.policy.Train(state, t.Action, probOld,
		advantage)
	if err != nil {
		return errors.Wrap(err, "step: could not update policy")
	}
	surrogate, clipped := ClippedSurrogate(ratio, advantage, p.clip)

	p.stats = UpdateStats{
		Updates:    p.stats.Updates + 1,
		TDTarget:   tdTarget,
		Value:      value,
		Advantage:  advantage,
		ValueLoss:  valueLoss,
		ProbOld:    probOld,
		Ratio:      ratio,
		PolicyLoss: policyLoss,
		Surrogate:  surrogate,
		Clipped:    clipped,
	}
	p.logger.Debug().
		Float64("tdTarget", tdTarget).
		Float64("advantage", advantage).
		Float64("valueLoss", valueLoss).
		Float64("ratio", ratio).
		Float64("policyLoss", policyLoss).
		Bool("clipped", clipped).
		Msg("update")

	if p.checkFinite && !floatutils.AllFinite(valueLoss, policyLoss) {
		return errors.Wrapf(ErrNonFinite, "step: value loss %v, policy "+
			"loss %v", valueLoss, policyLoss)
	}
	return nil
}

// SelectAction samples an action from the policy in the state of t.
// The sampled action is always in [0, Actions).
func (p *PPO) SelectAction(t ts.TimeStep) (agent.Decision, error) {
	probs, err := p.policy.Probabilities(t.Observation.RawVector().Data)
	if err != nil {
		return agent.Decision{}, errors.Wrap(err, "selectAction")
	}
	if p.checkFinite && !floatutils.AllFinite(probs...) {
		return agent.Decision{}, errors.Wrapf(ErrNonFinite,
			"selectAction: probabilities %v", probs)
	}

	action := p.policy.Sample(probs)
	if action < 0 || action >= p.numActions {
		p.logger.Warn().Int("action", action).Int("step", t.Number).
			Msg("sampled action out of range, clamping")
		action = clampAction(action, p.numActions)
	}
	return agent.Decision{Action: action, Probs: probs}, nil
}

// Stats returns statistics of the last update
func (p *PPO) Stats() UpdateStats {
	return p.stats
}

// Close releases the VMs of the agent
func (p *PPO) Close() error {
	policyErr := p.policy.Close()
	valueErr := p.value.Close()
	if policyErr != nil {
		return errors.Wrap(policyErr, "close")
	}
	return errors.Wrap(valueErr, "close")
}

// validate checks a timestep for non-finite values when finiteness
// checks are enabled
func (p *PPO) validate(t ts.TimeStep) error {
	if t.Observation == nil {
		return fmt.Errorf("timestep %v has no observation", t.Number)
	}
	if !p.checkFinite {
		return nil
	}
	if !floatutils.AllFinite(t.Reward) ||
		!floatutils.AllFinite(t.Observation.RawVector().Data...) {
		return errors.Wrapf(ErrNonFinite, "timestep %v", t.Number)
	}
	return nil
}

func clampAction(action, numActions int) int {
	if action < 0 {
		return 0
	}
	if action >= numActions {
		return numActions - 1
	}
	return action
}
