package ppo

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samuelfneumann/fuzzppo/agent"
	"github.com/samuelfneumann/fuzzppo/initwfn"
	"github.com/samuelfneumann/fuzzppo/solver"
)

// Config implements a configuration of the single-transition PPO
// agent. Both networks share the same hidden layer sizes and use ReLU
// activations on every hidden layer.
type Config struct {
	Features int
	Actions  int
	Hidden   []int

	Gamma float64 // Discount
	Clip  float64 // Surrogate clipping width ε

	PolicySolver *solver.Solver
	ValueSolver  *solver.Solver
	InitWFn      *initwfn.InitWFn

	// CheckFinite rejects non-finite rewards, observations, and losses
	CheckFinite bool

	Logger *zerolog.Logger `json:"-"`
}

// DefaultHidden returns the default hidden layer sizes
func DefaultHidden() []int {
	return []int{64, 64}
}

var _ agent.Config = Config{}

// CreateAgent creates the PPO agent that the config describes
func (c Config) CreateAgent(seed uint64) (agent.Closer, error) {
	p, err := New(c, seed)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks a Config for errors
func (c Config) Validate() error {
	if c.Features <= 0 {
		return fmt.Errorf("validate: features must be positive, have %v",
			c.Features)
	}
	if c.Actions < 2 {
		return fmt.Errorf("validate: need at least 2 actions, have %v",
			c.Actions)
	}
	for i, h := range c.Hidden {
		if h <= 0 {
			return fmt.Errorf("validate: hidden layer %v has size %v", i, h)
		}
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("validate: discount must be in [0, 1], have %v",
			c.Gamma)
	}
	if c.Clip < 0 {
		return fmt.Errorf("validate: clip width must be non-negative, "+
			"have %v", c.Clip)
	}
	if c.PolicySolver == nil || c.ValueSolver == nil {
		return fmt.Errorf("validate: policy and value solvers must be set")
	}
	if c.PolicySolver == c.ValueSolver {
		return fmt.Errorf("validate: policy and value cannot share a " +
			"solver")
	}
	if c.InitWFn == nil {
		return fmt.Errorf("validate: weight initializer must be set")
	}
	return nil
}

func (c Config) logger() zerolog.Logger {
	if c.Logger == nil {
		return zerolog.Nop()
	}
	return *c.Logger
}
