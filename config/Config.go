// Package config reads the configuration of the advisor service from
// the environment
package config

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samuelfneumann/fuzzppo/agent/ppo"
	"github.com/samuelfneumann/fuzzppo/initwfn"
	"github.com/samuelfneumann/fuzzppo/solver"
	"github.com/samuelfneumann/fuzzppo/wire"
)

// Environment variables
const (
	EnvSocket        = "AFL_RL_SOCK"
	EnvLearningRate  = "RL_LR"
	EnvGamma         = "RL_GAMMA"
	EnvClip          = "RL_CLIP"
	EnvLogPath       = "RL_LOG"
	EnvSeed          = "RL_SEED"
	EnvOptimizer     = "RL_OPTIMIZER"
	EnvInit          = "RL_INIT"
	EnvProgressEvery = "RL_PROGRESS_EVERY"
	EnvCheckFinite   = "RL_CHECK_FINITE"
	EnvGradClip      = "RL_GRAD_CLIP"
	EnvLogLevel      = "RL_LOG_LEVEL"
)

// Config is the configuration of one advisor session
type Config struct {
	Socket  string `json:"socket"`
	LogPath string `json:"log_path"`

	LearningRate float64      `json:"learning_rate"`
	Gamma        float64      `json:"gamma"`
	Clip         float64      `json:"clip"`
	Seed         uint64       `json:"seed"`
	Optimizer    solver.Type  `json:"optimizer"`
	Init         initwfn.Type `json:"init"`
	GradClip     float64      `json:"grad_clip"`
	CheckFinite  bool         `json:"check_finite"`

	ProgressEvery int    `json:"progress_every"`
	LogLevel      string `json:"log_level"`
}

// Default returns the default configuration. The seed is taken from
// the current time.
func Default() Config {
	return Config{
		Socket:        "/tmp/afl_rl.sock",
		LogPath:       "ppo_log.csv",
		LearningRate:  1e-4,
		Gamma:         0.99,
		Clip:          0.2,
		Seed:          uint64(time.Now().UnixNano()),
		Optimizer:     solver.Adam,
		Init:          initwfn.FanInU,
		GradClip:      0,
		CheckFinite:   false,
		ProgressEvery: 100,
		LogLevel:      "info",
	}
}

// FromEnv returns the default configuration overridden by any of the
// environment variables that are set. A variable that is set but
// cannot be parsed is an error.
func FromEnv() (Config, error) {
	return fromEnv(newEnv())
}

func fromEnv(e *env) (Config, error) {
	c := Default()

	c.Socket = e.String(EnvSocket, c.Socket)
	c.LogPath = e.String(EnvLogPath, c.LogPath)
	c.LearningRate = e.Float(EnvLearningRate, c.LearningRate)
	c.Gamma = e.Float(EnvGamma, c.Gamma)
	c.Clip = e.Float(EnvClip, c.Clip)
	c.Seed = e.Uint(EnvSeed, c.Seed)
	c.Optimizer = solver.Type(e.String(EnvOptimizer, string(c.Optimizer)))
	c.Init = initwfn.Type(e.String(EnvInit, string(c.Init)))
	c.GradClip = e.Float(EnvGradClip, c.GradClip)
	c.CheckFinite = e.Bool(EnvCheckFinite, c.CheckFinite)
	c.ProgressEvery = e.Int(EnvProgressEvery, c.ProgressEvery)
	c.LogLevel = e.String(EnvLogLevel, c.LogLevel)

	if err := e.Err(); err != nil {
		return Config{}, errors.Wrap(err, "fromEnv")
	}
	return c, c.Validate()
}

// Validate checks a Config for errors
func (c Config) Validate() error {
	if c.Socket == "" {
		return fmt.Errorf("validate: socket path must not be empty")
	}
	if c.LogPath == "" {
		return fmt.Errorf("validate: log path must not be empty")
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("validate: learning rate must be positive, have %v",
			c.LearningRate)
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("validate: discount must be in [0, 1], have %v",
			c.Gamma)
	}
	if c.Clip < 0 {
		return fmt.Errorf("validate: clip width must be non-negative, "+
			"have %v", c.Clip)
	}
	if c.GradClip < 0 {
		return fmt.Errorf("validate: gradient clip must be non-negative, "+
			"have %v", c.GradClip)
	}
	if c.ProgressEvery < 1 {
		return fmt.Errorf("validate: progress period must be at least 1, "+
			"have %v", c.ProgressEvery)
	}
	if c.Optimizer != solver.Adam && c.Optimizer != solver.Vanilla {
		return fmt.Errorf("validate: unknown optimizer %q", c.Optimizer)
	}
	switch c.Init {
	case initwfn.FanInU, initwfn.GlorotU, initwfn.GlorotN, initwfn.HeU,
		initwfn.HeN:
	default:
		return fmt.Errorf("validate: unknown weight initializer %q", c.Init)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("validate: %v", err)
	}
	return nil
}

// Level returns the configured log level
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// Agent returns the configuration of the PPO agent described by c
func (c Config) Agent(logger *zerolog.Logger) (ppo.Config, error) {
	policySolver, err := solver.New(c.Optimizer, c.LearningRate, c.GradClip)
	if err != nil {
		return ppo.Config{}, errors.Wrap(err, "agent")
	}
	init, err := initwfn.New(c.Init, c.Seed)
	if err != nil {
		return ppo.Config{}, errors.Wrap(err, "agent")
	}

	return ppo.Config{
		Features:     wire.StateDim,
		Actions:      wire.NumActions,
		Hidden:       ppo.DefaultHidden(),
		Gamma:        c.Gamma,
		Clip:         c.Clip,
		PolicySolver: policySolver,
		ValueSolver:  policySolver.Fresh(),
		InitWFn:      init,
		CheckFinite:  c.CheckFinite,
		Logger:       logger,
	}, nil
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler so that
// the hyperparameters can be logged at startup
func (c Config) MarshalZerologObject(e *zerolog.Event) {
	e.Str("socket", c.Socket).
		Str("log", c.LogPath).
		Float64("lr", c.LearningRate).
		Float64("gamma", c.Gamma).
		Float64("clip", c.Clip).
		Uint64("seed", c.Seed).
		Str("optimizer", string(c.Optimizer)).
		Str("init", string(c.Init)).
		Float64("gradClip", c.GradClip).
		Bool("checkFinite", c.CheckFinite).
		Int("progressEvery", c.ProgressEvery)
}
