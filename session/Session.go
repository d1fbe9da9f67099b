// Package session implements the advisor side of a fuzzing session:
// a single fuzzer connects over a unix socket and, for every request,
// the agent learns from the reward it carries and answers with the
// next action.
package session

import (
	"context"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samuelfneumann/fuzzppo/agent"
	"github.com/samuelfneumann/fuzzppo/config"
	"github.com/samuelfneumann/fuzzppo/telemetry"
	ts "github.com/samuelfneumann/fuzzppo/timestep"
	"github.com/samuelfneumann/fuzzppo/wire"
	"gonum.org/v1/gonum/mat"
)

// Option configures a Session
type Option func(*Session)

// WithOutput sets where progress and final histogram lines are
// written. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(s *Session) {
		s.out = w
	}
}

// WithLogger sets the logger of the Session and its agent
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// Session serves one fuzzer connection
type Session struct {
	cfg    config.Config
	out    io.Writer
	logger zerolog.Logger

	agent     agent.Closer
	tracker   telemetry.Tracker
	histogram *telemetry.Histogram

	mu       sync.Mutex // Guards listener and conn
	listener net.Listener
	conn     net.Conn

	state      int32
	steps      int
	prevAction int

	closeOnce sync.Once
	closeErr  error
}

// New creates the agent, binds the socket, and opens the step log. Any
// file at the socket path is removed first.
func New(cfg config.Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "new")
	}

	s := &Session{
		cfg:    cfg,
		out:    os.Stdout,
		logger: zerolog.Nop(),
		state:  int32(WaitConnection),
	}
	for _, opt := range opts {
		opt(s)
	}

	agentConfig, err := cfg.Agent(&s.logger)
	if err != nil {
		return nil, errors.Wrap(err, "new")
	}
	a, err := newAgent(agentConfig, cfg.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "new: could not create agent")
	}
	s.agent = a

	if err := removeStale(cfg.Socket); err != nil {
		a.Close()
		return nil, errors.Wrap(err, "new")
	}
	listener, err := net.Listen("unix", cfg.Socket)
	if err != nil {
		a.Close()
		return nil, errors.Wrapf(err, "new: could not bind %v", cfg.Socket)
	}

	stepLog, err := telemetry.NewStepLog(cfg.LogPath, wire.NumActions)
	if err != nil {
		listener.Close()
		a.Close()
		return nil, errors.Wrap(err, "new")
	}
	s.histogram = telemetry.NewHistogram(wire.NumActions, cfg.ProgressEvery,
		s.out)
	s.tracker = telemetry.Multi(stepLog, s.histogram)
	s.listener = listener
	s.logger.Info().Str("socket", cfg.Socket).Msg("listening")

	return s, nil
}

// Run accepts a single connection and serves it until the fuzzer
// disconnects or ctx is done, both of which end the session without
// error. Run always closes the Session before returning.
func (s *Session) Run(ctx context.Context) error {
	defer s.Close()

	// Closing the network resources is the only way to unblock
	// Accept, Read, and Write
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("shutting down")
			s.closeNet()
		case <-stop:
		}
	}()

	s.setState(WaitConnection)
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener == nil {
		return nil
	}
	conn, err := listener.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return errors.Wrap(err, "run: accept")
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	if ctx.Err() != nil {
		return nil
	}
	s.logger.Info().Msg("client connected")

	dec := wire.NewDecoder(conn)
	enc := wire.NewEncoder(conn)
	for {
		s.setState(AwaitRequest)
		req, err := dec.Decode()
		if wire.IsEndOfStream(err) {
			s.logger.Info().Int("steps", s.steps).AnErr("reason", err).
				Msg("client disconnected")
			return nil
		} else if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "run: receive")
		}

		s.setState(UpdateAndInfer)
		action, err := s.step(req)
		if err != nil {
			return errors.Wrapf(err, "run: step %d", s.steps+1)
		}

		s.setState(SendResponse)
		if err := enc.Encode(action); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "run: send")
		}
	}
}

// step learns from the reward of the previous action and selects the
// next action. A request only counts as a step once it has been
// tracked.
func (s *Session) step(req wire.Request) (int, error) {
	n := s.steps + 1
	state := make([]float64, wire.StateDim)
	copy(state, req.State[:])
	obs := mat.NewVecDense(wire.StateDim, state)

	var t ts.TimeStep
	if n == 1 {
		t = ts.New(ts.First, req.Reward, obs, n)
		if err := s.agent.ObserveFirst(t); err != nil {
			return 0, err
		}
	} else {
		t = ts.New(ts.Mid, req.Reward, obs, n)
		if err := s.agent.Observe(s.prevAction, t); err != nil {
			return 0, err
		}
		if err := s.agent.Step(); err != nil {
			return 0, err
		}
	}

	d, err := s.agent.SelectAction(t)
	if err != nil {
		return 0, err
	}
	s.prevAction = d.Action

	err = s.tracker.Track(telemetry.Step{
		Number: n,
		Reward: req.Reward,
		Probs:  d.Probs,
		Action: d.Action,
	})
	if err != nil {
		return 0, errors.Wrap(err, "could not track step")
	}
	s.steps = n
	return d.Action, nil
}

// Close flushes and closes the step log, writes the final action
// histogram, and releases the connection, listener and socket file.
// Only the first call has any effect; later calls return the same
// error.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if err := s.tracker.Close(); err != nil {
			errs = append(errs, err)
		}
		s.closeNet()
		if err := removeStale(s.cfg.Socket); err != nil {
			errs = append(errs, err)
		}
		if err := s.agent.Close(); err != nil {
			errs = append(errs, err)
		}
		s.setState(Closed)

		if len(errs) > 0 {
			s.closeErr = errors.Wrap(errs[0], "close")
		}
	})
	return s.closeErr
}

// State returns the current state of the session
func (s *Session) State() State {
	return State(atomic.LoadInt32(&s.state))
}

// Steps returns the number of requests served
func (s *Session) Steps() int {
	return s.steps
}

// Histogram returns the number of times each action was returned
func (s *Session) Histogram() []int {
	return s.histogram.Counts()
}

func (s *Session) setState(state State) {
	atomic.StoreInt32(&s.state, int32(state))
}

// closeNet closes the connection and listener if they are open
func (s *Session) closeNet() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	if s.listener != nil {
		s.listener.Close()
		s.listener = nil
	}
}

// newAgent validates c and creates its agent
func newAgent(c agent.Config, seed uint64) (agent.Closer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c.CreateAgent(seed)
}

// removeStale removes the file at path if there is one
func removeStale(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "could not remove %v", path)
	}
	return nil
}
