package telemetry

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// StepLog tracks each Step as one CSV row: the step number, the reward
// received, then the probability of each action. The header is written
// when the StepLog is created and every row is flushed as soon as it
// is tracked, so the log is complete up to the last step even if the
// process is killed.
type StepLog struct {
	w       *csv.Writer
	c       io.Closer
	actions int
	closed  bool
}

// NewStepLog creates the file at path, truncating any existing file,
// and returns a StepLog writing to it
func NewStepLog(path string, actions int) (*StepLog, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "newStepLog: could not create log")
	}

	log, err := newStepLog(file, file, actions)
	if err != nil {
		file.Close()
		return nil, err
	}
	return log, nil
}

func newStepLog(w io.Writer, c io.Closer, actions int) (*StepLog, error) {
	if actions <= 0 {
		return nil, fmt.Errorf("newStepLog: need at least one action, "+
			"have %v", actions)
	}
	s := &StepLog{w: csv.NewWriter(w), c: c, actions: actions}
	if err := s.write(Header(actions)); err != nil {
		return nil, errors.Wrap(err, "newStepLog: could not write header")
	}
	return s, nil
}

// Header returns the CSV header of a StepLog over the given number of
// actions
func Header(actions int) []string {
	header := make([]string, 0, actions+2)
	header = append(header, "step", "reward")
	for i := 0; i < actions; i++ {
		header = append(header, "a"+strconv.Itoa(i))
	}
	return header
}

// Track writes s as a row of the log
func (s *StepLog) Track(step Step) error {
	if s.closed {
		return fmt.Errorf("track: step log closed")
	}
	if len(step.Probs) != s.actions {
		return fmt.Errorf("track: want %v probabilities have %v",
			s.actions, len(step.Probs))
	}

	row := make([]string, 0, s.actions+2)
	row = append(row, strconv.Itoa(step.Number), formatFloat(step.Reward))
	for _, p := range step.Probs {
		row = append(row, formatFloat(p))
	}
	return errors.Wrapf(s.write(row), "track: step %v", step.Number)
}

// Close flushes and closes the log
func (s *StepLog) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.w.Flush()
	flushErr := s.w.Error()
	var closeErr error
	if s.c != nil {
		closeErr = s.c.Close()
	}
	if flushErr != nil {
		return errors.Wrap(flushErr, "close")
	}
	return errors.Wrap(closeErr, "close")
}

func (s *StepLog) write(row []string) error {
	if err := s.w.Write(row); err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
