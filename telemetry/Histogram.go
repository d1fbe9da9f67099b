package telemetry

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Histogram tracks how often each action is taken. Every Every steps
// it writes a progress line with the counts so far, and on Close it
// writes the final counts.
type Histogram struct {
	counts []int
	total  int
	every  int
	out    io.Writer
	closed bool
}

// NewHistogram returns a new Histogram over the given number of
// actions writing progress lines to out every steps. Progress lines are
// disabled if every <= 0.
func NewHistogram(actions, every int, out io.Writer) *Histogram {
	return &Histogram{
		counts: make([]int, actions),
		every:  every,
		out:    out,
	}
}

// Track counts the action of s
func (h *Histogram) Track(s Step) error {
	if s.Action < 0 || s.Action >= len(h.counts) {
		return fmt.Errorf("track: action %v out of range [0, %v)", s.Action,
			len(h.counts))
	}
	h.counts[s.Action]++
	h.total++

	if h.every > 0 && s.Number%h.every == 0 {
		_, err := fmt.Fprintf(h.out, "[PPO] step=%d, actions=%s\n", s.Number,
			FormatCounts(h.counts))
		return err
	}
	return nil
}

// Counts returns a copy of the per-action counts
func (h *Histogram) Counts() []int {
	return append([]int(nil), h.counts...)
}

// Total returns the number of actions tracked
func (h *Histogram) Total() int {
	return h.total
}

// Close writes the final histogram. Only the first call writes.
func (h *Histogram) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	_, err := fmt.Fprintf(h.out, "[PPO] FINAL actions hist: %s\n",
		FormatCounts(h.counts))
	return err
}

// FormatCounts formats counts as [c0, c1, ...]
func FormatCounts(counts []int) string {
	s := make([]string, len(counts))
	for i, c := range counts {
		s[i] = strconv.Itoa(c)
	}
	return "[" + strings.Join(s, ", ") + "]"
}
