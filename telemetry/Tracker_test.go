package telemetry

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStepLog(t *testing.T) {
	Convey("Given a step log file", t, func() {
		path := filepath.Join(t.TempDir(), "ppo_log.csv")
		log, err := NewStepLog(path, 4)
		So(err, ShouldBeNil)

		Convey("The header is written on creation", func() {
			data, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "step,reward,a0,a1,a2,a3\n")
		})

		Convey("Each tracked step is flushed as one row", func() {
			So(log.Track(Step{Number: 1, Reward: 0,
				Probs: []float64{0.25, 0.25, 0.25, 0.25}}), ShouldBeNil)
			So(log.Track(Step{Number: 2, Reward: 1.5,
				Probs: []float64{0.1, 0.2, 0.3, 0.4}}), ShouldBeNil)

			data, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			lines := strings.Split(strings.TrimSpace(string(data)), "\n")
			So(lines, ShouldResemble, []string{
				"step,reward,a0,a1,a2,a3",
				"1,0,0.25,0.25,0.25,0.25",
				"2,1.5,0.1,0.2,0.3,0.4",
			})
		})

		Convey("A step with the wrong number of probabilities fails", func() {
			So(log.Track(Step{Number: 1, Probs: []float64{1}}), ShouldNotBeNil)
		})

		Convey("Close is idempotent and stops tracking", func() {
			So(log.Close(), ShouldBeNil)
			So(log.Close(), ShouldBeNil)
			So(log.Track(Step{Number: 1, Probs: make([]float64, 4)}),
				ShouldNotBeNil)
		})

		Reset(func() {
			log.Close()
		})
	})

	Convey("Creating a log in a missing directory fails", t, func() {
		_, err := NewStepLog(filepath.Join(t.TempDir(), "x", "log.csv"), 4)
		So(err, ShouldNotBeNil)
	})
}

func TestHistogram(t *testing.T) {
	Convey("Given a histogram reporting every 2 steps", t, func() {
		var out bytes.Buffer
		h := NewHistogram(4, 2, &out)

		for i, a := range []int{1, 3, 3} {
			So(h.Track(Step{Number: i + 1, Action: a}), ShouldBeNil)
		}

		Convey("Counts sum to the number of steps", func() {
			So(h.Counts(), ShouldResemble, []int{0, 1, 0, 2})
			So(h.Total(), ShouldEqual, 3)
		})

		Convey("A progress line is written on every second step", func() {
			So(out.String(), ShouldEqual,
				"[PPO] step=2, actions=[0, 1, 0, 1]\n")
		})

		Convey("The final histogram is written once", func() {
			So(h.Close(), ShouldBeNil)
			So(h.Close(), ShouldBeNil)
			So(strings.Count(out.String(), "FINAL"), ShouldEqual, 1)
			So(out.String(), ShouldEndWith,
				"[PPO] FINAL actions hist: [0, 1, 0, 2]\n")
		})

		Convey("Actions out of range are rejected", func() {
			So(h.Track(Step{Number: 4, Action: 4}), ShouldNotBeNil)
			So(h.Total(), ShouldEqual, 3)
		})
	})
}

func TestMulti(t *testing.T) {
	Convey("Given a multi tracker", t, func() {
		var out bytes.Buffer
		h := NewHistogram(4, 0, &out)
		path := filepath.Join(t.TempDir(), "log.csv")
		log, err := NewStepLog(path, 4)
		So(err, ShouldBeNil)
		m := Multi(log, h)

		So(m.Track(Step{Number: 1, Action: 2,
			Probs: []float64{0, 0, 1, 0}}), ShouldBeNil)
		So(m.Close(), ShouldBeNil)
		So(m.Close(), ShouldBeNil)

		data, err := os.ReadFile(path)
		So(err, ShouldBeNil)
		So(string(data), ShouldEndWith, "1,0,0,0,1,0\n")
		So(out.String(), ShouldEqual, "[PPO] FINAL actions hist: [0, 0, 1, 0]\n")
	})
}
