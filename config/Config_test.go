package config

import (
	"testing"

	"github.com/samuelfneumann/fuzzppo/initwfn"
	"github.com/samuelfneumann/fuzzppo/solver"
	. "github.com/smartystreets/goconvey/convey"
)

func mapEnv(vars map[string]string) *env {
	return &env{lookup: func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}}
}

func TestFromEnv(t *testing.T) {
	Convey("Given an empty environment", t, func() {
		c, err := fromEnv(mapEnv(nil))
		So(err, ShouldBeNil)

		Convey("The defaults are used", func() {
			So(c.Socket, ShouldEqual, "/tmp/afl_rl.sock")
			So(c.LogPath, ShouldEqual, "ppo_log.csv")
			So(c.LearningRate, ShouldEqual, 1e-4)
			So(c.Gamma, ShouldEqual, 0.99)
			So(c.Clip, ShouldEqual, 0.2)
			So(c.Optimizer, ShouldEqual, solver.Adam)
			So(c.Init, ShouldEqual, initwfn.FanInU)
			So(c.ProgressEvery, ShouldEqual, 100)
			So(c.CheckFinite, ShouldBeFalse)
		})
	})

	Convey("Given overrides for every variable", t, func() {
		c, err := fromEnv(mapEnv(map[string]string{
			EnvSocket:        "/run/advisor.sock",
			EnvLearningRate:  "3e-4",
			EnvGamma:         "0.9",
			EnvClip:          "0.1",
			EnvLogPath:       "out.csv",
			EnvSeed:          "42",
			EnvOptimizer:     "Vanilla",
			EnvInit:          "GlorotU",
			EnvProgressEvery: "10",
			EnvCheckFinite:   "true",
			EnvGradClip:      "1.5",
			EnvLogLevel:      "debug",
		}))
		So(err, ShouldBeNil)
		So(c, ShouldResemble, Config{
			Socket:        "/run/advisor.sock",
			LogPath:       "out.csv",
			LearningRate:  3e-4,
			Gamma:         0.9,
			Clip:          0.1,
			Seed:          42,
			Optimizer:     solver.Vanilla,
			Init:          initwfn.GlorotU,
			GradClip:      1.5,
			CheckFinite:   true,
			ProgressEvery: 10,
			LogLevel:      "debug",
		})
	})

	Convey("Malformed values are errors", t, func() {
		_, err := fromEnv(mapEnv(map[string]string{EnvLearningRate: "fast"}))
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, EnvLearningRate)

		_, err = fromEnv(mapEnv(map[string]string{EnvCheckFinite: "maybe"}))
		So(err, ShouldNotBeNil)
	})

	Convey("Out of range values are errors", t, func() {
		for key, value := range map[string]string{
			EnvLearningRate:  "0",
			EnvGamma:         "1.1",
			EnvClip:          "-0.2",
			EnvProgressEvery: "0",
			EnvOptimizer:     "RMSProp",
			EnvInit:          "Orthogonal",
			EnvLogLevel:      "loud",
		} {
			_, err := fromEnv(mapEnv(map[string]string{key: value}))
			So(err, ShouldNotBeNil)
		}
	})
}

func TestAgentConfig(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		c := Default()
		a, err := c.Agent(nil)
		So(err, ShouldBeNil)

		Convey("The agent configuration is valid", func() {
			So(a.Validate(), ShouldBeNil)
			So(a.Features, ShouldEqual, 8)
			So(a.Actions, ShouldEqual, 4)
			So(a.Hidden, ShouldResemble, []int{64, 64})
			So(a.PolicySolver, ShouldNotEqual, a.ValueSolver)
		})
	})
}

func TestEveryInitializerIsAccepted(t *testing.T) {
	Convey("Given each supported weight initializer", t, func() {
		for _, init := range []initwfn.Type{initwfn.FanInU, initwfn.GlorotU,
			initwfn.GlorotN, initwfn.HeU, initwfn.HeN} {
			c, err := fromEnv(mapEnv(map[string]string{
				EnvInit: string(init),
				EnvSeed: "3",
			}))
			So(err, ShouldBeNil)

			a, err := c.Agent(nil)
			So(err, ShouldBeNil)
			So(a.InitWFn.Type, ShouldEqual, init)
			So(a.Validate(), ShouldBeNil)
		}
	})
}
