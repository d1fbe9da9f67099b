package analysis

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"
)

const fuzzerStats = `start_time        : 1700000000
execs_done        : 1000
execs_per_sec     : 250.50
paths_total       : 12
bitmap_cvg        : 3.25%
unique_crashes    : 0
no colon here
`

func TestParse(t *testing.T) {
	Convey("Parsing fuzzer_stats", t, func() {
		stats, err := ParseFuzzerStats(strings.NewReader(fuzzerStats))
		So(err, ShouldBeNil)
		So(stats["execs_done"], ShouldEqual, "1000")
		So(stats["bitmap_cvg"], ShouldEqual, "3.25")
		So(stats, ShouldNotContainKey, "no colon here")
	})

	Convey("Parsing a step log", t, func() {
		log, err := ParseStepLog(strings.NewReader(
			"step,reward,a0,a1,a2,a3\n" +
				"1,0,0.25,0.25,0.25,0.25\n" +
				"x,1,0.1,0.2,0.3,0.4\n" +
				"2,1.5,0.1,0.2\n"))
		So(err, ShouldBeNil)
		So(log.Steps, ShouldResemble, []int{1, 2})
		So(log.Rewards, ShouldResemble, []float64{0, 1.5})
		So(log.Probs[0], ShouldResemble, []float64{0.25, 0.25, 0.25, 0.25})
		So(log.Probs[1], ShouldBeEmpty)
	})

	Convey("Parsing advisor output keeps the last histogram", t, func() {
		hist, err := ParseServerLog(strings.NewReader(
			"listening\n" +
				"[PPO] step=100, actions=[10, 20, 30, 40]\n" +
				"[PPO] step=200, actions=[20, 40, 60, 80]\n" +
				"[PPO] FINAL actions hist: [21, 40, 60, 81]\n"))
		So(err, ShouldBeNil)
		So(hist, ShouldResemble, []int{20, 40, 60, 80})

		hist, err = ParseServerLog(strings.NewReader("nothing\n"))
		So(err, ShouldBeNil)
		So(hist, ShouldBeNil)
	})
}

func TestAggregate(t *testing.T) {
	Convey("Given the statistics of three runs, one missing", t, func() {
		runs := []map[string]string{
			{"execs_done": "10", "bitmap_cvg": "1.5%"},
			nil,
			{"execs_done": "30", "bitmap_cvg": "2.5", "paths_total": "n/a"},
			{"execs_done": "20"},
		}
		agg := Aggregate(runs)

		So(agg["execs_done"], ShouldResemble, Summary{
			Avg: 20, Median: 20, Min: 10, Max: 30, Raw: []float64{10, 30, 20},
		})
		So(agg["bitmap_cvg"].Median, ShouldEqual, 2)
		So(agg, ShouldNotContainKey, "paths_total")
		So(agg, ShouldNotContainKey, "unique_hangs")
	})

	Convey("The median of an even count averages the middle values", t, func() {
		So(Median([]float64{4, 1, 3, 2}), ShouldEqual, 2.5)
		So(Median([]float64{5}), ShouldEqual, 5)
	})

	Convey("Histograms are averaged element-wise", t, func() {
		So(AverageHistogram([][]int{{1, 2, 3, 4}, {3, 2, 1, 0}}),
			ShouldResemble, []float64{2, 2, 2, 2})
		So(AverageHistogram(nil), ShouldBeNil)
	})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestAnalyzeDir(t *testing.T) {
	Convey("Given a directory with two runs", t, func() {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "run0", FuzzerStatsFile),
			"execs_done : 100\nbitmap_cvg : 1.00%\n")
		writeFile(t, filepath.Join(dir, "run0", StepLogFile),
			"step,reward,a0,a1,a2,a3\n1,0,0.25,0.25,0.25,0.25\n")
		writeFile(t, filepath.Join(dir, "run0", ServerLogFile),
			"[PPO] FINAL actions hist: [1, 0, 0, 0]\n")
		writeFile(t, filepath.Join(dir, "run1", FuzzerStatsFile),
			"execs_done : 300\n")
		writeFile(t, filepath.Join(dir, "run1", StepLogFile),
			"step,reward,a0,a1,a2,a3\n1,0,0.25,0.25,0.25,0.25\n"+
				"2,1,0.25,0.25,0.25,0.25\n")
		writeFile(t, filepath.Join(dir, "run1", ServerLogFile),
			"[PPO] FINAL actions hist: [0, 1, 0, 1]\n")
		writeFile(t, filepath.Join(dir, "notes.txt"), "not a run")

		report, err := AnalyzeDir(dir, zerolog.Nop())
		So(err, ShouldBeNil)

		Convey("Every run is analysed", func() {
			So(report.Runs, ShouldResemble, []string{"run0", "run1"})
			So(report.Stats["execs_done"].Avg, ShouldEqual, 200)
			So(report.PPO, ShouldNotBeNil)
			So(report.PPO.StepsPerRun, ShouldResemble, []int{1, 2})
			So(report.PPO.AvgActionHist, ShouldResemble,
				[]float64{0.5, 0.5, 0, 0.5})
		})

		Convey("Both summaries are written", func() {
			data, err := os.ReadFile(filepath.Join(dir, SummaryFile))
			So(err, ShouldBeNil)
			var summary map[string]Summary
			So(json.Unmarshal(data, &summary), ShouldBeNil)
			So(summary["execs_done"].Raw, ShouldResemble, []float64{100, 300})

			data, err = os.ReadFile(filepath.Join(dir, PPOSummaryFile))
			So(err, ShouldBeNil)
			var ppo PPOSummary
			So(json.Unmarshal(data, &ppo), ShouldBeNil)
			So(ppo.FinalActionHists, ShouldResemble, [][]int{{1, 0, 0, 0},
				{0, 1, 0, 1}})
		})

		Convey("The average histogram can be plotted", func() {
			path := filepath.Join(dir, "actions.png")
			So(PlotActionHistogram(report.PPO.AvgActionHist, "Actions",
				path), ShouldBeNil)
			info, err := os.Stat(path)
			So(err, ShouldBeNil)
			So(info.Size(), ShouldBeGreaterThan, 0)
		})
	})

	Convey("A missing directory is an error", t, func() {
		_, err := AnalyzeDir(filepath.Join(t.TempDir(), "missing"),
			zerolog.Nop())
		So(err, ShouldNotBeNil)
	})
}
