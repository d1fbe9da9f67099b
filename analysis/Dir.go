package analysis

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Artifact file names inside a run directory, and the summary file
// names written to the base directory
const (
	FuzzerStatsFile = "fuzzer_stats"
	StepLogFile     = "ppo_log.csv"
	ServerLogFile   = "ppo_server.log"

	SummaryFile    = "summary.json"
	PPOSummaryFile = "ppo_summary.json"
)

// Report is the result of analysing a directory of runs
type Report struct {
	Runs  []string
	Stats map[string]Summary

	// PPO is nil if no run has both a step log and an action
	// histogram
	PPO *PPOSummary
}

// AnalyzeDir analyses every run subdirectory of dir, in name order,
// and writes summary.json and, if there is advisor data, ppo_summary.json
// to dir
func AnalyzeDir(dir string, logger zerolog.Logger) (Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Report{}, errors.Wrap(err, "analyzeDir")
	}

	var report Report
	var stats []map[string]string
	var stepsPerRun []int
	var hists [][]int
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		run := filepath.Join(dir, name)
		report.Runs = append(report.Runs, name)
		l := logger.With().Str("run", name).Logger()

		var runStats map[string]string
		ok, err := parseFile(filepath.Join(run, FuzzerStatsFile),
			func(r io.Reader) (err error) {
				runStats, err = ParseFuzzerStats(r)
				return err
			})
		if err != nil {
			return Report{}, errors.Wrap(err, "analyzeDir")
		}
		l.Info().Bool("ok", ok).Msg(FuzzerStatsFile)
		stats = append(stats, runStats)

		var stepLog StepLog
		ok, err = parseFile(filepath.Join(run, StepLogFile),
			func(r io.Reader) (err error) {
				stepLog, err = ParseStepLog(r)
				return err
			})
		if err != nil {
			return Report{}, errors.Wrap(err, "analyzeDir")
		}
		if ok {
			l.Info().Int("steps", len(stepLog.Steps)).Msg(StepLogFile)
			stepsPerRun = append(stepsPerRun, len(stepLog.Steps))
		}

		var hist []int
		_, err = parseFile(filepath.Join(run, ServerLogFile),
			func(r io.Reader) (err error) {
				hist, err = ParseServerLog(r)
				return err
			})
		if err != nil {
			return Report{}, errors.Wrap(err, "analyzeDir")
		}
		if len(hist) > 0 {
			l.Info().Ints("actions", hist).Msg(ServerLogFile)
			hists = append(hists, hist)
		}
	}

	report.Stats = Aggregate(stats)
	for key, s := range report.Stats {
		logger.Info().Str("stat", key).Float64("avg", s.Avg).
			Float64("median", s.Median).Float64("min", s.Min).
			Float64("max", s.Max).Msg("aggregate")
	}
	if err := writeJSON(filepath.Join(dir, SummaryFile), report.Stats); err != nil {
		return Report{}, errors.Wrap(err, "analyzeDir")
	}

	if len(stepsPerRun) > 0 && len(hists) > 0 {
		report.PPO = &PPOSummary{
			StepsPerRun:      stepsPerRun,
			FinalActionHists: hists,
			AvgActionHist:    AverageHistogram(hists),
		}
		logger.Info().Ints("stepsPerRun", stepsPerRun).
			Floats64("avgActionHist", report.PPO.AvgActionHist).
			Msg("advisor")
		err := writeJSON(filepath.Join(dir, PPOSummaryFile), report.PPO)
		if err != nil {
			return Report{}, errors.Wrap(err, "analyzeDir")
		}
	}

	return report, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
