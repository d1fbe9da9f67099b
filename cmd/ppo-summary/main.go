// Command ppo-summary summarises a directory of fuzzing runs that used
// the advisor. Each subdirectory of -dir is one run and may contain
// fuzzer_stats, ppo_log.csv and ppo_server.log.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/samuelfneumann/fuzzppo/analysis"
)

func main() {
	dir := flag.String("dir", "", "base directory containing run "+
		"subdirectories")
	plotPath := flag.String("plot", "", "if set, save a bar chart of the "+
		"average action histogram to this path (png, svg, pdf)")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()

	if *dir == "" {
		flag.Usage()
		os.Exit(2)
	}

	report, err := analysis.AnalyzeDir(*dir, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not analyse runs")
	}
	logger.Info().Int("runs", len(report.Runs)).
		Str("summary", filepath.Join(*dir, analysis.SummaryFile)).
		Msg("done")

	if *plotPath == "" {
		return
	}
	if report.PPO == nil {
		logger.Warn().Msg("no action histograms to plot")
		return
	}
	err = analysis.PlotActionHistogram(report.PPO.AvgActionHist,
		"Average action histogram", *plotPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not plot")
	}
	logger.Info().Str("path", *plotPath).Msg("saved plot")
}
