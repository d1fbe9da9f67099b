package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/samuelfneumann/fuzzppo/config"
	"github.com/samuelfneumann/fuzzppo/session"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Str("component", "ppo").Logger()

	c, err := config.FromEnv()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger = logger.Level(c.Level())
	logger.Info().EmbedObject(c).Msg("hyperparameters")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT,
		syscall.SIGTERM)
	defer stop()

	s, err := session.New(c, session.WithLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("could not start session")
	}

	if err := s.Run(ctx); err != nil {
		stop()
		logger.Fatal().Err(err).Msg("session failed")
	}
	logger.Info().Int("steps", s.Steps()).
		Ints("actions", s.Histogram()).
		Msg("session ended")
}
