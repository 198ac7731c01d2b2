// apps/solver-server/main.go
//
// Entry point for the solver service.
//
// Commands:
//
//	serve (default)  HTTP API (see internal/httpserver)
//	play             solve one game in the terminal
//	bench            solve every answer and report the round distribution
//
// Configuration comes from the environment (and .env in development); the
// flags below override the matching variables for a single run.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/wordle/apps/solver-server/internal/config"
	"github.com/robalobadob/wordle/apps/solver-server/internal/history"
	"github.com/robalobadob/wordle/apps/solver-server/internal/httpserver"
	"github.com/robalobadob/wordle/apps/solver-server/internal/solver"
	"github.com/robalobadob/wordle/apps/solver-server/internal/store"
	"github.com/robalobadob/wordle/apps/solver-server/internal/words"
)

var (
	flagFirst  string
	flagPolicy string
)

var rootCmd = &cobra.Command{
	Use:           "solver-server",
	Short:         "Entropy-maximising Wordle solver",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagFirst, "first", "", "fixed opening guess (overrides OPENER)")
	rootCmd.PersistentFlags().StringVar(&flagPolicy, "policy", "", "grading policy: naive or standard (overrides GRADING_POLICY)")
	rootCmd.AddCommand(serveCmd, playCmd, benchCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("exited")
	}
}

// setup loads configuration, configures logging and loads the corpus.
func setup() (config.Config, *words.Corpus, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, err
	}
	if flagFirst != "" {
		cfg.Opener = flagFirst
	}
	if cfg.Opener != "" {
		w, err := solver.ParseWord(cfg.Opener)
		if err != nil {
			return cfg, nil, err
		}
		cfg.Opener = string(w)
	}
	if flagPolicy != "" {
		if cfg.Policy, err = solver.ParsePolicy(flagPolicy); err != nil {
			return cfg, nil, err
		}
	}
	setupLogging(cfg)

	if err := words.Init(cfg.AnswersFile, cfg.AllowedFile); err != nil {
		return cfg, nil, err
	}
	return cfg, words.Default(), nil
}

func setupLogging(cfg config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, corpus, err := setup()
	if err != nil {
		if errors.Is(err, words.ErrCorpusLoad) {
			log.Fatal().Err(err).Msg("failed to load word lists")
		}
		return err
	}

	var hist *history.Store
	if cfg.DBPath != "" {
		if hist, err = history.Open(cfg.DBPath); err != nil {
			return err
		}
		defer hist.Close()
	} else {
		log.Warn().Msg("DB_PATH empty, history disabled")
	}

	srv := httpserver.New(httpserver.Deps{
		Store:   store.NewMemoryStore(),
		Corpus:  corpus,
		Solver:  solver.New(cfg.SolverOptions()),
		History: hist,
		Config:  cfg,
	})
	log.Info().
		Str("port", cfg.Port).
		Str("policy", cfg.Policy.String()).
		Int("workers", cfg.Workers).
		Msg("starting solver-server")
	return srv.Start(cmd.Context(), ":"+cfg.Port)
}
