// apps/solver-server/bench.go
//
// `bench` command: solve every answer (or the first n) with bounded
// parallelism and report the distribution of rounds.

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/wordle/apps/solver-server/internal/game"
	"github.com/robalobadob/wordle/apps/solver-server/internal/solver"
	"github.com/robalobadob/wordle/apps/solver-server/internal/words"
)

var (
	benchLimit   int
	benchWorkers int
	benchRows    int
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Solve every answer and report the distribution of rounds",
	Long: `Solve each answer in the answer list with the solver guessing its own
suggestions, then print the win rate, the mean number of rounds and a
histogram. The opening suggestion is computed once and reused.`,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().IntVar(&benchLimit, "limit", 0, "only solve the first n answers (0 = all)")
	benchCmd.Flags().IntVar(&benchWorkers, "workers", 4, "games solved concurrently")
	benchCmd.Flags().IntVar(&benchRows, "rows", 6, "maximum number of guesses per game")
}

// benchResult summarises a bench run.
type benchResult struct {
	Games  int
	Wins   int
	Rounds int         // total rounds over won games
	Hist   map[int]int // rounds -> games won in that many
	Failed []solver.Word
}

func (b benchResult) mean() float64 {
	if b.Wins == 0 {
		return 0
	}
	return float64(b.Rounds) / float64(b.Wins)
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, corpus, err := setup()
	if err != nil {
		return err
	}
	sv := solver.New(cfg.SolverOptions())

	secrets := corpus.Answers
	if benchLimit > 0 && benchLimit < len(secrets) {
		secrets = secrets[:benchLimit]
	}

	start := time.Now()
	opener := solver.Word(cfg.Opener)
	if opener == "" {
		sg, err := sv.Suggest(cmd.Context(), corpus.Guesses, corpus.Answers)
		if err != nil {
			return err
		}
		opener = sg.Best
	}
	log.Info().Str("opener", string(opener)).Dur("took", time.Since(start)).Msg("opening suggestion")
	// per-round logs would interleave with the progress bar
	if zerolog.GlobalLevel() < zerolog.WarnLevel {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	bar := progressbar.Default(int64(len(secrets)))
	res, err := bench(cmd.Context(), sv, corpus, secrets, opener, benchRows, benchWorkers, func() { _ = bar.Add(1) })
	if err != nil {
		return err
	}
	_ = bar.Finish()
	report(cmd.OutOrStdout(), res, time.Since(start))
	return nil
}

// bench solves every secret with up to workers games in flight.
// tick is called once per finished game.
func bench(ctx context.Context, sv *solver.Solver, corpus *words.Corpus, secrets []solver.Word, opener solver.Word, rows, workers int, tick func()) (benchResult, error) {
	views := make([]game.View, len(secrets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, secret := range secrets {
		i, secret := i, secret
		g.Go(func() error {
			v, err := solveOne(ctx, sv, corpus, secret, rows, opener)
			if err != nil {
				return fmt.Errorf("%s: %w", secret, err)
			}
			views[i] = v
			if tick != nil {
				tick()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return benchResult{}, err
	}

	res := benchResult{Games: len(views), Hist: map[int]int{}}
	for _, v := range views {
		if v.State != game.StateWon {
			res.Failed = append(res.Failed, v.Secret)
			continue
		}
		n := len(v.Rounds)
		res.Wins++
		res.Rounds += n
		res.Hist[n]++
	}
	return res, nil
}

func report(out io.Writer, res benchResult, took time.Duration) {
	fmt.Fprintf(out, "\n%d games, %d won, mean %.3f rounds (%s)\n", res.Games, res.Wins, res.mean(), took.Round(time.Millisecond))
	for n := 1; n <= benchRows; n++ {
		fmt.Fprintf(out, "%d: %d\n", n, res.Hist[n])
	}
	if len(res.Failed) > 0 {
		fmt.Fprintf(out, "failed: %v\n", res.Failed)
	}
}
