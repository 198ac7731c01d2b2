// apps/solver-server/play.go
//
// `play` command: the solver plays one game against itself in the terminal.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/robalobadob/wordle/apps/solver-server/internal/game"
	"github.com/robalobadob/wordle/apps/solver-server/internal/solver"
	"github.com/robalobadob/wordle/apps/solver-server/internal/words"
)

var (
	playSecret string
	playMax    int
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Let the solver play one game in the terminal",
	Long: `Play one game with the solver always guessing its own suggestion.

Without --secret a random answer is drawn. Each round prints the guess,
its feedback, the expected and realized information and the pool size.`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playSecret, "secret", "", "secret word (default: random answer)")
	playCmd.Flags().IntVar(&playMax, "max", 6, "maximum number of guesses")
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, corpus, err := setup()
	if err != nil {
		return err
	}
	opts := game.Options{Mode: game.ModeRandom, Rows: playMax}
	if playSecret != "" {
		opts.Mode, opts.Secret = game.ModeFixed, playSecret
	}
	sess, err := game.New(corpus, opts)
	if err != nil {
		return err
	}
	sv := solver.New(cfg.SolverOptions())
	if err := sess.Prime(cmd.Context(), sv, solver.Word(cfg.Opener)); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "pool %d, policy %s\n", len(sess.Pool), sv.Policy())
	if _, err := autoplay(cmd.Context(), sv, sess, out); err != nil {
		return err
	}
	v := sess.Snapshot()
	fmt.Fprintf(out, "%s in %d: %s\n", v.State, len(v.Rounds), v.Secret)
	return nil
}

// autoplay guesses the current suggestion until the session finishes.
// Rounds are printed to out when it is non-nil.
func autoplay(ctx context.Context, sv *solver.Solver, sess *game.Session, out io.Writer) ([]game.Round, error) {
	var rounds []game.Round
	for sess.State() == game.StatePlaying {
		r, err := sess.ApplyGuess(ctx, sv, string(sess.Suggestion().Best))
		if err != nil {
			return rounds, err
		}
		rounds = append(rounds, r.Round)
		if out != nil {
			fmt.Fprintf(out, "%d %s %s  %.3f/%.3f bits  %d -> %d\n",
				r.N, r.Guess, r.Pattern, r.ExpectedBits, r.RealizedBits, r.PoolBefore, r.PoolAfter)
		}
	}
	return rounds, nil
}

// solveOne plays a fixed-secret session, primed with opener, to the end.
func solveOne(ctx context.Context, sv *solver.Solver, corpus *words.Corpus, secret solver.Word, rows int, opener solver.Word) (game.View, error) {
	sess, err := game.New(corpus, game.Options{Mode: game.ModeFixed, Secret: string(secret), Rows: rows})
	if err != nil {
		return game.View{}, err
	}
	if err := sess.Prime(ctx, sv, opener); err != nil {
		return game.View{}, err
	}
	if _, err := autoplay(ctx, sv, sess, nil); err != nil {
		return game.View{}, err
	}
	return sess.Snapshot(), nil
}
