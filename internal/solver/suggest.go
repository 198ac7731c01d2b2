// apps/solver-server/internal/solver/suggest.go
//
// Suggest picks the guess with the highest expected information.
//
// Rules:
//   - A pool of exactly one word is terminal: that word is returned with a
//     table mapping it to 1.0 bit regardless of the guess corpus.
//   - Otherwise every guess is scored in corpus order and recorded in the
//     table. The best is tracked with a strict ">", so the earliest word wins
//     ties and the result is deterministic.
//   - With Workers > 1 the scores are computed concurrently into a slice
//     indexed by corpus position and the arg-max is taken sequentially, which
//     keeps the result identical to the sequential scan.

package solver

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// cancelCheckEvery is how many guesses are scored between context checks.
const cancelCheckEvery = 256

// ScoreTable maps each scored guess to its expected information in bits.
type ScoreTable map[Word]float64

// Suggestion is the result of one Suggest call.
type Suggestion struct {
	Best  Word       `json:"best"`
	Bits  float64    `json:"bits"`
	Table ScoreTable `json:"-"`
	// order is the corpus order of Table's keys, used by Top.
	order []Word
}

// Scored is one (guess, bits) pair.
type Scored struct {
	Word Word    `json:"word"`
	Bits float64 `json:"bits"`
}

// Top returns up to n scored guesses, best first. Ties keep corpus order.
func (sg Suggestion) Top(n int) []Scored {
	order := sg.order
	if order == nil {
		// tables built outside Suggest carry no corpus order
		for w := range sg.Table {
			order = append(order, w)
		}
		sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	}
	out := make([]Scored, 0, len(order))
	for _, w := range order {
		out = append(out, Scored{Word: w, Bits: sg.Table[w]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Bits > out[j].Bits })
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Suggest scores guesses against pool and returns the best guess and the full
// score table.
func (s *Solver) Suggest(ctx context.Context, guesses []Word, pool []Word) (Suggestion, error) {
	if len(pool) == 1 {
		only := pool[0]
		return Suggestion{
			Best:  only,
			Bits:  1.0,
			Table: ScoreTable{only: 1.0},
			order: []Word{only},
		}, nil
	}
	if len(pool) == 0 {
		return Suggestion{}, ErrExhaustedCandidatePool
	}
	if len(guesses) == 0 {
		return Suggestion{}, ErrEmptyGuessCorpus
	}

	var (
		scores []float64
		err    error
	)
	if s.workers > 1 && len(guesses) > s.workers {
		scores, err = s.scoreParallel(ctx, guesses, pool)
	} else {
		scores, err = s.scoreSequential(ctx, guesses, pool)
	}
	if err != nil {
		return Suggestion{}, err
	}

	table := make(ScoreTable, len(guesses))
	best, peak := guesses[0], 0.0
	for i, g := range guesses {
		table[g] = scores[i]
		if scores[i] > peak {
			peak = scores[i]
			best = g
			log.Debug().Str("guess", string(g)).Float64("bits", peak).Msg("new best guess")
		}
	}
	log.Info().
		Str("best", string(best)).
		Float64("expected_bits", peak).
		Int("pool", len(pool)).
		Int("guesses", len(guesses)).
		Msg("suggestion")

	return Suggestion{Best: best, Bits: peak, Table: table, order: guesses}, nil
}

func (s *Solver) scoreSequential(ctx context.Context, guesses, pool []Word) ([]float64, error) {
	scores := make([]float64, len(guesses))
	for i, g := range guesses {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		scores[i] = s.Score(g, pool)
	}
	return scores, nil
}

// scoreParallel splits guesses into contiguous chunks, one per worker.
// Workers only read pool and write disjoint slots of scores.
func (s *Solver) scoreParallel(ctx context.Context, guesses, pool []Word) ([]float64, error) {
	scores := make([]float64, len(guesses))
	g, gctx := errgroup.WithContext(ctx)

	chunk := (len(guesses) + s.workers - 1) / s.workers
	for lo := 0; lo < len(guesses); lo += chunk {
		hi := min(lo+chunk, len(guesses))
		lo := lo
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if (i-lo)%cancelCheckEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				scores[i] = s.Score(guesses[i], pool)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}
