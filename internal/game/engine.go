// apps/solver-server/internal/game/engine.go
//
// Session engine: grade, reduce, then suggest.
// Responsibilities:
//   - Create sessions with a secret chosen by mode (random, daily, fixed) or
//     with no secret at all (assist).
//   - Validate guesses (finished, malformed, not in the guess corpus).
//   - Grade against the secret, or accept an externally graded row.
//   - Shrink the candidate pool, then compute the next suggestion on the
//     already-reduced pool.
//   - Track state transitions: playing → won/lost.
//
// A round is committed only after the next suggestion succeeds, so a
// cancelled scan or contradictory feedback leaves the session untouched.
package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/wordle/apps/solver-server/internal/daily"
	"github.com/robalobadob/wordle/apps/solver-server/internal/solver"
	"github.com/robalobadob/wordle/apps/solver-server/internal/words"
)

const (
	defaultRows = 6
	// showCandidatesBelow bounds the pool size listed in a View.
	showCandidatesBelow = 20
)

var (
	ErrFinished   = errors.New("game finished")
	ErrNotAllowed = errors.New("not in word list")
	ErrNoSecret   = errors.New("session has no secret")
	ErrBadMode    = errors.New("invalid mode")
	ErrNoAnswers  = errors.New("answer list is empty")
)

// Options configure a new session.
type Options struct {
	Mode   Mode
	Secret string    // ModeFixed only
	Rows   int       // default 6
	Date   time.Time // ModeDaily; zero means now
	Salt   string    // ModeDaily
}

// New constructs a session over corpus.
// A fixed secret must be a legal guess; if it is not an answer it is added
// to the pool so the secret always stays reachable.
func New(corpus *words.Corpus, opts Options) (*Session, error) {
	if len(corpus.Answers) == 0 {
		return nil, ErrNoAnswers
	}
	s := &Session{
		ID:        uuid.NewString(),
		Mode:      opts.Mode,
		Rows:      opts.Rows,
		Pool:      corpus.Pool(),
		StartedAt: time.Now().UTC(),
		corpus:    corpus,
	}
	if s.Mode == "" {
		s.Mode = ModeRandom
	}
	if s.Rows <= 0 {
		s.Rows = defaultRows
	}

	switch s.Mode {
	case ModeRandom:
		s.Secret = corpus.RandomAnswer()
	case ModeDaily:
		date := opts.Date
		if date.IsZero() {
			date = time.Now()
		}
		var idx int
		s.Secret, idx = daily.Secret(date, opts.Salt, corpus.Answers)
		s.Daily = fmt.Sprintf("%s #%d", daily.DateKey(date), idx+1)
	case ModeFixed:
		w, err := solver.ParseWord(opts.Secret)
		if err != nil {
			return nil, err
		}
		if !corpus.IsAllowed(w) {
			return nil, fmt.Errorf("%w: %s", ErrNotAllowed, w)
		}
		if !corpus.IsAnswer(w) {
			s.Pool = append(s.Pool, w)
		}
		s.Secret = w
	case ModeAssist:
	default:
		return nil, fmt.Errorf("%w: %q", ErrBadMode, opts.Mode)
	}
	return s, nil
}

// Prime computes the opening suggestion. A non-empty opener is used as-is
// and only scored, skipping the full corpus scan.
func (s *Session) Prime(ctx context.Context, sv *solver.Solver, opener solver.Word) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if opener != "" && len(s.Pool) > 1 {
		bits := sv.Score(opener, s.Pool)
		s.Suggest = solver.Suggestion{
			Best:  opener,
			Bits:  bits,
			Table: solver.ScoreTable{opener: bits},
		}
		return nil
	}
	sg, err := sv.Suggest(ctx, s.corpus.Guesses, s.Pool)
	if err != nil {
		return err
	}
	s.Suggest = sg
	return nil
}

// ApplyGuess grades guess against the secret and advances the session.
func (s *Session) ApplyGuess(ctx context.Context, sv *solver.Solver, guess string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Secret == "" {
		return Result{}, ErrNoSecret
	}
	w, err := s.validate(guess)
	if err != nil {
		return Result{}, err
	}
	return s.advance(ctx, sv, w, sv.Grade(w, s.Secret))
}

// ApplyFeedback advances the session with a row graded elsewhere.
// The row's letters are taken from guess; only its outcomes are used.
func (s *Session) ApplyFeedback(ctx context.Context, sv *solver.Solver, guess string, outcomes [solver.WordLen]solver.Outcome) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.validate(guess)
	if err != nil {
		return Result{}, err
	}
	return s.advance(ctx, sv, w, solver.RowFromOutcomes(w, outcomes))
}

func (s *Session) validate(guess string) (solver.Word, error) {
	if s.Finished {
		return "", ErrFinished
	}
	w, err := solver.ParseWord(guess)
	if err != nil {
		return "", err
	}
	if !s.corpus.IsAllowed(w) {
		return "", fmt.Errorf("%w: %s", ErrNotAllowed, w)
	}
	return w, nil
}

// advance reduces, suggests, then commits. Caller holds s.mu.
// The returned view is taken before the lock is released.
func (s *Session) advance(ctx context.Context, sv *solver.Solver, guess solver.Word, row solver.FeedbackRow) (Result, error) {
	r := Round{
		N:          len(s.Rounds) + 1,
		Guess:      guess,
		Row:        row,
		Pattern:    row.String(),
		PoolBefore: len(s.Pool),
	}
	// a one-word pool carries the terminal 1.0, not an entropy
	if bits, ok := s.Suggest.Table[guess]; ok && len(s.Pool) > 1 {
		r.ExpectedBits = bits
	} else {
		r.ExpectedBits = sv.Score(guess, s.Pool)
	}

	pool, err := sv.Reduce(s.Pool, guess, row)
	if err != nil {
		return Result{Round: r}, err
	}
	r.PoolAfter = len(pool)
	r.RealizedBits = solver.RealizedBits(r.PoolBefore, r.PoolAfter)

	won := row.Solved()
	lost := !won && r.N >= s.Rows

	var next solver.Suggestion
	if !won && !lost {
		next, err = sv.Suggest(ctx, s.corpus.Guesses, pool)
		if err != nil {
			return Result{Round: r}, err
		}
		r.Next, r.NextBits = next.Best, next.Bits
	}

	s.Rounds = append(s.Rounds, r)
	s.Pool = pool
	s.Suggest = next
	s.Finished, s.Won = won || lost, won
	return Result{Round: r, View: s.snapshot()}, nil
}

// state reports the current state. Caller holds s.mu.
func (s *Session) state() State {
	if s.Finished {
		if s.Won {
			return StateWon
		}
		return StateLost
	}
	return StatePlaying
}

// State reports the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

// Suggestion returns the latest suggestion.
func (s *Session) Suggestion() solver.Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Suggest
}

// Snapshot returns a display copy of the session.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Partition buckets the current pool by the feedback guess would produce.
func (s *Session) Partition(sv *solver.Solver, guess solver.Word) (map[solver.Key][]solver.Word, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sv.Partition(guess, s.Pool), sv.Score(guess, s.Pool)
}

// snapshot builds a View. Caller holds s.mu.
func (s *Session) snapshot() View {
	v := View{
		ID:         s.ID,
		Mode:       s.Mode,
		Daily:      s.Daily,
		State:      s.state(),
		Rows:       s.Rows,
		Rounds:     append([]Round{}, s.Rounds...),
		PoolSize:   len(s.Pool),
		Suggestion: s.Suggest.Best,
		Bits:       s.Suggest.Bits,
	}
	if len(s.Pool) <= showCandidatesBelow {
		v.Candidates = append([]solver.Word{}, s.Pool...)
	}
	if s.Finished {
		v.Secret = s.Secret
	}
	return v
}
