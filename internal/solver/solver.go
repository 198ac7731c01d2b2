// apps/solver-server/internal/solver/solver.go
//
// Solver configuration and grading policy.
//
// A Solver is stateless: it holds only the policy and the scan options, so a
// single value may be shared by every session. The candidate pool belongs to
// the caller and is never mutated here.

package solver

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyGuessCorpus is returned by Suggest when there is nothing to guess.
	ErrEmptyGuessCorpus = errors.New("no guesses available")

	// ErrExhaustedCandidatePool means no candidate is consistent with the
	// observed feedback. Usually an upstream grading bug or a corpus mismatch.
	ErrExhaustedCandidatePool = errors.New("candidate pool exhausted")
)

// Policy selects how feedback is computed and interpreted.
type Policy int

const (
	// PolicyNaive marks a letter present whenever the other word contains it,
	// without consuming letters. Duplicate guess letters can both be present.
	PolicyNaive Policy = iota
	// PolicyStandard uses two-pass consume-then-match grading.
	PolicyStandard
)

func (p Policy) String() string {
	if p == PolicyStandard {
		return "standard"
	}
	return "naive"
}

// ParsePolicy maps "naive" / "standard" (case-insensitive) to a Policy.
// Empty input selects PolicyNaive.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "naive":
		return PolicyNaive, nil
	case "standard", "twopass", "two-pass":
		return PolicyStandard, nil
	}
	return PolicyNaive, fmt.Errorf("unknown grading policy %q", s)
}

// Options configure a Solver.
type Options struct {
	Policy Policy
	// Workers > 1 scores the guess corpus on that many goroutines.
	// Results are identical to the sequential scan.
	Workers int
}

// Solver scores guesses and reduces candidate pools under one policy.
type Solver struct {
	policy  Policy
	workers int
}

// New returns a Solver for opts.
func New(opts Options) *Solver {
	w := opts.Workers
	if w < 1 {
		w = 1
	}
	return &Solver{policy: opts.Policy, workers: w}
}

// Policy reports the solver's grading policy.
func (s *Solver) Policy() Policy { return s.policy }

// Grade produces the feedback row for guess against secret under the policy.
func (s *Solver) Grade(guess, secret Word) FeedbackRow {
	if s.policy == PolicyStandard {
		return GradeStandard(guess, secret)
	}
	return Grade(guess, secret)
}

// Encode returns the feedback key for guess against candidate under the policy.
func (s *Solver) Encode(guess, candidate Word) Key {
	if s.policy == PolicyStandard {
		return EncodeStandard(guess, candidate)
	}
	return Encode(guess, candidate)
}
