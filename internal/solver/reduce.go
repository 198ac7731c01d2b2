// apps/solver-server/internal/solver/reduce.go
//
// Candidate reduction: keep the pool words consistent with a feedback row.

package solver

import "math"

// Reduce returns the words of pool consistent with row, the feedback for the
// submitted guess. pool is not modified.
//
// Under PolicyNaive a word w is kept when, for every position i:
//   - Correct: w[i] == letter
//   - Present: w contains letter, and w[i] != letter
//   - Absent:  w does not contain letter
//
// The submitted guess itself is dropped unless the row is all Correct.
// Under PolicyStandard w is kept when grading the guess against w reproduces
// row exactly.
//
// An empty result is returned together with ErrExhaustedCandidatePool.
func (s *Solver) Reduce(pool []Word, guess Word, row FeedbackRow) ([]Word, error) {
	out := make([]Word, 0, len(pool))
	solved := row.Solved()
	want := row.Outcomes()

	for _, w := range pool {
		if w == guess && !solved {
			continue
		}
		var ok bool
		if s.policy == PolicyStandard {
			ok = GradeStandard(guess, w).Outcomes() == want
		} else {
			ok = consistent(w, row)
		}
		if ok {
			out = append(out, w)
		}
	}
	if len(out) == 0 {
		return out, ErrExhaustedCandidatePool
	}
	return out, nil
}

// consistent applies the naive positional rules of row to w.
func consistent(w Word, row FeedbackRow) bool {
	for i, c := range row {
		switch c.Outcome {
		case Correct:
			if w[i] != c.Letter {
				return false
			}
		case Present:
			if !w.contains(c.Letter) || w[i] == c.Letter {
				return false
			}
		default:
			if w.contains(c.Letter) {
				return false
			}
		}
	}
	return true
}

// RealizedBits is the information actually gained by shrinking a pool from
// before to after words.
func RealizedBits(before, after int) float64 {
	if before <= 0 || after <= 0 {
		return 0
	}
	return math.Log2(float64(before) / float64(after))
}
