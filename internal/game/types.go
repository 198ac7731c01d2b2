// apps/solver-server/internal/game/types.go
//
// Core type definitions for solver-assisted sessions.
// Defines:
//   - Mode:    how the secret was chosen (or that there is none).
//   - State:   playing / won / lost.
//   - Round:   one graded guess with expected vs realized information.
//   - Result:  a Round plus the session view taken when it was committed.
//   - Session: state for a single in-progress or finished game.

package game

import (
	"sync"
	"time"

	"github.com/robalobadob/wordle/apps/solver-server/internal/solver"
	"github.com/robalobadob/wordle/apps/solver-server/internal/words"
)

// Mode selects where a session's secret comes from.
type Mode string

const (
	ModeRandom Mode = "random" // crypto-random answer
	ModeDaily  Mode = "daily"  // HMAC(date) answer, shared by everyone that day
	ModeFixed  Mode = "fixed"  // caller-supplied secret (tests, replays)
	ModeAssist Mode = "assist" // no secret: feedback comes from an external board
)

// State is a coarse session state.
type State string

const (
	StatePlaying State = "playing"
	StateWon     State = "won"
	StateLost    State = "lost"
)

// Round records one graded guess.
type Round struct {
	N            int                `json:"n"`
	Guess        solver.Word        `json:"guess"`
	Row          solver.FeedbackRow `json:"row"`
	Pattern      string             `json:"pattern"`
	ExpectedBits float64            `json:"expectedBits"` // predicted before grading
	RealizedBits float64            `json:"realizedBits"` // log2(poolBefore/poolAfter)
	PoolBefore   int                `json:"poolBefore"`
	PoolAfter    int                `json:"poolAfter"`
	Next         solver.Word        `json:"next,omitempty"` // suggestion for the following round
	NextBits     float64            `json:"nextBits,omitempty"`
}

// Result is a committed round and the session as it stood right after it.
type Result struct {
	Round
	View View
}

// Session holds the state of one solver-assisted game.
// All methods are safe for concurrent use; guesses are serialised.
type Session struct {
	mu sync.Mutex

	ID        string
	Mode      Mode
	Daily     string      // "2024-05-01 #17" in daily mode
	Secret    solver.Word // empty in assist mode
	Rows      int         // maximum number of guesses
	Rounds    []Round
	Pool      []solver.Word // candidates still consistent with every round
	Suggest   solver.Suggestion
	Finished  bool
	Won       bool
	StartedAt time.Time

	corpus *words.Corpus
}

// View is a read-only snapshot of a session for display.
type View struct {
	ID         string        `json:"id"`
	Mode       Mode          `json:"mode"`
	Daily      string        `json:"daily,omitempty"`
	State      State         `json:"state"`
	Rows       int           `json:"rows"`
	Rounds     []Round       `json:"rounds"`
	PoolSize   int           `json:"poolSize"`
	Candidates []solver.Word `json:"candidates,omitempty"` // only when small
	Suggestion solver.Word   `json:"suggestion,omitempty"`
	Bits       float64       `json:"bits"`
	Secret     solver.Word   `json:"secret,omitempty"` // revealed once finished
}
