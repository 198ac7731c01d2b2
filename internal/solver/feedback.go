// apps/solver-server/internal/solver/feedback.go
//
// Word, feedback row and feedback key types shared by grading, scoring and
// candidate reduction.
//
// Encoding:
//   - Each position contributes one ternary digit: 0 = absent, 1 = present,
//     2 = correct. Position i carries weight 3^i, so a row packs into a Key
//     in [0, 243).
//   - The naive rule does not consume letters: a guess letter is "present"
//     whenever the other word contains it anywhere. PolicyStandard switches
//     grading to the two-pass algorithm used by the game server.

package solver

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// WordLen is the fixed number of letters in a word.
const WordLen = 5

// NumKeys is the number of distinct feedback keys (3^WordLen).
const NumKeys = 243

var (
	// ErrMalformedWord is returned for tokens that are not exactly five a-z letters.
	ErrMalformedWord = errors.New("malformed word")
)

// Word is a canonical lowercase five-letter word.
type Word string

// ParseWord trims and lowercases s and validates it as a Word.
func ParseWord(s string) (Word, error) {
	w := strings.ToLower(strings.TrimSpace(s))
	if len(w) != WordLen || !isAlpha(w) {
		return "", fmt.Errorf("%w: %q", ErrMalformedWord, s)
	}
	return Word(w), nil
}

// MustWords converts literals to Words, panicking on malformed input.
// Intended for tests and fixed openers.
func MustWords(ss ...string) []Word {
	out := make([]Word, 0, len(ss))
	for _, s := range ss {
		w, err := ParseWord(s)
		if err != nil {
			panic(err)
		}
		out = append(out, w)
	}
	return out
}

// contains reports whether w has letter c at any position.
func (w Word) contains(c byte) bool {
	return strings.IndexByte(string(w), c) >= 0
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// Outcome is the per-letter result of grading one guess letter.
type Outcome uint8

const (
	Absent Outcome = iota
	Present
	Correct
)

var outcomeNames = [...]string{"absent", "present", "correct"}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("outcome(%d)", uint8(o))
}

// MarshalJSON encodes an outcome by name.
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON accepts the outcome names as well as the digits 0/1/2.
func (o *Outcome) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		var d uint8
		if err2 := json.Unmarshal(b, &d); err2 != nil || d > uint8(Correct) {
			return fmt.Errorf("invalid outcome %s", b)
		}
		*o = Outcome(d)
		return nil
	}
	switch strings.ToLower(name) {
	case "absent", "miss", "gray", "grey":
		*o = Absent
	case "present", "yellow":
		*o = Present
	case "correct", "hit", "green":
		*o = Correct
	default:
		return fmt.Errorf("invalid outcome %q", name)
	}
	return nil
}

// Cell pairs a guessed letter with its outcome.
type Cell struct {
	Letter  byte
	Outcome Outcome
}

type cellJSON struct {
	Letter  string  `json:"letter"`
	Outcome Outcome `json:"outcome"`
}

// MarshalJSON encodes the letter as a one-character string.
func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(cellJSON{Letter: string(c.Letter), Outcome: c.Outcome})
}

// UnmarshalJSON decodes {"letter":"a","outcome":"correct"}.
func (c *Cell) UnmarshalJSON(b []byte) error {
	var v cellJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	l := strings.ToLower(v.Letter)
	if len(l) != 1 || l[0] < 'a' || l[0] > 'z' {
		return fmt.Errorf("%w: letter %q", ErrMalformedWord, v.Letter)
	}
	c.Letter, c.Outcome = l[0], v.Outcome
	return nil
}

// FeedbackRow is the graded result of one guess.
type FeedbackRow [WordLen]Cell

// Key is a packed FeedbackRow, in [0, NumKeys).
type Key uint8

// RowFromOutcomes pairs the letters of guess with the given outcomes.
func RowFromOutcomes(guess Word, outcomes [WordLen]Outcome) FeedbackRow {
	var row FeedbackRow
	for i := 0; i < WordLen; i++ {
		row[i] = Cell{Letter: guess[i], Outcome: outcomes[i]}
	}
	return row
}

// Outcomes returns the outcome column of the row.
func (r FeedbackRow) Outcomes() [WordLen]Outcome {
	var out [WordLen]Outcome
	for i, c := range r {
		out[i] = c.Outcome
	}
	return out
}

// Key packs the row's outcomes into a Key.
func (r FeedbackRow) Key() Key {
	var k, weight int = 0, 1
	for _, c := range r {
		k += int(c.Outcome) * weight
		weight *= 3
	}
	return Key(k)
}

// Solved reports whether every position is Correct.
func (r FeedbackRow) Solved() bool {
	for _, c := range r {
		if c.Outcome != Correct {
			return false
		}
	}
	return true
}

// String renders the row as coloured squares.
func (r FeedbackRow) String() string {
	return r.Key().String()
}

// Outcomes unpacks k into per-position outcomes.
func (k Key) Outcomes() [WordLen]Outcome {
	var out [WordLen]Outcome
	v := int(k)
	for i := 0; i < WordLen; i++ {
		out[i] = Outcome(v % 3)
		v /= 3
	}
	return out
}

func (k Key) String() string {
	var b strings.Builder
	for _, o := range k.Outcomes() {
		switch o {
		case Correct:
			b.WriteString("🟩")
		case Present:
			b.WriteString("🟨")
		default:
			b.WriteString("⬜")
		}
	}
	return b.String()
}

// Encode returns the naive feedback key of guess scored against candidate.
func Encode(guess, candidate Word) Key {
	k, weight := 0, 1
	for i := 0; i < WordLen; i++ {
		switch {
		case guess[i] == candidate[i]:
			k += 2 * weight
		case candidate.contains(guess[i]):
			k += weight
		}
		weight *= 3
	}
	return Key(k)
}

// Grade produces the naive feedback row for guess against secret.
func Grade(guess, secret Word) FeedbackRow {
	var row FeedbackRow
	for i := 0; i < WordLen; i++ {
		c := guess[i]
		switch {
		case c == secret[i]:
			row[i] = Cell{c, Correct}
		case secret.contains(c):
			row[i] = Cell{c, Present}
		default:
			row[i] = Cell{c, Absent}
		}
	}
	return row
}

// GradeStandard implements the two-pass Wordle scoring.
//
// Pass 1 marks exact matches and counts the secret's remaining letters.
// Pass 2 marks a guess letter Present only while unmatched copies remain.
func GradeStandard(guess, secret Word) FeedbackRow {
	var row FeedbackRow
	var counts [26]int

	for i := 0; i < WordLen; i++ {
		row[i].Letter = guess[i]
		if guess[i] == secret[i] {
			row[i].Outcome = Correct
		} else {
			counts[secret[i]-'a']++
		}
	}
	for i := 0; i < WordLen; i++ {
		if row[i].Outcome == Correct {
			continue
		}
		j := guess[i] - 'a'
		if counts[j] > 0 {
			row[i].Outcome = Present
			counts[j]--
		}
	}
	return row
}

// EncodeStandard is the Key of GradeStandard.
func EncodeStandard(guess, candidate Word) Key {
	return GradeStandard(guess, candidate).Key()
}
