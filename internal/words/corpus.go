// apps/solver-server/internal/words/corpus.go
//
// Corpus is the read-only pair of word lists a solver session works from:
//   - Guesses: every legal guess, in the order the solver scans them.
//   - Answers: possible secrets, the initial candidate pool.
// Answers are always merged into Guesses so every answer can be guessed.
// Fingerprint identifies the exact lists (blake2b-256) and keys persisted
// round history to the corpus it was played against.

package words

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"

	"golang.org/x/crypto/blake2b"

	"github.com/robalobadob/wordle/apps/solver-server/internal/solver"
)

// Corpus holds the guess and answer lists plus lookup sets.
type Corpus struct {
	Guesses     []solver.Word
	Answers     []solver.Word
	Fingerprint string

	allowedSet map[solver.Word]struct{}
	answersSet map[solver.Word]struct{}
}

// NewCorpus builds a Corpus. The guess order is allowed first, followed by
// any answers missing from allowed. Both inputs are copied.
func NewCorpus(allowed, answers []solver.Word) *Corpus {
	c := &Corpus{
		Answers:    append([]solver.Word(nil), answers...),
		allowedSet: make(map[solver.Word]struct{}, len(allowed)+len(answers)),
		answersSet: toSet(answers),
	}
	for _, w := range allowed {
		if _, ok := c.allowedSet[w]; ok {
			continue
		}
		c.allowedSet[w] = struct{}{}
		c.Guesses = append(c.Guesses, w)
	}
	for _, w := range answers {
		if _, ok := c.allowedSet[w]; ok {
			continue
		}
		c.allowedSet[w] = struct{}{}
		c.Guesses = append(c.Guesses, w)
	}
	c.Fingerprint = fingerprint(c.Guesses, c.Answers)
	return c
}

// toSet converts a word list into a lookup set.
func toSet(list []solver.Word) map[solver.Word]struct{} {
	m := make(map[solver.Word]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

func fingerprint(guesses, answers []solver.Word) string {
	h, _ := blake2b.New256(nil)
	for _, w := range guesses {
		h.Write([]byte(w))
	}
	h.Write([]byte{'|'})
	for _, w := range answers {
		h.Write([]byte(w))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// IsAllowed reports whether w is a legal guess.
func (c *Corpus) IsAllowed(w solver.Word) bool {
	_, ok := c.allowedSet[w]
	return ok
}

// IsAnswer reports whether w is a possible secret.
func (c *Corpus) IsAnswer(w solver.Word) bool {
	_, ok := c.answersSet[w]
	return ok
}

// Pool returns a fresh copy of the answer list for use as a candidate pool.
func (c *Corpus) Pool() []solver.Word {
	return append([]solver.Word(nil), c.Answers...)
}

// RandomAnswer returns a cryptographically random answer, or "" when the
// answer list is empty.
func (c *Corpus) RandomAnswer() solver.Word {
	if len(c.Answers) == 0 {
		return ""
	}
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(len(c.Answers))))
	if err != nil {
		return c.Answers[0]
	}
	return c.Answers[nBig.Int64()]
}

// Stats returns counts of loaded words: (answers, guesses).
func (c *Corpus) Stats() (answersCount int, guessesCount int) {
	return len(c.Answers), len(c.Guesses)
}
