// apps/solver-server/internal/daily/daily.go
//
// Deterministic "daily" secret selection: every session started in daily
// mode on the same UTC date gets the same secret for a given salt.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/robalobadob/wordle/apps/solver-server/internal/solver"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WordIndex returns HMAC-SHA256(salt, DateKey(date)) mod n, or 0 when n <= 0.
func WordIndex(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes are plenty for an even spread over a few thousand words
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// Secret picks the daily secret from answers.
// It returns "" when answers is empty.
func Secret(date time.Time, salt string, answers []solver.Word) (solver.Word, int) {
	if len(answers) == 0 {
		return "", 0
	}
	i := WordIndex(date, salt, len(answers))
	return answers[i], i
}
