package daily

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/robalobadob/wordle/apps/solver-server/internal/solver"
)

func TestDateKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	ts := time.Date(2024, 3, 2, 5, 0, 0, 0, loc)
	assert.Equal(t, "2024-03-01", DateKey(ts))
}

func TestWordIndexDeterministic(t *testing.T) {
	day := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	later := time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)

	a := WordIndex(day, "salt", 500)
	assert.Equal(t, a, WordIndex(later, "salt", 500))
	assert.GreaterOrEqual(t, a, 0)
	assert.Less(t, a, 500)
	assert.Equal(t, 0, WordIndex(day, "salt", 0))
}

func TestWordIndexVariesWithDateAndSalt(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seen := map[int]bool{}
	for d := 0; d < 30; d++ {
		seen[WordIndex(start.AddDate(0, 0, d), "salt", 1000)] = true
	}
	assert.Greater(t, len(seen), 20)

	diff := 0
	for d := 0; d < 30; d++ {
		day := start.AddDate(0, 0, d)
		if WordIndex(day, "a", 1000) != WordIndex(day, "b", 1000) {
			diff++
		}
	}
	assert.Greater(t, diff, 20)
}

func TestSecret(t *testing.T) {
	answers := solver.MustWords("crane", "slate", "roate")
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	w, i := Secret(day, "salt", answers)
	assert.Equal(t, answers[i], w)

	w, i = Secret(day, "salt", nil)
	assert.Equal(t, solver.Word(""), w)
	assert.Equal(t, 0, i)
}
