package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/solver-server/internal/solver"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "LOG_LEVEL", "LOG_FORMAT", "WORDS_ANSWERS_FILE", "WORDS_ALLOWED_FILE",
		"JWT_SECRET", "JWT_EXPIRES_HOURS", "COOKIE_NAME", "COOKIE_SECURE", "CLIENT_ORIGIN",
		"DAILY_SALT", "GRADING_POLICY", "SOLVER_WORKERS", "SUGGEST_TIMEOUT", "OPENER",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "5176", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, solver.PolicyNaive, cfg.Policy)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 20*time.Second, cfg.SuggestTimeout)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "solver_session", cfg.CookieName)
	assert.False(t, cfg.CookieSecure)
}

func TestOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("GRADING_POLICY", "standard")
	t.Setenv("SOLVER_WORKERS", "4")
	t.Setenv("SUGGEST_TIMEOUT", "3s")
	t.Setenv("JWT_EXPIRES_HOURS", "2")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("OPENER", "TARES")
	t.Setenv("DB_PATH", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, solver.PolicyStandard, cfg.Policy)
	assert.Equal(t, solver.Options{Policy: solver.PolicyStandard, Workers: 4}, cfg.SolverOptions())
	assert.Equal(t, 3*time.Second, cfg.SuggestTimeout)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, "TARES", cfg.Opener)
	assert.Equal(t, "", cfg.DBPath)
}

func TestInvalid(t *testing.T) {
	for k, v := range map[string]string{
		"GRADING_POLICY":  "fuzzy",
		"SUGGEST_TIMEOUT": "soon",
		"SOLVER_WORKERS":  "0",
		"OPENER":          "toolong",
	} {
		t.Run(k, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(k, v)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
