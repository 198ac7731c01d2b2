// apps/solver-server/internal/config/config.go
//
// Process configuration from the environment.
// A .env file in the working directory is loaded first (development);
// real environment variables always win over it.
//
// Variables:
//   PORT                listen port (default 5176)
//   LOG_LEVEL           zerolog level (default info)
//   LOG_FORMAT          "json" (default) or "console"
//   WORDS_ANSWERS_FILE  answer list path (optional)
//   WORDS_ALLOWED_FILE  guess list path (optional)
//   DB_PATH             round history database (default ./data/solver.db, "" disables)
//   JWT_SECRET          HS256 key for session tokens
//   JWT_EXPIRES_HOURS   session token lifetime (default 24)
//   COOKIE_NAME         session token cookie (default solver_session)
//   COOKIE_SECURE       "true" for Secure + SameSite=None cookies
//   CLIENT_ORIGIN       CORS origin (default http://localhost:5173)
//   DAILY_SALT          salt for the daily secret
//   GRADING_POLICY      "naive" (default) or "standard"
//   SOLVER_WORKERS      goroutines per suggestion scan (default 1)
//   SUGGEST_TIMEOUT     upper bound on one suggestion scan (default 20s)
//   OPENER              fixed first suggestion, skips the opening scan

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/robalobadob/wordle/apps/solver-server/internal/solver"
)

// Config holds every tunable of the service and CLI.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	AnswersFile string
	AllowedFile string
	DBPath      string

	JWTSecret    string
	JWTExpiry    time.Duration
	CookieName   string
	CookieSecure bool
	ClientOrigin string

	DailySalt      string
	Policy         solver.Policy
	Workers        int
	SuggestTimeout time.Duration
	Opener         string
}

// Load reads .env (if present) and the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the environment only.
func FromEnv() (Config, error) {
	policy, err := solver.ParsePolicy(os.Getenv("GRADING_POLICY"))
	if err != nil {
		return Config{}, err
	}
	timeout, err := envDuration("SUGGEST_TIMEOUT", 20*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Port:      getEnv("PORT", "5176"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		AnswersFile: os.Getenv("WORDS_ANSWERS_FILE"),
		AllowedFile: os.Getenv("WORDS_ALLOWED_FILE"),
		DBPath:      getEnvAllowEmpty("DB_PATH", "./data/solver.db"),

		JWTSecret:    getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiry:    time.Duration(envInt("JWT_EXPIRES_HOURS", 24)) * time.Hour,
		CookieName:   getEnv("COOKIE_NAME", "solver_session"),
		CookieSecure: envBool("COOKIE_SECURE", false),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),

		DailySalt:      getEnv("DAILY_SALT", "local_dev_salt"),
		Policy:         policy,
		Workers:        envInt("SOLVER_WORKERS", 1),
		SuggestTimeout: timeout,
		Opener:         os.Getenv("OPENER"),
	}
	if cfg.Workers < 1 {
		return Config{}, fmt.Errorf("SOLVER_WORKERS must be >= 1, got %d", cfg.Workers)
	}
	if cfg.Opener != "" {
		if _, err := solver.ParseWord(cfg.Opener); err != nil {
			return Config{}, fmt.Errorf("OPENER: %w", err)
		}
	}
	return cfg, nil
}

// SolverOptions derives solver options from the config.
func (c Config) SolverOptions() solver.Options {
	return solver.Options{Policy: c.Policy, Workers: c.Workers}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getEnvAllowEmpty distinguishes "unset" (def) from "set to empty" ("").
func getEnvAllowEmpty(k, def string) string {
	if v, ok := os.LookupEnv(k); ok {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}
