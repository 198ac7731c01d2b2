// apps/solver-server/internal/httpserver/server.go
//
// HTTP server wiring for the solver service.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     access logging).
//   - Public endpoints: "/", "/health", "/debug/words", "/stats".
//   - Stateless suggestion endpoint: POST /solver/suggest.
//   - Session endpoints: mounted under /sessions (routes_sessions.go).
//   - Background sweep of abandoned sessions.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - History is optional; endpoints that need it answer 503 when disabled.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/solver-server/internal/config"
	"github.com/robalobadob/wordle/apps/solver-server/internal/game"
	"github.com/robalobadob/wordle/apps/solver-server/internal/history"
	"github.com/robalobadob/wordle/apps/solver-server/internal/solver"
	"github.com/robalobadob/wordle/apps/solver-server/internal/store"
	"github.com/robalobadob/wordle/apps/solver-server/internal/words"
)

const (
	sessionTTL    = 24 * time.Hour
	sweepInterval = 10 * time.Minute
)

// Deps are the collaborators a Server needs. History may be nil.
type Deps struct {
	Store   store.Store
	Corpus  *words.Corpus
	Solver  *solver.Solver
	History *history.Store
	Config  config.Config
}

// Server bundles router, session store, solver and history.
type Server struct {
	r       *chi.Mux
	store   store.Store
	corpus  *words.Corpus
	solver  *solver.Solver
	history *history.Store
	cfg     config.Config
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		store:   d.Store,
		corpus:  d.Corpus,
		solver:  d.Solver,
		history: d.History,
		cfg:     d.Config,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(hlog.NewHandler(log.Logger))
	s.r.Use(hlog.AccessHandler(accessLog))
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(s.cfg.SuggestTimeout + 5*time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"wordle-solver","endpoints":["/health","POST /solver/suggest","POST /sessions","/sessions/{id}/*","/stats"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		a, g := s.corpus.Stats()
		writeJSON(w, http.StatusOK, map[string]any{
			"answers":     a,
			"guesses":     g,
			"fingerprint": s.corpus.Fingerprint,
			"policy":      s.solver.Policy().String(),
		})
	})
	s.r.Get("/stats", s.handleStats)

	s.r.Post("/solver/suggest", s.handleSuggest)
	s.mountSessions(s.r)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpError(w, http.StatusNotFound, "not_found")
	})
	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Start serves HTTP on addr until ctx is cancelled, then shuts down.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go s.sweepLoop(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("shutdown")
		}
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// sweepLoop drops sessions older than sessionTTL.
func (s *Server) sweepLoop(ctx context.Context) {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.store.Sweep(ctx, time.Now().Add(-sessionTTL)); n > 0 {
				log.Info().Int("evicted", n).Msg("swept sessions")
			}
		}
	}
}

// ----------------------------- middleware ----------------------------------

func accessLog(r *http.Request, status, size int, d time.Duration) {
	ev := hlog.FromRequest(r).Info()
	if status >= 500 {
		ev = hlog.FromRequest(r).Error()
	}
	ev.Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", chimw.GetReqID(r.Context())).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
}

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ helpers ------------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	writeJSON(w, status, map[string]string{"error": code})
}

// writeErr maps domain errors onto status codes.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		httpError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, solver.ErrExhaustedCandidatePool):
		httpError(w, http.StatusConflict, "candidate_pool_exhausted")
	case errors.Is(err, game.ErrFinished):
		httpError(w, http.StatusConflict, "game_finished")
	case errors.Is(err, solver.ErrMalformedWord):
		httpError(w, http.StatusBadRequest, "malformed_word")
	case errors.Is(err, game.ErrNotAllowed):
		httpError(w, http.StatusBadRequest, "not_in_word_list")
	case errors.Is(err, game.ErrNoSecret), errors.Is(err, game.ErrBadMode):
		httpError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrNoAnswers):
		httpError(w, http.StatusServiceUnavailable, "no_answers")
	case errors.Is(err, solver.ErrEmptyGuessCorpus):
		httpError(w, http.StatusBadRequest, "no_guesses")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		httpError(w, http.StatusServiceUnavailable, "solver_timeout")
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("unhandled error")
		httpError(w, http.StatusInternalServerError, "internal")
	}
}

// solverCtx bounds one suggestion scan.
func (s *Server) solverCtx(r *http.Request) (context.Context, context.CancelFunc) {
	if s.cfg.SuggestTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), s.cfg.SuggestTimeout)
}

// ------------------------------ stateless ----------------------------------

type suggestReq struct {
	Pool    []string `json:"pool"`    // default: the answer corpus
	Guesses []string `json:"guesses"` // default: the guess corpus
	Top     int      `json:"top"`
}

type suggestRes struct {
	Best     solver.Word     `json:"best"`
	Bits     float64         `json:"bits"`
	PoolSize int             `json:"poolSize"`
	Top      []solver.Scored `json:"top,omitempty"`
}

func parseWords(in []string) ([]solver.Word, error) {
	out := make([]solver.Word, 0, len(in))
	for _, s := range in {
		w, err := solver.ParseWord(s)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// handleSuggest scores a caller-supplied pool without creating a session.
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req suggestReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "bad_json")
		return
	}

	pool, guesses := s.corpus.Answers, s.corpus.Guesses
	var err error
	if req.Pool != nil {
		if pool, err = parseWords(req.Pool); err != nil {
			writeErr(w, r, err)
			return
		}
	}
	if req.Guesses != nil {
		if guesses, err = parseWords(req.Guesses); err != nil {
			writeErr(w, r, err)
			return
		}
	}

	ctx, cancel := s.solverCtx(r)
	defer cancel()
	sg, err := s.solver.Suggest(ctx, guesses, pool)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	res := suggestRes{Best: sg.Best, Bits: sg.Bits, PoolSize: len(pool)}
	if req.Top > 0 {
		res.Top = sg.Top(req.Top)
	}
	writeJSON(w, http.StatusOK, res)
}

// handleStats reports persisted outcomes for the loaded corpus.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		httpError(w, http.StatusServiceUnavailable, "history_disabled")
		return
	}
	sum, err := s.history.Summary(r.Context(), s.corpus.Fingerprint)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// logger returns the request-scoped logger.
func logger(r *http.Request) *zerolog.Logger {
	return hlog.FromRequest(r)
}
