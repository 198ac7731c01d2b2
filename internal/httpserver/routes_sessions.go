// apps/solver-server/internal/httpserver/routes_sessions.go
//
// Session endpoints:
//
//	POST /sessions                  -> create a session, returns token + opener
//	GET  /sessions/{id}             -> snapshot (requires token)
//	POST /sessions/{id}/guess       -> grade against the secret (requires token)
//	POST /sessions/{id}/feedback    -> apply an externally graded row (requires token)
//	GET  /sessions/{id}/table       -> top-n table, ?guess= buckets (requires token)
//	GET  /sessions/{id}/history     -> persisted rounds (requires token + history)
//
// History writes are best effort: a failing database is logged and never
// fails the request that produced the round.

package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/wordle/apps/solver-server/internal/game"
	"github.com/robalobadob/wordle/apps/solver-server/internal/history"
	"github.com/robalobadob/wordle/apps/solver-server/internal/solver"
)

const defaultTableTop = 10

func (s *Server) mountSessions(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/", s.handleGet)
			r.Post("/guess", s.handleGuess)
			r.Post("/feedback", s.handleFeedback)
			r.Get("/table", s.handleTable)
			r.Get("/history", s.handleHistory)
		})
	})
}

type createReq struct {
	Mode   game.Mode `json:"mode"`
	Secret string    `json:"secret"` // fixed mode only
	Rows   int       `json:"rows"`
}

type createRes struct {
	SessionID  string      `json:"sessionId"`
	Token      string      `json:"token"`
	Mode       game.Mode   `json:"mode"`
	Rows       int         `json:"rows"`
	PoolSize   int         `json:"poolSize"`
	Suggestion solver.Word `json:"suggestion"`
	Bits       float64     `json:"bits"`
}

type guessReq struct {
	Guess string `json:"guess"`
}

type feedbackReq struct {
	Guess    string           `json:"guess"`
	Outcomes []solver.Outcome `json:"outcomes"` // exactly WordLen entries
}

type roundRes struct {
	Round      game.Round    `json:"round"`
	State      game.State    `json:"state"`
	PoolSize   int           `json:"poolSize"`
	Candidates []solver.Word `json:"candidates,omitempty"`
	Secret     solver.Word   `json:"secret,omitempty"`
}

// handleCreate starts a session and scores its opening suggestion.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "bad_json")
			return
		}
	}

	sess, err := game.New(s.corpus, game.Options{
		Mode:   req.Mode,
		Secret: req.Secret,
		Rows:   req.Rows,
		Date:   time.Now(),
		Salt:   s.cfg.DailySalt,
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}

	ctx, cancel := s.solverCtx(r)
	defer cancel()
	if err := sess.Prime(ctx, s.solver, s.opener()); err != nil {
		writeErr(w, r, err)
		return
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		writeErr(w, r, err)
		return
	}

	tok, exp, err := s.signSessionToken(sess.ID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	s.setSessionCookie(w, tok, exp)

	if s.history != nil {
		if err := s.history.StartSession(r.Context(), history.Session{
			ID:          sess.ID,
			Fingerprint: s.corpus.Fingerprint,
			Policy:      s.solver.Policy().String(),
			Mode:        string(sess.Mode),
		}); err != nil {
			logger(r).Warn().Err(err).Str("session", sess.ID).Msg("history: start session")
		}
	}

	v := sess.Snapshot()
	logger(r).Info().Str("session", sess.ID).Str("mode", string(v.Mode)).Int("pool", v.PoolSize).Msg("session created")
	writeJSON(w, http.StatusCreated, createRes{
		SessionID:  sess.ID,
		Token:      tok,
		Mode:       v.Mode,
		Rows:       v.Rows,
		PoolSize:   v.PoolSize,
		Suggestion: v.Suggestion,
		Bits:       v.Bits,
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "bad_json")
		return
	}

	ctx, cancel := s.solverCtx(r)
	defer cancel()
	res, err := sess.ApplyGuess(ctx, s.solver, req.Guess)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	s.respondRound(w, r, res)
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	var req feedbackReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if len(req.Outcomes) != solver.WordLen {
		httpError(w, http.StatusBadRequest, "bad_feedback")
		return
	}
	var outcomes [solver.WordLen]solver.Outcome
	copy(outcomes[:], req.Outcomes)

	ctx, cancel := s.solverCtx(r)
	defer cancel()
	res, err := sess.ApplyFeedback(ctx, s.solver, req.Guess, outcomes)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	s.respondRound(w, r, res)
}

// respondRound records the round and writes the view committed with it.
func (s *Server) respondRound(w http.ResponseWriter, r *http.Request, res game.Result) {
	v := res.View
	s.recordRound(r, v, res.Round)
	writeJSON(w, http.StatusOK, roundRes{
		Round:      res.Round,
		State:      v.State,
		PoolSize:   v.PoolSize,
		Candidates: v.Candidates,
		Secret:     v.Secret,
	})
}

func (s *Server) recordRound(r *http.Request, v game.View, round game.Round) {
	if s.history == nil {
		return
	}
	l := logger(r).With().Str("session", v.ID).Int("round", round.N).Logger()
	if err := s.history.RecordRound(r.Context(), v.ID, history.Round{
		N:            round.N,
		Guess:        string(round.Guess),
		Feedback:     int(round.Row.Key()),
		PoolBefore:   round.PoolBefore,
		PoolAfter:    round.PoolAfter,
		ExpectedBits: round.ExpectedBits,
		RealizedBits: round.RealizedBits,
		Suggestion:   string(round.Next),
	}); err != nil {
		l.Warn().Err(err).Msg("history: record round")
		return
	}
	if v.State != game.StatePlaying {
		if err := s.history.FinishSession(r.Context(), v.ID, string(v.State)); err != nil {
			l.Warn().Err(err).Msg("history: finish session")
		}
	}
}

type tableRes struct {
	Best     solver.Word     `json:"best"`
	Bits     float64         `json:"bits"`
	PoolSize int             `json:"poolSize"`
	Top      []solver.Scored `json:"top"`

	// set with ?guess=
	Guess     solver.Word `json:"guess,omitempty"`
	GuessBits float64     `json:"guessBits,omitempty"`
	Buckets   []bucket    `json:"buckets,omitempty"`
}

// bucket is one feedback class of a guess over the pool.
type bucket struct {
	Key     solver.Key    `json:"key"`
	Pattern string        `json:"pattern"`
	Size    int           `json:"size"`
	Words   []solver.Word `json:"words,omitempty"` // only when small
}

const bucketWordsBelow = 20

// buckets orders a partition largest first, then by key.
func buckets(parts map[solver.Key][]solver.Word) []bucket {
	out := make([]bucket, 0, len(parts))
	for k, ws := range parts {
		b := bucket{Key: k, Pattern: k.String(), Size: len(ws)}
		if len(ws) <= bucketWordsBelow {
			b.Words = ws
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Size != out[j].Size {
			return out[i].Size > out[j].Size
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// handleTable lists the highest-scoring guesses for the current pool.
// With ?guess=word it also returns how that word would split the pool.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	top := defaultTableTop
	if q := r.URL.Query().Get("top"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			httpError(w, http.StatusBadRequest, "bad_top")
			return
		}
		top = n
	}
	sg := sess.Suggestion()
	res := tableRes{
		Best:     sg.Best,
		Bits:     sg.Bits,
		PoolSize: sess.Snapshot().PoolSize,
		Top:      sg.Top(top),
	}
	if q := r.URL.Query().Get("guess"); q != "" {
		g, err := solver.ParseWord(q)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		parts, bits := sess.Partition(s.solver, g)
		res.Guess, res.GuessBits, res.Buckets = g, bits, buckets(parts)
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		httpError(w, http.StatusServiceUnavailable, "history_disabled")
		return
	}
	id := chi.URLParam(r, "id")
	sess, err := s.history.GetSession(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		// the start row was never written (history was failing at creation)
		httpError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		writeErr(w, r, err)
		return
	}
	rounds, err := s.history.Rounds(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": sess, "rounds": rounds})
}

// opener returns the configured fixed first guess, if any.
func (s *Server) opener() solver.Word {
	if s.cfg.Opener == "" {
		return ""
	}
	w, err := solver.ParseWord(s.cfg.Opener)
	if err != nil {
		return ""
	}
	return w
}
