package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/solver-server/internal/config"
	"github.com/robalobadob/wordle/apps/solver-server/internal/history"
	"github.com/robalobadob/wordle/apps/solver-server/internal/solver"
	"github.com/robalobadob/wordle/apps/solver-server/internal/store"
	"github.com/robalobadob/wordle/apps/solver-server/internal/words"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      "test-secret",
		JWTExpiry:      time.Hour,
		CookieName:     "solver_session",
		ClientOrigin:   "http://localhost:5173",
		SuggestTimeout: 5 * time.Second,
	}
}

func newTestServer(t *testing.T, withHistory bool) *Server {
	t.Helper()
	d := Deps{
		Store:  store.NewMemoryStore(),
		Corpus: words.NewCorpus(solver.MustWords("fuzzy"), solver.MustWords("apple", "apply", "angle")),
		Solver: solver.New(solver.Options{}),
		Config: testConfig(),
	}
	if withHistory {
		h, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = h.Close() })
		d.History = h
	}
	return New(d)
}

func do(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func create(t *testing.T, s *Server, body any) createRes {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/sessions", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res createRes
	decode(t, rec, &res)
	return res
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)
	rec := do(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestDebugWords(t *testing.T) {
	s := newTestServer(t, false)
	rec := do(t, s, http.MethodGet, "/debug/words", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]any
	decode(t, rec, &got)
	assert.EqualValues(t, 3, got["answers"])
	assert.EqualValues(t, 4, got["guesses"])
	assert.Equal(t, "naive", got["policy"])
}

func TestStatelessSuggest(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, http.MethodPost, "/solver/suggest", "", map[string]any{"top": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res suggestRes
	decode(t, rec, &res)
	assert.Equal(t, solver.Word("apple"), res.Best)
	assert.Equal(t, 3, res.PoolSize)
	require.Len(t, res.Top, 2)
	assert.Equal(t, solver.Word("apple"), res.Top[0].Word)
	assert.Equal(t, solver.Word("apply"), res.Top[1].Word)

	rec = do(t, s, http.MethodPost, "/solver/suggest", "", map[string]any{"pool": []string{"crane"}})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &res)
	assert.Equal(t, solver.Word("crane"), res.Best)
	assert.Equal(t, 1.0, res.Bits)

	rec = do(t, s, http.MethodPost, "/solver/suggest", "", map[string]any{"pool": []string{"toolong"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/solver/suggest", "", map[string]any{"pool": []string{}})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPost, "/solver/suggest", "", map[string]any{"guesses": []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionFlowWithHistory(t *testing.T) {
	s := newTestServer(t, true)
	c := create(t, s, map[string]any{"mode": "fixed", "secret": "apply"})
	assert.Equal(t, solver.Word("apple"), c.Suggestion)
	assert.Equal(t, 3, c.PoolSize)
	require.NotEmpty(t, c.Token)

	path := "/sessions/" + c.SessionID

	rec := do(t, s, http.MethodPost, path+"/guess", c.Token, guessReq{Guess: "apple"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var r1 roundRes
	decode(t, rec, &r1)
	assert.Equal(t, "playing", string(r1.State))
	assert.Equal(t, 1, r1.PoolSize)
	assert.Equal(t, solver.Word("apply"), r1.Round.Next)
	assert.Empty(t, r1.Secret)

	rec = do(t, s, http.MethodPost, path+"/guess", c.Token, guessReq{Guess: "apply"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var r2 roundRes
	decode(t, rec, &r2)
	assert.Equal(t, "won", string(r2.State))
	assert.Equal(t, solver.Word("apply"), r2.Secret)

	rec = do(t, s, http.MethodPost, path+"/guess", c.Token, guessReq{Guess: "angle"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodGet, path+"/history", c.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var hist struct {
		Session *history.Session `json:"session"`
		Rounds  []history.Round  `json:"rounds"`
	}
	decode(t, rec, &hist)
	require.NotNil(t, hist.Session)
	assert.Equal(t, "won", hist.Session.Status)
	assert.Equal(t, 2, hist.Session.Rounds)
	assert.Equal(t, "fixed", hist.Session.Mode)
	require.Len(t, hist.Rounds, 2)
	assert.Equal(t, "apple", hist.Rounds[0].Guess)
	assert.Equal(t, 3, hist.Rounds[0].PoolBefore)

	rec = do(t, s, http.MethodGet, "/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sum history.Summary
	decode(t, rec, &sum)
	assert.Equal(t, 1, sum.Finished)
	assert.Equal(t, 1, sum.Wins)
	assert.Equal(t, 2.0, sum.AvgWinRounds)
}

func TestSessionAuth(t *testing.T) {
	s := newTestServer(t, false)
	a := create(t, s, map[string]any{"mode": "fixed", "secret": "apply"})
	b := create(t, s, map[string]any{"mode": "fixed", "secret": "apple"})

	rec := do(t, s, http.MethodGet, "/sessions/"+a.SessionID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodGet, "/sessions/"+a.SessionID, b.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodGet, "/sessions/"+a.SessionID, "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodGet, "/sessions/"+a.SessionID, a.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var v map[string]any
	decode(t, rec, &v)
	assert.Equal(t, a.SessionID, v["id"])
	assert.Equal(t, "playing", v["state"])

	// cookie works too
	req := httptest.NewRequest(http.MethodGet, "/sessions/"+a.SessionID, nil)
	req.AddCookie(&http.Cookie{Name: "solver_session", Value: a.Token})
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// valid token for a session the store never saw
	tok, _, err := s.signSessionToken("missing")
	require.NoError(t, err)
	rec = do(t, s, http.MethodGet, "/sessions/missing", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateSetsCookie(t *testing.T) {
	s := newTestServer(t, false)
	rec := do(t, s, http.MethodPost, "/sessions", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "solver_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestCreateErrors(t *testing.T) {
	s := newTestServer(t, false)
	rec := do(t, s, http.MethodPost, "/sessions", "", map[string]any{"mode": "fixed", "secret": "zzzzz"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, http.MethodPost, "/sessions", "", map[string]any{"mode": "bogus"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssistFeedback(t *testing.T) {
	s := newTestServer(t, false)
	c := create(t, s, map[string]any{"mode": "assist"})
	path := "/sessions/" + c.SessionID

	rec := do(t, s, http.MethodPost, path+"/guess", c.Token, guessReq{Guess: "apple"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, path+"/feedback", c.Token, map[string]any{
		"guess":    "fuzzy",
		"outcomes": []string{"correct", "absent", "absent", "absent", "absent"},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPost, path+"/feedback", c.Token, map[string]any{
		"guess":    "apple",
		"outcomes": []any{2, 0, 0, 2, 2},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var r roundRes
	decode(t, rec, &r)
	assert.Equal(t, []solver.Word{"angle"}, r.Candidates)
	assert.Equal(t, solver.Word("angle"), r.Round.Next)
}

func TestFeedbackRequiresFullRow(t *testing.T) {
	s := newTestServer(t, false)
	c := create(t, s, map[string]any{"mode": "assist"})
	path := "/sessions/" + c.SessionID

	for name, body := range map[string]any{
		"missing": map[string]any{"guess": "fuzzy"},
		"short":   map[string]any{"guess": "apple", "outcomes": []string{"correct"}},
		"long":    map[string]any{"guess": "apple", "outcomes": []int{2, 0, 0, 2, 2, 0}},
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, path+"/feedback", c.Token, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"bad_feedback"}`, rec.Body.String())
		})
	}

	// nothing was committed
	rec := do(t, s, http.MethodGet, path, c.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var v map[string]any
	decode(t, rec, &v)
	assert.EqualValues(t, 3, v["poolSize"])
	assert.Empty(t, v["rounds"])
}

func TestTable(t *testing.T) {
	s := newTestServer(t, false)
	c := create(t, s, map[string]any{"mode": "fixed", "secret": "apply"})
	path := "/sessions/" + c.SessionID + "/table"

	rec := do(t, s, http.MethodGet, path+"?top=2", c.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var res tableRes
	decode(t, rec, &res)
	assert.Equal(t, solver.Word("apple"), res.Best)
	require.Len(t, res.Top, 2)
	assert.Equal(t, solver.Word("apple"), res.Top[0].Word)

	rec = do(t, s, http.MethodGet, path+"?top=-1", c.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTableGuessBuckets(t *testing.T) {
	s := newTestServer(t, false)
	c := create(t, s, map[string]any{"mode": "fixed", "secret": "apply"})
	path := "/sessions/" + c.SessionID + "/table"

	rec := do(t, s, http.MethodGet, path+"?guess=fuzzy", c.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res tableRes
	decode(t, rec, &res)
	assert.Equal(t, solver.Word("fuzzy"), res.Guess)
	assert.Equal(t, 0.0, res.GuessBits)
	require.Len(t, res.Buckets, 1)
	assert.Equal(t, 3, res.Buckets[0].Size)
	assert.Equal(t, "⬜⬜⬜⬜⬜", res.Buckets[0].Pattern)
	assert.Equal(t, []solver.Word{"apple", "apply", "angle"}, res.Buckets[0].Words)

	rec = do(t, s, http.MethodGet, path+"?guess=APPLE", c.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res = tableRes{}
	decode(t, rec, &res)
	assert.InDelta(t, 1.585, res.GuessBits, 1e-3)
	require.Len(t, res.Buckets, 3)
	for _, b := range res.Buckets {
		assert.Equal(t, 1, b.Size)
	}
	// equal sizes fall back to key order; all-correct sorts last
	assert.Equal(t, "🟩🟩🟩🟩🟩", res.Buckets[2].Pattern)
	assert.Equal(t, []solver.Word{"apple"}, res.Buckets[2].Words)

	rec = do(t, s, http.MethodGet, path+"?guess=abc", c.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryDisabled(t *testing.T) {
	s := newTestServer(t, false)
	c := create(t, s, nil)
	rec := do(t, s, http.MethodGet, "/sessions/"+c.SessionID+"/history", c.Token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	rec = do(t, s, http.MethodGet, "/stats", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
