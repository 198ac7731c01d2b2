// apps/solver-server/internal/history/store.go
//
// Round history queries.
// Responsibilities:
//   - Sessions: start, finish, load.
//   - Rounds: record in a transaction that also bumps the session counter.
//   - Summary: win rate, rounds to win and bits per corpus fingerprint.

package history

import (
	"context"
	"database/sql"
	"time"
)

// Session is one row of the sessions table.
type Session struct {
	ID          string `json:"id"`
	Fingerprint string `json:"fingerprint"`
	Policy      string `json:"policy"`
	Mode        string `json:"mode"`
	Status      string `json:"status"`
	Rounds      int    `json:"rounds"`
	StartedAt   string `json:"startedAt"`
	FinishedAt  string `json:"finishedAt,omitempty"`
}

// Round is one graded guess of a session.
type Round struct {
	N            int     `json:"n"`
	Guess        string  `json:"guess"`
	Feedback     int     `json:"feedback"` // packed feedback key
	PoolBefore   int     `json:"poolBefore"`
	PoolAfter    int     `json:"poolAfter"`
	ExpectedBits float64 `json:"expectedBits"`
	RealizedBits float64 `json:"realizedBits"`
	Suggestion   string  `json:"suggestion,omitempty"`
	CreatedAt    string  `json:"createdAt"`
}

// Summary aggregates finished sessions for one corpus.
type Summary struct {
	Fingerprint   string  `json:"fingerprint"`
	Finished      int     `json:"finished"`
	Wins          int     `json:"wins"`
	AvgWinRounds  float64 `json:"avgWinRounds"`
	AvgRealized   float64 `json:"avgRealizedBits"`
	AvgExpected   float64 `json:"avgExpectedBits"`
	RoundsTracked int     `json:"roundsTracked"`
}

// Store persists sessions and rounds.
type Store struct{ db *sql.DB }

// Open opens the database at dsn and applies migrations.
func Open(dsn string) (*Store, error) {
	db, err := openDB(dsn)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

func now() string { return time.Now().UTC().Format(time.RFC3339) }

// StartSession inserts a session row. Re-inserting an existing id is a no-op.
func (s *Store) StartSession(ctx context.Context, sess Session) error {
	if sess.StartedAt == "" {
		sess.StartedAt = now()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO sessions (id, fingerprint, policy, mode, status, started_at)
        VALUES (?, ?, ?, ?, 'playing', ?)`,
		sess.ID, sess.Fingerprint, sess.Policy, sess.Mode, sess.StartedAt,
	)
	return err
}

// RecordRound stores one round and bumps the session's round counter.
func (s *Store) RecordRound(ctx context.Context, sessionID string, r Round) error {
	if r.CreatedAt == "" {
		r.CreatedAt = now()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO rounds
            (session_id, n, guess, feedback, pool_before, pool_after,
             expected_bits, realized_bits, suggestion, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, r.N, r.Guess, r.Feedback, r.PoolBefore, r.PoolAfter,
		r.ExpectedBits, r.RealizedBits, r.Suggestion, r.CreatedAt,
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET rounds = rounds + 1 WHERE id=?`, sessionID); err != nil {
		return err
	}
	return tx.Commit()
}

// FinishSession marks a session won or lost.
func (s *Store) FinishSession(ctx context.Context, id, status string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status=?, finished_at=? WHERE id=?`, status, now(), id)
	return err
}

// GetSession loads one session row. Returns sql.ErrNoRows when missing.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	var sess Session
	err := s.db.QueryRowContext(ctx, `
        SELECT id, fingerprint, policy, mode, status, rounds, started_at, COALESCE(finished_at,'')
        FROM sessions WHERE id=?`, id,
	).Scan(&sess.ID, &sess.Fingerprint, &sess.Policy, &sess.Mode, &sess.Status,
		&sess.Rounds, &sess.StartedAt, &sess.FinishedAt)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// Rounds lists a session's rounds in play order.
func (s *Store) Rounds(ctx context.Context, sessionID string) ([]Round, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT n, guess, feedback, pool_before, pool_after,
               expected_bits, realized_bits, suggestion, created_at
        FROM rounds
        WHERE session_id=?
        ORDER BY n ASC`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Round{}
	for rows.Next() {
		var r Round
		if err := rows.Scan(&r.N, &r.Guess, &r.Feedback, &r.PoolBefore, &r.PoolAfter,
			&r.ExpectedBits, &r.RealizedBits, &r.Suggestion, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Summary aggregates finished sessions and their rounds for a corpus.
func (s *Store) Summary(ctx context.Context, fingerprint string) (Summary, error) {
	sum := Summary{Fingerprint: fingerprint}
	var avgWin sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, `
        SELECT COUNT(1),
               COALESCE(SUM(CASE WHEN status='won' THEN 1 ELSE 0 END), 0),
               AVG(CASE WHEN status='won' THEN rounds END)
        FROM sessions
        WHERE fingerprint=? AND status IN ('won','lost')`, fingerprint,
	).Scan(&sum.Finished, &sum.Wins, &avgWin); err != nil {
		return sum, err
	}
	sum.AvgWinRounds = avgWin.Float64

	var avgReal, avgExp sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, `
        SELECT COUNT(1), AVG(r.realized_bits), AVG(r.expected_bits)
        FROM rounds r JOIN sessions s ON s.id = r.session_id
        WHERE s.fingerprint=?`, fingerprint,
	).Scan(&sum.RoundsTracked, &avgReal, &avgExp); err != nil {
		return sum, err
	}
	sum.AvgRealized = avgReal.Float64
	sum.AvgExpected = avgExp.Float64
	return sum, nil
}
