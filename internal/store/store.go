// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/typespeed/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed width and always UTC so finished_at sorts as text in
// time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for history payloads and the trial archive.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Bridge sessions finish concurrently; SQLite takes one writer at a time.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS trials (
			id TEXT PRIMARY KEY,
			finished_at TEXT NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			elapsed_seconds INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS trial_mistakes (
			trial_id TEXT NOT NULL,
			word_index INTEGER NOT NULL,
			expected TEXT NOT NULL,
			typed TEXT NOT NULL,
			PRIMARY KEY (trial_id, word_index)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trials_finished_at ON trials(finished_at);`,
		`CREATE INDEX IF NOT EXISTS idx_trial_mistakes_expected ON trial_mistakes(expected);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	return err
}

// InsertTrial archives a finished trial and its mistakes.
func (s *Store) InsertTrial(ctx context.Context, result model.TrialResult, mistakes []model.Mistake) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO trials (id, finished_at, wpm, accuracy, elapsed_seconds)
		 VALUES (?, ?, ?, ?, ?)`,
		result.ID,
		result.Timestamp.UTC().Format(timeLayout),
		result.WPM,
		result.Accuracy,
		result.ElapsedSeconds,
	); err != nil {
		return err
	}

	if len(mistakes) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO trial_mistakes (trial_id, word_index, expected, typed)
			 VALUES (?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, m := range mistakes {
			if _, err = stmt.ExecContext(ctx, result.ID, m.WordIndex, m.Expected, m.Typed); err != nil {
				return err
			}
		}
	}

	err = tx.Commit()
	return err
}

// ListTrials returns archived trials oldest first. A positive last limits the
// result to the most recent trials.
func (s *Store) ListTrials(ctx context.Context, last int) ([]model.TrialResult, error) {
	query := `SELECT id, finished_at, wpm, accuracy, elapsed_seconds FROM (
		SELECT * FROM trials ORDER BY finished_at DESC LIMIT ?
	) ORDER BY finished_at ASC`
	limit := last
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var trials []model.TrialResult
	for rows.Next() {
		var r model.TrialResult
		var finishedAt string
		if err := rows.Scan(&r.ID, &finishedAt, &r.WPM, &r.Accuracy, &r.ElapsedSeconds); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, finishedAt)
		if err != nil {
			return nil, err
		}
		r.Timestamp = parsed
		trials = append(trials, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return trials, nil
}

// ListMistakes returns the archived mistakes of one trial by word index.
func (s *Store) ListMistakes(ctx context.Context, trialID string) ([]model.Mistake, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT word_index, expected, typed FROM trial_mistakes
		 WHERE trial_id = ? ORDER BY word_index ASC`, trialID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.Mistake
	for rows.Next() {
		var m model.Mistake
		if err := rows.Scan(&m.WordIndex, &m.Expected, &m.Typed); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// TopMistakes returns the n most frequently mistyped target words.
func (s *Store) TopMistakes(ctx context.Context, n int) ([]model.MistakeCount, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT expected, COUNT(*) AS cnt FROM trial_mistakes
		 GROUP BY expected
		 ORDER BY cnt DESC, expected ASC
		 LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.MistakeCount
	for rows.Next() {
		var mc model.MistakeCount
		if err := rows.Scan(&mc.Expected, &mc.Count); err != nil {
			return nil, err
		}
		result = append(result, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
