package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-based history store.
// Use ":memory:" for an in-memory database, or a file path for persistence.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started INTEGER NOT NULL,
		finished INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		bucket TEXT,
		created INTEGER NOT NULL DEFAULT 0,
		updated INTEGER NOT NULL DEFAULT 0,
		deleted INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS run_stages (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		stage TEXT NOT NULL,
		result TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		error TEXT,
		PRIMARY KEY (run_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordRun persists a completed run with its stage records.
func (s *SQLiteStore) RecordRun(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO runs (id, started, finished, outcome, bucket, created, updated, deleted) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		run.ID, run.Started.UnixMilli(), run.Finished.UnixMilli(), run.Outcome, run.Bucket, run.Created, run.Updated, run.Deleted,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, st := range run.Stages {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO run_stages (run_id, seq, stage, result, duration_ms, error) VALUES (?, ?, ?, ?, ?, ?)",
			run.ID, i, st.Stage, st.Result, st.Duration.Milliseconds(), st.Error,
		)
		if err != nil {
			return fmt.Errorf("insert stage record: %w", err)
		}
	}
	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first (without stage records).
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, started, finished, outcome, bucket, created, updated, deleted FROM runs ORDER BY started DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished int64
		if err := rows.Scan(&r.ID, &started, &finished, &r.Outcome, &r.Bucket, &r.Created, &r.Updated, &r.Deleted); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Started = time.UnixMilli(started)
		r.Finished = time.UnixMilli(finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun retrieves a run with its stage records.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var r Run
	var started, finished int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, started, finished, outcome, bucket, created, updated, deleted FROM runs WHERE id = ?", id,
	).Scan(&r.ID, &started, &finished, &r.Outcome, &r.Bucket, &r.Created, &r.Updated, &r.Deleted)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run not found: %s", id)
		}
		return nil, fmt.Errorf("query run: %w", err)
	}
	r.Started = time.UnixMilli(started)
	r.Finished = time.UnixMilli(finished)

	rows, err := s.db.QueryContext(ctx,
		"SELECT stage, result, duration_ms, error FROM run_stages WHERE run_id = ? ORDER BY seq", id,
	)
	if err != nil {
		return nil, fmt.Errorf("query stage records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var st StageRecord
		var durMS int64
		var errText sql.NullString
		if err := rows.Scan(&st.Stage, &st.Result, &durMS, &errText); err != nil {
			return nil, fmt.Errorf("scan stage record: %w", err)
		}
		st.Duration = time.Duration(durMS) * time.Millisecond
		st.Error = errText.String
		r.Stages = append(r.Stages, st)
	}
	return &r, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
