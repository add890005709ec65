// Package history persists publish runs so operators can attribute a bad
// deploy or a race between concurrent publishes after the fact.
package history

import (
	"context"
	"time"
)

// Run is one recorded publish pipeline execution.
type Run struct {
	ID       string
	Started  time.Time
	Finished time.Time
	Outcome  string // success|warning|failed|canceled
	Bucket   string
	Created  int
	Updated  int
	Deleted  int
	Stages   []StageRecord
}

// StageRecord captures one stage's result within a run.
type StageRecord struct {
	Stage    string
	Result   string // success|warning|fatal|canceled|skipped
	Duration time.Duration
	Error    string
}

// Store defines the interface for persisting and retrieving publish runs.
type Store interface {
	// RecordRun persists a completed run with its stage records.
	RecordRun(ctx context.Context, run *Run) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// GetRun retrieves a run with its stage records.
	GetRun(ctx context.Context, id string) (*Run, error)

	// Close closes the store and releases resources.
	Close() error
}
