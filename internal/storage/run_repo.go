package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_run_store.go -package=mocks docqa/internal/storage RunStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// RunStore defines the interface for ingestion run history.
type RunStore interface {
	// Insert stores a run. A missing ID is filled with a new UUID.
	Insert(ctx context.Context, run *RunRecord) error
	// ListRecent returns up to limit runs, newest first.
	ListRecent(ctx context.Context, limit int) ([]*RunRecord, error)
	// Latest returns the newest run. Returns ErrNotFound if there is none.
	Latest(ctx context.Context) (*RunRecord, error)
}

// RunRepo provides methods for ingestion run operations.
// It implements the RunStore interface.
type RunRepo struct {
	db *sql.DB
}

// NewRunRepo creates a new RunRepo.
func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{db: db}
}

// Insert stores a run. A missing ID is filled with a new UUID.
func (r *RunRepo) Insert(ctx context.Context, run *RunRecord) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	stats := run.Stats
	if stats == nil {
		stats = []byte("{}")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ingest_runs (id, started_at, finished_at, index_version, files_processed,
			files_skipped, files_failed, chunks_added, chunks_removed, stats)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.IndexVersion, run.FilesProcessed,
		run.FilesSkipped, run.FilesFailed, run.ChunksAdded, run.ChunksRemoved, string(stats),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// ListRecent returns up to limit runs, newest first.
func (r *RunRepo) ListRecent(ctx context.Context, limit int) ([]*RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, index_version, files_processed, files_skipped,
			files_failed, chunks_added, chunks_removed, stats
		 FROM ingest_runs ORDER BY started_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var runs []*RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

// Latest returns the newest run. Returns ErrNotFound if there is none.
func (r *RunRepo) Latest(ctx context.Context) (*RunRecord, error) {
	runs, err := r.ListRecent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNotFound
	}
	return runs[0], nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var (
		run      RunRecord
		started  time.Time
		finished time.Time
		stats    string
	)
	if err := row.Scan(&run.ID, &started, &finished, &run.IndexVersion, &run.FilesProcessed,
		&run.FilesSkipped, &run.FilesFailed, &run.ChunksAdded, &run.ChunksRemoved, &stats); err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	run.StartedAt = started
	run.FinishedAt = finished
	run.Stats = []byte(stats)
	return &run, nil
}
