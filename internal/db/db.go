// Package db records provisioning run history in SQLite.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB represents the history database with separate read/write pools
type DB struct {
	write *sql.DB
	read  *sql.DB
	path  string
}

// New creates a new database instance with separate read/write pools
func New(ctx context.Context, dbPath string) (*DB, error) {
	connStr := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)

	// Write pool: MUST be 1 connection only
	write, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open write connection: %w", err)
	}
	write.SetMaxOpenConns(1)
	write.SetMaxIdleConns(1)
	write.SetConnMaxIdleTime(time.Minute)
	write.SetConnMaxLifetime(time.Hour)

	read, err := sql.Open("sqlite", connStr)
	if err != nil {
		write.Close()
		return nil, fmt.Errorf("open read connection: %w", err)
	}
	read.SetMaxOpenConns(10)
	read.SetMaxIdleConns(5)
	read.SetConnMaxIdleTime(time.Minute)
	read.SetConnMaxLifetime(time.Hour)

	db := &DB{
		write: write,
		read:  read,
		path:  dbPath,
	}

	if err := db.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return db, nil
}

// Close closes both database connections
func (db *DB) Close() error {
	writeErr := db.write.Close()
	readErr := db.read.Close()
	if writeErr != nil {
		return writeErr
	}
	return readErr
}

// initSchema creates the schema if it doesn't exist
func (db *DB) initSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS provision_runs (
    run_id TEXT PRIMARY KEY,
    tool TEXT NOT NULL,
    version TEXT NOT NULL,
    status TEXT NOT NULL,
    failed_step TEXT,
    started_at DATETIME NOT NULL,
    duration_ms INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_provision_runs_tool ON provision_runs(tool);
CREATE INDEX IF NOT EXISTS idx_provision_runs_started ON provision_runs(started_at);
	`

	_, err := db.write.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// Run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
	StatusNoOp   = "noop"
)

// Run is one provisioning pipeline execution.
type Run struct {
	RunID      string
	Tool       string
	Version    string
	Status     string
	FailedStep string
	StartedAt  time.Time
	Duration   time.Duration
}

// RecordRun stores a completed (or failed) pipeline run.
func (db *DB) RecordRun(ctx context.Context, run *Run) error {
	query := `
INSERT INTO provision_runs (run_id, tool, version, status, failed_step, started_at, duration_ms)
VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.write.ExecContext(ctx, query,
		run.RunID,
		run.Tool,
		run.Version,
		run.Status,
		run.FailedStep,
		run.StartedAt.UTC(),
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	return nil
}

// ListRuns returns all recorded runs, most recent first.
func (db *DB) ListRuns(ctx context.Context) ([]Run, error) {
	query := `
SELECT run_id, tool, version, status, failed_step, started_at, duration_ms
FROM provision_runs
ORDER BY started_at DESC
	`

	rows, err := db.read.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var durationMs int64
		if err := rows.Scan(&run.RunID, &run.Tool, &run.Version, &run.Status, &run.FailedStep, &run.StartedAt, &durationMs); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// LastRun returns the most recent run, or nil when history is empty.
func (db *DB) LastRun(ctx context.Context) (*Run, error) {
	runs, err := db.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}
