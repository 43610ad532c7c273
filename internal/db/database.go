package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const timeFormat = "2006-01-02 15:04:05"

// Run is one recorded export run.
type Run struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string // "ok" or "error"
	Fetched    int
	Added      int
	Pruned     int
	Total      int
	Error      string
}

// RunStore records export runs in SQLite so past syncs can be inspected
// without digging through logs.
type RunStore struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the run database at path.
func Open(path string) (*RunStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &RunStore{db: db}, nil
}

// Close closes the database connection
func (s *RunStore) Close() error {
	return s.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS export_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		status TEXT NOT NULL,
		fetched INTEGER NOT NULL DEFAULT 0,
		added INTEGER NOT NULL DEFAULT 0,
		pruned INTEGER NOT NULL DEFAULT 0,
		total INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_export_runs_started_at ON export_runs(started_at);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// RecordRun inserts one finished run.
func (s *RunStore) RecordRun(run Run) error {
	_, err := s.db.Exec(
		"INSERT INTO export_runs (started_at, finished_at, status, fetched, added, pruned, total, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		run.StartedAt.UTC().Format(timeFormat),
		run.FinishedAt.UTC().Format(timeFormat),
		run.Status,
		run.Fetched,
		run.Added,
		run.Pruned,
		run.Total,
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *RunStore) RecentRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		"SELECT id, started_at, finished_at, status, fetched, added, pruned, total, error FROM export_runs ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt, finishedAt string

		if err := rows.Scan(&run.ID, &startedAt, &finishedAt, &run.Status,
			&run.Fetched, &run.Added, &run.Pruned, &run.Total, &run.Error); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.StartedAt, _ = time.Parse(timeFormat, startedAt)
		run.FinishedAt, _ = time.Parse(timeFormat, finishedAt)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
