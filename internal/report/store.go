package report

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/crossframe-dev/reroute/internal/convert"
)

// Store persists batch run reports for the dashboard. All state lives in
// a single sqlite database; the engine itself stays purely in-memory.
type Store struct {
	db *sql.DB
}

// Run is one persisted batch conversion run.
type Run struct {
	ID            string
	StartedAt     time.Time
	TotalFiles    int
	ModifiedCount int
	Rate          float64
}

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL,
	total_files INTEGER NOT NULL,
	modified_count INTEGER NOT NULL,
	rate REAL NOT NULL
)`

const createRunFilesTable = `
CREATE TABLE IF NOT EXISTS run_files (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	source_path TEXT NOT NULL,
	dest_path TEXT,
	status TEXT NOT NULL CHECK (status IN ('converted', 'failed'))
)`

// Open opens (and if needed initializes) a report store at the given
// sqlite path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report database: %w", err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// createSchema creates all tables atomically - schema creation succeeds
// or fails together.
func createSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	for _, ddl := range []string{createRunsTable, createRunFilesTable} {
		if _, err := tx.Exec(ddl); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// SaveRun persists one batch result and returns the new run id.
func (s *Store) SaveRun(result *convert.BatchResult, totalFiles int) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin run transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO runs (id, started_at, total_files, modified_count, rate) VALUES (?, ?, ?, ?, ?)",
		id, time.Now().Unix(), totalFiles, result.ModifiedCount, result.TransformationRate,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	for _, mapping := range result.TransformedFiles {
		_, err = tx.Exec(
			"INSERT INTO run_files (run_id, source_path, dest_path, status) VALUES (?, ?, ?, 'converted')",
			id, mapping.Source, mapping.Dest,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert run file: %w", err)
		}
	}
	for _, fileErr := range result.Errors {
		_, err = tx.Exec(
			"INSERT INTO run_files (run_id, source_path, dest_path, status) VALUES (?, ?, NULL, 'failed')",
			id, fileErr.Path,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert failed file: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		"SELECT id, started_at, total_files, modified_count, rate FROM runs ORDER BY started_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started int64
		if err := rows.Scan(&run.ID, &started, &run.TotalFiles, &run.ModifiedCount, &run.Rate); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.StartedAt = time.Unix(started, 0)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
