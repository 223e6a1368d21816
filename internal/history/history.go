// Package history stores a summary of every finished classification run in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"yashubustudio/pyroclassifier/classifier"
)

// Run is the stored summary of one classification run.
type Run struct {
	ID        int64
	StartedAt time.Time
	Elapsed   time.Duration
	ModelPath string
	Directory string
	Processed int
	Skipped   int
	Counts    map[string]int
}

// FromResult converts a finished classification run into a history record.
func FromResult(modelPath string, res *classifier.Result) Run {
	counts := make(map[string]int, len(res.Counts))
	for label, n := range res.Counts {
		counts[label] = n
	}
	return Run{
		StartedAt: res.Started,
		Elapsed:   res.Elapsed,
		ModelPath: modelPath,
		Directory: res.Directory,
		Processed: res.Processed,
		Skipped:   len(res.Skipped),
		Counts:    counts,
	}
}

// Store wraps the SQLite connection with serialized access.
type Store struct {
	conn *sql.DB
	mu   sync.RWMutex
}

// Open creates or opens the history database at path.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		elapsed_ms INTEGER NOT NULL DEFAULT 0,
		model_path TEXT NOT NULL,
		directory TEXT NOT NULL,
		processed INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS run_counts (
		run_id INTEGER NOT NULL,
		label TEXT NOT NULL,
		count INTEGER NOT NULL,
		PRIMARY KEY (run_id, label),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Record inserts a run and its counts, returning the new run ID.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, elapsed_ms, model_path, directory, processed, skipped)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.StartedAt.UTC(), run.Elapsed.Milliseconds(), run.ModelPath, run.Directory, run.Processed, run.Skipped)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	for label, count := range run.Counts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_counts (run_id, label, count) VALUES (?, ?, ?)`,
			id, label, count); err != nil {
			return 0, fmt.Errorf("insert count %s: %w", label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, started_at, elapsed_ms, model_path, directory, processed, skipped
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var elapsedMs int64
		if err := rows.Scan(&r.ID, &r.StartedAt, &elapsedMs, &r.ModelPath, &r.Directory, &r.Processed, &r.Skipped); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		r.Counts = make(map[string]int)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		if err := s.loadCounts(ctx, &runs[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s *Store) loadCounts(ctx context.Context, run *Run) error {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT label, count FROM run_counts WHERE run_id = ?`, run.ID)
	if err != nil {
		return fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return fmt.Errorf("scan count: %w", err)
		}
		run.Counts[label] = count
	}
	return rows.Err()
}
