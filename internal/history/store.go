package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Run statuses.
const (
	RunRunning   = "running"
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

// Run is one archive invocation.
type Run struct {
	ID         string
	Collection string
	Language   string
	SourceURL  string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
	Selected   int
	Completed  int
	External   int
	Fetched    int
	Error      string
}

// Duration is the wall time of a finished run, zero while running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// ChapterOutcome records what happened to one entry during a run.
type ChapterOutcome struct {
	Key     string
	EntryID string
	Status  string
	Pages   int
	Fetched int
}

// RunTotals are the counters written when a run finishes.
type RunTotals struct {
	Selected  int
	Completed int
	External  int
	Fetched   int
}

// Store manages the run ledger backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// StartRun inserts a run in the running state.
func (s *Store) StartRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is required")
	}
	started := run.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, collection, language, source_url, status, started_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Collection, run.Language, run.SourceURL, RunRunning, formatTime(started),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordChapter appends a chapter outcome to runID.
func (s *Store) RecordChapter(ctx context.Context, runID string, outcome ChapterOutcome) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chapters (run_id, chapter_key, entry_id, status, pages, fetched, recorded_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, outcome.Key, outcome.EntryID, outcome.Status, outcome.Pages, outcome.Fetched, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("insert chapter outcome: %w", err)
	}
	return nil
}

// FinishRun marks runID finished. A non-nil runErr marks the run failed.
func (s *Store) FinishRun(ctx context.Context, runID string, totals RunTotals, runErr error) error {
	status := RunSucceeded
	message := ""
	if runErr != nil {
		status = RunFailed
		message = runErr.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, selected = ?, completed = ?, external = ?, fetched = ?, error_message = ?
         WHERE id = ?`,
		status, formatTime(time.Now()), totals.Selected, totals.Completed, totals.External, totals.Fetched, message, runID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// ListRuns returns the most recent runs first. A non-positive limit returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, collection, language, source_url, status, started_at, COALESCE(finished_at, ''),
                     selected, completed, external, fetched, error_message
              FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run               Run
			started, finished string
		)
		if err := rows.Scan(&run.ID, &run.Collection, &run.Language, &run.SourceURL, &run.Status,
			&started, &finished, &run.Selected, &run.Completed, &run.External, &run.Fetched, &run.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTime(started)
		run.FinishedAt = parseTime(finished)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListChapters returns the outcomes recorded for runID in processing order.
func (s *Store) ListChapters(ctx context.Context, runID string) ([]ChapterOutcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chapter_key, entry_id, status, pages, fetched FROM chapters WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query chapters: %w", err)
	}
	defer rows.Close()

	var outcomes []ChapterOutcome
	for rows.Next() {
		var o ChapterOutcome
		if err := rows.Scan(&o.Key, &o.EntryID, &o.Status, &o.Pages, &o.Fetched); err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

// timeLayout has a fixed-width fraction so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
