// Package runlog keeps a SQLite history of scrape runs.
package runlog

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrRunNotFound is returned by Get for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Listing modes a run can use.
const (
	ModeHTML = "html"
	ModeFeed = "feed"
)

// Run is one crawl of one category.
type Run struct {
	RunID           uuid.UUID `json:"run_id"`
	Category        string    `json:"category"`
	Mode            string    `json:"mode"`
	MaxPages        int       `json:"max_pages"`
	PreviewsFound   int       `json:"previews_found"`
	ArticlesScraped int       `json:"articles_scraped"`
	ArticlesFailed  int       `json:"articles_failed"`
	TotalStored     int       `json:"total_stored"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
}

// Duration is how long the run took.
func (r *Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Log manages the run history using SQLite.
type Log struct {
	db *sql.DB
}

// Open opens (or creates) the run history at dsn.
func Open(dsn string) (*Log, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	l := &Log{db: db}
	if err := l.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return l, nil
}

func (l *Log) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		mode TEXT NOT NULL,
		max_pages INTEGER NOT NULL,
		previews_found INTEGER NOT NULL DEFAULT 0,
		articles_scraped INTEGER NOT NULL DEFAULT 0,
		articles_failed INTEGER NOT NULL DEFAULT 0,
		total_stored INTEGER NOT NULL DEFAULT 0,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS runs_started_at ON runs (started_at);
	`

	_, err := l.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (l *Log) Close() error {
	return l.db.Close()
}

// Record stores a finished run. A zero RunID is replaced with a new one.
func (l *Log) Record(run *Run) error {
	if run.RunID == uuid.Nil {
		run.RunID = uuid.New()
	}

	query := `
		INSERT INTO runs (
			run_id, category, mode, max_pages, previews_found,
			articles_scraped, articles_failed, total_stored,
			started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := l.db.Exec(query,
		run.RunID.String(),
		run.Category,
		run.Mode,
		run.MaxPages,
		run.PreviewsFound,
		run.ArticlesScraped,
		run.ArticlesFailed,
		run.TotalStored,
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

const selectRuns = `
	SELECT run_id, category, mode, max_pages, previews_found,
	       articles_scraped, articles_failed, total_stored,
	       started_at, finished_at
	FROM runs
`

// Get retrieves a run by ID.
func (l *Log) Get(runID uuid.UUID) (*Run, error) {
	row := l.db.QueryRow(selectRuns+" WHERE run_id = ?", runID.String())

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	return run, nil
}

// List returns the most recent runs first. A limit of zero or less returns
// every run.
func (l *Log) List(limit int) ([]Run, error) {
	query := selectRuns + " ORDER BY started_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := l.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}

	return runs, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var runIDStr, startedAtStr, finishedAtStr string
	run := &Run{}

	err := s.Scan(
		&runIDStr, &run.Category, &run.Mode, &run.MaxPages,
		&run.PreviewsFound, &run.ArticlesScraped, &run.ArticlesFailed,
		&run.TotalStored, &startedAtStr, &finishedAtStr,
	)
	if err != nil {
		return nil, err
	}

	run.RunID, err = uuid.Parse(runIDStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run ID: %w", err)
	}
	run.StartedAt = parseTime(startedAtStr)
	run.FinishedAt = parseTime(finishedAtStr)

	return run, nil
}

// timeLayout is RFC3339 with fixed-width nanoseconds so stored times sort
// lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t
}
