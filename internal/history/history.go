// Package history records finished runs in a SQL database.
//
// The DSN selects the driver: libsql:// URLs use the libSQL client,
// postgres:// URLs use pgx, and anything else is a SQLite file path.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"

	"github.com/jywlabs/analyst/internal/pipeline"
)

// DefaultLimit is the number of runs List returns when limit <= 0.
const DefaultLimit = 20

// timeLayout is fixed width so stored timestamps sort lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	problem TEXT NOT NULL,
	mode TEXT NOT NULL,
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	quality INTEGER NOT NULL,
	confidence TEXT NOT NULL,
	degraded INTEGER NOT NULL,
	report_path TEXT NOT NULL
)`

// Run is one row of the runs table.
type Run struct {
	ID         string
	Problem    string
	Mode       string
	StartedAt  time.Time
	FinishedAt time.Time
	Quality    int
	Confidence string
	Degraded   int
	ReportPath string
}

// FromResult summarizes a pipeline result for storage.
func FromResult(res *pipeline.Result, reportPath string) Run {
	return Run{
		ID:         res.RunID,
		Problem:    res.Problem,
		Mode:       res.Report.Metadata.Mode,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		Quality:    res.Report.ExecutiveSummary.OverallQualityScore,
		Confidence: string(res.Report.ExecutiveSummary.ConfidenceLevel),
		Degraded:   res.Degraded,
		ReportPath: reportPath,
	}
}

// Store is a run history backed by database/sql.
type Store struct {
	db     *sql.DB
	driver string
}

// Driver returns the database/sql driver name for dsn.
func Driver(dsn string) string {
	switch {
	case strings.HasPrefix(dsn, "libsql://"):
		return "libsql"
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "pgx"
	default:
		return "sqlite"
	}
}

// Open connects to dsn and creates the runs table if needed.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("history DSN is empty")
	}
	driver := Driver(dsn)
	if driver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == "sqlite" {
		// One writer at a time.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create runs table: %w", err)
	}
	return &Store{db: db, driver: driver}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts run.
func (s *Store) Record(ctx context.Context, run Run) error {
	q := s.rebind(`INSERT INTO runs
	(id, problem, mode, started_at, finished_at, quality, confidence, degraded, report_path)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, q,
		run.ID, run.Problem, run.Mode,
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
		run.Quality, run.Confidence, run.Degraded, run.ReportPath)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	return nil
}

// List returns up to limit runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	q := s.rebind(`SELECT id, problem, mode, started_at, finished_at, quality, confidence, degraded, report_path
	FROM runs ORDER BY finished_at DESC LIMIT ?`)
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Problem, &r.Mode, &started, &finished,
			&r.Quality, &r.Confidence, &r.Degraded, &r.ReportPath); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if r.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("run %s: bad started_at %q: %w", r.ID, started, err)
		}
		if r.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("run %s: bad finished_at %q: %w", r.ID, finished, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// rebind converts ? placeholders to $n for postgres.
func (s *Store) rebind(q string) string {
	if s.driver != "pgx" {
		return q
	}
	var b strings.Builder
	n := 0
	for _, c := range q {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
