// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/dossier-engine/pkg/types"
)

// timeLayout sorts lexicographically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned by Get for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// RunLog records pipeline runs in SQLite.
type RunLog struct {
	db *sql.DB
}

// OpenRunLog opens or creates the run log database at path.
func OpenRunLog(path string) (*RunLog, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating run log directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening run log: %w", err)
	}

	l := &RunLog{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *RunLog) Close() error {
	return l.db.Close()
}

func (l *RunLog) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			slug TEXT NOT NULL,
			name TEXT NOT NULL,
			context_hint TEXT,
			raw_path TEXT,
			research_path TEXT,
			dossier_path TEXT,
			verification TEXT,
			research_source TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_slug ON runs(slug)`,
	}
	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// NewRun starts a run record with a fresh id.
func NewRun(slug, name, hint string, started time.Time) types.Run {
	return types.Run{
		ID:          uuid.NewString(),
		Slug:        slug,
		Name:        name,
		ContextHint: hint,
		StartedAt:   started,
	}
}

// Record inserts r, or replaces the stored run with the same id.
func (l *RunLog) Record(ctx context.Context, r types.Run) error {
	if r.ID == "" {
		return fmt.Errorf("recording run for %q: empty id", r.Name)
	}
	_, err := l.db.ExecContext(ctx, `INSERT OR REPLACE INTO runs
		(id, slug, name, context_hint, raw_path, research_path, dossier_path,
		 verification, research_source, started_at, finished_at, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Slug, r.Name, r.ContextHint, r.RawPath, r.ResearchPath, r.DossierPath,
		string(r.Verification), r.ResearchSource, formatTime(r.StartedAt), formatTime(r.FinishedAt), r.Error)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", r.ID, err)
	}
	return nil
}

// List returns up to limit runs, newest first. limit <= 0 means all.
func (l *RunLog) List(ctx context.Context, limit int) ([]types.Run, error) {
	q := `SELECT id, slug, name, context_hint, raw_path, research_path, dossier_path,
		verification, research_source, started_at, finished_at, error
		FROM runs ORDER BY started_at DESC, id`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Get returns the run with the given id.
func (l *RunLog) Get(ctx context.Context, id string) (types.Run, error) {
	row := l.db.QueryRowContext(ctx, `SELECT id, slug, name, context_hint, raw_path, research_path,
		dossier_path, verification, research_source, started_at, finished_at, error
		FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Run{}, ErrRunNotFound
	}
	return r, err
}

// Export writes all runs to w as "yaml" or "json".
func (l *RunLog) Export(ctx context.Context, w io.Writer, format string) error {
	runs, err := l.List(ctx, 0)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []types.Run{}
	}

	var data []byte
	switch format {
	case "yaml", "yml":
		data, err = yaml.Marshal(runs)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
	case "json":
		data, err = json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		data = append(data, '\n')
	default:
		return fmt.Errorf("unknown export format %q (want yaml or json)", format)
	}
	_, err = w.Write(data)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (types.Run, error) {
	var (
		r                                           types.Run
		hint, raw, research, dossier, verif, source sql.NullString
		started                                     string
		finished, errText                           sql.NullString
	)
	if err := s.Scan(&r.ID, &r.Slug, &r.Name, &hint, &raw, &research, &dossier,
		&verif, &source, &started, &finished, &errText); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("scanning run: %w", err)
	}
	r.ContextHint = hint.String
	r.RawPath = raw.String
	r.ResearchPath = research.String
	r.DossierPath = dossier.String
	r.Verification = types.VerificationStatus(verif.String)
	r.ResearchSource = source.String
	r.Error = errText.String
	r.StartedAt = parseTime(started)
	r.FinishedAt = parseTime(finished.String)
	return r, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
