package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Status describes the recorded outcome of a provisioning step.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Record is one journaled step execution.
type Record struct {
	Stage      int
	Step       string
	Status     Status
	Detail     string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Store persists provisioning progress so a re-run can skip steps that
// already completed. Backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS provision_steps (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    stage INTEGER NOT NULL,
    step TEXT NOT NULL,
    status TEXT NOT NULL,
    detail TEXT NOT NULL DEFAULT '',
    started_at TEXT NOT NULL,
    finished_at TEXT,
    UNIQUE(stage, step)
);
`

// Open initializes or connects to the journal database.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("journal path required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Begin records that a step started running. A previous record for the same
// step is replaced, so a failed step re-runs from scratch.
func (s *Store) Begin(ctx context.Context, stage int, step string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO provision_steps (stage, step, status, started_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(stage, step) DO UPDATE SET
             status = excluded.status,
             detail = '',
             started_at = excluded.started_at,
             finished_at = NULL`,
		stage, step, StatusRunning, now)
	if err != nil {
		return fmt.Errorf("journal begin %s: %w", step, err)
	}
	return nil
}

// Finish records a step outcome.
func (s *Store) Finish(ctx context.Context, stage int, step string, status Status, detail string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`UPDATE provision_steps SET status = ?, detail = ?, finished_at = ?
         WHERE stage = ? AND step = ?`,
		status, detail, now, stage, step)
	if err != nil {
		return fmt.Errorf("journal finish %s: %w", step, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("journal finish %s: %w", step, err)
	}
	if affected == 0 {
		return fmt.Errorf("journal finish %s: step was never begun", step)
	}
	return nil
}

// Completed returns the set of steps already completed for a stage.
func (s *Store) Completed(ctx context.Context, stage int) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT step FROM provision_steps WHERE stage = ? AND status = ?`,
		stage, StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("query completed steps: %w", err)
	}
	defer rows.Close()

	completed := make(map[string]bool)
	for rows.Next() {
		var step string
		if err := rows.Scan(&step); err != nil {
			return nil, fmt.Errorf("scan completed step: %w", err)
		}
		completed[step] = true
	}
	return completed, rows.Err()
}

// Records returns every journaled step ordered by stage and start time.
func (s *Store) Records(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stage, step, status, detail, started_at, finished_at
         FROM provision_steps ORDER BY stage, id`)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var status, startedAt string
		var finishedAt sql.NullString
		if err := rows.Scan(&rec.Stage, &rec.Step, &status, &rec.Detail, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		rec.Status = Status(status)
		if parsed, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			rec.StartedAt = parsed
		}
		if finishedAt.Valid {
			if parsed, err := time.Parse(time.RFC3339Nano, finishedAt.String); err == nil {
				rec.FinishedAt = &parsed
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Reset clears all journaled progress for a stage. Used by the operator to
// force a full re-run.
func (s *Store) Reset(ctx context.Context, stage int) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM provision_steps WHERE stage = ?`, stage); err != nil {
		return fmt.Errorf("reset journal stage %d: %w", stage, err)
	}
	return nil
}
