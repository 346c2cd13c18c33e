// Package history records every cleaning run in the database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// timeFormat sorts lexically in chronological order.
const timeFormat = "2006-01-02T15:04:05.000000Z07:00"

// ErrNotFound is returned when a run id is unknown.
var ErrNotFound = errors.New("run not found")

// File is one cleaned file of a run.
type File struct {
	Category string `json:"category"`
	Path     string `json:"path"`
}

// Run is the stored record of a cleaning run.
type Run struct {
	ID           string         `json:"id"`
	Trigger      string         `json:"trigger"`
	CleaningType string         `json:"cleaning_type"`
	Status       string         `json:"status"`
	Error        string         `json:"error,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at"`
	Counts       map[string]int `json:"counts"`
	Files        []File         `json:"files,omitempty"`
}

// Service stores and reads runs.
type Service struct {
	db *sql.DB
}

// NewService creates a history service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Record stores r. A new id is assigned when r.ID is empty.
func (s *Service) Record(ctx context.Context, r *Run) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback is a no-op after commit

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, trigger, cleaning_type, status, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Trigger, r.CleaningType, r.Status, r.Error,
		r.StartedAt.UTC().Format(timeFormat), r.FinishedAt.UTC().Format(timeFormat)); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	for cat, n := range r.Counts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_counts (run_id, category, count) VALUES (?, ?, ?)`, r.ID, cat, n); err != nil {
			return fmt.Errorf("inserting run count: %w", err)
		}
	}
	for i, f := range r.Files {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_files (run_id, position, category, path) VALUES (?, ?, ?, ?)`,
			r.ID, i, f.Category, f.Path); err != nil {
			return fmt.Errorf("inserting run file: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first, without their files.
func (s *Service) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, trigger, cleaning_type, status, error, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	for i := range runs {
		counts, err := s.counts(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Counts = counts
	}
	return runs, nil
}

// Get returns a run with its counts and files.
func (s *Service) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, trigger, cleaning_type, status, error, started_at, finished_at
		FROM runs WHERE id = ?
	`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if r.Counts, err = s.counts(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT category, path FROM run_files WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("listing run files: %w", err)
	}
	defer rows.Close() //nolint:errcheck
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.Category, &f.Path); err != nil {
			return nil, fmt.Errorf("scanning run file: %w", err)
		}
		r.Files = append(r.Files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run files: %w", err)
	}
	return r, nil
}

// Prune deletes all but the newest keep runs and returns how many were
// removed.
func (s *Service) Prune(ctx context.Context, keep int) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY started_at DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning runs: %w", err)
	}
	return res.RowsAffected()
}

func (s *Service) counts(ctx context.Context, id string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category, count FROM run_counts WHERE run_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("listing run counts: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	counts := make(map[string]int)
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, fmt.Errorf("scanning run count: %w", err)
		}
		counts[cat] = n
	}
	return counts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var r Run
	var started, finished string
	if err := sc.Scan(&r.ID, &r.Trigger, &r.CleaningType, &r.Status, &r.Error, &started, &finished); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	r.StartedAt = parseTime(started)
	r.FinishedAt = parseTime(finished)
	return &r, nil
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
