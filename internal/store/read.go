package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/algotrace/internal/trace"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, seq, algorithm, input, policy, status, step_count, error`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run   Run
		input string
	)
	if err := row.Scan(&run.ID, &run.Seq, &run.Algorithm, &input, &run.Policy,
		&run.Status, &run.StepCount, &run.Error); err != nil {
		return Run{}, err
	}
	if err := json.Unmarshal([]byte(input), &run.Input); err != nil {
		return Run{}, fmt.Errorf("run %s input: %w", run.ID, err)
	}
	return run, nil
}

// ReadRun returns the run with the given ID.
func (s *Store) ReadRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run: %w", err)
	}
	return run, nil
}

// LatestRun returns the run with the highest seq.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+` FROM runs
		ORDER BY seq DESC, id DESC
		LIMIT 1
	`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("latest run: %w", ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("latest run: %w", err)
	}
	return run, nil
}

// ListRuns returns runs in seq order, optionally filtered by algorithm.
// limit <= 0 means no limit.
func (s *Store) ListRuns(ctx context.Context, algorithm string, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if algorithm != "" {
		query += ` WHERE algorithm = ?`
		args = append(args, algorithm)
	}
	query += ` ORDER BY seq ASC, id ASC COLLATE BINARY`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// ReadSteps returns a run's records in order.
func (s *Store) ReadSteps(ctx context.Context, runID string) ([]trace.StepRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, record FROM steps
		WHERE run_id = ?
		ORDER BY idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read steps: %w", err)
	}
	defer rows.Close()

	var recs []trace.StepRecord
	for rows.Next() {
		var (
			idx  int
			data string
		)
		if err := rows.Scan(&idx, &data); err != nil {
			return nil, fmt.Errorf("read steps: %w", err)
		}
		var rec trace.StepRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("read steps: run %s step %d: %w", runID, idx, err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read steps: %w", err)
	}
	return recs, nil
}

// ReadDocument rebuilds a run's trace document.
func (s *Store) ReadDocument(ctx context.Context, runID string) (*trace.Document, error) {
	if _, err := s.ReadRun(ctx, runID); err != nil {
		return nil, err
	}
	recs, err := s.ReadSteps(ctx, runID)
	if err != nil {
		return nil, err
	}
	doc := &trace.Document{}
	_ = doc.Open()
	for _, rec := range recs {
		_ = doc.Emit(rec)
	}
	_ = doc.Close()
	return doc, nil
}
