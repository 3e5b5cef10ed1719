package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/algotrace/internal/trace"
)

// Run statuses.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// Run is one stored algorithm execution.
type Run struct {
	ID        string
	Seq       int64
	Algorithm string
	Input     []int
	Policy    string
	Status    string
	StepCount int
	Error     string
}

// BeginRun inserts run with status "running" and returns a Recorder that
// appends the run's step records as the writer emits them. The run's Seq is
// assigned here.
func (s *Store) BeginRun(ctx context.Context, run Run) (*Recorder, error) {
	input := run.Input
	if input == nil {
		input = []int{}
	}
	inputJSON, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, seq, algorithm, input, policy, status)
		SELECT ?, COALESCE(MAX(seq), 0) + 1, ?, ?, ?, ?
		FROM runs
	`,
		run.ID,
		run.Algorithm,
		string(inputJSON),
		run.Policy,
		StatusRunning,
	)
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}

	return &Recorder{ctx: ctx, store: s, runID: run.ID}, nil
}

// WriteStep stores the record at position idx of a run.
// Rewriting an existing position is an error.
func (s *Store) WriteStep(ctx context.Context, runID string, idx int, rec trace.StepRecord) error {
	data, err := rec.MarshalJSON()
	if err != nil {
		return fmt.Errorf("write step: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO steps (run_id, idx, record)
		VALUES (?, ?, ?)
	`, runID, idx, string(data))
	if err != nil {
		return fmt.Errorf("write step: %w", err)
	}
	return nil
}

// FinishRun sets the final status and step count of a run.
func (s *Store) FinishRun(ctx context.Context, runID, status string, steps int, errMsg string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, step_count = ?, error = ?
		WHERE id = ?
	`, status, steps, errMsg, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// DeleteRun removes a run and its steps.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// Recorder is a trace.Sink writing one run's records to the store.
type Recorder struct {
	ctx   context.Context
	store *Store
	runID string
	next  int
}

var _ trace.Sink = (*Recorder)(nil)

// RunID returns the run being recorded.
func (r *Recorder) RunID() string {
	return r.runID
}

func (r *Recorder) Open() error {
	return nil
}

func (r *Recorder) Emit(rec trace.StepRecord) error {
	if err := r.store.WriteStep(r.ctx, r.runID, r.next, rec); err != nil {
		return err
	}
	r.next++
	return nil
}

func (r *Recorder) Close() error {
	return nil
}
