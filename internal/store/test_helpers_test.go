package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/algotrace/internal/trace"
)

// createTestStore creates a new temp-dir store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// recordTestRun stores a run with one record per message.
func recordTestRun(t *testing.T, s *Store, id, algorithm string, messages ...string) {
	t.Helper()
	ctx := context.Background()

	rec, err := s.BeginRun(ctx, Run{ID: id, Algorithm: algorithm, Input: []int{1, 2}, Policy: "drop"})
	if err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}
	for i, msg := range messages {
		err := rec.Emit(trace.StepRecord{
			Variables: []trace.NamedInt{{Name: "i", Value: i}},
			Message:   msg,
		})
		if err != nil {
			t.Fatalf("Emit() failed: %v", err)
		}
	}
	if err := s.FinishRun(ctx, id, StatusComplete, len(messages), ""); err != nil {
		t.Fatalf("FinishRun() failed: %v", err)
	}
}
