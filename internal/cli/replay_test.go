package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/algotrace/internal/runner"
	"github.com/roach88/algotrace/internal/store"
	"github.com/roach88/algotrace/internal/trace"
)

func TestReplayCommandMissingDB(t *testing.T) {
	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	_, _, err := execute(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestReplayCommandEmptyDatabase(t *testing.T) {
	dbPath := seedDatabase(t)

	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	stdout, _, err := execute(cmd, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No runs found")
}

func TestReplayCommandEmptyDatabaseJSON(t *testing.T) {
	dbPath := seedDatabase(t)

	cmd := NewReplayCommand(&RootOptions{Format: "json"})
	stdout, _, err := execute(cmd, "--db", dbPath)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Data.TotalRuns)
	assert.True(t, resp.Data.AllDeterministic)
}

func TestReplayCommandDeterministic(t *testing.T) {
	dbPath := seedDatabase(t,
		runner.Request{Algorithm: "bubble_sort", Input: []int{3, 1, 2}},
		runner.Request{Algorithm: "quick_sort"},
		runner.Request{Algorithm: "bfs_graph", Policy: trace.PolicyStrict},
	)

	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	stdout, _, err := execute(cmd, "--db", dbPath)
	require.NoError(t, err, stdout)

	assert.Contains(t, stdout, "Replaying 3 run(s)")
	assert.Contains(t, stdout, "✓ run-1 (bubble_sort): 8 steps")
	assert.Contains(t, stdout, "✓ All runs deterministic")
}

func TestReplayCommandFailedRuns(t *testing.T) {
	dbPath := seedDatabase(t,
		runner.Request{Algorithm: "factorial", Input: []int{5}, MaxSteps: 3},
		runner.Request{Algorithm: "factorial", Input: []int{13}},
	)

	cmd := NewReplayCommand(&RootOptions{Format: "json"})
	stdout, _, err := execute(cmd, "--db", dbPath)
	require.NoError(t, err, stdout)

	var resp struct {
		Data ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data.Runs, 2)
	assert.Equal(t, 3, resp.Data.Runs[0].Steps)
	assert.Equal(t, 3, resp.Data.Runs[0].ReplayedSteps)
	assert.True(t, resp.Data.Runs[0].Deterministic)
	assert.Equal(t, 0, resp.Data.Runs[1].Steps)
	assert.True(t, resp.Data.Runs[1].Deterministic)
}

func TestReplayCommandSpecificRun(t *testing.T) {
	dbPath := seedDatabase(t,
		runner.Request{Algorithm: "bubble_sort", Input: []int{3, 1, 2}},
		runner.Request{Algorithm: "insertion_sort", Input: []int{2, 1}},
	)

	cmd := NewReplayCommand(&RootOptions{Format: "json"})
	stdout, _, err := execute(cmd, "--db", dbPath, "--run", "run-2")
	require.NoError(t, err)

	var resp struct {
		Data ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data.Runs, 1)
	assert.Equal(t, "run-2", resp.Data.Runs[0].RunID)
	assert.Equal(t, 5, resp.Data.Runs[0].Steps)
}

func TestReplayCommandAlgorithmFilter(t *testing.T) {
	dbPath := seedDatabase(t,
		runner.Request{Algorithm: "bubble_sort", Input: []int{3, 1, 2}},
		runner.Request{Algorithm: "insertion_sort", Input: []int{2, 1}},
		runner.Request{Algorithm: "bubble_sort", Input: []int{1, 2}},
	)

	cmd := NewReplayCommand(&RootOptions{Format: "json"})
	stdout, _, err := execute(cmd, "--db", dbPath, "--algorithm", "bubble_sort")
	require.NoError(t, err)

	var resp struct {
		Data ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, 2, resp.Data.TotalRuns)
	for _, run := range resp.Data.Runs {
		assert.Equal(t, "bubble_sort", run.Algorithm)
	}
}

func TestReplayCommandUnknownRun(t *testing.T) {
	dbPath := seedDatabase(t)

	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	stdout, _, err := execute(cmd, "--db", dbPath, "--run", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, ErrCodeNotFound)
}

func TestReplayCommandDetectsTampering(t *testing.T) {
	dbPath := seedDatabase(t, runner.Request{Algorithm: "insertion_sort", Input: []int{2, 1}})

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.WriteStep(t.Context(), "run-1", 5, trace.StepRecord{Message: "tampered"}))
	require.NoError(t, st.Close())

	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	stdout, _, err := execute(cmd, "--db", dbPath)
	require.Error(t, err)

	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "documents differ")
	assert.Contains(t, stdout, "Determinism verification FAILED")
}

func TestReplayCommandDetectsTamperingJSON(t *testing.T) {
	dbPath := seedDatabase(t, runner.Request{Algorithm: "insertion_sort", Input: []int{2, 1}})

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.WriteStep(t.Context(), "run-1", 5, trace.StepRecord{Message: "tampered"}))
	require.NoError(t, st.Close())

	cmd := NewReplayCommand(&RootOptions{Format: "json"})
	stdout, _, err := execute(cmd, "--db", dbPath)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNonDeterministic, resp.Error.Code)
}

func TestReplayCommandSkipsUnfinishedRuns(t *testing.T) {
	dbPath := seedDatabase(t)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	_, err = st.BeginRun(t.Context(), store.Run{ID: "crashed", Algorithm: "bubble_sort", Input: []int{2, 1}, Policy: "drop"})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	stdout, _, err := execute(cmd, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "- crashed (bubble_sort): skipped")
}
