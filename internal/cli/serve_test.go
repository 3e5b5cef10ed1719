package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/algotrace/internal/schema"
	"github.com/roach88/algotrace/internal/server"
)

func TestServeCommandFlags(t *testing.T) {
	cmd := NewServeCommand(&RootOptions{Format: "text"})

	addrFlag := cmd.Flags().Lookup("addr")
	require.NotNil(t, addrFlag)
	assert.Equal(t, ":8080", addrFlag.DefValue)

	timeoutFlag := cmd.Flags().Lookup("timeout")
	require.NotNil(t, timeoutFlag)
	assert.Equal(t, server.DefaultTimeout.String(), timeoutFlag.DefValue)

	maxStepsFlag := cmd.Flags().Lookup("max-steps")
	require.NotNil(t, maxStepsFlag)
	assert.Equal(t, "10000", maxStepsFlag.DefValue)
}

func TestNewServerServesRuns(t *testing.T) {
	opts := &ServeOptions{
		RootOptions: &RootOptions{Format: "text"},
		Timeout:     5 * time.Second,
		MaxSteps:    server.DefaultMaxSteps,
	}
	cmd := NewServeCommand(opts.RootOptions)
	srv, cleanup, err := newServer(opts, cmd)
	require.NoError(t, err)
	defer cleanup()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/run/bubble_sort", strings.NewReader(`{"inputs":[3,1,2]}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NoError(t, schema.Validate(w.Body.Bytes()))
}

func TestNewServerWithDatabase(t *testing.T) {
	opts := &ServeOptions{
		RootOptions: &RootOptions{Format: "text"},
		Database:    filepath.Join(t.TempDir(), "runs.db"),
		Timeout:     5 * time.Second,
		MaxSteps:    server.DefaultMaxSteps,
		Strict:      true,
	}
	cmd := NewServeCommand(opts.RootOptions)
	srv, cleanup, err := newServer(opts, cmd)
	require.NoError(t, err)
	defer cleanup()

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/run/factorial", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	runID := w.Header().Get("X-Run-ID")
	require.NotEmpty(t, runID)

	// The recorded run is served back unchanged.
	stored := httptest.NewRecorder()
	srv.Handler().ServeHTTP(stored, httptest.NewRequest(http.MethodGet, "/runs/"+runID, nil))
	require.Equal(t, http.StatusOK, stored.Code, stored.Body.String())
	assert.Equal(t, w.Body.String(), stored.Body.String())
}

func TestNewServerBadDatabase(t *testing.T) {
	opts := &ServeOptions{
		RootOptions: &RootOptions{Format: "text"},
		Database:    "/nonexistent/dir/runs.db",
	}
	cmd := NewServeCommand(opts.RootOptions)
	_, _, err := newServer(opts, cmd)
	require.Error(t, err)
}

func TestNewServerHealth(t *testing.T) {
	opts := &ServeOptions{RootOptions: &RootOptions{Format: "text"}, Timeout: time.Second}
	cmd := NewServeCommand(opts.RootOptions)
	srv, cleanup, err := newServer(opts, cmd)
	require.NoError(t, err)
	defer cleanup()

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var health server.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
}
