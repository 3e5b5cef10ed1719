package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDocument = `[
  {"arrays":{"arr":[2,1]},"variables":{"i":0},"highlights":{"i":0},"nodes":[],"edges":[],"message":"Compare"}
]
`

func writeDocument(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateValidDocument(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	stdout, _, err := execute(cmd, writeDocument(t, validDocument))
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ Document valid (1 steps)")
}

func TestValidateValidDocumentJSON(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "json"})
	stdout, _, err := execute(cmd, writeDocument(t, validDocument))
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 1, resp.Data.Steps)
}

func TestValidateEmptyDocument(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	stdout, _, err := execute(cmd, writeDocument(t, "[\n]\n"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "(0 steps)")
}

func TestValidateFromStdin(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetIn(strings.NewReader(validDocument))
	stdout, _, err := execute(cmd, "-")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Document valid")
}

func TestValidateRunOutput(t *testing.T) {
	runCmd := NewRunCommand(&RootOptions{Format: "text"})
	doc, _, err := execute(runCmd, "merge_sort", "5,3,8,1")
	require.NoError(t, err)

	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetIn(strings.NewReader(doc))
	_, _, err = execute(cmd, "-")
	require.NoError(t, err)
}

func TestValidateInvalidDocuments(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing message",
			content: `[{"arrays":{},"variables":{},"highlights":{},"nodes":[],"edges":[]}]`,
		},
		{
			name:    "string variable",
			content: `[{"arrays":{},"variables":{"i":"x"},"highlights":{},"nodes":[],"edges":[],"message":""}]`,
		},
		{
			name:    "keys out of order",
			content: `[{"message":"","arrays":{},"variables":{},"highlights":{},"nodes":[],"edges":[]}]`,
		},
		{
			name:    "not an array",
			content: `{"steps":[]}`,
		},
		{
			name:    "not JSON",
			content: `[{"arrays":`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewValidateCommand(&RootOptions{Format: "text"})
			stdout, _, err := execute(cmd, writeDocument(t, tt.content))
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, stdout, "✗ document invalid")
		})
	}
}

func TestValidateInvalidDocumentJSON(t *testing.T) {
	content := `[{"message":"","arrays":{},"variables":{},"highlights":{},"nodes":[],"edges":[]}]`

	cmd := NewValidateCommand(&RootOptions{Format: "json"})
	stdout, _, err := execute(cmd, writeDocument(t, content))
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidDocument, resp.Error.Code)
}

func TestValidateNonExistentFile(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	stdout, _, err := execute(cmd, "/nonexistent/trace.json")
	require.Error(t, err)

	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, ErrCodeNotFound)
}

func TestValidateMissingArg(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	_, _, err := execute(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
