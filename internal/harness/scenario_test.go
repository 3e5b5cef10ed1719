package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "test.yaml", `
name: test_scenario
description: "Test scenario for validation"
algorithm: binary_search
input: [5, 1, 3, 5]
policy: strict
max_steps: 40
assertions:
  - type: final_message
    message: "Target Found!"
  - type: highlight
    name: Found
    index: 2
    step: -1
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.Equal(t, "binary_search", scenario.Algorithm)
	assert.Equal(t, []int{5, 1, 3, 5}, scenario.Input)
	assert.Equal(t, "strict", scenario.Policy)
	assert.Equal(t, 40, scenario.MaxSteps)
	require.Len(t, scenario.Assertions, 2)
	require.NotNil(t, scenario.Assertions[1].Step)
	assert.Equal(t, -1, *scenario.Assertions[1].Step)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "typo.yaml", `
name: typo
description: "assertion instead of assertions"
algorithm: bubble_sort
assertion:
  - type: step_count
    count: 1
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "description: d\nalgorithm: bubble_sort\nassertions: [{type: overlay_monotonic}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: n\nalgorithm: bubble_sort\nassertions: [{type: overlay_monotonic}]\n",
			wantErr: "description is required",
		},
		{
			name:    "missing algorithm",
			content: "name: n\ndescription: d\nassertions: [{type: overlay_monotonic}]\n",
			wantErr: "algorithm is required",
		},
		{
			name:    "unknown algorithm",
			content: "name: n\ndescription: d\nalgorithm: bogo_sort\nassertions: [{type: overlay_monotonic}]\n",
			wantErr: `unknown algorithm "bogo_sort"`,
		},
		{
			name:    "bad policy",
			content: "name: n\ndescription: d\nalgorithm: bubble_sort\npolicy: lenient\nassertions: [{type: overlay_monotonic}]\n",
			wantErr: "unknown overflow policy",
		},
		{
			name:    "negative max steps",
			content: "name: n\ndescription: d\nalgorithm: bubble_sort\nmax_steps: -1\nassertions: [{type: overlay_monotonic}]\n",
			wantErr: "max_steps must be non-negative",
		},
		{
			name:    "no assertions",
			content: "name: n\ndescription: d\nalgorithm: bubble_sort\n",
			wantErr: "assertions list is required",
		},
		{
			name:    "unknown assertion type",
			content: "name: n\ndescription: d\nalgorithm: bubble_sort\nassertions: [{type: trace_contains}]\n",
			wantErr: `unknown assertion type "trace_contains"`,
		},
		{
			name:    "final_message without message",
			content: "name: n\ndescription: d\nalgorithm: bubble_sort\nassertions: [{type: final_message}]\n",
			wantErr: "message is required for final_message",
		},
		{
			name:    "highlight without name",
			content: "name: n\ndescription: d\nalgorithm: bubble_sort\nassertions: [{type: highlight, index: 1}]\n",
			wantErr: "name is required for highlight",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, t.TempDir(), "s.yaml", tt.content)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_ExpectErrorWithoutAssertions(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "s.yaml",
		"name: n\ndescription: d\nalgorithm: factorial\ninput: [13]\nexpect_error: invalid input\n")
	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "invalid input", scenario.ExpectError)
}

func TestLoadScenarios_SortedByFileName(t *testing.T) {
	dir := t.TempDir()
	body := "description: d\nalgorithm: bubble_sort\nassertions: [{type: overlay_monotonic}]\n"
	writeScenario(t, dir, "b.yaml", "name: second\n"+body)
	writeScenario(t, dir, "a.yml", "name: first\n"+body)
	writeScenario(t, dir, "notes.txt", "ignored")

	scenarios, err := LoadScenarios(dir)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "first", scenarios[0].Name)
	assert.Equal(t, "second", scenarios[1].Name)
}

func TestLoadScenarios_ReportsFile(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "broken.yaml", "name: [\n")

	_, err := LoadScenarios(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yaml")
}
