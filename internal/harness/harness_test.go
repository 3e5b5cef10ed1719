package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_PassingScenario(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "insertion",
		Description: "insertion sort of two values",
		Algorithm:   "insertion_sort",
		Input:       []int{2, 1},
		Assertions: []Assertion{
			{Type: AssertFinalMessage, Message: "Sorting Complete!"},
			{Type: AssertMessageContains, Contains: "Inserted 1 at index 0"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.RunError)
	// initial, pick, shift, insert, final
	assert.Equal(t, 5, result.Steps)
	assert.Equal(t, 5, result.Document.Len())
}

func TestRun_FailingAssertion(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "wrong_count",
		Description: "asserts the wrong step count",
		Algorithm:   "factorial",
		Input:       []int{1},
		Assertions:  []Assertion{{Type: AssertStepCount, Count: 9}},
	})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "9 steps")
}

func TestRun_ExpectedError(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "too_large",
		Description: "factorial past its bound",
		Algorithm:   "factorial",
		Input:       []int{13},
		ExpectError: "invalid input",
	})
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Contains(t, result.RunError, "invalid input")
	assert.Equal(t, "[\n]\n", string(result.Stream))
}

func TestRun_UnexpectedError(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "too_large",
		Description: "factorial past its bound",
		Algorithm:   "factorial",
		Input:       []int{13},
		Assertions:  []Assertion{{Type: AssertStepCount, Count: 0}},
	})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unexpected run error")
}

func TestRun_MissingExpectedError(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "fine",
		Description: "succeeds",
		Algorithm:   "factorial",
		Input:       []int{1},
		ExpectError: "boom",
	})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "run succeeded")
}

func TestRun_StrictPolicy(t *testing.T) {
	input := make([]int, 101)
	result, err := Run(&Scenario{
		Name:        "strict_overflow",
		Description: "array longer than the bound under strict",
		Algorithm:   "bubble_sort",
		Input:       input,
		Policy:      "strict",
		ExpectError: "truncated",
		Assertions:  []Assertion{{Type: AssertStepCount, Count: 0}},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_UnknownAlgorithm(t *testing.T) {
	_, err := Run(&Scenario{Name: "x", Description: "x", Algorithm: "bogo_sort"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown algorithm")
}

func TestRun_BadPolicy(t *testing.T) {
	_, err := Run(&Scenario{Name: "x", Description: "x", Algorithm: "bubble_sort", Policy: "loose"})
	require.Error(t, err)
}
