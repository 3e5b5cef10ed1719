package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/algotrace/internal/algo"
	"github.com/roach88/algotrace/internal/trace"
)

// Scenario defines a conformance test scenario: one catalog algorithm run on
// a fixed input, with assertions over the resulting trace document.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Algorithm is the catalog name to run.
	Algorithm string `yaml:"algorithm"`

	// Input is passed to the algorithm. Empty means the catalog defaults.
	Input []int `yaml:"input,omitempty"`

	// Policy is the overflow policy: "drop" (default) or "strict".
	Policy string `yaml:"policy,omitempty"`

	// MaxSteps caps the number of records. 0 means unlimited.
	MaxSteps int `yaml:"max_steps,omitempty"`

	// ExpectError, when set, requires the run to fail with an error whose
	// text contains this string.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Assertions validate the finished document.
	// Supported types: step_count, final_message, message_contains,
	// max_nodes, overlay_monotonic, highlight.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates the trace document.
type Assertion struct {
	// Type specifies the assertion type:
	// - "step_count": document has exactly Count records
	// - "final_message": last record's message equals Message
	// - "message_contains": some record's message contains Contains
	// - "max_nodes": final overlay has at most Max nodes
	// - "overlay_monotonic": nodes and edges only grow, never reorder
	// - "highlight": highlight Name has Index in record Step (default: last)
	Type string `yaml:"type"`

	Count    int    `yaml:"count,omitempty"`
	Message  string `yaml:"message,omitempty"`
	Contains string `yaml:"contains,omitempty"`
	Max      int    `yaml:"max,omitempty"`
	Name     string `yaml:"name,omitempty"`
	Index    int    `yaml:"index,omitempty"`

	// Step selects a record for "highlight"; negative counts from the end.
	Step *int `yaml:"step,omitempty"`
}

// Assertion type constants.
const (
	AssertStepCount        = "step_count"
	AssertFinalMessage     = "final_message"
	AssertMessageContains  = "message_contains"
	AssertMaxNodes         = "max_nodes"
	AssertOverlayMonotonic = "overlay_monotonic"
	AssertHighlight        = "highlight"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Reject unknown fields so "assertion:" vs "assertions:" typos fail loudly
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml file in dir, sorted by file
// name. The first file that fails to load aborts the whole set.
func LoadScenarios(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Algorithm == "" {
		return fmt.Errorf("algorithm is required")
	}
	if _, ok := algo.Lookup(s.Algorithm); !ok {
		return fmt.Errorf("unknown algorithm %q", s.Algorithm)
	}

	if s.Policy != "" {
		if _, err := trace.ParsePolicy(s.Policy); err != nil {
			return err
		}
	}

	if s.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative")
	}

	if len(s.Assertions) == 0 && s.ExpectError == "" {
		return fmt.Errorf("assertions list is required unless expect_error is set")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertStepCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for step_count", index)
		}
	case AssertFinalMessage:
		if a.Message == "" {
			return fmt.Errorf("assertions[%d]: message is required for final_message", index)
		}
	case AssertMessageContains:
		if a.Contains == "" {
			return fmt.Errorf("assertions[%d]: contains is required for message_contains", index)
		}
	case AssertMaxNodes:
		if a.Max < 0 {
			return fmt.Errorf("assertions[%d]: max must be non-negative for max_nodes", index)
		}
	case AssertOverlayMonotonic:
	case AssertHighlight:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for highlight", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
