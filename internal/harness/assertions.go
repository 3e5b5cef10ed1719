package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/algotrace/internal/trace"
)

// AssertionError is returned when an assertion fails.
// It includes the document's messages to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Messages []string // Step messages for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Messages) > 0 {
		fmt.Fprintf(&buf, "\nSteps:\n")
		for i, msg := range e.Messages {
			fmt.Fprintf(&buf, "  [%d] %s\n", i, msg)
		}
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion against doc and returns the
// failure messages, in assertion order.
func EvaluateAssertions(doc *trace.Document, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(doc, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return failures
}

func evaluate(doc *trace.Document, a Assertion) error {
	switch a.Type {
	case AssertStepCount:
		return assertStepCount(doc, a)
	case AssertFinalMessage:
		return assertFinalMessage(doc, a)
	case AssertMessageContains:
		return assertMessageContains(doc, a)
	case AssertMaxNodes:
		return assertMaxNodes(doc, a)
	case AssertOverlayMonotonic:
		return assertOverlayMonotonic(doc)
	case AssertHighlight:
		return assertHighlight(doc, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func messages(doc *trace.Document) []string {
	recs := doc.Records()
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Message
	}
	return out
}

func assertStepCount(doc *trace.Document, a Assertion) error {
	if doc.Len() != a.Count {
		return &AssertionError{
			Type:     AssertStepCount,
			Expected: fmt.Sprintf("%d steps", a.Count),
			Actual:   fmt.Sprintf("%d steps", doc.Len()),
			Messages: messages(doc),
		}
	}
	return nil
}

func assertFinalMessage(doc *trace.Document, a Assertion) error {
	last, ok := doc.Last()
	if !ok {
		return &AssertionError{
			Type:     AssertFinalMessage,
			Expected: fmt.Sprintf("final message %q", a.Message),
			Actual:   "empty document",
		}
	}
	if last.Message != a.Message {
		return &AssertionError{
			Type:     AssertFinalMessage,
			Expected: fmt.Sprintf("final message %q", a.Message),
			Actual:   fmt.Sprintf("%q", last.Message),
			Messages: messages(doc),
		}
	}
	return nil
}

func assertMessageContains(doc *trace.Document, a Assertion) error {
	for _, r := range doc.Records() {
		if strings.Contains(r.Message, a.Contains) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertMessageContains,
		Expected: fmt.Sprintf("a step message containing %q", a.Contains),
		Actual:   "not found",
		Messages: messages(doc),
	}
}

func assertMaxNodes(doc *trace.Document, a Assertion) error {
	last, ok := doc.Last()
	if !ok {
		return nil
	}
	if len(last.Nodes) > a.Max {
		return &AssertionError{
			Type:     AssertMaxNodes,
			Expected: fmt.Sprintf("at most %d nodes", a.Max),
			Actual:   fmt.Sprintf("%d nodes", len(last.Nodes)),
		}
	}
	return nil
}

// assertOverlayMonotonic checks that each record's nodes and edges start
// with the previous record's, in the same order.
func assertOverlayMonotonic(doc *trace.Document) error {
	recs := doc.Records()
	for i := 1; i < len(recs); i++ {
		prev, cur := recs[i-1], recs[i]
		if !hasPrefix(cur.Nodes, prev.Nodes) {
			return &AssertionError{
				Type:     AssertOverlayMonotonic,
				Expected: fmt.Sprintf("step %d nodes to extend step %d nodes %v", i, i-1, prev.Nodes),
				Actual:   fmt.Sprintf("%v", cur.Nodes),
			}
		}
		if !hasPrefix(cur.Edges, prev.Edges) {
			return &AssertionError{
				Type:     AssertOverlayMonotonic,
				Expected: fmt.Sprintf("step %d edges to extend step %d edges %v", i, i-1, prev.Edges),
				Actual:   fmt.Sprintf("%v", cur.Edges),
			}
		}
	}
	return nil
}

func hasPrefix[T comparable](s, prefix []T) bool {
	if len(prefix) > len(s) {
		return false
	}
	for i := range prefix {
		if s[i] != prefix[i] {
			return false
		}
	}
	return true
}

func assertHighlight(doc *trace.Document, a Assertion) error {
	idx := doc.Len() - 1
	if a.Step != nil {
		idx = *a.Step
		if idx < 0 {
			idx += doc.Len()
		}
	}
	if idx < 0 || idx >= doc.Len() {
		return &AssertionError{
			Type:     AssertHighlight,
			Expected: fmt.Sprintf("step %d to exist", idx),
			Actual:   fmt.Sprintf("%d steps", doc.Len()),
		}
	}

	rec := doc.Record(idx)
	got, ok := rec.Highlight(a.Name)
	if !ok {
		return &AssertionError{
			Type:     AssertHighlight,
			Expected: fmt.Sprintf("highlight %q in step %d", a.Name, idx),
			Actual:   "highlight not present",
			Messages: []string{rec.Message},
		}
	}
	if got != a.Index {
		return &AssertionError{
			Type:     AssertHighlight,
			Expected: fmt.Sprintf("highlight %q = %d in step %d", a.Name, a.Index, idx),
			Actual:   fmt.Sprintf("%d", got),
			Messages: []string{rec.Message},
		}
	}
	return nil
}
