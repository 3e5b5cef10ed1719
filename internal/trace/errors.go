package trace

import (
	"errors"
	"fmt"
)

var (
	// ErrNotOpen is returned by Begin and Finish before Open.
	ErrNotOpen = errors.New("trace: document not open")

	// ErrAlreadyOpen is returned by a second call to Open.
	ErrAlreadyOpen = errors.New("trace: document already open")

	// ErrStepInProgress is returned by Begin while a step handle is outstanding.
	ErrStepInProgress = errors.New("trace: step already in progress")

	// ErrClosed is returned by any Writer call after Finish.
	ErrClosed = errors.New("trace: document closed")

	// ErrEmptyName is the strict-mode failure for an empty array, variable or
	// highlight name.
	ErrEmptyName = errors.New("trace: empty name")
)

// Kind identifies which bound an overflow hit.
type Kind string

const (
	KindArrays     Kind = "arrays"
	KindArrayLen   Kind = "array_len"
	KindVariables  Kind = "variables"
	KindHighlights Kind = "highlights"
	KindNodes      Kind = "nodes"
	KindEdges      Kind = "edges"
)

// CapacityError describes one dropped or truncated entry.
type CapacityError struct {
	Kind  Kind
	Name  string // array/variable/highlight name, or node/edge identity
	Limit int
}

func (e *CapacityError) Error() string {
	if e.Kind == KindArrayLen {
		return fmt.Sprintf("trace: array %q truncated to %d elements", e.Name, e.Limit)
	}
	return fmt.Sprintf("trace: %s limit %d reached, dropped %s", e.Kind, e.Limit, e.Name)
}

// IsCapacityError reports whether err is, or wraps, a *CapacityError.
func IsCapacityError(err error) bool {
	var ce *CapacityError
	return errors.As(err, &ce)
}

// StepsExceededError is returned by Begin when WithMaxSteps is set and the
// document already holds that many records.
type StepsExceededError struct {
	Steps int // records emitted so far
	Limit int
}

func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("trace: step quota exceeded: %d records >= %d limit", e.Steps, e.Limit)
}

// IsStepsExceededError reports whether err is, or wraps, a *StepsExceededError.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}

// PolicyError is returned by ParsePolicy for an unknown policy name.
type PolicyError struct {
	Value string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("trace: unknown overflow policy %q (want drop or strict)", e.Value)
}
