package trace

import "log/slog"

// Default capacity bounds.
const (
	DefaultMaxArrays     = 5
	DefaultMaxVariables  = 10
	DefaultMaxHighlights = 10
	DefaultMaxArrayLen   = 100
	DefaultMaxNodes      = 50
	DefaultMaxEdges      = 50
)

// Limits bounds what one step (arrays, variables, highlights) and one
// document (nodes, edges) may hold.
type Limits struct {
	MaxArrays     int
	MaxVariables  int
	MaxHighlights int
	MaxArrayLen   int
	MaxNodes      int
	MaxEdges      int
}

// DefaultLimits returns the bounds the frontend is built around.
func DefaultLimits() Limits {
	return Limits{
		MaxArrays:     DefaultMaxArrays,
		MaxVariables:  DefaultMaxVariables,
		MaxHighlights: DefaultMaxHighlights,
		MaxArrayLen:   DefaultMaxArrayLen,
		MaxNodes:      DefaultMaxNodes,
		MaxEdges:      DefaultMaxEdges,
	}
}

// OverflowPolicy selects what happens when a bound is exceeded.
type OverflowPolicy int

const (
	// PolicyDrop drops the excess entry and keeps going.
	PolicyDrop OverflowPolicy = iota
	// PolicyStrict fails the step: End returns the overflow and emits nothing.
	PolicyStrict
)

func (p OverflowPolicy) String() string {
	switch p {
	case PolicyDrop:
		return "drop"
	case PolicyStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// ParsePolicy maps "drop" or "strict" to an OverflowPolicy.
func ParsePolicy(s string) (OverflowPolicy, error) {
	switch s {
	case "", "drop":
		return PolicyDrop, nil
	case "strict":
		return PolicyStrict, nil
	default:
		return PolicyDrop, &PolicyError{Value: s}
	}
}

// Option configures a Writer.
type Option func(*Writer)

// WithLimits replaces the default capacity bounds.
func WithLimits(l Limits) Option {
	return func(w *Writer) {
		w.limits = l
	}
}

// WithPolicy sets the overflow policy. Default: PolicyDrop.
func WithPolicy(p OverflowPolicy) Option {
	return func(w *Writer) {
		w.policy = p
	}
}

// WithMaxSteps caps the number of records a document may contain.
// Begin returns *StepsExceededError once the cap is reached. 0 means no cap.
func WithMaxSteps(n int) Option {
	return func(w *Writer) {
		w.maxSteps = n
	}
}

// WithLogger sets the logger used for drop diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(w *Writer) {
		w.logger = l
	}
}
