package harness

import "github.com/roach88/algotrace/internal/trace"

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Steps is the number of records in the document.
	Steps int `json:"steps"`

	// RunError is the run's error text, empty on success.
	RunError string `json:"run_error,omitempty"`

	// Errors contains assertion and validation failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Document is the trace as read back from the run store.
	Document *trace.Document `json:"-"`

	// Stream is the document exactly as the stream sink wrote it.
	Stream []byte `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
