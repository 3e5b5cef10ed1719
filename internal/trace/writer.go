package trace

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/text/unicode/norm"
)

type state int

const (
	stateUninitialized state = iota
	stateDocumentOpen
	stateStepOpen
	stateStepClosed
	stateDocumentClosed
)

func (s state) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateDocumentOpen:
		return "document_open"
	case stateStepOpen:
		return "step_open"
	case stateStepClosed:
		return "step_closed"
	case stateDocumentClosed:
		return "document_closed"
	default:
		return "unknown"
	}
}

// Stats counts what a Writer emitted and what it had to drop.
type Stats struct {
	Steps             int `json:"steps"`           // records emitted
	FailedSteps       int `json:"failed_steps"`    // steps ended with a strict-mode overflow
	DiscardedSteps    int `json:"discarded_steps"` // steps still open at Finish
	TruncatedArrays   int `json:"truncated_arrays"`
	DroppedArrays     int `json:"dropped_arrays"`
	DroppedVariables  int `json:"dropped_variables"`
	DroppedHighlights int `json:"dropped_highlights"`
	DroppedNodes      int `json:"dropped_nodes"`
	DroppedEdges      int `json:"dropped_edges"`
	EmptyNames        int `json:"empty_names"`
}

// Dropped returns the total number of dropped or truncated entries.
func (s Stats) Dropped() int {
	return s.TruncatedArrays + s.DroppedArrays + s.DroppedVariables +
		s.DroppedHighlights + s.DroppedNodes + s.DroppedEdges + s.EmptyNames
}

// Writer drives the step lifecycle of one trace document. It exclusively owns
// the step buffer and the graph overlay; callers push data through a *Step.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	sink     Sink
	limits   Limits
	policy   OverflowPolicy
	maxSteps int
	logger   *slog.Logger

	state   state
	buf     stepBuffer
	overlay graphOverlay
	current *Step
	stats   Stats
	err     error // sticky sink failure
}

// NewWriter returns a Writer emitting to sink. Combine sinks with Tee.
func NewWriter(sink Sink, opts ...Option) *Writer {
	w := &Writer{
		sink:   sink,
		limits: DefaultLimits(),
		policy: PolicyDrop,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w
}

// Open starts the document: the sink writes its opening framing and the
// overlay is emptied.
func (w *Writer) Open() error {
	switch w.state {
	case stateUninitialized:
	case stateDocumentClosed:
		return ErrClosed
	default:
		return ErrAlreadyOpen
	}
	w.buf.reset()
	w.overlay.reset()
	if err := w.sink.Open(); err != nil {
		w.err = fmt.Errorf("open trace: %w", err)
		return w.err
	}
	w.state = stateDocumentOpen
	return nil
}

// Begin opens a step and returns its handle. The step buffer starts empty;
// the overlay carries over from earlier steps.
func (w *Writer) Begin() (*Step, error) {
	switch w.state {
	case stateUninitialized:
		return nil, ErrNotOpen
	case stateStepOpen:
		return nil, ErrStepInProgress
	case stateDocumentClosed:
		return nil, ErrClosed
	}
	if w.err != nil {
		return nil, w.err
	}
	if w.maxSteps > 0 && w.stats.Steps >= w.maxSteps {
		return nil, &StepsExceededError{Steps: w.stats.Steps, Limit: w.maxSteps}
	}
	w.buf.reset()
	w.current = &Step{w: w, index: w.stats.Steps}
	w.state = stateStepOpen
	return w.current, nil
}

// Step runs fn inside a fresh step and ends it.
func (w *Writer) Step(fn func(s *Step)) error {
	s, err := w.Begin()
	if err != nil {
		return err
	}
	fn(s)
	return s.End()
}

// Finish closes the document. A step still open is discarded without a
// record and its handle becomes unusable.
func (w *Writer) Finish() error {
	switch w.state {
	case stateUninitialized:
		return ErrNotOpen
	case stateDocumentClosed:
		return ErrClosed
	}
	if w.current != nil {
		w.current.done = true
		w.current = nil
		w.stats.DiscardedSteps++
		w.logger.Debug("discarding unfinished step", "step", w.stats.Steps)
	}
	w.state = stateDocumentClosed
	closeErr := w.sink.Close()
	if closeErr != nil {
		closeErr = fmt.Errorf("close trace: %w", closeErr)
	}
	return errors.Join(w.err, closeErr)
}

// Stats returns the running counters.
func (w *Writer) Stats() Stats {
	return w.stats
}

// Policy returns the configured overflow policy.
func (w *Writer) Policy() OverflowPolicy {
	return w.policy
}

func (w *Writer) end(s *Step) error {
	w.current = nil
	w.state = stateStepClosed
	if s.err != nil {
		w.stats.FailedSteps++
		return s.err
	}
	nodes, edges := w.overlay.snapshot()
	rec := StepRecord{
		Arrays:     w.buf.arrays,
		Variables:  w.buf.variables,
		Highlights: w.buf.highlights,
		Nodes:      nodes,
		Edges:      edges,
		Message:    w.buf.message,
	}
	// reset allocates fresh slices, so rec keeps these.
	w.buf.reset()
	if err := w.sink.Emit(rec); err != nil {
		w.err = fmt.Errorf("emit step %d: %w", s.index, err)
		return w.err
	}
	w.stats.Steps++
	return nil
}

func (w *Writer) note(s *Step, err error) {
	if err == nil {
		return
	}
	var ce *CapacityError
	if errors.As(err, &ce) {
		switch ce.Kind {
		case KindArrayLen:
			w.stats.TruncatedArrays++
		case KindArrays:
			w.stats.DroppedArrays++
		case KindVariables:
			w.stats.DroppedVariables++
		case KindHighlights:
			w.stats.DroppedHighlights++
		case KindNodes:
			w.stats.DroppedNodes++
		case KindEdges:
			w.stats.DroppedEdges++
		}
	} else if errors.Is(err, ErrEmptyName) {
		w.stats.EmptyNames++
	}
	w.logger.Debug("trace overflow", "step", s.index, "policy", w.policy, "error", err)
	if w.policy == PolicyStrict && s.err == nil {
		s.err = err
	}
}

// Step is the handle of an open step. It is the only way to record data.
// After End, or after Finish discarded it, every method panics.
//
// Names, labels and messages are NFC-normalized as they are recorded, so
// canonically equivalent names address the same entry.
type Step struct {
	w     *Writer
	index int
	err   error
	done  bool
}

func (s *Step) live() {
	if s.done {
		panic(fmt.Sprintf("trace: step %d used after it was closed", s.index))
	}
}

// Index returns the position the step's record will take in the document.
func (s *Step) Index() int {
	return s.index
}

// Array records a snapshot of values under name.
func (s *Step) Array(name string, values []int) *Step {
	s.live()
	name = norm.NFC.String(name)
	if name == "" {
		s.w.note(s, fmt.Errorf("%w: array", ErrEmptyName))
		return s
	}
	if ce := s.w.buf.putArray(name, values, s.w.limits); ce != nil {
		s.w.note(s, ce)
	}
	return s
}

// Variable records a named integer.
func (s *Step) Variable(name string, value int) *Step {
	s.live()
	name = norm.NFC.String(name)
	if name == "" {
		s.w.note(s, fmt.Errorf("%w: variable", ErrEmptyName))
		return s
	}
	if ce := s.w.buf.putVariable(name, value, s.w.limits); ce != nil {
		s.w.note(s, ce)
	}
	return s
}

// Highlight records a named index of interest. The index is not checked
// against any array.
func (s *Step) Highlight(name string, index int) *Step {
	s.live()
	name = norm.NFC.String(name)
	if name == "" {
		s.w.note(s, fmt.Errorf("%w: highlight", ErrEmptyName))
		return s
	}
	if ce := s.w.buf.putHighlight(name, index, s.w.limits); ce != nil {
		s.w.note(s, ce)
	}
	return s
}

// Message sets the step's message, replacing any earlier one.
func (s *Step) Message(text string) *Step {
	s.live()
	s.w.buf.message = norm.NFC.String(text)
	return s
}

// Messagef is Message with fmt.Sprintf formatting.
func (s *Step) Messagef(format string, args ...any) *Step {
	return s.Message(fmt.Sprintf(format, args...))
}

// Node adds a node to the overlay. A known id keeps its first label.
func (s *Step) Node(id int, label string) *Step {
	s.live()
	if ce := s.w.overlay.addNode(id, norm.NFC.String(label), s.w.limits.MaxNodes); ce != nil {
		s.w.note(s, ce)
	}
	return s
}

// Edge adds a directed edge to the overlay. A known pair is ignored.
func (s *Step) Edge(from, to int) *Step {
	s.live()
	if ce := s.w.overlay.addEdge(from, to, s.w.limits.MaxEdges); ce != nil {
		s.w.note(s, ce)
	}
	return s
}

// End closes the step and emits its record together with the current
// overlay. Under PolicyStrict the step's first overflow is returned instead
// and nothing is emitted.
func (s *Step) End() error {
	s.live()
	s.done = true
	return s.w.end(s)
}
