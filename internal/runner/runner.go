package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/algotrace/internal/algo"
	"github.com/roach88/algotrace/internal/store"
	"github.com/roach88/algotrace/internal/trace"
)

// ErrUnknownAlgorithm is returned for a name missing from the catalog.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// Request describes one algorithm run.
type Request struct {
	Algorithm string
	// Input is passed to the algorithm; empty means the catalog defaults.
	Input    []int
	Policy   trace.OverflowPolicy
	MaxSteps int
}

// Result summarizes a finished run.
type Result struct {
	RunID     string
	Algorithm string
	Input     []int // effective input, defaults applied
	Stats     trace.Stats
}

// Runner executes catalog algorithms into trace sinks, optionally recording
// every run in a store.
type Runner struct {
	ids    IDGenerator
	store  *store.Store
	logger *slog.Logger
	limits trace.Limits
}

// Option configures a Runner.
type Option func(*Runner)

// WithIDGenerator overrides the run ID source. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Runner) {
		r.ids = g
	}
}

// WithStore records every run and its step records in s.
func WithStore(s *store.Store) Option {
	return func(r *Runner) {
		r.store = s
	}
}

// WithLogger sets the logger for run lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithLimits overrides the writer capacity bounds.
func WithLimits(l trace.Limits) Option {
	return func(r *Runner) {
		r.limits = l
	}
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		ids:    UUIDv7Generator{},
		limits: trace.DefaultLimits(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Run executes req, emitting the document to sinks. The document is finished
// even when the algorithm fails, so a stream sink always holds valid JSON.
// A non-nil Result is returned whenever the run started.
func (r *Runner) Run(ctx context.Context, req Request, sinks ...trace.Sink) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a, ok := algo.Lookup(req.Algorithm)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, req.Algorithm)
	}
	input := req.Input
	if len(input) == 0 {
		input = a.Defaults
	}

	id := r.ids.Generate()
	logger := r.logger.With("run_id", id, "algorithm", a.Name)

	if r.store != nil {
		rec, err := r.store.BeginRun(ctx, store.Run{
			ID:        id,
			Algorithm: a.Name,
			Input:     input,
			Policy:    req.Policy.String(),
		})
		if err != nil {
			return nil, fmt.Errorf("record run: %w", err)
		}
		sinks = append(sinks, rec)
	}

	w := trace.NewWriter(trace.Tee(sinks...),
		trace.WithLimits(r.limits),
		trace.WithPolicy(req.Policy),
		trace.WithMaxSteps(req.MaxSteps),
		trace.WithLogger(logger),
	)
	if err := w.Open(); err != nil {
		if r.store != nil {
			if ferr := r.store.FinishRun(ctx, id, store.StatusFailed, 0, err.Error()); ferr != nil {
				err = errors.Join(err, fmt.Errorf("record run: %w", ferr))
			}
		}
		return nil, err
	}

	logger.Debug("run starting", "inputs", len(input))
	runErr := a.Run(w, input)
	if runErr != nil {
		runErr = fmt.Errorf("run %s: %w", a.Name, runErr)
	}
	err := errors.Join(runErr, w.Finish())

	stats := w.Stats()
	if stats.Dropped() > 0 {
		logger.Info("trace entries dropped", "dropped", stats.Dropped(), "policy", req.Policy)
	}
	if r.store != nil {
		status, msg := store.StatusComplete, ""
		if err != nil {
			status, msg = store.StatusFailed, err.Error()
		}
		if ferr := r.store.FinishRun(ctx, id, status, stats.Steps, msg); ferr != nil {
			err = errors.Join(err, fmt.Errorf("record run: %w", ferr))
		}
	}
	logger.Debug("run finished", "steps", stats.Steps, "error", err)

	return &Result{
		RunID:     id,
		Algorithm: a.Name,
		Input:     input,
		Stats:     stats,
	}, err
}
