package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/algotrace/internal/runner"
	"github.com/roach88/algotrace/internal/schema"
	"github.com/roach88/algotrace/internal/store"
	"github.com/roach88/algotrace/internal/trace"
)

// scenarioRunID is the fixed run ID every scenario records under.
const scenarioRunID = "scenario-run"

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database. The document is streamed
// and recorded at the same time; the recorded copy must match the stream
// byte for byte and pass schema validation before assertions are evaluated.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	policy := trace.PolicyDrop
	if scenario.Policy != "" {
		policy, err = trace.ParsePolicy(scenario.Policy)
		if err != nil {
			return nil, err
		}
	}

	r := runner.New(
		runner.WithIDGenerator(runner.NewFixedGenerator(scenarioRunID)),
		runner.WithStore(st),
		runner.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	ctx := context.Background()
	var stream bytes.Buffer
	_, runErr := r.Run(ctx, runner.Request{
		Algorithm: scenario.Algorithm,
		Input:     scenario.Input,
		Policy:    policy,
		MaxSteps:  scenario.MaxSteps,
	}, trace.NewStreamSink(&stream))
	if errors.Is(runErr, runner.ErrUnknownAlgorithm) {
		return nil, fmt.Errorf("failed to run scenario: %w", runErr)
	}

	doc, err := st.ReadDocument(ctx, scenarioRunID)
	if err != nil {
		return nil, fmt.Errorf("failed to read recorded document: %w", err)
	}

	result := NewResult()
	result.Document = doc
	result.Stream = stream.Bytes()
	result.Steps = doc.Len()
	if runErr != nil {
		result.RunError = runErr.Error()
	}

	checkRunError(scenario, runErr, result)
	checkDocument(doc, stream.Bytes(), result)

	for _, errMsg := range EvaluateAssertions(doc, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

func checkRunError(scenario *Scenario, runErr error, result *Result) {
	switch {
	case scenario.ExpectError == "" && runErr != nil:
		result.AddError(fmt.Sprintf("unexpected run error: %v", runErr))
	case scenario.ExpectError != "" && runErr == nil:
		result.AddError(fmt.Sprintf("expected run error containing %q, run succeeded", scenario.ExpectError))
	case scenario.ExpectError != "" && !strings.Contains(runErr.Error(), scenario.ExpectError):
		result.AddError(fmt.Sprintf("expected run error containing %q, got %q", scenario.ExpectError, runErr.Error()))
	}
}

// checkDocument verifies the streamed output against the recorded document
// and the trace schema.
func checkDocument(doc *trace.Document, stream []byte, result *Result) {
	recorded, err := doc.MarshalJSON()
	if err != nil {
		result.AddError(fmt.Sprintf("encode recorded document: %v", err))
		return
	}
	if !bytes.Equal(recorded, stream) {
		result.AddError("recorded document differs from streamed output")
	}
	if err := schema.Validate(stream); err != nil {
		result.AddError(err.Error())
	}
	if err := schema.ValidateKeyOrder(stream); err != nil {
		result.AddError(err.Error())
	}
}
