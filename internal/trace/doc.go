// Package trace implements the step-trace logging engine.
//
// A Writer turns a sequence of algorithm steps into a trace document: a JSON
// array of step records consumed by the visualization frontend. Each record
// carries the arrays, variables and highlights recorded during that step, a
// message, and the cumulative graph overlay (nodes and edges) at the moment
// the step ended.
//
// # Lifecycle
//
//	Uninitialized -> DocumentOpen -> (StepOpen <-> StepClosed)* -> DocumentClosed
//
// Open starts the document, Begin returns a *Step handle, End on the handle
// emits its record, Finish closes the document. Population methods exist only
// on *Step, so recording outside an open step cannot be expressed. A handle is
// dead after End (or after Finish discards it); touching it again panics.
//
//	w := trace.NewWriter(trace.NewStreamSink(os.Stdout))
//	if err := w.Open(); err != nil {
//	    return err
//	}
//	step, err := w.Begin()
//	if err != nil {
//	    return err
//	}
//	step.Array("nums", nums)
//	step.Highlight("mid", mid)
//	step.Message("checking middle")
//	if err := step.End(); err != nil {
//	    return err
//	}
//	return w.Finish()
//
// # Capacity
//
// Per step: at most Limits.MaxArrays arrays, MaxVariables variables and
// MaxHighlights highlights; arrays are truncated to MaxArrayLen elements. Per
// document: at most MaxNodes nodes and MaxEdges edges. Under PolicyDrop
// (the default) excess entries are dropped silently and counted in Stats.
// Under PolicyStrict the first overflow in a step is returned by End and the
// step emits no record.
//
// # Concurrency
//
// A Writer is confined to one goroutine. There is no locking; run one Writer
// per trace.
package trace
