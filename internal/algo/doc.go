// Package algo is the catalog of instrumented algorithms.
//
// Each Algorithm drives a trace.Writer that is already open: it emits an
// initial-state step, one or more steps per unit of progress, and a final
// step summarizing the outcome. The caller finishes the document.
//
// Inputs are plain ints. Algorithms that take a target or a start vertex
// read it from input[0]; the rest is the data.
package algo
