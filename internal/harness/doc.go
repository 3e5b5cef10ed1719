// Package harness provides conformance testing for the algorithm catalog.
//
// A scenario runs one algorithm on a fixed input and asserts over the trace
// document it produces.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: binary_search_found
//	description: "Binary search finds 23 at index 5"
//	algorithm: binary_search
//	input: [23, 2, 5, 8, 12, 16, 23, 38, 56, 72, 91]
//	policy: drop
//	assertions:
//	  - type: final_message
//	    message: "Target Found!"
//	  - type: highlight
//	    name: Found
//	    index: 5
//
// # Assertion Types
//
//   - step_count: the document has exactly count records
//   - final_message: the last record's message
//   - message_contains: some record's message contains a substring
//   - max_nodes: the final overlay holds at most max nodes
//   - overlay_monotonic: nodes and edges only ever grow
//   - highlight: a named highlight's index in a record
//
// Independently of the assertions, every run is streamed and recorded into
// an in-memory store at once. The recorded document must reproduce the
// stream exactly and the stream must pass schema validation.
//
// # Deterministic Testing
//
// Runs use a fixed run ID and no wall-clock input, so the streamed document
// is byte-for-byte reproducible and can be compared against golden files
// with RunWithGolden.
package harness
