// Package schema validates trace documents against the frontend contract.
//
// The contract lives in trace.cue. Validate checks structure and the default
// capacity bounds; ValidateKeyOrder checks the record key order that
// encoding/json consumers cannot see.
package schema
