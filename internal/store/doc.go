// Package store provides SQLite-backed storage for trace runs.
//
// Each run is a row in runs (algorithm, input, overflow policy, status) and
// its step records are rows in steps, keyed by (run_id, idx) and holding the
// record's JSON exactly as the trace engine serialized it. A Recorder is a
// trace.Sink, so a run is written step by step while it executes; a run whose
// process died keeps status "running" and whatever steps it reached.
//
// # Ordering
//
// Runs carry a logical seq assigned at insert. Every listing orders by
// seq ASC, id ASC; steps order by idx ASC.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: steps cannot outlive their run
package store
