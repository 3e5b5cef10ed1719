// Package server exposes the algorithm catalog over HTTP.
//
// Endpoints:
//
//	GET  /algorithms        catalog listing
//	POST /run/:algorithm    run with {"inputs": [...]}, respond with the trace document
//	GET  /run/:algorithm    run with ?input=... or the catalog defaults
//	GET  /runs/:id          stored trace document (requires WithStore)
//	GET  /metrics           prometheus metrics
//	GET  /health            liveness
//
// Each request runs on its own trace writer. Runs that outlive the request
// timeout are answered with 408 and finish in the background.
package server
