package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics are registered per server so tests can build many servers.
type metrics struct {
	runsTotal      *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
	runSteps       *prometheus.HistogramVec
	droppedEntries *prometheus.CounterVec
	inFlight       prometheus.Gauge
}

// Run outcome labels.
const (
	outcomeOK       = "ok"
	outcomeInvalid  = "invalid"
	outcomeFailed   = "failed"
	outcomeTimeout  = "timeout"
	outcomeNotFound = "not_found"
)

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		runsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "algotrace_runs_total",
			Help: "Algorithm runs by algorithm and outcome",
		}, []string{"algorithm", "outcome"}),

		runDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "algotrace_run_duration_seconds",
			Help:    "Time from request to finished trace document",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"algorithm"}),

		runSteps: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "algotrace_run_steps",
			Help:    "Records per trace document",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
		}, []string{"algorithm"}),

		droppedEntries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "algotrace_dropped_entries_total",
			Help: "Trace entries dropped or truncated by capacity limits",
		}, []string{"algorithm"}),

		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "algotrace_runs_in_flight",
			Help: "Runs currently executing, including timed-out runs still finishing",
		}),
	}
}
