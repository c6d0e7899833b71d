// Package metrics counts stage outcomes and durations for a run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jywlabs/analyst/internal/record"
)

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
)

// Recorder holds the stage metrics on a private registry. A nil Recorder
// ignores every call.
type Recorder struct {
	reg      *prometheus.Registry
	runs     *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		reg: reg,
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analyst_stage_runs_total",
				Help: "Stage executions by outcome",
			},
			[]string{"stage", "outcome"}, // outcome: ok, degraded
		),
		failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analyst_stage_failures_total",
				Help: "Stage failures replaced by a fallback record",
			},
			[]string{"stage", "kind"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "analyst_stage_duration_seconds",
				Help:    "Stage latency in seconds, retries included",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"stage"},
		),
	}
}

// ObserveStage records one stage execution.
func (r *Recorder) ObserveStage(stage record.Stage, elapsed time.Duration, degraded bool, kind string) {
	if r == nil {
		return
	}
	outcome := OutcomeOK
	if degraded {
		outcome = OutcomeDegraded
		r.failures.WithLabelValues(string(stage), kind).Inc()
	}
	r.runs.WithLabelValues(string(stage), outcome).Inc()
	r.duration.WithLabelValues(string(stage)).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// WriteFile writes the metrics in the node_exporter textfile format.
func (r *Recorder) WriteFile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}
