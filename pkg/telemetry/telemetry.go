// Package telemetry holds the Prometheus collectors and the tracer used by the
// import pipeline.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const namespace = "budgetbuddy"

// TracerName is the instrumentation name used for spans
const TracerName = "github.com/aksumit1/budgetbuddy-backend"

// Row outcomes reported on the rows counter
const (
	OutcomeImported  = "imported"
	OutcomeFailed    = "failed"
	OutcomeDuplicate = "duplicate"
	OutcomeTruncated = "truncated"
)

// Metrics groups the import collectors. A nil *Metrics is valid and records
// nothing, which keeps tests and the CLI free of registry plumbing.
type Metrics struct {
	rows     *prometheus.CounterVec
	duration prometheus.Histogram
	stages   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg. Pass
// prometheus.NewRegistry() in tests to avoid clashing with the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Statement rows processed, by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Time spent importing one statement file.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		stages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifier_stage_total",
			Help:      "Category decisions, by the classifier stage that produced them.",
		}, []string{"stage"}),
	}
	if reg != nil {
		reg.MustRegister(m.rows, m.duration, m.stages)
	}
	return m
}

// RowProcessed counts one row with the given outcome
func (m *Metrics) RowProcessed(outcome string) {
	if m == nil {
		return
	}
	m.rows.WithLabelValues(outcome).Inc()
}

// ImportFinished records how long a file import took
func (m *Metrics) ImportFinished(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.duration.Observe(elapsed.Seconds())
}

// StageMatched counts a classifier decision
func (m *Metrics) StageMatched(stage string) {
	if m == nil {
		return
	}
	m.stages.WithLabelValues(stage).Inc()
}

// Tracer returns the package tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
