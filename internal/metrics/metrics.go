// Package metrics provides the Prometheus metrics for the intake service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	TurnsTotal           *prometheus.CounterVec
	ModelRequestsTotal   *prometheus.CounterVec
	ModelRequestDuration prometheus.Histogram
	DiagnosesTotal       prometheus.Counter
}

// New creates and registers all collectors on the default registry.
func New() *Metrics {
	return &Metrics{
		TurnsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_turns_total",
				Help: "Total number of processed conversation turns",
			},
			[]string{"outcome"},
		),
		ModelRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_model_requests_total",
				Help: "Total number of model completion requests",
			},
			[]string{"status"},
		),
		ModelRequestDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "intake_model_request_duration_seconds",
				Help:    "Duration of model completion requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		DiagnosesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "intake_diagnoses_total",
				Help: "Total number of structured diagnoses issued",
			},
		),
	}
}

// ObserveModelRequest records one model call with its status and duration.
func (m *Metrics) ObserveModelRequest(err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ModelRequestsTotal.WithLabelValues(status).Inc()
	m.ModelRequestDuration.Observe(duration.Seconds())
}
