package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	Jobs           *prometheus.CounterVec
	Ingest         *prometheus.CounterVec
	Payments       *prometheus.CounterVec
	OperatorAlerts *prometheus.CounterVec
	JobDuration    prometheus.Histogram
	CreditsDebited prometheus.Counter
	Swept          prometheus.Counter
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		Jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "podbrief_jobs_total",
			Help: "Transcription jobs finished, by terminal status and failure reason.",
		}, []string{"status", "reason"}),
		Ingest: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "podbrief_ingest_total",
			Help: "Ingest attempts by source kind and outcome.",
		}, []string{"source", "outcome"}),
		Payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "podbrief_payments_total",
			Help: "Payment events by result.",
		}, []string{"result"}),
		OperatorAlerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "podbrief_operator_alerts_total",
			Help: "Failures that need operator action (quota, credentials).",
		}, []string{"reason"}),
		JobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "podbrief_job_duration_seconds",
			Help:    "Wall time of one job from claim to settlement.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}),
		CreditsDebited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "podbrief_credits_debited_total",
			Help: "Credits charged for completed transcriptions.",
		}),
		Swept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "podbrief_sweep_resubmitted_total",
			Help: "Jobs resubmitted by the recovery sweep.",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Jobs, m.Ingest, m.Payments, m.OperatorAlerts, m.JobDuration, m.CreditsDebited, m.Swept,
	)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
