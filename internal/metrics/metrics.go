// Package metrics provides Prometheus metrics for the workspace service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	MutationsTotal    *prometheus.CounterVec
	PersistFailures   *prometheus.CounterVec
	ViewRequestsTotal *prometheus.CounterVec
	ViewDuration      *prometheus.HistogramVec
	SignalsDropped    prometheus.Counter
	SubscribersActive prometheus.Gauge

	registry *prometheus.Registry
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		MutationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workspace_mutations_total",
				Help: "Total store mutations by store and operation.",
			},
			[]string{"store", "op"},
		),
		PersistFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workspace_persist_failures_total",
				Help: "Write-through persistence failures by store.",
			},
			[]string{"store"},
		),
		ViewRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workspace_view_requests_total",
				Help: "Projection requests by view.",
			},
			[]string{"view"},
		),
		ViewDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "workspace_view_duration_seconds",
				Help:    "Projection computation duration by view.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"view"},
		),
		SignalsDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "workspace_signals_dropped_total",
				Help: "Calendar-open signals dropped because a subscriber was slow.",
			},
		),
		SubscribersActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "workspace_signal_subscribers_active",
				Help: "Currently connected signal subscribers.",
			},
		),
		registry: reg,
	}

	reg.MustRegister(m.MutationsTotal)
	reg.MustRegister(m.PersistFailures)
	reg.MustRegister(m.ViewRequestsTotal)
	reg.MustRegister(m.ViewDuration)
	reg.MustRegister(m.SignalsDropped)
	reg.MustRegister(m.SubscribersActive)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordMutation increments the mutation counter.
func (m *Metrics) RecordMutation(store, op string) {
	if m == nil {
		return
	}
	m.MutationsTotal.WithLabelValues(store, op).Inc()
}

// RecordPersistFailure increments the persistence failure counter.
func (m *Metrics) RecordPersistFailure(store string) {
	if m == nil {
		return
	}
	m.PersistFailures.WithLabelValues(store).Inc()
}

// RecordView increments the projection request counter.
func (m *Metrics) RecordView(view string) {
	if m == nil {
		return
	}
	m.ViewRequestsTotal.WithLabelValues(view).Inc()
}

// ObserveViewDuration records projection computation time.
func (m *Metrics) ObserveViewDuration(view string, seconds float64) {
	if m == nil {
		return
	}
	m.ViewDuration.WithLabelValues(view).Observe(seconds)
}

// RecordSignalDropped increments the dropped-signal counter.
func (m *Metrics) RecordSignalDropped() {
	if m == nil {
		return
	}
	m.SignalsDropped.Inc()
}
