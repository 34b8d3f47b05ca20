// Package metrics exposes Prometheus instrumentation for the dispatcher and
// the outbox relay.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/helixml/citetrack/domain/workflow"
	"github.com/helixml/citetrack/internal/domain"
)

const (
	// Namespace is the namespace for all metrics.
	Namespace = "citetrack"
)

// Metrics holds the Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	ActionsTotal       *prometheus.CounterVec
	EventsDelivered    *prometheus.CounterVec
	EventsFailed       *prometheus.CounterVec
	EventsExhausted    *prometheus.CounterVec
	DeliveryLagSeconds *prometheus.HistogramVec
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry that also carries the Go
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	m := &Metrics{registry: reg}

	m.ActionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "dispatcher",
			Name:      "actions_total",
			Help:      "Dispatched actions by name and outcome",
		},
		[]string{"action", "outcome"},
	)
	m.EventsDelivered = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "relay",
			Name:      "events_delivered_total",
			Help:      "Workflow events delivered to the transport",
		},
		[]string{"event"},
	)
	m.EventsFailed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "relay",
			Name:      "delivery_failures_total",
			Help:      "Failed delivery attempts",
		},
		[]string{"event"},
	)
	m.EventsExhausted = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "relay",
			Name:      "events_exhausted_total",
			Help:      "Events marked failed after their last attempt",
		},
		[]string{"event"},
	)
	m.DeliveryLagSeconds = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "relay",
			Name:      "delivery_lag_seconds",
			Help:      "Time from enqueue to delivery",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		},
		[]string{"event"},
	)
	m.HTTPRequests = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)
	m.HTTPDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Dispatched records one dispatched action.
func (m *Metrics) Dispatched(action string, err error) {
	m.ActionsTotal.WithLabelValues(action, outcome(err)).Inc()
}

// Delivered records one delivered event.
func (m *Metrics) Delivered(name workflow.Name, latency time.Duration) {
	m.EventsDelivered.WithLabelValues(name.String()).Inc()
	m.DeliveryLagSeconds.WithLabelValues(name.String()).Observe(latency.Seconds())
}

// Failed records one failed delivery attempt.
func (m *Metrics) Failed(name workflow.Name, exhausted bool) {
	m.EventsFailed.WithLabelValues(name.String()).Inc()
	if exhausted {
		m.EventsExhausted.WithLabelValues(name.String()).Inc()
	}
}

// Request records one HTTP request.
func (m *Metrics) Request(method, route string, status int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, statusClass(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	switch domain.Category(err) {
	case domain.ErrValidation:
		return "invalid"
	case domain.ErrNotFound:
		return "not_found"
	case domain.ErrConflict:
		return "conflict"
	default:
		return "error"
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
