package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "delivery"

type Metrics struct {
	Requests    *prometheus.CounterVec
	LatencyMS   *prometheus.HistogramVec
	Panics      prometheus.Counter
	OrdersTotal prometheus.Counter
	Transitions *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the service collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),
		Panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "panics_total",
			Help:      "Panics caught by the recovery middleware.",
		}),
		OrdersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders persisted.",
		}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "Order status transitions by target status and outcome.",
		}, []string{"status", "outcome"}),
		gatherer: reg,
	}

	reg.MustRegister(m.Requests, m.LatencyMS, m.Panics, m.OrdersTotal, m.Transitions)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// The helpers below accept a nil receiver so metrics stay optional for callers.

func (m *Metrics) OrderCreated() {
	if m == nil {
		return
	}
	m.OrdersTotal.Inc()
}

func (m *Metrics) Transition(status, outcome string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(status, outcome).Inc()
}

func (m *Metrics) Panic() {
	if m == nil {
		return
	}
	m.Panics.Inc()
}
