package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/xcallback/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the protocol counters.
type Metrics struct {
	RequestsSent      *prometheus.CounterVec
	Responses         *prometheus.CounterVec
	ActionsDispatched *prometheus.CounterVec
	ResultsSent       *prometheus.CounterVec
	Dropped           *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates the collectors and registers them on a private
// registry. pending, when non-nil, backs the xcallback_pending_requests gauge.
func NewMetrics(pending func() int) *Metrics {
	m := &Metrics{
		RequestsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xcallback_requests_sent_total",
				Help: "Total number of request URLs handed to the host",
			},
			[]string{"scheme", "action"},
		),
		Responses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xcallback_responses_total",
				Help: "Total number of responses that resolved a pending request",
			},
			[]string{"kind"},
		),
		ActionsDispatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xcallback_actions_dispatched_total",
				Help: "Total number of inbound actions handed to a strategy",
			},
			[]string{"action", "strategy"},
		),
		ResultsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xcallback_results_sent_total",
				Help: "Total number of action outcomes routed back to callers",
			},
			[]string{"kind"},
		),
		Dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xcallback_dropped_total",
				Help: "Total number of URLs or outcomes discarded",
			},
			[]string{"reason"},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(m.RequestsSent, m.Responses, m.ActionsDispatched, m.ResultsSent, m.Dropped)
	if pending != nil {
		m.registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "xcallback_pending_requests",
				Help: "Number of requests awaiting a response",
			},
			func() float64 { return float64(pending()) },
		))
	}
	return m
}

// Registry exposes the collectors for custom exposition.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRequestSent: func(_ context.Context, e *domain.RequestEvent) {
			m.RequestsSent.WithLabelValues(e.Scheme, e.Action).Inc()
		},
		OnResponseReceived: func(_ context.Context, e *domain.ResponseEvent) {
			m.Responses.WithLabelValues(e.Kind.String()).Inc()
		},
		OnActionDispatched: func(_ context.Context, e *domain.DispatchEvent) {
			m.ActionsDispatched.WithLabelValues(e.Action, e.Strategy).Inc()
		},
		OnResultSent: func(_ context.Context, e *domain.DispatchEvent) {
			m.ResultsSent.WithLabelValues(e.Kind.String()).Inc()
		},
		OnDropped: func(_ context.Context, e *domain.DropEvent) {
			m.Dropped.WithLabelValues(e.Reason).Inc()
		},
	}
}
