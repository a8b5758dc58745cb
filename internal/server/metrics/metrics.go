// Package metrics exposes the server's Prometheus counters. A nil *Metrics
// is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "proposals"

type Metrics struct {
	registry             *prometheus.Registry
	proposalsCreated     prometheus.Counter
	responses            *prometheus.CounterVec
	responseConflicts    prometheus.Counter
	notificationFailures prometheus.Counter
	authFailures         *prometheus.CounterVec
	httpRequests         *prometheus.CounterVec
}

// New registers all collectors on a private registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		proposalsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "created_total",
			Help:      "Proposals created.",
		}),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "responses_total",
			Help:      "Proposal answers recorded, by answer.",
		}, []string{"answer"}),
		responseConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_conflicts_total",
			Help:      "Answers rejected because the proposal was already answered.",
		}),
		notificationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Owner notifications that could not be delivered.",
		}),
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Requests to protected routes without a valid token, by reason.",
		}, []string{"reason"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method and status code.",
		}, []string{"method", "code"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.proposalsCreated,
		m.responses,
		m.responseConflicts,
		m.notificationFailures,
		m.authFailures,
		m.httpRequests,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ProposalCreated() {
	if m != nil {
		m.proposalsCreated.Inc()
	}
}

func (m *Metrics) ResponseRecorded(answer string) {
	if m != nil {
		m.responses.WithLabelValues(answer).Inc()
	}
}

func (m *Metrics) ResponseConflict() {
	if m != nil {
		m.responseConflicts.Inc()
	}
}

func (m *Metrics) NotificationFailed() {
	if m != nil {
		m.notificationFailures.Inc()
	}
}

func (m *Metrics) AuthFailed(reason string) {
	if m != nil {
		m.authFailures.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) RequestServed(method, code string) {
	if m != nil {
		m.httpRequests.WithLabelValues(method, code).Inc()
	}
}
