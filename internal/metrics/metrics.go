// Package metrics holds the Prometheus collectors of the server on an
// explicitly constructed registry.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/expensesplit/internal/errs"
)

const namespace = "expensesplit"

// Metrics bundles the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	splitsTotal     *prometheus.CounterVec
}

// New creates the collectors and registers them, along with the Go runtime
// and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route template and status code.",
		}, []string{"method", "route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route template.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		splitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "splits_total",
			Help:      "Expense split attempts by method and outcome.",
		}, []string{"method", "outcome"}),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.splitsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveSplit records the outcome of one split attempt.
func (m *Metrics) ObserveSplit(method string, err error) {
	if m == nil {
		return
	}
	m.splitsTotal.WithLabelValues(method, Outcome(err)).Inc()
}

// Outcome classifies err into a low-cardinality label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errs.ErrValidation):
		return "validation_error"
	case errors.Is(err, errs.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, errs.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
