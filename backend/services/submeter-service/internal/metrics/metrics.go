// Package metrics exposes prometheus collectors for the calculator service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
)

var (
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submeter_submissions_total",
			Help: "Total number of calculator submissions by outcome.",
		},
		[]string{"outcome"},
	)
	fieldErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submeter_field_errors_total",
			Help: "Validation failures by form field.",
		},
		[]string{"field"},
	)
	storeErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submeter_store_errors_total",
			Help: "Failed reads/writes of the persisted previous reading.",
		},
		[]string{"op"},
	)
	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "submeter_ws_sessions",
			Help: "Open websocket calculator sessions.",
		},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served.",
		},
		[]string{"route", "method", "status"},
	)
	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

// ObserveSubmission counts one submission and its failed fields.
func ObserveSubmission(outcome string, failedFields ...string) {
	submissionsTotal.WithLabelValues(outcome).Inc()
	for _, f := range failedFields {
		fieldErrorsTotal.WithLabelValues(f).Inc()
	}
}

// ObserveStoreError counts a failed "get" or "set".
func ObserveStoreError(op string) {
	storeErrorsTotal.WithLabelValues(op).Inc()
}

// SessionOpened increments the open session gauge.
func SessionOpened() { activeSessions.Inc() }

// SessionClosed decrements the open session gauge.
func SessionClosed() { activeSessions.Dec() }

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(path, method string, status int, dur time.Duration) {
	route := RouteLabel(path)
	httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpRequestDurationSeconds.WithLabelValues(route, method).Observe(dur.Seconds())
}

// RouteLabel maps a path to a bounded label value.
func RouteLabel(path string) string {
	switch path {
	case "/api/calculator/submit":
		return "calculator_submit"
	case "/api/calculator/previous":
		return "calculator_previous"
	case "/ws/calculator":
		return "ws_calculator"
	case "/health":
		return "health"
	case "/metrics":
		return "metrics"
	default:
		return "other"
	}
}
