// Package metrics exposes Prometheus instrumentation for surprise
// computation, sanitization, upstream clients, scheduled jobs and HTTP.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Reconciliation Metrics
	SurpriseComputations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "earnings_surprise_computations_total",
			Help: "Total surprise computations by selected basis (none when no basis qualified)",
		},
		[]string{"basis"},
	)

	SurpriseExtreme = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "earnings_surprise_extreme_total",
			Help: "Total surprises whose magnitude exceeded the extreme threshold",
		},
	)

	SanitizedActuals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "earnings_sanitized_actuals_total",
			Help: "Total actual figures nulled because they duplicated the estimate",
		},
		[]string{"field"}, // "eps", "revenue"
	)

	// Job Metrics
	JobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "earnings_job_runs_total",
			Help: "Total scheduled job runs by outcome",
		},
		[]string{"job", "status"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "earnings_job_duration_seconds",
			Help:    "Duration of scheduled job runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"job"},
	)

	JobLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "earnings_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful run per job",
		},
		[]string{"job"},
	)

	// Upstream Client Metrics
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "earnings_upstream_requests_total",
			Help: "Total upstream API requests by provider and outcome",
		},
		[]string{"provider", "status"},
	)

	UpstreamCacheFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "earnings_upstream_cache_fallbacks_total",
			Help: "Total times a stale cached response was served after an upstream failure",
		},
		[]string{"table"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "earnings_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "earnings_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "earnings_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordSurprise records one surprise computation. An empty basis is
// recorded as "none".
func RecordSurprise(basis string, extreme bool) {
	if basis == "" {
		basis = "none"
	}
	SurpriseComputations.WithLabelValues(basis).Inc()
	if extreme {
		SurpriseExtreme.Inc()
	}
}

// RecordSanitized records an actual figure nulled as a duplicate.
func RecordSanitized(field string) {
	SanitizedActuals.WithLabelValues(field).Inc()
}

// RecordJobRun records a scheduled job outcome.
func RecordJobRun(job string, duration time.Duration, err error) {
	JobDuration.WithLabelValues(job).Observe(duration.Seconds())
	if err != nil {
		JobRuns.WithLabelValues(job, "error").Inc()
		return
	}
	JobRuns.WithLabelValues(job, "success").Inc()
	JobLastSuccess.WithLabelValues(job).Set(float64(time.Now().Unix()))
}

// RecordUpstreamRequest records an upstream API call.
func RecordUpstreamRequest(provider string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	UpstreamRequests.WithLabelValues(provider, status).Inc()
}

// RecordCacheFallback records a stale cache hit after an upstream failure.
func RecordCacheFallback(table string) {
	UpstreamCacheFallbacks.WithLabelValues(table).Inc()
}

// SetCircuitBreakerState records a breaker transition.
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
