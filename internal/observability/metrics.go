package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	attemptsGradedTotal   *prometheus.CounterVec
	enqueueFailuresTotal  prometheus.Counter
	passbackOutcomesTotal *prometheus.CounterVec
	overridesAppliedTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors for the grading API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lab_api_requests_total",
			Help: "Total number of lab API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lab_api_latency_seconds",
			Help:    "Latency distribution for lab API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lab_api_errors_total",
			Help: "Total number of error responses returned by lab API endpoints.",
		}, []string{"method", "route", "status"})

		attemptsGradedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lab_attempts_graded_total",
			Help: "Total number of attempts graded, by aggregation mode.",
		}, []string{"mode"})

		enqueueFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lab_passback_enqueue_failures_total",
			Help: "Total number of passback jobs that could not be enqueued.",
		})

		passbackOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lab_passback_outcomes_total",
			Help: "Total number of grade-book delivery outcomes recorded, by status.",
		}, []string{"status"})

		overridesAppliedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lab_grade_overrides_total",
			Help: "Total number of instructor grade overrides applied.",
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			attemptsGradedTotal,
			enqueueFailuresTotal,
			passbackOutcomesTotal,
			overridesAppliedTotal,
		)
	})
}

// APIRequests exposes the counter for lab API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for lab API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for lab API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// AttemptsGraded exposes the graded-attempts counter.
func AttemptsGraded() *prometheus.CounterVec {
	RegisterMetrics()
	return attemptsGradedTotal
}

// PassbackEnqueueFailures exposes the enqueue-failure counter.
func PassbackEnqueueFailures() prometheus.Counter {
	RegisterMetrics()
	return enqueueFailuresTotal
}

// PassbackOutcomes exposes the delivery-outcome counter.
func PassbackOutcomes() *prometheus.CounterVec {
	RegisterMetrics()
	return passbackOutcomesTotal
}

// OverridesApplied exposes the manual-override counter.
func OverridesApplied() prometheus.Counter {
	RegisterMetrics()
	return overridesAppliedTotal
}
