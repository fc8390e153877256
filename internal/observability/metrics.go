package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	httpRequestsTotal   *prometheus.CounterVec
	httpLatencySeconds  *prometheus.HistogramVec
	httpErrorsTotal     *prometheus.CounterVec
	gradeComputations   *prometheus.CounterVec
	aggregationSkipped  *prometheus.CounterVec
	weightRejections    prometheus.Counter
	identityResolutions *prometheus.CounterVec
	gradeCacheLookups   *prometheus.CounterVec
	gradingTransitions  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the gradebook.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradebook_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gradebook_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradebook_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		gradeComputations = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradebook_grade_computations_total",
			Help: "Overall grade computations by scoring mode.",
		}, []string{"mode"})

		aggregationSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradebook_aggregation_items_skipped_total",
			Help: "Items skipped during best-effort aggregation because a fetch failed.",
		}, []string{"component"})

		weightRejections = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gradebook_weight_budget_rejections_total",
			Help: "Assignment weight changes rejected for exceeding the course budget.",
		})

		identityResolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradebook_identity_resolution_total",
			Help: "Identity resolution attempts by outcome.",
		}, []string{"outcome"})

		gradeCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradebook_grade_cache_lookups_total",
			Help: "Grade cache lookups by result.",
		}, []string{"result"})

		gradingTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradebook_grading_transitions_total",
			Help: "Grading mode changes and finalizations.",
		}, []string{"transition"})

		prometheus.MustRegister(
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
			gradeComputations, aggregationSkipped, weightRejections,
			identityResolutions, gradeCacheLookups, gradingTransitions,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the error response counter.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// GradeComputations counts overall grade computations.
func GradeComputations() *prometheus.CounterVec {
	RegisterMetrics()
	return gradeComputations
}

// AggregationSkipped counts units skipped by best-effort aggregation.
func AggregationSkipped() *prometheus.CounterVec {
	RegisterMetrics()
	return aggregationSkipped
}

// WeightRejections counts budget rejections.
func WeightRejections() prometheus.Counter {
	RegisterMetrics()
	return weightRejections
}

// IdentityResolutions counts resolver outcomes.
func IdentityResolutions() *prometheus.CounterVec {
	RegisterMetrics()
	return identityResolutions
}

// GradeCacheLookups counts cache hits and misses.
func GradeCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return gradeCacheLookups
}

// GradingTransitions counts grading scheme transitions.
func GradingTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return gradingTransitions
}
