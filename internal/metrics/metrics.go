// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Place Store Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "whereto_db_query_duration_seconds",
			Help:    "Duration of place store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whereto_db_query_errors_total",
			Help: "Total number of place store query errors",
		},
		[]string{"operation"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whereto_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "whereto_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "whereto_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Recommendation Pipeline Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whereto_recommend_requests_total",
			Help: "Total number of recommendation requests by companion type",
		},
		[]string{"companion"},
	)

	RecommendCandidates = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "whereto_recommend_candidates",
			Help:    "Places per request at each pipeline stage",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 200, 500},
		},
		[]string{"stage"}, // "candidates", "eligible", "returned"
	)

	RecommendExclusions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whereto_recommend_exclusions_total",
			Help: "Places removed by each eligibility rule",
		},
		[]string{"rule"},
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "whereto_recommend_duration_seconds",
			Help:    "Pipeline duration from filter to truncation",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	// Scoring Service Metrics
	ScoringCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whereto_scoring_calls_total",
			Help: "Calls to the generative scoring service by result",
		},
		[]string{"result"}, // "success", "error", "rejected", "rate_limited"
	)

	ScoringDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "whereto_scoring_duration_seconds",
			Help:    "Scoring service call latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "whereto_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whereto_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whereto_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"}, // "memo", "badger"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whereto_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	// Refresh Worker Metrics
	WorkerMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whereto_worker_messages_total",
			Help: "Score refresh messages handled by outcome",
		},
		[]string{"outcome"}, // "published", "processed", "failed"
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "whereto_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordDBQuery records a place store query.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordAPIRequest records an API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records one pipeline run. excluded is keyed by rule name.
func RecordRecommendation(companion string, candidates, eligible, returned int, excluded map[string]int, duration time.Duration) {
	RecommendRequests.WithLabelValues(companion).Inc()
	RecommendCandidates.WithLabelValues("candidates").Observe(float64(candidates))
	RecommendCandidates.WithLabelValues("eligible").Observe(float64(eligible))
	RecommendCandidates.WithLabelValues("returned").Observe(float64(returned))
	for rule, n := range excluded {
		RecommendExclusions.WithLabelValues(rule).Add(float64(n))
	}
	RecommendDuration.Observe(duration.Seconds())
}

// RecordScoringCall records one scoring service call.
func RecordScoringCall(result string, duration time.Duration) {
	ScoringCalls.WithLabelValues(result).Inc()
	if duration > 0 {
		ScoringDuration.Observe(duration.Seconds())
	}
}

// RecordBreakerTransition records a breaker state change.
// States are reported as 0=closed, 1=half-open, 2=open.
func RecordBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// RecordCacheLookup records a hit or miss on the named cache.
func RecordCacheLookup(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
	} else {
		CacheMisses.WithLabelValues(cache).Inc()
	}
}

// RecordWorkerMessage records a refresh message outcome.
func RecordWorkerMessage(outcome string) {
	WorkerMessages.WithLabelValues(outcome).Inc()
}
