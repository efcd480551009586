// Package metrics provides Prometheus metrics for the resource pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "curator"

var (
	// PipelineRunsTotal counts pipeline runs by outcome (ok, persistence_failure).
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Total number of resource pipeline runs",
		},
		[]string{"outcome"},
	)

	// PipelineDuration measures end-to-end run duration.
	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of resource pipeline runs in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
	)

	// QueryFallbackTotal counts synthesis runs that used the template fallback.
	QueryFallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_fallback_total",
			Help:      "Total number of query syntheses that fell back to templates",
		},
		[]string{"reason"},
	)

	// SearchRequestsTotal counts search capability calls by status (ok, empty, error).
	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of search capability calls",
		},
		[]string{"status"},
	)

	// SearchCacheTotal counts search cache lookups by result (hit, miss, error).
	SearchCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_cache_total",
			Help:      "Total number of search cache lookups",
		},
		[]string{"result"},
	)

	// ResourcesPerCategory observes per-category counts in produced bundles.
	ResourcesPerCategory = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bundle_resources",
			Help:      "Distribution of resources per category in generated bundles",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		},
		[]string{"category"},
	)
)

// RecordRun records a finished pipeline run.
func RecordRun(outcome string, seconds float64) {
	PipelineRunsTotal.WithLabelValues(outcome).Inc()
	PipelineDuration.Observe(seconds)
}

// RecordFallback records a template fallback during query synthesis.
func RecordFallback(reason string) {
	QueryFallbackTotal.WithLabelValues(reason).Inc()
}

// RecordSearch records a search capability call.
func RecordSearch(status string) {
	SearchRequestsTotal.WithLabelValues(status).Inc()
}

// RecordCache records a search cache lookup.
func RecordCache(result string) {
	SearchCacheTotal.WithLabelValues(result).Inc()
}

// RecordBundle observes the per-category counts of a bundle.
func RecordBundle(perCategory map[string]int) {
	for category, n := range perCategory {
		ResourcesPerCategory.WithLabelValues(category).Observe(float64(n))
	}
}
