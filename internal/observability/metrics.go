package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "racommunity_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PostViewsTotal counts detail views that incremented a post's view counter.
	PostViewsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "racommunity_post_views_total",
		Help: "Total number of post detail views recorded",
	})

	// PostOperations counts post service calls by operation and outcome code.
	PostOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "racommunity_post_operations_total",
		Help: "Total post service operations by outcome",
	}, []string{"operation", "outcome"})

	// RedisErrorRate counts Redis errors by command.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "racommunity_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordOperation increments the outcome counter. An empty outcome means success.
func RecordOperation(operation, outcome string) {
	if outcome == "" {
		outcome = "ok"
	}
	PostOperations.WithLabelValues(operation, outcome).Inc()
}
