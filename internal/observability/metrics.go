// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fakex_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fakex_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FeedCacheLookups counts anonymous feed cache lookups by result (hit, miss, error).
	FeedCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fakex_feed_cache_lookups_total",
		Help: "Anonymous feed cache lookups by result",
	}, []string{"result"})

	// ContentMutations counts successful writes by resource and action.
	ContentMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fakex_content_mutations_total",
		Help: "Successful content mutations by resource and action",
	}, []string{"resource", "action"})

	// LikeConflicts counts like attempts rejected by the uniqueness constraint.
	LikeConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fakex_like_conflicts_total",
		Help: "Like inserts rejected because the like already exists",
	})

	// UsersProvisioned counts users created on first verification.
	UsersProvisioned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fakex_users_provisioned_total",
		Help: "Users created from verified identity claims",
	})
)

// RecordMutation increments the mutation counter for resource and action.
func RecordMutation(resource, action string) {
	ContentMutations.WithLabelValues(resource, action).Inc()
}
