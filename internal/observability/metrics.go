// Package observability holds Prometheus metrics and OpenTelemetry tracing helpers.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records ledger and moderation transaction latency.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "postboard_database_query_latency_seconds",
		Help:    "Database transaction latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// EngagementEvents counts ledger outcomes (like_add, like_remove, like_noop, view, view_duplicate).
	EngagementEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_engagement_events_total",
		Help: "Engagement ledger outcomes by kind",
	}, []string{"kind"})

	// StoreRetryLater counts operations that failed with a transient store error.
	StoreRetryLater = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_store_retry_later_total",
		Help: "Operations rejected with retry_later because the store was busy",
	}, []string{"operation"})

	// ReportsFiled counts accepted reports by target type.
	ReportsFiled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_reports_filed_total",
		Help: "Reports accepted by target type",
	}, []string{"target"})

	// ReportsThrottled counts reports refused by the per-reporter cooldown.
	ReportsThrottled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "postboard_reports_throttled_total",
		Help: "Reports refused because the reporter already reported the target",
	})

	// PostsFlagged counts automatic active -> flagged transitions.
	PostsFlagged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "postboard_posts_flagged_total",
		Help: "Posts automatically flagged by report escalation",
	})

	// ModerationRejections counts submissions refused by the profanity filter.
	ModerationRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_moderation_rejections_total",
		Help: "Submissions rejected by the profanity filter",
	}, []string{"surface"})

	// ModerationActions counts admin actions by type.
	ModerationActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_moderation_actions_total",
		Help: "Admin moderation actions by type",
	}, []string{"action"})

	// GenerationRequests counts generative provider calls by outcome.
	GenerationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_generation_requests_total",
		Help: "Generative provider calls by operation and outcome",
	}, []string{"operation", "outcome"})
)

// TrackQuery returns a function that records latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
