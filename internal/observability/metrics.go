// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aurelo_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aurelo_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// SwapMatchConflicts counts acceptance attempts that lost the
	// open->matched compare-and-set to a concurrent caller.
	SwapMatchConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aurelo_swap_match_conflicts_total",
		Help: "Total number of interest acceptances rejected because the posting was already matched",
	})

	// SwapMatchesFormed counts successful acceptance transactions by swap type.
	SwapMatchesFormed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aurelo_swap_matches_formed_total",
		Help: "Total number of swap matches formed",
	}, []string{"swap_type"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aurelo_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// NotificationPublishFailures counts realtime publishes that failed.
	// Acceptance and interest flows never fail on these; they only count.
	NotificationPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aurelo_notification_publish_failures_total",
		Help: "Total number of failed realtime notification publishes",
	}, []string{"event_type"})
)

// TrackQuery returns a function that records query latency when called.
// Repositories defer it around multi-statement units of work:
//
//	defer observability.TrackQuery("accept_interest", "swap_postings")()
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
