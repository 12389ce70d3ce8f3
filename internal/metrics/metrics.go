package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Push outcomes recorded by RealtimePushes
const (
	PushDelivered = "delivered"
	PushOffline   = "offline"
	PushFailed    = "failed"
)

var (
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Notifications persisted, by type",
		},
		[]string{"type"},
	)

	NotificationsSuppressed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_suppressed_total",
			Help: "Notifications suppressed because sender and recipient are the same user",
		},
		[]string{"type"},
	)

	NotificationPersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_persist_failures_total",
			Help: "Notification inserts that failed",
		},
	)

	RealtimePushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_push_total",
			Help: "Realtime push attempts by outcome (delivered, offline, failed)",
		},
		[]string{"outcome"},
	)

	RealtimeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "realtime_connections",
			Help: "Currently open websocket connections",
		},
	)

	RealtimeBreakerOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "realtime_redis_breaker_open",
			Help: "1 while realtime publishing to Redis is short-circuited to the local hub",
		},
	)

	FeedSourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_source_failures_total",
			Help: "Activity source fetches that failed or timed out and were treated as empty",
		},
		[]string{"source"},
	)

	FeedBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_build_duration_seconds",
			Help:    "Time to build one following feed",
			Buckets: prometheus.DefBuckets,
		},
	)
)
