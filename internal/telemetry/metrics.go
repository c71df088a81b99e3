// Package telemetry registers the service's Prometheus metrics. They are
// served by the /metrics route mounted in cmd/api.
//
// HTTP metrics are labelled by the gin route template (c.FullPath()), never
// the raw URL, so ids in paths do not blow up label cardinality.
package telemetry

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Notification fan-out. The type label is the notification type
// (info, success, warning, error).
var (
	NotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of notifications stored through send_notification, by type.",
		},
		[]string{"type"},
	)

	NotificationsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_failed_total",
			Help: "Total number of notifications that could not be stored, by type.",
		},
		[]string{"type"},
	)
)

// Subscription lifecycle.
var (
	SubscriptionsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_expired_total",
			Help: "Total number of companies moved to expired by the subscription sweep.",
		},
	)

	SubscriptionTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_transitions_total",
			Help: "Total number of subscription status changes, by from and to status.",
		},
		[]string{"from", "to"},
	)
)

var ActiveSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "active_sessions",
		Help: "Number of user sessions currently held in memory.",
	},
)

var DBAcquiredConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_acquired_connections",
		Help: "Current number of connections acquired from the pgx pool.",
	},
)

// Middleware records request count and latency for every routed request.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// SamplePool copies pgx pool statistics into the pool gauge. The cron
// scheduler calls it periodically.
func SamplePool(pool *pgxpool.Pool) {
	if pool == nil {
		return
	}
	DBAcquiredConnections.Set(float64(pool.Stat().AcquiredConns()))
}
