package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts handled requests by route template and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "diary_http_requests_total",
		Help: "HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "diary_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
	}, []string{"method", "route"})

	// Interactions counts like/unlike/comment mutations that committed.
	Interactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "diary_interactions_total",
		Help: "Committed diary interactions by action",
	}, []string{"action"})

	CooldownRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "diary_profile_cooldown_rejections_total",
		Help: "Profile edits rejected by the edit cooldown",
	})

	DBPoolConns = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "diary_db_pool_connections",
		Help: "Database pool connections by state",
	}, []string{"state"})
)

// Interaction actions.
const (
	ActionLike          = "like"
	ActionUnlike        = "unlike"
	ActionCommentAdd    = "comment_add"
	ActionCommentDelete = "comment_delete"
)

// MetricsHandler serves the default registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
