package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors used across the server
type Metrics struct {
	HTTPRequestsTotal     prometheus.CounterVec
	HTTPRequestDuration   prometheus.HistogramVec
	HTTPActiveConnections prometheus.GaugeVec

	RateLimitExceededTotal prometheus.CounterVec

	PostsCreatedTotal    prometheus.Counter
	CommentsCreatedTotal prometheus.Counter
	LikesTotal           prometheus.CounterVec

	AccountsRemovedTotal prometheus.Counter
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide metrics registry, creating it on first use
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "quillhub_http_requests_total",
					Help: "Total HTTP requests by method, path and status",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "quillhub_http_request_duration_seconds",
					Help:    "HTTP request latency",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "path", "status"},
			),
			HTTPActiveConnections: *promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "quillhub_http_active_connections",
					Help: "In-flight HTTP requests",
				},
				[]string{"method", "path"},
			),
			RateLimitExceededTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "quillhub_rate_limit_exceeded_total",
					Help: "Requests rejected by the rate limiter",
				},
				[]string{"path"},
			),
			PostsCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "quillhub_posts_created_total",
				Help: "Posts created",
			}),
			CommentsCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "quillhub_comments_created_total",
				Help: "Comments created",
			}),
			LikesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "quillhub_likes_total",
					Help: "Like and unlike operations by target and action",
				},
				[]string{"target", "action"},
			),
			AccountsRemovedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "quillhub_accounts_removed_total",
				Help: "Accounts finalized by the self-removal sweep",
			}),
		}
	})
	return instance
}
