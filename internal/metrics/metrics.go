// Package metrics provides Prometheus collectors for the merge service and
// HTTP metrics middleware for gin.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	MergesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thread_merges_total",
			Help: "Thread merge attempts by mode (preview, commit) and outcome",
		},
		[]string{"mode", "outcome"},
	)

	MergeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "thread_merge_duration_seconds",
			Help:    "Duration of thread merges in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	MergedPostsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thread_merge_posts_transplanted_total",
			Help: "Posts moved into another thread by committed merges",
		},
	)

	DeletedThreadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thread_merge_threads_deleted_total",
			Help: "Source threads deleted by committed merges",
		},
	)
)

func MergeMode(commit bool) string {
	if commit {
		return "commit"
	}
	return "preview"
}

// ObserveMerge records one finished merge attempt.
func ObserveMerge(commit bool, outcome string, started time.Time) {
	mode := MergeMode(commit)
	MergesTotal.WithLabelValues(mode, outcome).Inc()
	MergeDuration.WithLabelValues(mode).Observe(time.Since(started).Seconds())
}

// Middleware records request count, latency and in-flight requests. The gin
// route pattern is used as the path label to keep cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
