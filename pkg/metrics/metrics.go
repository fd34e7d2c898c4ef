package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rfs_console",
		Name:      "http_requests_total",
		Help:      "Console HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rfs_console",
		Name:      "http_request_duration_seconds",
		Help:      "Console HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	gatewayCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rfs_console",
		Name:      "gateway_calls_total",
		Help:      "Backend calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	gatewayDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rfs_console",
		Name:      "gateway_call_duration_seconds",
		Help:      "Backend call latency by operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	workspaces = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "rfs_console",
		Name:      "workspaces_open",
		Help:      "Open product workspaces.",
	})
)

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// RecordGatewayCall records one backend call.
func RecordGatewayCall(operation, outcome string, elapsed time.Duration) {
	gatewayCalls.WithLabelValues(operation, outcome).Inc()
	gatewayDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// SetOpenWorkspaces publishes the number of cached workspaces.
func SetOpenWorkspaces(n int) {
	workspaces.Set(float64(n))
}
