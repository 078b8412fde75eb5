// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file exposes Prometheus instrumentation for HTTP traffic. Labels are
// kept bounded:
//
//   - method: HTTP method verb
//   - path:   the registered Gin route; unmatched requests are collapsed to
//     "unmatched" so scanners cannot blow up cardinality
//   - status: numeric status code as a string (e.g. "200", "404")
//   - kind:   apperr label for failed requests
//
// All collectors are safe for concurrent use.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tbourn/verproxy/internal/apperr"
)

// unmatchedPath labels requests that matched no route.
const unmatchedPath = "unmatched"

var (
	// httpReqs counts requests by method, route path, and status code.
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// httpLat records request duration in seconds by method and route path.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// httpInflight gauges the number of in-flight requests.
	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// httpRespSize captures response sizes in bytes by method and route path.
	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_response_size_bytes",
			Help: "Size of HTTP responses in bytes.",
			Buckets: []float64{
				16, 64, 200, 500, 1 << 10, 5 << 10, // 16B..5KiB
				25 << 10, 100 << 10, 500 << 10, // 25..500KiB
				1 << 20, 5 << 20, // 1..5MiB
			},
		},
		[]string{"method", "path"},
	)

	// appErrors counts handler failures by apperr kind.
	appErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_errors_total",
			Help: "Requests that failed with an application error, by kind.",
		},
		[]string{"kind"},
	)

	// dbAcquire records how long requests waited for a pooled connection.
	dbAcquire = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "db_conn_acquire_seconds",
			Help:    "Time spent waiting to lease a database connection.",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize, appErrors, dbAcquire)
	// Pre-create the series so dashboards show zeros instead of gaps.
	for _, k := range apperr.Kinds {
		appErrors.WithLabelValues(k.Label())
	}
}

// Metrics returns a Gin middleware that instruments requests with Prometheus.
//
//   - http_requests_total(method, path, status) per request
//   - http_request_duration_seconds(method, path) on completion
//   - http_requests_inflight during handler execution
//   - http_response_size_bytes(method, path) when the size is known
//   - app_errors_total(kind) when a handler recorded an apperr kind
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		dur := time.Since(start).Seconds()
		path := c.FullPath()
		if path == "" {
			path = unmatchedPath
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		httpReqs.WithLabelValues(method, path, status).Inc()
		httpLat.WithLabelValues(method, path).Observe(dur)
		// -1 when nothing was written.
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(size))
		}
		if kind, ok := ErrorKindFrom(c); ok {
			appErrors.WithLabelValues(kind.Label()).Inc()
		}
	}
}
