// README: Prometheus collectors for the HTTP API, quoting and the rules cache.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cabfare",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cabfare",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	QuotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cabfare",
		Subsystem: "pricing",
		Name:      "quotes_total",
		Help:      "Fare calculations by trip type and outcome",
	}, []string{"trip_type", "outcome"})

	QuoteAmount = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cabfare",
		Subsystem: "pricing",
		Name:      "quote_total_amount",
		Help:      "Quoted fare totals in whole currency units",
		Buckets:   []float64{10, 20, 30, 40, 50, 75, 100, 150, 200, 300},
	}, []string{"trip_type"})

	MinimumFareApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cabfare",
		Subsystem: "pricing",
		Name:      "minimum_fare_applied_total",
		Help:      "Quotes raised to the trip type's minimum fare",
	}, []string{"trip_type"})

	RulesCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cabfare",
		Subsystem: "rules_cache",
		Name:      "hits_total",
		Help:      "Rules documents served from Redis",
	})

	RulesCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cabfare",
		Subsystem: "rules_cache",
		Name:      "misses_total",
		Help:      "Rules documents loaded from the backing source",
	})
)

// Middleware records request metrics using the matched route pattern.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus exposition format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
