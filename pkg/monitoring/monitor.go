package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// RowStoreCalls 远程表格调用次数，result 为 ok / error
	RowStoreCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "row_store_calls_total",
			Help: "Total number of row store calls",
		},
		[]string{"op", "table", "result"},
	)

	RowStoreDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "row_store_call_duration_seconds",
			Help:    "Duration of row store calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"op", "table"},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "read_cache_lookups_total",
			Help: "Read-through cache lookups by result",
		},
		[]string{"result"},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(RowStoreCalls)
		prometheus.MustRegister(RowStoreDuration)
		prometheus.MustRegister(CacheLookups)
	})
}

// ObserveRowStore 记录一次远程表格调用
func ObserveRowStore(op, table string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	RowStoreCalls.WithLabelValues(op, table, result).Inc()
	RowStoreDuration.WithLabelValues(op, table).Observe(time.Since(start).Seconds())
}

func ObserveCache(hit bool) {
	if hit {
		CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	CacheLookups.WithLabelValues("miss").Inc()
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
