package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vitalink"

// Metrics holds the service's Prometheus collectors. Collectors are registered on the
// Registerer passed to New rather than the global default, so tests and multiple
// instances never collide.
type Metrics struct {
	// RequestsTotal counts HTTP requests by method, route and status.
	RequestsTotal *prometheus.CounterVec

	// RequestDuration observes HTTP latency by method and route.
	RequestDuration *prometheus.HistogramVec

	// SamplesIngested counts per-sample outcomes by metric and status.
	SamplesIngested *prometheus.CounterVec

	// DuplicateConflicts counts re-deliveries that carried a different value.
	DuplicateConflicts prometheus.Counter

	// Recomputes counts bucket recomputations by granularity and result.
	Recomputes *prometheus.CounterVec

	// RecomputeDuration observes read+compute+write latency by granularity.
	RecomputeDuration *prometheus.HistogramVec

	// PendingWindows is the current size of the aggregation retry queue.
	PendingWindows prometheus.Gauge

	// AggregationExhausted counts windows dropped after the retry ceiling.
	AggregationExhausted prometheus.Counter

	// RedisOperations counts retry-queue Redis calls by operation and status.
	RedisOperations *prometheus.CounterVec
}

// New creates and registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		SamplesIngested: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "samples_ingested_total",
				Help:      "Total number of submitted samples by outcome",
			},
			[]string{"metric", "status"},
		),
		DuplicateConflicts: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "duplicate_conflicts_total",
				Help:      "Duplicate deliveries whose value differed from the stored sample",
			},
		),
		Recomputes: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bucket_recomputes_total",
				Help:      "Total number of bucket recomputations",
			},
			[]string{"granularity", "status"},
		),
		RecomputeDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "bucket_recompute_duration_seconds",
				Help:      "Bucket recomputation latency in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"granularity"},
		),
		PendingWindows: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "aggregation_pending_windows",
				Help:      "Windows waiting for an aggregation retry",
			},
		),
		AggregationExhausted: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "aggregation_exhausted_total",
				Help:      "Windows abandoned after reaching the retry ceiling",
			},
		),
		RedisOperations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "redis_operations_total",
				Help:      "Total number of Redis operations",
			},
			[]string{"operation", "status"},
		),
	}
}

// NewNop returns collectors registered on a throwaway registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// Middleware records request count and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.RequestsTotal.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// ObserveRedis records the result of one Redis call.
func (m *Metrics) ObserveRedis(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.RedisOperations.WithLabelValues(operation, status).Inc()
}
