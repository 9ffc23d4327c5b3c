package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics contains the HTTP request metrics and the bridge business counters
type HTTPMetrics struct {
	requestDuration  *prometheus.HistogramVec
	requestsTotal    *prometheus.CounterVec
	responseSize     *prometheus.HistogramVec
	inFlightRequests *prometheus.GaugeVec

	// Business logic metrics
	businessOperations *prometheus.CounterVec
	businessDuration   *prometheus.HistogramVec
	trackerOutcomes    *prometheus.CounterVec
	stalledRecords     *prometheus.CounterVec
}

// NewHTTPMetrics creates a new instance of HTTP metrics
func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridge_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "path", "status"},
		),

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		responseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridge_http_response_size_bytes",
				Help:    "Size of HTTP responses in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 2, 8), // 100B to 12KB
			},
			[]string{"method", "path", "status"},
		),

		inFlightRequests: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bridge_http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
			[]string{"method", "path"},
		),

		businessOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_business_operations_total",
				Help: "Total number of business operations",
			},
			[]string{"operation_type", "category", "status"},
		),

		businessDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridge_business_operation_duration_seconds",
				Help:    "Duration of business operations in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"operation_type", "category", "status"},
		),

		trackerOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_tracker_outcomes_total",
				Help: "Confirmation tracker outcomes by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),

		stalledRecords: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_stalled_transactions_total",
				Help: "Active bridge transactions reported idle past the stall threshold",
			},
			[]string{"network"},
		),
	}
}

// MustRegister registers all HTTP metrics with the provided registry
func (m *HTTPMetrics) MustRegister(registry prometheus.Registerer) {
	registry.MustRegister(
		m.requestDuration,
		m.requestsTotal,
		m.responseSize,
		m.inFlightRequests,
		m.businessOperations,
		m.businessDuration,
		m.trackerOutcomes,
		m.stalledRecords,
	)
}

// RecordBusinessMetric records a business operation metric
func (m *HTTPMetrics) RecordBusinessMetric(operationType, category, status string, duration float64) {
	m.businessOperations.WithLabelValues(operationType, category, status).Inc()
	if duration > 0 {
		m.businessDuration.WithLabelValues(operationType, category, status).Observe(duration)
	}
}

// HTTPMetricsMiddleware creates a Gin middleware for HTTP metrics collection
func HTTPMetricsMiddleware(metrics *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		method := c.Request.Method

		// unmatched routes would explode label cardinality
		if path == "" {
			path = "unmatched"
		}

		metrics.inFlightRequests.WithLabelValues(method, path).Inc()
		defer metrics.inFlightRequests.WithLabelValues(method, path).Dec()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		responseSize := float64(c.Writer.Size())

		metrics.requestDuration.WithLabelValues(method, path, status).Observe(duration)
		metrics.requestsTotal.WithLabelValues(method, path, status).Inc()
		if responseSize > 0 {
			metrics.responseSize.WithLabelValues(method, path, status).Observe(responseSize)
		}
	}
}

// BusinessMetricsRecorder provides methods to record business logic metrics
type BusinessMetricsRecorder struct {
	metrics *HTTPMetrics
}

func NewBusinessMetricsRecorder(metrics *HTTPMetrics) *BusinessMetricsRecorder {
	return &BusinessMetricsRecorder{
		metrics: metrics,
	}
}

// RecordIntake counts a submission by source network and result
// (accepted, rejected, conflict, error).
func (r *BusinessMetricsRecorder) RecordIntake(network, status string) {
	r.metrics.RecordBusinessMetric("bridge_intake", network, status, 0)
}

func (r *BusinessMetricsRecorder) RecordTrackerOutcome(operation, outcome string) {
	r.metrics.trackerOutcomes.WithLabelValues(operation, outcome).Inc()
}

func (r *BusinessMetricsRecorder) RecordStalled(network string) {
	r.metrics.stalledRecords.WithLabelValues(network).Inc()
}

// RecordConfirmationIndexing records one poller pass over a network.
func (r *BusinessMetricsRecorder) RecordConfirmationIndexing(network, status string, duration float64) {
	r.metrics.RecordBusinessMetric("confirmation_indexing", network, status, duration)
}

func (r *BusinessMetricsRecorder) RecordSettlementNotification(status string) {
	r.metrics.RecordBusinessMetric("settlement_notification", "webhook", status, 0)
}

func (r *BusinessMetricsRecorder) RecordFeedMessage(status string) {
	r.metrics.RecordBusinessMetric("confirmation_feed", "nats", status, 0)
}

// TrackerOutcomes exposes the tracker outcome counter for assertions.
func (m *HTTPMetrics) TrackerOutcomes() *prometheus.CounterVec {
	return m.trackerOutcomes
}

// StalledRecords exposes the stall counter for assertions.
func (m *HTTPMetrics) StalledRecords() *prometheus.CounterVec {
	return m.stalledRecords
}

// BusinessOperations exposes the business operation counter for assertions.
func (m *HTTPMetrics) BusinessOperations() *prometheus.CounterVec {
	return m.businessOperations
}
