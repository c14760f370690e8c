package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestsActive  prometheus.Gauge

	// Business metrics
	InspectionsTotal    *prometheus.CounterVec
	StrategiesGenerated *prometheus.CounterVec
	ConfidenceScores    *prometheus.HistogramVec
	BestStrategyType    *prometheus.CounterVec
	InspectionDuration  prometheus.Histogram

	// Page capture metrics
	CapturesTotal   *prometheus.CounterVec
	CaptureDuration *prometheus.HistogramVec
	CapturePageSize prometheus.Histogram

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// System metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge
	GoroutinesActive    prometheus.Gauge
}

// NewMetrics creates a new metrics instance with all Prometheus metrics registered
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "locateflow"
	}

	m := &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_active",
				Help:      "Number of active HTTP requests",
			},
		),

		// Business metrics
		InspectionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "inspections_total",
				Help:      "Total number of element inspections",
			},
			[]string{"source", "status"}, // source: api, cli, capture
		),
		StrategiesGenerated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "strategies_generated_total",
				Help:      "Total number of locator strategies generated",
			},
			[]string{"type"},
		),
		ConfidenceScores: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "confidence_score",
				Help:      "Distribution of locator confidence scores",
				Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			},
			[]string{"type"},
		),
		BestStrategyType: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "best_strategy_total",
				Help:      "Total number of inspections by winning strategy type",
			},
			[]string{"type"},
		),
		InspectionDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "inspection_duration_seconds",
				Help:      "Element inspection duration in seconds",
				Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
		),

		// Page capture metrics
		CapturesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "captures_total",
				Help:      "Total number of page captures",
			},
			[]string{"browser", "status"},
		),
		CaptureDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "capture_duration_seconds",
				Help:      "Page capture duration in seconds",
				Buckets:   []float64{.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"browser"},
		),
		CapturePageSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "capture_page_bytes",
				Help:      "Size of captured page markup in bytes",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
			},
		),

		// Cache metrics
		CacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of cache hits",
			},
		),
		CacheMisses: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of cache misses",
			},
		),

		// System metrics
		DBConnectionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections_active",
				Help:      "Number of active database connections",
			},
		),
		DBConnectionsIdle: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections_idle",
				Help:      "Number of idle database connections",
			},
		),
		GoroutinesActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "goroutines_active",
				Help:      "Number of active goroutines",
			},
		),
	}

	return m
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordInspection records one inspection and its winning strategy
func (m *Metrics) RecordInspection(source, status, bestType string, duration time.Duration) {
	m.InspectionsTotal.WithLabelValues(source, status).Inc()
	m.InspectionDuration.Observe(duration.Seconds())
	if bestType != "" {
		m.BestStrategyType.WithLabelValues(bestType).Inc()
	}
}

// RecordStrategy records one generated strategy and its score
func (m *Metrics) RecordStrategy(strategyType string, score int) {
	m.StrategiesGenerated.WithLabelValues(strategyType).Inc()
	m.ConfidenceScores.WithLabelValues(strategyType).Observe(float64(score))
}

// RecordCapture records page capture metrics
func (m *Metrics) RecordCapture(browser, status string, duration time.Duration, pageBytes int) {
	m.CapturesTotal.WithLabelValues(browser, status).Inc()
	m.CaptureDuration.WithLabelValues(browser).Observe(duration.Seconds())
	if pageBytes > 0 {
		m.CapturePageSize.Observe(float64(pageBytes))
	}
}

// RecordCacheHit records a cache hit
func (m *Metrics) RecordCacheHit() {
	m.CacheHits.Inc()
}

// RecordCacheMiss records a cache miss
func (m *Metrics) RecordCacheMiss() {
	m.CacheMisses.Inc()
}

// HTTPMiddleware returns middleware for recording HTTP metrics
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.HTTPRequestsActive.Inc()
		defer m.HTTPRequestsActive.Dec()

		start := time.Now()

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		m.RecordHTTPRequest(r.Method, r.URL.Path, wrapped.statusCode, duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Global metrics instance
var globalMetrics *Metrics

// InitMetrics initializes the global metrics instance
func InitMetrics(namespace string) *Metrics {
	globalMetrics = NewMetrics(namespace)
	return globalMetrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	if globalMetrics == nil {
		globalMetrics = NewMetrics("locateflow")
	}
	return globalMetrics
}
