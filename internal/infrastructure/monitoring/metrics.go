package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/alchemorsel/menupairing/internal/ports/outbound"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "menupairing"

// MetricsCollector handles Prometheus metrics collection
type MetricsCollector struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Pairing metrics
	pairingsTotal       *prometheus.CounterVec
	pairingSuggestions  *prometheus.HistogramVec
	backendCallsTotal   *prometheus.CounterVec
	backendCallDuration *prometheus.HistogramVec
}

var _ outbound.PairingMetrics = (*MetricsCollector)(nil)

// NewMetricsCollector creates a collector on its own registry, so several
// collectors can coexist in one process.
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &MetricsCollector{
		logger:   logger.Named("metrics"),
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		pairingsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pairings_total",
				Help:      "Total number of pairing results by source",
			},
			[]string{"source"},
		),
		pairingSuggestions: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pairing_suggestions",
				Help:      "Number of suggestions per pairing result",
				Buckets:   []float64{0, 1, 2, 3},
			},
			[]string{"source"},
		),
		backendCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ai_requests_total",
				Help:      "Total number of completion backend calls by outcome",
			},
			[]string{"outcome"},
		),
		backendCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ai_request_duration_seconds",
				Help:      "Completion backend call duration in seconds",
				Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
			},
			[]string{"outcome"},
		),
	}
}

// ObservePairing records one pairing result
func (m *MetricsCollector) ObservePairing(source string, suggestions int) {
	m.pairingsTotal.WithLabelValues(source).Inc()
	m.pairingSuggestions.WithLabelValues(source).Observe(float64(suggestions))
}

// ObserveBackendCall records one completion backend call
func (m *MetricsCollector) ObserveBackendCall(outcome string, duration time.Duration) {
	m.backendCallsTotal.WithLabelValues(outcome).Inc()
	m.backendCallDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// HTTPMiddleware records request counts and latencies per chi route pattern
func (m *MetricsCollector) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		m.httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
