package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "greengalaxy"

// Metrics holds the gateway's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	AuthDecisionsTotal  *prometheus.CounterVec
	ModelRequestsTotal  *prometheus.CounterVec
	ModelLatency        *prometheus.HistogramVec
}

// NewMetrics registers all collectors on a fresh registry, together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		AuthDecisionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_decisions_total",
			Help:      "Token resolutions by trust path and outcome.",
		}, []string{"path", "outcome"}),
		ModelRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_requests_total",
			Help:      "Generative model calls by provider, model, and outcome.",
		}, []string{"provider", "model", "outcome"}),
		ModelLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_request_duration_seconds",
			Help:      "Generative model call latency in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"provider", "model"}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordAuthDecision counts one token resolution.
func (m *Metrics) RecordAuthDecision(path, outcome string) {
	m.AuthDecisionsTotal.WithLabelValues(path, outcome).Inc()
}

// RecordModelRequest counts one generative model call and observes its latency.
func (m *Metrics) RecordModelRequest(provider, model, outcome string, duration time.Duration) {
	m.ModelRequestsTotal.WithLabelValues(provider, model, outcome).Inc()
	m.ModelLatency.WithLabelValues(provider, model).Observe(duration.Seconds())
}

// Handler returns an http.Handler that serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware wraps an http.Handler to record request metrics.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		duration := time.Since(start).Seconds()

		route := routePattern(r)
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(duration)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// routePattern uses the matched chi route so label cardinality stays bounded.
// Unmatched requests share a single label.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
