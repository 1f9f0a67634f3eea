// Package metrics provides Prometheus instrumentation for upstream traffic
// and the HTTP surface.
//
// Exposed series:
//
//	streambox_upstream_requests_total         counter: upstream calls by endpoint and outcome
//	streambox_upstream_request_duration_secs  histogram: upstream latency by endpoint
//	streambox_upstream_key_rotations_total    counter: credential rotations after a 429
//	streambox_http_requests_total             counter: HTTP requests by method, route and status
//	streambox_http_request_duration_seconds   histogram: HTTP latency by method and route
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors registered on one registry.
// All methods are safe on a nil receiver so instrumentation stays optional.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	KeyRotations     prometheus.Counter
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "streambox_upstream_requests_total",
			Help: "Upstream metadata provider calls by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		UpstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "streambox_upstream_request_duration_seconds",
			Help:    "Upstream call latency in seconds, retries included.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		KeyRotations: factory.NewCounter(prometheus.CounterOpts{
			Name: "streambox_upstream_key_rotations_total",
			Help: "Credential rotations triggered by upstream rate limiting.",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "streambox_http_requests_total",
			Help: "Total HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "streambox_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gatherer: reg,
	}
}

// NewWithRuntime is New plus the Go runtime and process collectors.
func NewWithRuntime() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return New(reg)
}

// ObserveUpstream records one logical upstream request.
func (m *Metrics) ObserveUpstream(endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := EndpointLabel(endpoint)
	m.UpstreamRequests.WithLabelValues(label, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}

// IncKeyRotation records a credential rotation.
func (m *Metrics) IncKeyRotation() {
	if m == nil {
		return
	}
	m.KeyRotations.Inc()
}

// ObserveHTTP records one served HTTP request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// EndpointLabel collapses numeric path segments so per-title endpoints share
// one label: /movie/278/videos becomes /movie/:id/videos.
func EndpointLabel(endpoint string) string {
	parts := strings.Split(endpoint, "/")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if _, err := strconv.ParseInt(p, 10, 64); err == nil {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}
