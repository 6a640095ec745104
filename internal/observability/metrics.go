package observability

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Enrichment outcome labels.
const (
	EnrichmentApplied     = "applied"
	EnrichmentSkipped     = "skipped"
	EnrichmentParseFailed = "parse_failed"
	EnrichmentModelFailed = "model_failed"
	EnrichmentRateLimited = "rate_limited"
	EnrichmentStoreFailed = "store_failed"
	EnrichmentRejected    = "rejected"
)

// Metrics owns the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry          *prometheus.Registry
	requests          *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	errors            *prometheus.CounterVec
	enrichments       *prometheus.CounterVec
	enrichmentLatency prometheus.Histogram
	queueDepth        prometheus.Gauge
}

// NewMetrics registers collectors and returns the bundle. Dashes in namespace
// become underscores so service names can be passed as is.
func NewMetrics(namespace string) *Metrics {
	namespace = strings.ReplaceAll(namespace, "-", "_")
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Error responses by route and domain error code.",
		}, []string{"route", "method", "code"}),
		enrichments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_outcomes_total",
			Help:      "Ticket enrichment attempts by outcome.",
		}, []string{"outcome"}),
		enrichmentLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "enrichment_duration_seconds",
			Help:      "Time spent enriching a single ticket.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "enrichment_queue_depth",
			Help:      "Tasks waiting for an enrichment worker.",
		}),
	}
	reg.MustRegister(
		m.requests,
		m.requestDuration,
		m.errors,
		m.enrichments,
		m.enrichmentLatency,
		m.queueDepth,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordEnrichment counts one enrichment outcome.
func (m *Metrics) RecordEnrichment(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.enrichments.WithLabelValues(outcome).Inc()
	if duration > 0 {
		m.enrichmentLatency.Observe(duration.Seconds())
	}
}

// SetQueueDepth reports the current enrichment backlog.
func (m *Metrics) SetQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}
