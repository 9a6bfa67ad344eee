package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Transcription outcomes recorded by the collector.
const (
	OutcomeOK        = "ok"
	OutcomeDegraded  = "degraded"
	OutcomeMalformed = "malformed"
	OutcomeFailed    = "failed"
)

// Collector holds all Prometheus metrics for the application. A nil *Collector
// is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	Transcriptions   *prometheus.CounterVec
	ThoughtsProduced prometheus.Counter
	FallbackThoughts prometheus.Counter
	AIDuration       prometheus.Histogram

	StoreOperations *prometheus.CounterVec
}

// NewCollector creates a collector on its own registry.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Transcriptions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transcriptions_total",
				Help:      "Transcription requests by outcome",
			},
			[]string{"outcome"},
		),
		ThoughtsProduced: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "thoughts_produced_total",
				Help:      "Validated thoughts returned to clients",
			},
		),
		FallbackThoughts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fallback_thoughts_total",
				Help:      "Synthetic thoughts produced when the model returned none",
			},
		),
		AIDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ai_request_duration_seconds",
				Help:      "Latency of generative model calls",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
			},
		),
		StoreOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Backend store calls by operation and status",
			},
			[]string{"operation", "status"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Transcriptions,
		c.ThoughtsProduced,
		c.FallbackThoughts,
		c.AIDuration,
		c.StoreOperations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request.
func (c *Collector) ObserveHTTP(method, route, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, status).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveTranscription records the outcome of one transcription.
func (c *Collector) ObserveTranscription(outcome string, thoughts int) {
	if c == nil {
		return
	}
	c.Transcriptions.WithLabelValues(outcome).Inc()
	c.ThoughtsProduced.Add(float64(thoughts))
}

// ObserveFallback records one synthetic thought.
func (c *Collector) ObserveFallback() {
	if c == nil {
		return
	}
	c.FallbackThoughts.Inc()
}

// ObserveAI records the latency of one model call.
func (c *Collector) ObserveAI(d time.Duration) {
	if c == nil {
		return
	}
	c.AIDuration.Observe(d.Seconds())
}

// ObserveStore records one backend call.
func (c *Collector) ObserveStore(operation string, err error) {
	if c == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	c.StoreOperations.WithLabelValues(operation, status).Inc()
}
