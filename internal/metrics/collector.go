// Package metrics exposes Prometheus collectors for pipeline runs, model
// attempts and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "lp"

// Run results.
const (
	RunSuccess        = "success"
	RunQuotaExhausted = "quota_exhausted"
	RunError          = "error"
)

// Attempt outcomes.
const (
	AttemptSuccess = "success"
	AttemptQuota   = "quota"
	AttemptFatal   = "fatal"
)

// Collector owns a private registry so several collectors can coexist in tests.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	runsTotal       *prometheus.CounterVec
	attemptsTotal   *prometheus.CounterVec
	fallbacksTotal  prometheus.Counter
	captureDuration prometheus.Histogram
	modelDuration   *prometheus.HistogramVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector creates a collector registered on a fresh registry that also
// carries the Go runtime and process collectors.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	c := &Collector{
		registry: reg,
		logger:   logger.With(zap.String("component", "metrics")),
	}

	c.runsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of analysis pipeline runs by result",
		},
		[]string{"result"},
	)

	c.attemptsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_attempts_total",
			Help:      "Total number of model invocations by model and outcome",
		},
		[]string{"model", "outcome"},
	)

	c.fallbacksTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Runs that succeeded on a candidate other than the first",
		},
	)

	c.captureDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "capture_duration_seconds",
			Help:      "Page capture duration in seconds",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 90, 120},
		},
	)

	c.modelDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_duration_seconds",
			Help:      "Model invocation duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"model"},
	)

	c.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	c.logger.Debug("metrics collector initialized", zap.String("namespace", namespace))
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordRun counts a finished pipeline run.
func (c *Collector) RecordRun(result string) {
	if c == nil {
		return
	}
	c.runsTotal.WithLabelValues(result).Inc()
}

// RecordAttempt counts one model invocation and its latency.
func (c *Collector) RecordAttempt(model, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.attemptsTotal.WithLabelValues(model, outcome).Inc()
	c.modelDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// RecordFallback counts a run answered by a non-primary candidate.
func (c *Collector) RecordFallback() {
	if c == nil {
		return
	}
	c.fallbacksTotal.Inc()
}

// ObserveCapture records how long a page capture took.
func (c *Collector) ObserveCapture(duration time.Duration) {
	if c == nil {
		return
	}
	c.captureDuration.Observe(duration.Seconds())
}

// RecordHTTPRequest counts a served HTTP request.
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
