package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics provides Prometheus metrics for towerctl. A disabled instance
// is a safe no-op so call sites never branch on configuration.
type Metrics struct {
	config MetricsConfig

	// Provider API metrics
	apiCalls    *prometheus.CounterVec
	apiRetries  *prometheus.CounterVec
	apiDuration *prometheus.HistogramVec

	// Poller metrics
	pollAttempts *prometheus.CounterVec

	// Workflow metrics
	operations *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return &Metrics{config: cfg}
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "towerctl"
	}

	m := &Metrics{
		config:   cfg,
		registry: prometheus.NewRegistry(),
	}

	m.apiCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_api_calls_total",
		Help:      "Total provider API calls by service and operation.",
	}, []string{"service", "operation", "status"})

	m.apiRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_api_retries_total",
		Help:      "Total transient-failure retries by service.",
	}, []string{"service"})

	m.apiDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_api_duration_seconds",
		Help:      "Provider API call duration.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service", "operation"})

	m.pollAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operation_poll_attempts_total",
		Help:      "Total polls of long-running provider operations.",
	}, []string{"operation_type"})

	m.operations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "landing_zone_operations_total",
		Help:      "Landing zone workflow outcomes by operation and result.",
	}, []string{"operation", "result"})

	m.registry.MustRegister(
		m.apiCalls, m.apiRetries, m.apiDuration, m.pollAttempts, m.operations)

	return m
}

// Registry exposes the underlying registry for scraping or test
// inspection. Nil when metrics are disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordAPICall records one provider API call.
func (m *Metrics) RecordAPICall(service, operation, status string, duration time.Duration) {
	if m.apiCalls == nil {
		return
	}
	m.apiCalls.WithLabelValues(service, operation, status).Inc()
	m.apiDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordRetry records one transient-failure retry.
func (m *Metrics) RecordRetry(service string) {
	if m.apiRetries == nil {
		return
	}
	m.apiRetries.WithLabelValues(service).Inc()
}

// RecordPoll records one poll of a long-running operation.
func (m *Metrics) RecordPoll(operationType string) {
	if m.pollAttempts == nil {
		return
	}
	m.pollAttempts.WithLabelValues(operationType).Inc()
}

// RecordOperation records a workflow outcome.
func (m *Metrics) RecordOperation(operation, result string) {
	if m.operations == nil {
		return
	}
	m.operations.WithLabelValues(operation, result).Inc()
}
