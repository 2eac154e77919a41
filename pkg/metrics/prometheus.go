// Package metrics provides Prometheus metrics for the dynamic pricing service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the pricing service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Refresh job metrics
	refreshRuns      prometheus.Counter
	refreshSkipped   prometheus.Counter
	refreshFailures  prometheus.Counter
	refreshDuration  prometheus.Histogram
	refreshLastUnix  prometheus.Gauge
	refreshLastTasks prometheus.Gauge

	// Pricing metrics
	priceCalculations prometheus.Counter
	priceUpserts      prometheus.Counter
	taskFailures      prometheus.Counter
	quoteLatency      prometheus.Histogram

	// Repository metrics
	repositoryErrors       prometheus.Counter
	repositoryQueryLatency prometheus.Histogram
	propertiesTracked      prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "rezerwacji",
		subsystem:        "pricing",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.refreshRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_runs_total",
		Help:      "Total number of completed price refresh runs",
	})

	m.refreshSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_skipped_total",
		Help:      "Refresh triggers skipped because a run was already in flight",
	})

	m.refreshFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_failures_total",
		Help:      "Refresh runs that aborted before processing any task",
	})

	m.refreshDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_duration_seconds",
		Help:      "Histogram of full refresh run duration in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 3600},
	})

	m.refreshLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_last_run_timestamp_seconds",
		Help:      "Unix timestamp of the last completed refresh run",
	})

	m.refreshLastTasks = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_last_run_tasks",
		Help:      "Number of (property, date) tasks attempted in the last run",
	})

	m.priceCalculations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "calculations_total",
		Help:      "Total number of dynamic price calculations",
	})

	m.priceUpserts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upserts_total",
		Help:      "Total number of dynamic price upserts",
	})

	m.taskFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "task_failures_total",
		Help:      "Total number of failed (property, date) refresh tasks",
	})

	m.quoteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "quote_latency_milliseconds",
		Help:      "Histogram of single price calculation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.repositoryErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_errors_total",
		Help:      "Total number of repository read/write errors",
	})

	m.repositoryQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_query_latency_milliseconds",
		Help:      "Histogram of repository query latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.propertiesTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "properties_tracked",
		Help:      "Number of properties covered by the last refresh run",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordRefreshRun records a completed refresh run.
func RecordRefreshRun(duration time.Duration, tasks int) {
	globalManager.refreshRuns.Inc()
	globalManager.refreshDuration.Observe(duration.Seconds())
	globalManager.refreshLastUnix.SetToCurrentTime()
	globalManager.refreshLastTasks.Set(float64(tasks))
}

// RecordRefreshSkipped records a trigger skipped due to an in-flight run.
func RecordRefreshSkipped() {
	globalManager.refreshSkipped.Inc()
}

// RecordRefreshFailure records a run that aborted before processing tasks.
func RecordRefreshFailure() {
	globalManager.refreshFailures.Inc()
}

// RecordPriceCalculation records a single dynamic price calculation.
func RecordPriceCalculation(latencyMs float64) {
	globalManager.priceCalculations.Inc()
	globalManager.quoteLatency.Observe(latencyMs)
}

// RecordPriceUpsert records a successful dynamic price upsert.
func RecordPriceUpsert() {
	globalManager.priceUpserts.Inc()
}

// RecordTaskFailure records a failed (property, date) refresh task.
func RecordTaskFailure() {
	globalManager.taskFailures.Inc()
}

// RecordRepositoryError records a repository read/write error.
func RecordRepositoryError() {
	globalManager.repositoryErrors.Inc()
}

// RecordRepositoryQueryLatency records a repository query latency sample.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// UpdatePropertiesTracked sets the number of properties seen by the last run.
func UpdatePropertiesTracked(count int) {
	globalManager.propertiesTracked.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
