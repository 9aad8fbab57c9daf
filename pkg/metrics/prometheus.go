// Package metrics provides Prometheus metrics for the sked agenda service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the sked service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Feed Sync Metrics - official events entering the system
	feedSyncs        prometheus.Counter
	feedSyncFailures prometheus.Counter
	feedEventsFetched prometheus.Counter
	feedEventsDropped prometheus.Counter
	feedSyncDuration prometheus.Histogram
	feedLastSyncUnix prometheus.Gauge

	// Agenda Metrics - classification read path
	agendaQueries         *prometheus.CounterVec
	agendaClassifyLatency prometheus.Histogram

	// Collection Size Metrics
	officialEvents prometheus.Gauge
	personalTasks  prometheus.Gauge

	// Task Store Metrics - local persistence
	tasksCreated     prometheus.Counter
	tasksDeleted     prometheus.Counter
	taskStoreErrors  prometheus.Counter
	taskStoreLatency prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Enhanced Error Metrics - detailed error tracking
	errorRateByComponent *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "sked",
		subsystem:        "agenda",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Feed Sync Metrics
	m.feedSyncs = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_syncs_total",
		Help:      "Total number of official feed sync passes",
	})

	m.feedSyncFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_sync_failures_total",
		Help:      "Total number of feed sync passes that failed entirely",
	})

	m.feedEventsFetched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_events_fetched_total",
		Help:      "Total number of official events accepted from feeds",
	})

	m.feedEventsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_events_dropped_total",
		Help:      "Total number of feed records dropped (invalid date, duplicate id, empty title)",
	})

	m.feedSyncDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_sync_duration_milliseconds",
		Help:      "Histogram of full sync pass duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.feedLastSyncUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_last_sync_unix",
		Help:      "Unix timestamp of the last successful feed sync",
	})

	// Agenda Metrics
	m.agendaQueries = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "queries_total",
			Help:      "Total number of agenda classification queries by view",
		},
		[]string{"view"},
	)

	m.agendaClassifyLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "classify_latency_milliseconds",
		Help:      "Merge + classification latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Collection Size Metrics
	m.officialEvents = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "official_events",
		Help:      "Current number of official events in the snapshot",
	})

	m.personalTasks = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "personal_tasks",
		Help:      "Current number of persisted personal tasks",
	})

	// Task Store Metrics
	m.tasksCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tasks_created_total",
		Help:      "Total number of personal tasks created",
	})

	m.tasksDeleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tasks_deleted_total",
		Help:      "Total number of personal tasks deleted",
	})

	m.taskStoreErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "task_store_errors_total",
		Help:      "Total number of task store operation errors",
	})

	m.taskStoreLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "task_store_latency_milliseconds",
		Help:      "Task store operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// HTTP Performance Metrics
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Enhanced Error Metrics
	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// Feed Sync Metrics Functions.

// RecordFeedSync increments the sync pass counter.
func RecordFeedSync() {
	globalManager.feedSyncs.Inc()
}

// RecordFeedSyncFailure increments the failed sync pass counter.
func RecordFeedSyncFailure() {
	globalManager.feedSyncFailures.Inc()
}

// RecordFeedEventsFetched adds to the accepted official events counter.
func RecordFeedEventsFetched(n int) {
	globalManager.feedEventsFetched.Add(float64(n))
}

// RecordFeedEventDropped increments the dropped feed record counter.
func RecordFeedEventDropped() {
	globalManager.feedEventsDropped.Inc()
}

// RecordFeedSyncDuration records a full sync pass duration in milliseconds.
func RecordFeedSyncDuration(latencyMs float64) {
	globalManager.feedSyncDuration.Observe(latencyMs)
}

// UpdateFeedLastSync sets the timestamp of the last successful sync.
func UpdateFeedLastSync(unix int64) {
	globalManager.feedLastSyncUnix.Set(float64(unix))
}

// Agenda Metrics Functions.

// RecordAgendaQuery increments the query counter for a view.
func RecordAgendaQuery(view string) {
	globalManager.agendaQueries.WithLabelValues(view).Inc()
}

// RecordAgendaClassifyLatency records merge + classification latency.
func RecordAgendaClassifyLatency(latencyMs float64) {
	globalManager.agendaClassifyLatency.Observe(latencyMs)
}

// UpdateOfficialEvents sets the current official snapshot size.
func UpdateOfficialEvents(count int) {
	globalManager.officialEvents.Set(float64(count))
}

// UpdatePersonalTasks sets the current persisted task count.
func UpdatePersonalTasks(count int) {
	globalManager.personalTasks.Set(float64(count))
}

// Task Store Metrics Functions.

// RecordTaskCreated increments the created tasks counter.
func RecordTaskCreated() {
	globalManager.tasksCreated.Inc()
}

// RecordTaskDeleted increments the deleted tasks counter.
func RecordTaskDeleted() {
	globalManager.tasksDeleted.Inc()
}

// RecordTaskStoreError increments the task store error counter.
func RecordTaskStoreError() {
	globalManager.taskStoreErrors.Inc()
}

// RecordTaskStoreLatency records a task store operation latency.
func RecordTaskStoreLatency(latencyMs float64) {
	globalManager.taskStoreLatency.Observe(latencyMs)
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Enhanced Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
