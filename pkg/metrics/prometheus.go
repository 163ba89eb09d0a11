// Package metrics provides Prometheus metrics for the squad builder service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the squad service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Source resolution
	sourceAttempts      *prometheus.CounterVec
	resolutionDuration  *prometheus.HistogramVec
	fallbackActivations *prometheus.CounterVec

	// Pool loading
	loadGenerations *prometheus.CounterVec
	poolPlayers     prometheus.Gauge
	poolFixtures    prometheus.Gauge

	// Squad engine
	squadMutations *prometheus.CounterVec
	activeSessions prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	relayUpstream       *prometheus.CounterVec

	// System
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
		namespace:        "squadkit",
		subsystem:        "",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// Enabled reports whether recorders observe anything.
func (m *Manager) Enabled() bool { return m.enabled }

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.sourceAttempts = auto.NewCounterVec(
		m.counterOpts("source_attempts_total", "Source fetch attempts by payload kind, source and outcome"),
		[]string{"kind", "source", "outcome"},
	)
	m.resolutionDuration = auto.NewHistogramVec(
		m.histogramOpts("source_resolution_duration_milliseconds", "Time to resolve a payload across all sources", m.histogramBuckets),
		[]string{"kind", "available"},
	)
	m.fallbackActivations = auto.NewCounterVec(
		m.counterOpts("fallback_activations_total", "Times a payload kind fell back to bundled or empty data"),
		[]string{"kind"},
	)

	m.loadGenerations = auto.NewCounterVec(
		m.counterOpts("load_generations_total", "Pool loads by result (applied or stale)"),
		[]string{"result"},
	)
	m.poolPlayers = auto.NewGauge(m.gaugeOpts("pool_players", "Players in the applied pool"))
	m.poolFixtures = auto.NewGauge(m.gaugeOpts("pool_fixtures", "Fixtures in the applied pool"))

	m.squadMutations = auto.NewCounterVec(
		m.counterOpts("squad_mutations_total", "Squad mutations by operation and outcome"),
		[]string{"op", "outcome"},
	)
	m.activeSessions = auto.NewGauge(m.gaugeOpts("active_sessions", "Squad sessions currently held in memory"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorsByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "API errors by endpoint, method and error type"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.relayUpstream = auto.NewCounterVec(
		m.counterOpts("relay_upstream_total", "Relay upstream responses by endpoint and status"),
		[]string{"endpoint", "status_code"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordSourceAttempt counts one fetch attempt against a source.
func RecordSourceAttempt(kind, source, outcome string) {
	if !globalManager.enabled {
		return
	}
	globalManager.sourceAttempts.WithLabelValues(kind, source, outcome).Inc()
}

// RecordResolution records how long resolving a payload kind took.
func RecordResolution(kind string, available bool, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	a := "false"
	if available {
		a = "true"
	}
	globalManager.resolutionDuration.WithLabelValues(kind, a).Observe(latencyMs)
}

// RecordFallback counts a fallback activation.
func RecordFallback(kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.fallbackActivations.WithLabelValues(kind).Inc()
}

// RecordGenerationApplied counts a load whose result was applied.
func RecordGenerationApplied() {
	if !globalManager.enabled {
		return
	}
	globalManager.loadGenerations.WithLabelValues("applied").Inc()
}

// RecordGenerationStale counts a load discarded because a newer one started.
func RecordGenerationStale() {
	if !globalManager.enabled {
		return
	}
	globalManager.loadGenerations.WithLabelValues("stale").Inc()
}

// UpdatePoolSize sets the applied pool gauges.
func UpdatePoolSize(players, fixtures int) {
	if !globalManager.enabled {
		return
	}
	globalManager.poolPlayers.Set(float64(players))
	globalManager.poolFixtures.Set(float64(fixtures))
}

// RecordSquadMutation counts an add/remove/reset with its outcome ("ok" or a rejection code).
func RecordSquadMutation(op, outcome string) {
	if !globalManager.enabled {
		return
	}
	globalManager.squadMutations.WithLabelValues(op, outcome).Inc()
}

// UpdateActiveSessions sets the session gauge.
func UpdateActiveSessions(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.activeSessions.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint counts an API error.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordRelayUpstream counts a relayed upstream response. Transport failures use status "error".
func RecordRelayUpstream(endpoint, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.relayUpstream.WithLabelValues(endpoint, statusCode).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// Global returns the process-wide manager backing the package recorders.
func Global() *Manager {
	return globalManager
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
