// Package metrics provides Prometheus metrics for the fleetbench load harness.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Default latency buckets in milliseconds, sized for database round-trips.
var defaultLatencyBuckets = []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000} //nolint:gochecknoglobals // shared default bucket layout

// Manager manages all Prometheus metrics for a bench run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Operation metrics - one observation per worker iteration
	operationsTotal  prometheus.Counter
	operationsFailed *prometheus.CounterVec
	operationLatency prometheus.Histogram

	// Run-level gauges refreshed from aggregator snapshots
	throughput  prometheus.Gauge
	workerCount prometheus.Gauge

	// Connection pool gauges
	poolAcquiredConns prometheus.Gauge
	poolIdleConns     prometheus.Gauge
	poolTotalConns    prometheus.Gauge
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
		namespace:        "fleetbench",
		subsystem:        "run",
		histogramBuckets: defaultLatencyBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.operationsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "operations_total",
		Help:      "Total number of read-modify-write iterations completed",
	})

	m.operationsFailed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "operations_failed_total",
		Help:      "Total number of failed iterations by failure class",
	}, []string{"class"})

	m.operationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "operation_latency_ms",
		Help:      "End-to-end iteration latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.throughput = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "throughput_ops",
		Help:      "Operations per second measured since run start",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of concurrent workers in the current run",
	})

	m.poolAcquiredConns = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pool_acquired_conns",
		Help:      "Connections currently checked out of the pool",
	})

	m.poolIdleConns = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pool_idle_conns",
		Help:      "Idle connections currently held by the pool",
	})

	m.poolTotalConns = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pool_total_conns",
		Help:      "Total connections currently owned by the pool",
	})
}

// RecordOperation records one completed iteration on the manager.
func (m *Manager) RecordOperation(latencyMS float64, success bool, class string) {
	if !m.enabled {
		return
	}
	m.operationsTotal.Inc()
	m.operationLatency.Observe(latencyMS)
	if !success {
		m.operationsFailed.WithLabelValues(class).Inc()
	}
}

// UpdateThroughput sets the current throughput gauge.
func (m *Manager) UpdateThroughput(opsPerSec float64) {
	if !m.enabled {
		return
	}
	m.throughput.Set(opsPerSec)
}

// UpdateWorkerCount sets the worker count gauge.
func (m *Manager) UpdateWorkerCount(count int) {
	if !m.enabled {
		return
	}
	m.workerCount.Set(float64(count))
}

// UpdatePoolStats sets the connection pool gauges.
func (m *Manager) UpdatePoolStats(acquired, idle, total int32) {
	if !m.enabled {
		return
	}
	m.poolAcquiredConns.Set(float64(acquired))
	m.poolIdleConns.Set(float64(idle))
	m.poolTotalConns.Set(float64(total))
}

// Package-level helpers operating on the global manager.

// RecordOperation records one completed iteration.
func RecordOperation(latencyMS float64, success bool, class string) {
	globalManager.RecordOperation(latencyMS, success, class)
}

// UpdateThroughput sets the current throughput gauge.
func UpdateThroughput(opsPerSec float64) { globalManager.UpdateThroughput(opsPerSec) }

// UpdateWorkerCount sets the worker count gauge.
func UpdateWorkerCount(count int) { globalManager.UpdateWorkerCount(count) }

// UpdatePoolStats sets the connection pool gauges.
func UpdatePoolStats(acquired, idle, total int32) {
	globalManager.UpdatePoolStats(acquired, idle, total)
}

// Handler returns an HTTP handler serving the custom registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}
