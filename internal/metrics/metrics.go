// Package metrics exposes Prometheus collectors describing a benchmark run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/daryltucker/bench-runner/internal/model"
)

// Metrics holds the collectors of one run. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	TestsTotal      *prometheus.CounterVec
	TestFailures    *prometheus.CounterVec
	TestDuration    *prometheus.HistogramVec
	TestsInProgress prometheus.Gauge
	RunStatus       prometheus.Gauge
}

// New creates and registers the run collectors on a private registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.TestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bench_runner_tests_total",
			Help: "Total number of benchmark tests recorded",
		},
		[]string{"framework", "status"},
	)

	m.TestFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bench_runner_test_failures_total",
			Help: "Failed benchmark tests by cause",
		},
		[]string{"framework", "cause"},
	)

	m.TestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bench_runner_test_duration_seconds",
			Help:    "Wall clock duration of benchmark processes",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"framework"},
	)

	m.TestsInProgress = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bench_runner_tests_in_progress",
			Help: "Number of benchmark tests currently executing",
		},
	)

	m.RunStatus = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bench_runner_run_status",
			Help: "Aggregate run status (0=success, 1=failure)",
		},
	)

	m.registry.MustRegister(m.TestsTotal, m.TestFailures, m.TestDuration, m.TestsInProgress, m.RunStatus)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// TestStarted marks a test as executing.
func (m *Metrics) TestStarted() {
	if m == nil {
		return
	}
	m.TestsInProgress.Inc()
}

// TestFinished records a persisted row.
func (m *Metrics) TestFinished(row model.ResultRow) {
	if m == nil {
		return
	}
	m.TestsInProgress.Dec()
	m.TestsTotal.WithLabelValues(row.Test.Framework, row.Status.String()).Inc()
	if row.Status != model.Success {
		m.TestFailures.WithLabelValues(row.Test.Framework, string(row.Cause)).Inc()
	}
	if row.ExitCode >= 0 {
		m.TestDuration.WithLabelValues(row.Test.Framework).Observe(row.Duration.Seconds())
	}
}

// SetRunStatus records the aggregate status.
func (m *Metrics) SetRunStatus(status model.ExecutionStatus) {
	if m == nil {
		return
	}
	m.RunStatus.Set(float64(status))
}

// WriteTextfile writes all collectors in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
