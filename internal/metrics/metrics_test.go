package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/bench-runner/internal/model"
)

func row(framework string, status model.ExecutionStatus, cause model.Cause, exitCode int) model.ResultRow {
	return model.ResultRow{
		Test:     model.TestSpec{Framework: framework},
		Status:   status,
		Cause:    cause,
		ExitCode: exitCode,
		Duration: 2 * time.Second,
	}
}

func TestMetrics_TestLifecycle(t *testing.T) {
	m := New()

	m.TestStarted()
	m.TestStarted()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TestsInProgress))

	m.TestFinished(row("PyTorch", model.Success, model.CauseNone, 0))
	m.TestFinished(row("PyTorch", model.Failure, model.CauseUnknownFramework, -1))

	assert.Equal(t, 0.0, testutil.ToFloat64(m.TestsInProgress))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TestsTotal.WithLabelValues("PyTorch", "Success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TestsTotal.WithLabelValues("PyTorch", "Failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TestFailures.WithLabelValues("PyTorch", "unknown_framework")))

	// Only the test that actually ran has a duration sample.
	assert.Equal(t, 1, testutil.CollectAndCount(m.TestDuration))
}

func TestMetrics_RunStatus(t *testing.T) {
	m := New()
	m.SetRunStatus(model.Failure)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunStatus))
	m.SetRunStatus(model.Success)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RunStatus))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.TestStarted()
		m.TestFinished(row("Caffe", model.Failure, model.CauseTimeout, -1))
		m.SetRunStatus(model.Failure)
	})
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.TestFinished(row("MXNet", model.Success, model.CauseNone, 0))
	m.SetRunStatus(model.Success)

	path := filepath.Join(t.TempDir(), "bench.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `bench_runner_tests_total{framework="MXNet",status="Success"} 1`)
	assert.Contains(t, string(data), "bench_runner_run_status 0")
}
