package output

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/daryltucker/bench-runner/internal/model"
)

// openHandler returns a Handler that skips CreateTable and writes to sinks.
func openHandler(sinks ...Sink) *Handler {
	return &Handler{sinks: sinks, open: true}
}

func countRun(t *testing.T, store *SQLiteStore, runID string) int {
	t.Helper()
	var n int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM results WHERE run_id = ?`, runID).Scan(&n))
	return n
}

func sampleRow(i int, status model.ExecutionStatus) model.ResultRow {
	row := model.ResultRow{
		RunID:          "run-1",
		Index:          i,
		Executor:       "host_machine",
		Infrastructure: "host=bench01",
		Test: model.TestSpec{
			Framework:  "OpenVINO DLDT",
			Model:      model.ModelInfo{Name: "resnet-50", Task: "classification", Precision: "FP32"},
			Dataset:    model.Dataset{Name: "imagenet"},
			Parameters: model.Parameters{Device: "CPU", BatchSize: 2, Iterations: 10},
			Extra:      map[string]string{"nthreads": "4"},
		},
		Status:    status,
		ExitCode:  0,
		Command:   "python3 inference_sync_mode.py -m resnet-50.xml",
		StartedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Metrics:   model.Metrics{AverageTime: 0.0125, Latency: 0.012, FPS: 160},
	}
	if status != model.Success {
		row.ExitCode = -1
		row.Cause = model.CauseUnknownFramework
		row.Error = `unknown framework: "x"`
		row.Metrics = model.Metrics{}
	}
	return row
}
