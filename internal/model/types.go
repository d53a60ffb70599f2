/*
PURPOSE:
  Defines the core data structures used throughout Bench Runner.
  These models describe a benchmark test, its outcome and the persisted result row.

REQUIREMENTS:
  User-specified:
  - One result row per test, whether the test passed, failed or never started.
  - Track framework, model, dataset, device, batch size and independent parameters.
  - Record average time, latency and FPS when the benchmark reports them.

  Implementation-discovered:
  - Status must collapse any non-zero exit code into a single Failure value.
  - Rows need a failure cause so unknown frameworks and timeouts are distinguishable in the table.

ARCHITECTURE INTEGRATION:
  - Used by: internal/config, internal/framework, internal/process, internal/engine, internal/output
  - Shared across boundaries.

ERROR HANDLING:
  - None (pure data structs).

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - TestSpec is read-only after loading; ResultRow is never mutated after AddRow.

USAGE:
  row := model.ResultRow{Test: spec, Status: model.Success}

SELF-HEALING INSTRUCTIONS:
  - If new metrics are needed, add field and update CSV/JSON/SQLite sinks.

RELATED FILES:
  - internal/output/csv.go
  - internal/output/sqlite.go

MAINTENANCE:
  - Update when adding new columns to the result table.
*/

package model

import (
	"fmt"
	"time"
)

// ExecutionStatus is the outcome of a single test or of a whole run.
type ExecutionStatus int

const (
	Success ExecutionStatus = 0
	Failure ExecutionStatus = 1
)

// StatusFromExitCode maps a process exit code onto the two-value status domain.
func StatusFromExitCode(code int) ExecutionStatus {
	if code == 0 {
		return Success
	}
	return Failure
}

func (s ExecutionStatus) String() string {
	if s == Success {
		return "Success"
	}
	return "Failure"
}

// Cause classifies why a test failed.
type Cause string

const (
	CauseNone              Cause = ""
	CauseUnknownFramework  Cause = "unknown_framework"
	CauseMissingBenchmarks Cause = "missing_benchmarks"
	CauseCreateError       Cause = "create_error"
	CauseSpawnError        Cause = "spawn_error"
	CauseTimeout           Cause = "timeout"
	CauseNonZeroExit       Cause = "non_zero_exit"
	CauseCancelled         Cause = "cancelled"
)

// ModelInfo describes the network under test.
type ModelInfo struct {
	Name            string `yaml:"name" json:"name"`
	Task            string `yaml:"task" json:"task,omitempty"`
	SourceFramework string `yaml:"source_framework" json:"source_framework,omitempty"`
	Path            string `yaml:"path" json:"path"`
	Weights         string `yaml:"weights" json:"weights,omitempty"`
	Precision       string `yaml:"precision" json:"precision,omitempty"`
}

// Dataset describes the input data fed to the model.
type Dataset struct {
	Name string `yaml:"name" json:"name,omitempty"`
	Path string `yaml:"path" json:"path,omitempty"`
}

// Parameters are the framework-independent run parameters.
type Parameters struct {
	Device     string `yaml:"device" json:"device"`
	BatchSize  int    `yaml:"batch_size" json:"batch_size"`
	Iterations int    `yaml:"iterations" json:"iterations"`
	Mode       string `yaml:"mode" json:"mode,omitempty"`
}

// TestSpec describes one benchmark run.
type TestSpec struct {
	Framework  string            `yaml:"framework" json:"framework"`
	Model      ModelInfo         `yaml:"model" json:"model"`
	Dataset    Dataset           `yaml:"dataset" json:"dataset"`
	Parameters Parameters        `yaml:"parameters" json:"parameters"`
	Extra      map[string]string `yaml:"framework_parameters" json:"framework_parameters,omitempty"`
	// Timeout overrides the run-wide per-test timeout when non-zero.
	Timeout time.Duration `yaml:"timeout" json:"timeout,omitempty"`
}

// String returns a short identity used in log lines.
func (t TestSpec) String() string {
	return fmt.Sprintf("%s/%s/%s/b%d", t.Framework, t.Model.Name, t.Parameters.Device, t.Parameters.BatchSize)
}

// Metrics are the performance numbers reported by a benchmark.
// Zero means "not reported".
type Metrics struct {
	AverageTime float64 `json:"average_time"` // seconds
	Latency     float64 `json:"latency"`      // seconds
	FPS         float64 `json:"fps"`
}

// Empty reports whether no metric was captured.
func (m Metrics) Empty() bool {
	return m.AverageTime == 0 && m.Latency == 0 && m.FPS == 0
}

// ResultRow is one persisted record describing the outcome of a single test.
type ResultRow struct {
	RunID          string          `json:"run_id"`
	Index          int             `json:"index"`
	Executor       string          `json:"executor"`
	Infrastructure string          `json:"infrastructure"`
	Test           TestSpec        `json:"test"`
	Status         ExecutionStatus `json:"status"`
	// ExitCode is -1 when no process ran.
	ExitCode  int           `json:"exit_code"`
	Cause     Cause         `json:"cause,omitempty"`
	Error     string        `json:"error,omitempty"`
	Command   string        `json:"command,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Metrics   Metrics       `json:"metrics"`
}
