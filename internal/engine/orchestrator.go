/*
PURPOSE:
  High-level runner that orchestrates the benchmarking process.
  Resolves the executor once, then loops Tests -> Wrapper -> Process -> Row.

REQUIREMENTS:
  User-specified:
  - Run every test in the list and record exactly one row per test.
  - A failing test never stops the run; only an invalid executor does.
  - Run status is Failure as soon as any test fails and stays that way.

  Implementation-discovered:
  - Per-test timeout so a hung benchmark cannot block the run.
  - Optional bounded worker pool for independent tests.
  - Tests not started because the run was interrupted still get a row.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/executor, internal/framework, internal/process, internal/output, internal/metrics
  - Uses: github.com/sourcegraph/conc/pool for the bounded parallel variant

ERROR HANDLING:
  - Logs errors but continues (resilience).
  - Per-test failures are explicit outcome values, classified into a row Cause.
  - Returns an error only when the executor cannot be resolved.

IMPLEMENTATION RULES:
  - Resolve executor before the loop; zero rows on failure.
  - Record the row immediately after each test.

USAGE:
  status, err := orchestrator.Run(ctx, executor.KindHost, tests)

RELATED FILES:
  - internal/framework/registry.go

MAINTENANCE:
  - Keep the row-per-test invariant when touching the sequential loop or the parallel variant.
*/

package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/daryltucker/bench-runner/internal/executor"
	"github.com/daryltucker/bench-runner/internal/framework"
	"github.com/daryltucker/bench-runner/internal/metrics"
	"github.com/daryltucker/bench-runner/internal/model"
	"github.com/daryltucker/bench-runner/internal/process"
)

// ExecutorFactory resolves an executor kind. executor.New satisfies it via a closure.
type ExecutorFactory func(ctx context.Context, kind executor.Kind) (executor.Executor, error)

// RowRecorder persists result rows.
type RowRecorder interface {
	AddRow(row model.ResultRow) error
}

// Orchestrator runs a list of tests.
type Orchestrator struct {
	Registry    *framework.Registry
	PathRule    framework.PathRule
	Output      RowRecorder
	NewExecutor ExecutorFactory
	Logger      *slog.Logger
	Metrics     *metrics.Metrics

	// RunID is copied onto every row.
	RunID string
	// Timeout bounds each test unless the test sets its own. Zero disables it.
	Timeout time.Duration
	// Workers > 1 runs tests concurrently; rows are then recorded in completion order.
	Workers int
}

// outcome is the result of resolving and executing one test.
type outcome struct {
	proc  *process.TestProcess
	cause model.Cause
	err   error
}

// Run executes tests and returns the aggregate status. The error is non-nil
// only when the executor could not be resolved, in which case no row is written.
func (o *Orchestrator) Run(ctx context.Context, kind executor.Kind, tests []model.TestSpec) (model.ExecutionStatus, error) {
	logger := o.logger()

	ex, err := o.NewExecutor(ctx, kind)
	if err != nil {
		logger.Error("Failed to resolve executor", "executor", string(kind), "error", err)
		o.Metrics.SetRunStatus(model.Failure)
		return model.Failure, err
	}

	infra := ex.Infrastructure(ctx)
	logger.Info("Starting inference tests", "count", len(tests), "executor", string(ex.Kind()), "infrastructure", infra)

	var failed atomic.Bool
	runAndRecord := func(i int, test model.TestSpec) {
		row := o.runOne(ctx, ex, infra, i, test)
		if row.Status != model.Success {
			failed.Store(true)
		}
		logger.Info("Saving test result", "index", i, "test", test.String(), "status", row.Status.String())
		if err := o.Output.AddRow(row); err != nil {
			logger.Error("Failed to save test result", "index", i, "test", test.String(), "error", err)
			failed.Store(true)
		}
		o.Metrics.TestFinished(row)
	}

	if o.Workers <= 1 {
		for i, test := range tests {
			runAndRecord(i, test)
		}
	} else {
		p := pool.New().WithMaxGoroutines(o.Workers)
		for i, test := range tests {
			p.Go(func() { runAndRecord(i, test) })
		}
		p.Wait()
	}

	status := model.Success
	if failed.Load() {
		status = model.Failure
	}
	o.Metrics.SetRunStatus(status)
	return status, nil
}

// runOne turns a test into its result row.
func (o *Orchestrator) runOne(ctx context.Context, ex executor.Executor, infra string, i int, test model.TestSpec) model.ResultRow {
	logger := o.logger().With("index", i, "test", test.String())
	o.Metrics.TestStarted()

	row := model.ResultRow{
		RunID:          o.RunID,
		Index:          i,
		Executor:       string(ex.Kind()),
		Infrastructure: infra,
		Test:           test,
		Status:         model.Failure,
		ExitCode:       -1,
		StartedAt:      time.Now(),
	}

	if ctx.Err() != nil {
		row.Cause = model.CauseCancelled
		row.Error = "run cancelled before the test started"
		logger.Warn("Skipping test, run cancelled")
		return row
	}

	logger.Info("Running test", "framework", test.Framework, "model", test.Model.Name, "device", test.Parameters.Device)
	out := o.runTest(ctx, ex, test)

	if out.proc != nil {
		row.Command = out.proc.Command().String()
		row.ExitCode = out.proc.ExitCode()
		row.Duration = out.proc.Duration()
	}

	if out.err != nil {
		row.Cause = out.cause
		row.Error = out.err.Error()
		logger.Error("Inference failed with exception", "cause", string(out.cause), "error", out.err)
		return row
	}

	row.Status = out.proc.Status()
	row.Metrics = out.proc.Metrics()
	if row.Status != model.Success {
		row.Cause = model.CauseNonZeroExit
		row.Error = fmt.Sprintf("exit code %d", row.ExitCode)
		logger.Error("Test finished with non-zero code", "exit_code", row.ExitCode, "output", tail(out.proc.Output(), 2048))
		return row
	}

	if err := out.proc.ParseError(); err != nil {
		logger.Warn("Could not parse benchmark metrics", "error", err)
	}
	logger.Info("Test finished", "duration", row.Duration, "fps", row.Metrics.FPS)
	return row
}

// runTest resolves the wrapper, builds the process and executes it. Any
// failure, including a panicking wrapper, is returned as a classified outcome.
func (o *Orchestrator) runTest(ctx context.Context, ex executor.Executor, test model.TestSpec) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = outcome{proc: out.proc, cause: model.CauseCreateError, err: fmt.Errorf("panic: %v", r)}
		}
	}()

	wrapper, err := o.Registry.Lookup(test.Framework)
	if err != nil {
		return outcome{cause: model.CauseUnknownFramework, err: err}
	}

	benchmarksPath := ""
	if o.PathRule != nil {
		benchmarksPath = o.PathRule.Select(test.Framework)
	}

	proc, err := wrapper.CreateProcess(test, ex, benchmarksPath)
	if err != nil {
		cause := model.CauseCreateError
		if errors.Is(err, framework.ErrMissingBenchmarks) {
			cause = model.CauseMissingBenchmarks
		}
		return outcome{cause: cause, err: err}
	}

	timeout := o.Timeout
	if test.Timeout > 0 {
		timeout = test.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := proc.Execute(ctx); err != nil {
		return outcome{proc: proc, cause: classifyExecError(err), err: err}
	}
	return outcome{proc: proc}
}

func classifyExecError(err error) model.Cause {
	switch {
	case errors.Is(err, executor.ErrTimeout):
		return model.CauseTimeout
	case errors.Is(err, context.Canceled):
		return model.CauseCancelled
	default:
		return model.CauseSpawnError
	}
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
