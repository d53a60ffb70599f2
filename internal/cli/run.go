/*
PURPOSE:
  Defines the 'run' subcommand.
  Executes the full benchmark test list.

REQUIREMENTS:
  User-specified:
  - Run the benchmarks.
  - Specific flags for overrides.
  - Exit status 0 only when every test succeeded.

  Implementation-discovered:
  - Need to load config first.
  - Apply flag/env overrides to config.
  - Ctrl-C stops dispatching; the remaining tests are recorded as cancelled.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Orchestrator.Run()
  - Uses: internal/config, internal/output, internal/metrics, internal/framework

ERROR HANDLING:
  - Returns error if config load fails or the executor cannot be resolved.
  - Returns ErrTestsFailed if any test failed.

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Override -> Create Table -> Orchestrator.Run -> Summary.

USAGE:
  bench-runner run -c tests.yaml -r result.csv --executor-type host_machine

RELATED FILES:
  - internal/cli/root.go
  - internal/engine/orchestrator.go
*/

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/daryltucker/bench-runner/internal/config"
	"github.com/daryltucker/bench-runner/internal/engine"
	"github.com/daryltucker/bench-runner/internal/executor"
	"github.com/daryltucker/bench-runner/internal/framework"
	"github.com/daryltucker/bench-runner/internal/metrics"
	"github.com/daryltucker/bench-runner/internal/model"
	"github.com/daryltucker/bench-runner/internal/output"
)

var noSummary bool

var runFlagKeys = map[string]string{
	"executor-type":              "executor_type",
	"container-name":             "container_name",
	"container-image":            "container_image",
	"mount":                      "mounts",
	"cpp-benchmarks-dir":         "cpp_benchmarks_dir",
	"openvino-cpp-benchmark-dir": "openvino_cpp_benchmark_dir",
	"launcher-dir":               "launcher_dir",
	"result":                     "result_file",
	"csv-delimiter":              "csv_delimiter",
	"json-result":                "json_result_file",
	"result-db":                  "result_db",
	"metrics-file":               "metrics_file",
	"timeout":                    "timeout",
	"workers":                    "workers",
	"log-level":                  "log_level",
	"log-format":                 "log_format",
	"tests":                      "tests_file",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the benchmark test list",
	Long: `Executes every test of the test list and writes one result row per test.
The process follows a strict protocol:
1. Executor: resolves the host or container executor once. An invalid executor aborts the run.
2. Tests: for each test, resolves the framework wrapper and benchmarks directory, runs the
   benchmark and records the row immediately. A failing test never stops the run.
3. Summary: prints a results table; the exit status is non-zero if any test failed.`,
	Example: `  # Run the tests of bench_runner.yaml on this machine
  bench-runner run

  # Run inside an existing container with pre-built C++ benchmarks
  bench-runner run -c tests.yaml -r result.csv --executor-type docker_container \
    --container-name dli --cpp-benchmarks-dir /opt/benchmarks

  # Four tests at a time, ten minutes each at most
  bench-runner run --workers 4 --timeout 10m`,
	PreRun: func(cmd *cobra.Command, args []string) {
		bindFlags(settings, cmd.Flags(), runFlagKeys)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		summary := cmd.OutOrStdout()
		if noSummary {
			summary = nil
		}
		status, err := runBenchmarks(ctx, cfg, framework.NewDefaultRegistry(cfg.LauncherDir), os.Stderr, summary)
		if err != nil {
			return err
		}
		if status != model.Success {
			return ErrTestsFailed
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.String("executor-type", "", "Environment to execute tests: host_machine, docker_container")
	f.String("container-name", "", "Name of the running container (docker_container executor)")
	f.String("container-image", "", "Image to start the container from when it does not exist")
	f.StringSlice("mount", nil, "host:container bind mounts for a container started from --container-image")
	f.StringP("cpp-benchmarks-dir", "b", "", "Path to the folder with pre-built C++ benchmark apps")
	f.String("openvino-cpp-benchmark-dir", "", "Path to the folder with pre-built OpenVINO C++ Benchmark App")
	f.String("launcher-dir", "", "Path to the folder with the Python launcher scripts (default ./inference)")
	f.StringP("result", "r", "", "Full name of the resulting file")
	f.String("csv-delimiter", "", "Delimiter to use in the resulting file (default ';')")
	f.String("json-result", "", "Also write results as JSON Lines to this file")
	f.String("result-db", "", "Also append results to this SQLite database")
	f.String("metrics-file", "", "Write Prometheus metrics of the run to this file")
	f.Duration("timeout", 0, "Per-test timeout (0 disables)")
	f.Int("workers", 1, "Number of tests to run concurrently")
	f.String("log-level", "", "Log level: debug, info, warn, error")
	f.String("log-format", "", "Log format: text, json")
	f.StringP("tests", "t", "", "Test list file (overrides tests in the config file)")
	f.BoolVar(&noSummary, "no-summary", false, "Do not print the results table")
}

// runBenchmarks wires all components for one run. Logs go to logw and the
// results table to summary (nil disables it).
func runBenchmarks(ctx context.Context, cfg *config.Config, registry *framework.Registry, logw, summary io.Writer) (model.ExecutionStatus, error) {
	if err := cfg.Validate(); err != nil {
		return model.Failure, err
	}
	logger, err := output.NewLogger(logw, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return model.Failure, err
	}

	tests, err := cfg.ResolveTests()
	if err != nil {
		return model.Failure, err
	}
	if len(tests) == 0 {
		logger.Warn("Test list is empty")
	}

	delimiter, _ := cfg.Delimiter()
	logger.Info("Create result table", "file", cfg.ResultFile)
	handler := output.NewHandler(output.Options{
		CSVPath:   cfg.ResultFile,
		Delimiter: delimiter,
		JSONPath:  cfg.JSONResultFile,
		DBPath:    cfg.ResultDB,
	})
	if err := handler.CreateTable(); err != nil {
		return model.Failure, err
	}
	defer func() {
		if err := handler.Close(); err != nil {
			logger.Error("Failed to close result table", "error", err)
		}
	}()

	var resolved executor.Executor
	m := metrics.New()
	orchestrator := &engine.Orchestrator{
		Registry: registry,
		PathRule: framework.DefaultPathRule(cfg.CppBenchmarksDir, cfg.OpenVINOCppBenchmarkDir),
		Output:   handler,
		NewExecutor: func(ctx context.Context, kind executor.Kind) (executor.Executor, error) {
			ex, err := executor.New(ctx, kind, executorOptions(cfg, logger))
			resolved = ex
			return ex, err
		},
		Logger:  logger,
		Metrics: m,
		RunID:   uuid.NewString(),
		Timeout: cfg.Timeout,
		Workers: cfg.Workers,
	}

	start := time.Now()
	logger.Info("Start inference tests", "count", len(tests), "run_id", orchestrator.RunID)
	status, err := orchestrator.Run(ctx, executor.Kind(cfg.ExecutorType), tests)
	closeExecutor(resolved, logger)
	if err != nil {
		return status, fmt.Errorf("failed to resolve executor: %w", err)
	}

	if summary != nil {
		output.RenderSummary(summary, handler.Rows(), status, time.Since(start))
	}
	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Error("Failed to write metrics file", "file", cfg.MetricsFile, "error", err)
		}
	}

	if status == model.Success {
		logger.Info("Inference tests completed")
	} else {
		logger.Error("Inference tests failed")
	}
	return status, nil
}

func executorOptions(cfg *config.Config, logger *slog.Logger) executor.Options {
	return executor.Options{
		Logger:         logger,
		ContainerName:  cfg.ContainerName,
		ContainerImage: cfg.ContainerImage,
		Mounts:         cfg.Mounts,
	}
}

func closeExecutor(ex executor.Executor, logger *slog.Logger) {
	if c, ok := ex.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.Warn("Failed to close executor", "error", err)
		}
	}
}
