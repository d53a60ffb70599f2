//go:build !windows

package cli

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/daryltucker/bench-runner/internal/config"
	"github.com/daryltucker/bench-runner/internal/executor"
	"github.com/daryltucker/bench-runner/internal/framework"
	"github.com/daryltucker/bench-runner/internal/model"
	"github.com/daryltucker/bench-runner/internal/process"
)

// shellWrapper runs the test's model path as a shell script.
type shellWrapper struct{}

func (shellWrapper) CreateProcess(test model.TestSpec, ex executor.Executor, benchmarksPath string) (*process.TestProcess, error) {
	cmd := executor.Command{Name: "sh", Args: []string{"-c", test.Model.Path}}
	return process.New(test, ex, cmd, process.ParseJSONMetrics), nil
}

func testRegistry() *framework.Registry {
	r := framework.NewRegistry()
	r.MustRegister("shell", shellWrapper{})
	return r
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	r := csv.NewReader(f)
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func shellTest(script string) model.TestSpec {
	return model.TestSpec{Framework: "shell", Model: model.ModelInfo{Name: "m", Path: script}}
}

func TestRunBenchmarks_RowPerTest(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.ResultFile = filepath.Join(dir, "result.csv")
	cfg.ResultDB = filepath.Join(dir, "result.db")
	cfg.MetricsFile = filepath.Join(dir, "bench.prom")
	cfg.Tests = []model.TestSpec{
		shellTest(`echo '{"fps": 42}'`),
		{Framework: "unknown_fw", Model: model.ModelInfo{Name: "m"}},
		shellTest("exit 3"),
	}

	var logs, summary bytes.Buffer
	status, err := runBenchmarks(context.Background(), cfg, testRegistry(), &logs, &summary)
	require.NoError(t, err)
	assert.Equal(t, model.Failure, status)

	records := readRows(t, cfg.ResultFile)
	require.Len(t, records, 4)
	assert.Equal(t, "Success", records[1][2])
	assert.Equal(t, "Failure", records[2][2])
	assert.Equal(t, "unknown_framework", records[2][3])
	assert.Equal(t, "Failure", records[3][2])
	assert.Equal(t, "non_zero_exit", records[3][3])

	// Every row of a run carries the same run id.
	assert.NotEmpty(t, records[1][0])
	assert.Equal(t, records[1][0], records[3][0])

	db, err := sql.Open("sqlite", cfg.ResultDB)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM results WHERE run_id = ?`, records[1][0]).Scan(&n))
	assert.Equal(t, 3, n)

	prom, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "bench_runner_run_status 1")

	assert.Contains(t, strings.ToLower(summary.String()), "1/3 passed")
	assert.Contains(t, logs.String(), "Inference failed with exception")
}

func TestRunBenchmarks_AllPass(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ResultFile = filepath.Join(t.TempDir(), "result.csv")
	cfg.Workers = 2
	cfg.Tests = []model.TestSpec{shellTest("true"), shellTest("exit 0")}

	status, err := runBenchmarks(context.Background(), cfg, testRegistry(), &bytes.Buffer{}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.Success, status)
	assert.Len(t, readRows(t, cfg.ResultFile), 3)
}

func TestRunBenchmarks_Timeout(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ResultFile = filepath.Join(t.TempDir(), "result.csv")
	cfg.Timeout = 200 * time.Millisecond
	cfg.Tests = []model.TestSpec{shellTest("sleep 30"), shellTest("true")}

	status, err := runBenchmarks(context.Background(), cfg, testRegistry(), &bytes.Buffer{}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.Failure, status)

	records := readRows(t, cfg.ResultFile)
	require.Len(t, records, 3)
	assert.Equal(t, "timeout", records[1][3])
	assert.Equal(t, "Success", records[2][2])
}

func TestRunBenchmarks_InvalidExecutor(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ResultFile = filepath.Join(t.TempDir(), "result.csv")
	cfg.ExecutorType = "virtual_machine"
	cfg.Tests = []model.TestSpec{shellTest("true")}

	status, err := runBenchmarks(context.Background(), cfg, testRegistry(), &bytes.Buffer{}, nil)
	require.ErrorIs(t, err, executor.ErrUnsupportedKind)
	assert.Equal(t, model.Failure, status)

	// The table exists but holds only the header.
	assert.Len(t, readRows(t, cfg.ResultFile), 1)
}

func TestRunBenchmarks_InvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ResultFile = filepath.Join(t.TempDir(), "result.csv")
	cfg.Workers = 0

	_, err := runBenchmarks(context.Background(), cfg, testRegistry(), &bytes.Buffer{}, nil)
	require.Error(t, err)
	_, statErr := os.Stat(cfg.ResultFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestApplyOverrides(t *testing.T) {
	t.Setenv("BENCH_WORKERS", "3")
	t.Setenv("BENCH_RESULT_FILE", "env.csv")
	t.Setenv("BENCH_LAUNCHER_DIR", "/opt/launchers")

	v := viper.New()
	v.SetEnvPrefix("BENCH")
	v.AutomaticEnv()

	f := runCmd.Flags()
	require.NoError(t, f.Set("executor-type", "docker_container"))
	require.NoError(t, f.Set("timeout", "2m"))
	t.Cleanup(func() {
		f.Set("executor-type", "")
		f.Set("timeout", "0s")
		f.Lookup("executor-type").Changed = false
		f.Lookup("timeout").Changed = false
	})
	bindFlags(v, f, runFlagKeys)

	cfg := config.DefaultConfig()
	cfg.LogLevel = "debug"
	applyOverrides(v, cfg)

	assert.Equal(t, "docker_container", cfg.ExecutorType)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "env.csv", cfg.ResultFile)
	assert.Equal(t, "/opt/launchers", cfg.LauncherDir)
	// Keys set neither by flag nor environment keep the file value.
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ";", cfg.CSVDelimiter)
}
