package framework

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/daryltucker/bench-runner/internal/executor"
	"github.com/daryltucker/bench-runner/internal/model"
	"github.com/daryltucker/bench-runner/internal/process"
)

// DefaultLauncherDir is where launcher scripts are looked up when Dir is empty.
const DefaultLauncherDir = "inference"

// LauncherWrapper runs a Python launcher script for frameworks exposing a Python API.
// Launchers ship with bench-runner, so the benchmarks path given to CreateProcess
// (a directory of pre-built C++ apps) is not used.
type LauncherWrapper struct {
	Script      string
	Dir         string
	Interpreter string
}

func (w LauncherWrapper) Describe() string { return "python launcher " + w.Script }

// CreateProcess builds `python3 <dir>/<script> -m ... -b ... -d ...`.
func (w LauncherWrapper) CreateProcess(test model.TestSpec, ex executor.Executor, _ string) (*process.TestProcess, error) {
	if err := requireModel(test); err != nil {
		return nil, err
	}

	dir := w.Dir
	if dir == "" {
		dir = DefaultLauncherDir
	}
	interpreter := w.Interpreter
	if interpreter == "" {
		interpreter = "python3"
	}

	args := []string{filepath.Join(dir, w.Script), "-m", test.Model.Path}
	if test.Model.Weights != "" {
		args = append(args, "-w", test.Model.Weights)
	}
	if test.Dataset.Path != "" {
		args = append(args, "-i", test.Dataset.Path)
	}
	args = append(args, commonArgs(test, "-ni")...)
	if test.Parameters.Mode != "" {
		args = append(args, "--mode", test.Parameters.Mode)
	}
	args = append(args, extraArgs(test.Extra, "--")...)

	cmd := executor.Command{Name: interpreter, Args: args}
	return process.New(test, ex, cmd, process.ParseJSONMetrics), nil
}

// BinaryWrapper runs a pre-built C++ benchmark application from the benchmarks directory.
type BinaryWrapper struct {
	Binary string
}

func (w BinaryWrapper) Describe() string { return "c++ benchmark " + w.Binary }

// CreateProcess builds `<benchmarksPath>/<binary> -m ... -d ... -b ... -niter ...`.
func (w BinaryWrapper) CreateProcess(test model.TestSpec, ex executor.Executor, benchmarksPath string) (*process.TestProcess, error) {
	if benchmarksPath == "" {
		return nil, fmt.Errorf("%w: %s needs a directory with %s", ErrMissingBenchmarks, test.Framework, w.Binary)
	}
	if err := requireModel(test); err != nil {
		return nil, err
	}

	args := []string{"-m", test.Model.Path}
	if test.Dataset.Path != "" {
		args = append(args, "-i", test.Dataset.Path)
	}
	args = append(args, commonArgs(test, "-niter")...)
	args = append(args, extraArgs(test.Extra, "-")...)

	cmd := executor.Command{Name: filepath.Join(benchmarksPath, w.Binary), Args: args}
	return process.New(test, ex, cmd, process.ParseBenchmarkAppMetrics), nil
}

func requireModel(test model.TestSpec) error {
	if test.Model.Path == "" {
		return fmt.Errorf("%w: model path is empty for %s", ErrInvalidTest, test)
	}
	return nil
}

func commonArgs(test model.TestSpec, iterFlag string) []string {
	var args []string
	if test.Parameters.Device != "" {
		args = append(args, "-d", test.Parameters.Device)
	}
	if test.Parameters.BatchSize > 0 {
		args = append(args, "-b", strconv.Itoa(test.Parameters.BatchSize))
	}
	if test.Parameters.Iterations > 0 {
		args = append(args, iterFlag, strconv.Itoa(test.Parameters.Iterations))
	}
	return args
}

// extraArgs renders framework parameters in a stable order.
func extraArgs(extra map[string]string, prefix string) []string {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		args = append(args, prefix+k)
		if v := extra[k]; v != "" {
			args = append(args, v)
		}
	}
	return args
}
