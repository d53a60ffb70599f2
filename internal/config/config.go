/*
PURPOSE:
  Defines the configuration structure and loading logic for Bench Runner.
  Adheres to "Config IS Code" philosophy.

REQUIREMENTS:
  User-specified:
  - Choose the executor, benchmark directories, result file and delimiter.
  - Provide the list of tests to run.

  Implementation-discovered:
  - Needs to support YAML parsing.
  - Needs to support flag and environment overrides (BENCH_...), applied in internal/cli.
  - Tests can be inline in the settings file or live in their own file.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli
  - Dependencies: gopkg.in/yaml.v3 (standard for Go config)

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - Missing default file falls back to defaults.

IMPLEMENTATION RULES:
  - Config struct tags should support yaml; keys double as viper keys.
  - Defaults should be sensible (e.g., ';' delimiter, host executor).

USAGE:
  cfg, err := config.Load("bench_runner.yaml")
  tests, err := config.LoadTests(cfg.TestsFile)

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add to Config struct, DefaultConfig() and the cli overrides.

RELATED FILES:
  - internal/cli/run.go

MAINTENANCE:
  - Update when adding new tuning parameters.
*/

package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/daryltucker/bench-runner/internal/model"
)

// DefaultFiles are searched in order when no config path is given.
var DefaultFiles = []string{"bench_runner.yaml", "runner.yaml"}

// Config represents the full configuration for Bench Runner.
type Config struct {
	ExecutorType   string   `yaml:"executor_type"`
	ContainerName  string   `yaml:"container_name"`
	ContainerImage string   `yaml:"container_image"`
	Mounts         []string `yaml:"mounts"`

	CppBenchmarksDir        string `yaml:"cpp_benchmarks_dir"`
	OpenVINOCppBenchmarkDir string `yaml:"openvino_cpp_benchmark_dir"`
	// LauncherDir holds the Python launcher scripts; it is unrelated to the C++ dirs.
	LauncherDir string `yaml:"launcher_dir"`

	ResultFile     string `yaml:"result_file"`
	CSVDelimiter   string `yaml:"csv_delimiter"`
	JSONResultFile string `yaml:"json_result_file"`
	ResultDB       string `yaml:"result_db"`
	MetricsFile    string `yaml:"metrics_file"`

	Timeout time.Duration `yaml:"timeout"`
	Workers int           `yaml:"workers"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	TestsFile string           `yaml:"tests_file"`
	Tests     []model.TestSpec `yaml:"tests"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ExecutorType: "host_machine",
		ResultFile:   "result.csv",
		CSVDelimiter: ";",
		Timeout:      0,
		Workers:      1,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches for default files in order.
// If no file found, returns default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
	} else {
		found := false
		for _, name := range DefaultFiles {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name
				found = true
				break
			}
		}
		if !found {
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// Delimiter returns the CSV delimiter as a rune.
func (c *Config) Delimiter() (rune, error) {
	if c.CSVDelimiter == "" {
		return ';', nil
	}
	r, size := utf8.DecodeRuneInString(c.CSVDelimiter)
	if size != len(c.CSVDelimiter) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("csv delimiter must be a single character other than quote or newline, got %q", c.CSVDelimiter)
	}
	return r, nil
}

// Validate checks settings that would otherwise fail deep inside a run.
// The executor type is checked by the executor factory so that an invalid
// kind is reported the same way from every entry point.
func (c *Config) Validate() error {
	var errs []error
	if c.ResultFile == "" {
		errs = append(errs, errors.New("result file is required"))
	}
	if _, err := c.Delimiter(); err != nil {
		errs = append(errs, err)
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative, got %s", c.Timeout))
	}
	return errors.Join(errs...)
}

// ResolveTests returns the inline tests, or loads TestsFile when set.
func (c *Config) ResolveTests() ([]model.TestSpec, error) {
	if c.TestsFile != "" {
		return LoadTests(c.TestsFile)
	}
	if err := NormalizeTests(c.Tests); err != nil {
		return nil, err
	}
	return c.Tests, nil
}
