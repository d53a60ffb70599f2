package cli

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/daryltucker/bench-runner/internal/config"
)

// bindFlags binds each flag to the viper key of the same config field.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for flag, key := range keys {
		if f := flags.Lookup(flag); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

// applyOverrides copies every key set by flag or environment onto cfg.
func applyOverrides(v *viper.Viper, cfg *config.Config) {
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	str("executor_type", &cfg.ExecutorType)
	str("container_name", &cfg.ContainerName)
	str("container_image", &cfg.ContainerImage)
	str("cpp_benchmarks_dir", &cfg.CppBenchmarksDir)
	str("openvino_cpp_benchmark_dir", &cfg.OpenVINOCppBenchmarkDir)
	str("launcher_dir", &cfg.LauncherDir)
	str("result_file", &cfg.ResultFile)
	str("csv_delimiter", &cfg.CSVDelimiter)
	str("json_result_file", &cfg.JSONResultFile)
	str("result_db", &cfg.ResultDB)
	str("metrics_file", &cfg.MetricsFile)
	str("log_level", &cfg.LogLevel)
	str("log_format", &cfg.LogFormat)
	str("tests_file", &cfg.TestsFile)

	if v.IsSet("mounts") {
		cfg.Mounts = v.GetStringSlice("mounts")
	}
	if v.IsSet("timeout") {
		cfg.Timeout = v.GetDuration("timeout")
	}
	if v.IsSet("workers") {
		cfg.Workers = v.GetInt("workers")
	}
}

// loadConfig loads the config file and applies flag/env overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	applyOverrides(settings, cfg)
	return cfg, nil
}
