/*
PURPOSE:
  Defines the root Cobra command for the Bench Runner CLI.
  Handles global flags, .env loading and command initialization.

REQUIREMENTS:
  User-specified:
  - Provide a CLI interface.
  - Support global flags like --config.

  Implementation-discovered:
  - Needs to expose an Execute() function for main.go.
  - Flags and BENCH_* environment variables override the YAML file.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/bench-runner/main.go
  - Calls: Child commands (run, frameworks, infra)

ERROR HANDLING:
  - Returns error to main.go for exit code handling.
  - ErrTestsFailed signals a completed run with failing tests.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for flags available to all subcommands.
  - Keep Run logic in subcommands, Root is usually empty or helps.

RELATED FILES:
  - cmd/bench-runner/main.go
  - internal/cli/settings.go
*/

package cli

import (
	"errors"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ErrTestsFailed is returned by the run command when at least one test failed.
var ErrTestsFailed = errors.New("inference tests failed")

var (
	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile string

	// settings layers flags and BENCH_* environment variables over the config file.
	settings = viper.New()

	rootCmd = &cobra.Command{
		Use:   "bench-runner",
		Short: "Run inference benchmarks across ML frameworks",
		Long: `Runs a list of inference benchmark tests against framework wrappers
(OpenVINO, ONNX Runtime, PyTorch, TensorFlow, ...) on the host machine or inside a
Docker container, and writes one result row per test. Use 'run --help' for options.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file with settings and tests (default is ./bench_runner.yaml)")
}

func initConfig() {
	// A missing .env is normal.
	_ = godotenv.Load()

	settings.SetEnvPrefix("BENCH")
	settings.AutomaticEnv()
}
