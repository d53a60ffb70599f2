/*
PURPOSE:
  Defines the 'infra' subcommand.
  Helps debug executor selection and container connectivity.

REQUIREMENTS:
  Implementation-discovered:
  - Useful validation step before a long run.

ARCHITECTURE INTEGRATION:
  - Calls: internal/executor.New(), Executor.Infrastructure()

ERROR HANDLING:
  - Returns the executor resolution error (unsupported kind, daemon unreachable).

USAGE:
  bench-runner infra --executor-type docker_container --container-name dli
*/

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daryltucker/bench-runner/internal/executor"
	"github.com/daryltucker/bench-runner/internal/output"
)

var infraFlagKeys = map[string]string{
	"executor-type":   "executor_type",
	"container-name":  "container_name",
	"container-image": "container_image",
	"mount":           "mounts",
}

var infraCmd = &cobra.Command{
	Use:   "infra",
	Short: "Resolve the executor and print the infrastructure tests would run on",
	PreRun: func(cmd *cobra.Command, args []string) {
		bindFlags(settings, cmd.Flags(), infraFlagKeys)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := output.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return err
		}

		ex, err := executor.New(cmd.Context(), executor.Kind(cfg.ExecutorType), executorOptions(cfg, logger))
		if err != nil {
			return err
		}
		defer closeExecutor(ex, logger)

		if c, ok := ex.(interface{ Check(context.Context) error }); ok {
			if err := c.Check(cmd.Context()); err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", ex.Kind(), ex.Infrastructure(cmd.Context()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infraCmd)
	infraCmd.Flags().String("executor-type", "", "Environment to execute tests: host_machine, docker_container")
	infraCmd.Flags().String("container-name", "", "Name of the running container (docker_container executor)")
	infraCmd.Flags().String("container-image", "", "Image to start the container from when it does not exist")
	infraCmd.Flags().StringSlice("mount", nil, "host:container bind mounts for a container started from --container-image")
}
