/*
PURPOSE:
  Entry point for the Bench Runner application.
  Initializes the CLI root command and executes it.

REQUIREMENTS:
  User-specified:
  - Must serve as the single binary entry point.
  - Exit status 0 only when every test succeeded, 1 otherwise.

ARCHITECTURE INTEGRATION:
  - Calls: internal/cli.Execute()

ERROR HANDLING:
  - Explicit error check on Execute(); exit code 1 on failure.
  - A run with failing tests already logged its failures, so only the summary line is printed.

IMPLEMENTATION RULES:
  - Critical: Keep main() minimal. All logic belongs in internal/ packages.

USAGE:
  go build -o bench-runner ./cmd/bench-runner
  ./bench-runner run -c tests.yaml -r result.csv
*/

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/daryltucker/bench-runner/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		if errors.Is(err, cli.ErrTestsFailed) {
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
