package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daryltucker/bench-runner/internal/framework"
)

var frameworksCmd = &cobra.Command{
	Use:   "frameworks",
	Short: "List framework identifiers accepted in the test list",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := framework.NewDefaultRegistry("")
		out := cmd.OutOrStdout()
		for _, name := range registry.Names() {
			w, _ := registry.Lookup(name)
			if d, ok := w.(framework.Describer); ok {
				fmt.Fprintf(out, "- %s (%s)\n", name, d.Describe())
				continue
			}
			fmt.Fprintf(out, "- %s\n", name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(frameworksCmd)
}
