package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd(_ *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"version": version,
					"commit":  commit,
				})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "lakeboot version %s (commit: %s)\n", version, commit)
			return nil
		},
	}
}
