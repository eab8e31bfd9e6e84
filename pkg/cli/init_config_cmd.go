package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"lakeboot/internal/config"
)

func newInitConfigCmd(d *deps, opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a commented settings template",
		Long: "Write a settings template to --config. An existing file is left alone\n" +
			"unless --force is given.",
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.WriteTemplate(opts.configPath, force); err != nil {
				return err
			}
			logger := opts.bareLogger(d)
			logger.Info().Str("path", opts.configPath).Bool("force", force).Msg("settings template written")
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", opts.configPath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing settings file")
	return cmd
}
