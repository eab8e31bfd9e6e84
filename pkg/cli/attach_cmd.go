package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lakeboot/internal/engine"
)

func newAttachCmd(d *deps, opts *rootOptions) *cobra.Command {
	var sanityCheck bool

	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Register the storage secret and attach the DuckLake catalog",
		Long: "Register the storage secret and attach the DuckLake catalog under catalog.alias.\n" +
			"The metadata store is created on first use. With --sanity-check a small\n" +
			"table is created in the catalog to prove that writes reach storage.",
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.load(d)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			session, closeSession, err := e.openSession(ctx)
			if err != nil {
				return err
			}
			defer closeSession()

			attachOpts := engine.AttachOptionsFromConfig(e.cfg, e.creds)
			attachOpts.SanityCheck = sanityCheck
			res, err := engine.NewAttacher(session, attachOpts).Attach(ctx)
			if err != nil {
				return err
			}

			return emit(cmd, res, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Attached %s\n  metadata: %s (%s)\n  data:     %s\n",
					res.Alias, res.MetadataPath, metadataState(res.MetadataExisted), res.DataPath)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&sanityCheck, "sanity-check", true, "Create "+engine.SanityTable+" in the catalog after attaching")
	return cmd
}

func metadataState(existed bool) string {
	if existed {
		return "existing"
	}
	return "new"
}
