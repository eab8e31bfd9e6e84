package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lakeboot/internal/storage"
)

func newWaitStorageCmd(d *deps, opts *rootOptions) *cobra.Command {
	var timeout, interval time.Duration

	cmd := &cobra.Command{
		Use:   "wait-storage",
		Short: "Wait until the storage endpoint answers",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.load(d)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			client, err := e.bucketClient(ctx)
			if err != nil {
				return err
			}
			attempts, err := storage.WaitReady(ctx, client, e.cfg.Storage.Bucket, interval, e.logger)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Storage ready at %s after %d attempt(s)\n", client.Endpoint(), attempts)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "Give up after this long")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Delay between probes")
	return cmd
}
