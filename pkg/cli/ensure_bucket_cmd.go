package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lakeboot/internal/storage"
)

type ensureBucketResult struct {
	Bucket   string `json:"bucket"`
	Endpoint string `json:"endpoint"`
	Created  bool   `json:"created"`
}

func newEnsureBucketCmd(d *deps, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-bucket",
		Short: "Create the storage bucket if it does not exist",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.load(d)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			client, err := e.bucketClient(ctx)
			if err != nil {
				return err
			}
			bucket := e.cfg.Storage.Bucket
			created, err := storage.EnsureBucket(ctx, client, bucket, e.creds.Region)
			if err != nil {
				return err
			}
			e.logger.Info().Str("bucket", bucket).Bool("created", created).Str("endpoint", client.Endpoint()).Msg("bucket ensured")

			res := ensureBucketResult{Bucket: bucket, Endpoint: client.Endpoint(), Created: created}
			return emit(cmd, res, func(w io.Writer) error {
				state := "already exists"
				if created {
					state = "created"
				}
				_, err := fmt.Fprintf(w, "Bucket %s %s at %s\n", bucket, state, res.Endpoint)
				return err
			})
		},
	}
}
