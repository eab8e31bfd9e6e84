package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newStatusCmd(d *deps, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the catalog state recorded in the metadata store",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.load(d)
			if err != nil {
				return err
			}
			status, err := d.inspect(cmd.Context(), e.cfg.Metadata.Backend, e.cfg.Metadata.Path)
			if err != nil {
				return err
			}
			if status.Exists && status.DataPath != "" && status.DataPath != e.cfg.DataPath() {
				e.logger.Warn().
					Str("recorded", status.DataPath).
					Str("configured", e.cfg.DataPath()).
					Msg("data path in metadata differs from settings")
			}

			return emit(cmd, status, func(w io.Writer) error {
				if !status.Exists {
					_, err := fmt.Fprintf(w, "No catalog at %s (%s); run attach to create it\n", status.MetadataPath, status.Backend)
					return err
				}
				tables := "(none)"
				if len(status.Tables) > 0 {
					tables = strings.Join(status.Tables, ", ")
				}
				return printTable(w, []string{"FIELD", "VALUE"}, [][]string{
					{"backend", status.Backend},
					{"metadata", status.MetadataPath},
					{"data path", status.DataPath},
					{"snapshots", fmt.Sprint(status.Snapshots)},
					{"tables", tables},
				})
			})
		},
	}
}
