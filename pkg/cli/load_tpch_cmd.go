package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"lakeboot/internal/domain"
	"lakeboot/internal/engine"
)

func newLoadTPCHCmd(d *deps, opts *rootOptions) *cobra.Command {
	var rawScale string

	cmd := &cobra.Command{
		Use:   "load-tpch",
		Short: "Generate the TPC-H dataset and load it into the catalog",
		Long: "Attach the catalog, generate TPC-H at --scale (default tpch.default_scale)\n" +
			"and replace every benchmark table in <alias>.main.",
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var scale float64
			if cmd.Flags().Changed("scale") {
				v, err := domain.ParseScale(rawScale)
				if err != nil {
					return err
				}
				scale = v
			}

			e, err := opts.load(d)
			if err != nil {
				return err
			}
			if scale == 0 {
				scale = e.cfg.TPCH.Scale()
			}
			ctx := cmd.Context()

			session, closeSession, err := e.openSession(ctx)
			if err != nil {
				return err
			}
			defer closeSession()

			attacher := engine.NewAttacher(session, engine.AttachOptionsFromConfig(e.cfg, e.creds))
			res, err := engine.NewLoader(session, attacher).Load(ctx, scale)
			if err != nil {
				return err
			}

			return emit(cmd, res, func(w io.Writer) error {
				if _, err := fmt.Fprintf(w, "Loaded TPC-H sf=%s into %s in %s\n",
					domain.FormatScale(res.Scale), res.Catalog, res.Duration.Round(time.Millisecond)); err != nil {
					return err
				}
				rows := make([][]string, 0, len(res.Relations))
				for _, rel := range res.Relations {
					rows = append(rows, []string{rel.Name, strconv.FormatInt(rel.Rows, 10)})
				}
				return printTable(w, []string{"TABLE", "ROWS"}, rows)
			})
		},
	}

	cmd.Flags().StringVar(&rawScale, "scale", "", "TPC-H scale factor, a positive number (default tpch.default_scale)")
	return cmd
}
