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

func newQueryTPCHCmd(d *deps, opts *rootOptions) *cobra.Command {
	var (
		queryList string
		verify    bool
		outDir    string
	)

	cmd := &cobra.Command{
		Use:   "query-tpch",
		Short: "Run the TPC-H benchmark queries against the catalog",
		Long: "Run TPC-H queries against the attached catalog. With --verify each result is\n" +
			"compared with the same query over a freshly generated in-memory reference\n" +
			"dataset at the scale the catalog was loaded with.",
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			queries, err := engine.ParseQueryList(queryList)
			if err != nil {
				return err
			}
			if outDir != "" && !verify {
				return fmt.Errorf("--out-dir requires --verify")
			}
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

			if _, err := engine.NewAttacher(session, engine.AttachOptionsFromConfig(e.cfg, e.creds)).Attach(ctx); err != nil {
				return err
			}
			lake := engine.NewQueryRunner(session, e.cfg.Catalog.Alias)

			if !verify {
				results := make([]domain.QueryResult, 0, len(queries))
				for _, n := range queries {
					res, err := lake.Run(ctx, n)
					if err != nil {
						return err
					}
					results = append(results, res)
				}
				return emit(cmd, results, func(w io.Writer) error {
					return printQueryResults(w, results)
				})
			}

			scale, err := lake.InferScale(ctx)
			if err != nil {
				return err
			}
			refSession, closeRef, err := e.openSession(ctx)
			if err != nil {
				return err
			}
			defer closeRef()

			e.logger.Info().Str("scale", domain.FormatScale(scale)).Msg("generating reference dataset")
			ref, err := engine.PrepareReference(ctx, refSession, scale)
			if err != nil {
				return err
			}
			results, err := engine.NewVerifier(lake, ref).Verify(ctx, queries)
			if err != nil {
				return err
			}

			if err := emit(cmd, results, func(w io.Writer) error {
				return printVerifyResults(w, results)
			}); err != nil {
				return err
			}
			if outDir != "" {
				paths, err := engine.WriteReport(outDir, results)
				if err != nil {
					return err
				}
				e.logger.Info().Str("dir", outDir).Int("files", len(paths)).Msg("verification report written")
			}
			failed := 0
			for _, r := range results {
				if !r.Match {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d queries differ from the reference", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&queryList, "queries", "", "Queries to run, e.g. 1,3,5-7 (default all 22)")
	cmd.Flags().BoolVar(&verify, "verify", false, "Compare results with an in-memory reference dataset")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "With --verify, write a summary CSV and both result sets of every mismatched query here")
	return cmd
}

func printQueryResults(w io.Writer, results []domain.QueryResult) error {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			fmt.Sprintf("Q%02d", r.Query),
			strconv.FormatInt(r.Rows, 10),
			r.Duration.Round(time.Millisecond).String(),
		})
	}
	return printTable(w, []string{"QUERY", "ROWS", "TIME"}, rows)
}

func printVerifyResults(w io.Writer, results []domain.VerifyResult) error {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "ok"
		if !r.Match {
			status = "MISMATCH: " + r.Reason
		}
		rows = append(rows, []string{
			fmt.Sprintf("Q%02d", r.Query),
			strconv.FormatInt(r.Lake.Rows, 10),
			r.Lake.Duration.Round(time.Millisecond).String(),
			r.Ref.Duration.Round(time.Millisecond).String(),
			status,
		})
	}
	return printTable(w, []string{"QUERY", "ROWS", "LAKE", "REFERENCE", "RESULT"}, rows)
}
