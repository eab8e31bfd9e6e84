package engine

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"lakeboot/internal/domain"
)

// SummaryFile is the per-run verification summary written by WriteReport.
const SummaryFile = "validation_summary.csv"

// WriteReport writes SummaryFile to dir and, for every mismatched query with
// retained rows, both result sets as qNN_ref.csv and qNN_ducklake.csv. It
// returns the paths written.
func WriteReport(dir string, results []domain.VerifyResult) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}

	var written []string
	summary := [][]string{{"query", "match", "reason"}}
	for _, r := range results {
		summary = append(summary, []string{fmt.Sprintf("Q%02d", r.Query), strconv.FormatBool(r.Match), r.Reason})
		if r.Match {
			continue
		}
		for _, side := range []struct {
			suffix string
			res    domain.QueryResult
		}{{"ref", r.Ref}, {"ducklake", r.Lake}} {
			if side.res.Data == nil {
				continue
			}
			path := filepath.Join(dir, fmt.Sprintf("q%02d_%s.csv", r.Query, side.suffix))
			if err := writeCSV(path, resultRecords(side.res)); err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}

	path := filepath.Join(dir, SummaryFile)
	if err := writeCSV(path, summary); err != nil {
		return written, err
	}
	return append(written, path), nil
}

func resultRecords(res domain.QueryResult) [][]string {
	records := make([][]string, 0, len(res.Data)+1)
	records = append(records, res.Columns)
	for _, row := range res.Data {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = csvValue(v)
		}
		records = append(records, rec)
	}
	return records
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path) //nolint:gosec // path is built from the report directory
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// csvValue renders a retained cell at full precision.
func csvValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}
