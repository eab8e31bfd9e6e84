package engine

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"lakeboot/internal/domain"
)

// Verifier runs each benchmark query against the lake and against a
// reference dataset held in a separate in-memory database, then compares
// the results.
type Verifier struct {
	lake *QueryRunner
	ref  *QueryRunner
}

// NewVerifier creates a Verifier and makes both runners retain result rows.
// ref must run on a different session than lake.
func NewVerifier(lake, ref *QueryRunner) *Verifier {
	lake.keepRows = true
	ref.keepRows = true
	return &Verifier{lake: lake, ref: ref}
}

// PrepareReference generates the reference dataset at scale on session and
// returns a runner over it.
func PrepareReference(ctx context.Context, session *Session, scale float64) (*QueryRunner, error) {
	if err := Generate(ctx, session, scale); err != nil {
		return nil, err
	}
	return NewQueryRunner(session, GenCatalog), nil
}

// Verify runs queries pairwise. The two sides of a pair run concurrently on
// their own sessions; an engine failure on either side stops the run.
func (v *Verifier) Verify(ctx context.Context, queries []int) ([]domain.VerifyResult, error) {
	out := make([]domain.VerifyResult, 0, len(queries))
	for _, n := range queries {
		var lake, ref domain.QueryResult
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			lake, err = v.lake.Run(gctx, n)
			return err
		})
		g.Go(func() error {
			var err error
			ref, err = v.ref.Run(gctx, n)
			return err
		})
		if err := g.Wait(); err != nil {
			return out, err
		}
		out = append(out, Compare(lake, ref))
	}
	return out, nil
}

// Float tolerance for row comparison: |a-b| <= floatAbsTol + floatRelTol*|b|.
const (
	floatAbsTol = 1e-6
	floatRelTol = 1e-5
)

// Compare checks column names, row counts and contents, in that order.
// Contents are compared row by row, ignoring row order and allowing float
// differences within tolerance, when both sides retained their rows; the
// checksums are compared otherwise.
func Compare(lake, ref domain.QueryResult) domain.VerifyResult {
	res := domain.VerifyResult{Query: lake.Query, Lake: lake, Ref: ref, Match: true}
	switch {
	case !slices.Equal(lake.Columns, ref.Columns):
		res.Match = false
		res.Reason = fmt.Sprintf("columns differ: %v vs %v", lake.Columns, ref.Columns)
	case lake.Rows != ref.Rows:
		res.Match = false
		res.Reason = fmt.Sprintf("row count %d vs %d", lake.Rows, ref.Rows)
	case lake.Data != nil && ref.Data != nil:
		if diff := diffRows(lake.Columns, lake.Data, ref.Data); diff != "" {
			res.Match = false
			res.Reason = "row contents differ: " + diff
		}
	case lake.Checksum != ref.Checksum:
		res.Match = false
		res.Reason = "row contents differ"
	}
	return res
}

// diffRows sorts both row sets and describes the first differing cell, or
// returns "" when they match.
func diffRows(columns []string, lake, ref [][]any) string {
	a, b := sortedRows(lake), sortedRows(ref)
	for i := range a {
		for j := range a[i] {
			if compareValues(a[i][j], b[i][j]) != 0 {
				col := fmt.Sprint(j)
				if j < len(columns) {
					col = columns[j]
				}
				return fmt.Sprintf("row %d column %s: %s vs %s", i+1, col, csvValue(a[i][j]), csvValue(b[i][j]))
			}
		}
	}
	return ""
}

func sortedRows(rows [][]any) [][]any {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(x, y []any) int {
		for i := range x {
			if c := compareValues(x[i], y[i]); c != 0 {
				return c
			}
		}
		return 0
	})
	return out
}

// compareValues orders two cells. Floats within tolerance are equal.
func compareValues(a, b any) int {
	fa, aFloat := a.(float64)
	fb, bFloat := b.(float64)
	if aFloat && bFloat {
		if math.Abs(fa-fb) <= floatAbsTol+floatRelTol*math.Abs(fb) {
			return 0
		}
		return cmp.Compare(fa, fb)
	}
	ia, aInt := a.(int64)
	ib, bInt := b.(int64)
	if aInt && bInt {
		return cmp.Compare(ia, ib)
	}
	return strings.Compare(csvValue(a), csvValue(b))
}
