package engine

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"lakeboot/internal/ddl"
	"lakeboot/internal/domain"
)

// QueryRunner executes the standard TPC-H queries against one catalog.
type QueryRunner struct {
	session  *Session
	catalog  string
	ready    bool
	keepRows bool
}

// NewQueryRunner creates a runner that resolves the benchmark's unqualified
// table names against catalog.
func NewQueryRunner(session *Session, catalog string) *QueryRunner {
	return &QueryRunner{session: session, catalog: catalog}
}

func (r *QueryRunner) prepare(ctx context.Context) error {
	if r.ready {
		return nil
	}
	if err := r.session.LoadExtensions(ctx, "tpch"); err != nil {
		return err
	}
	if err := r.session.Use(ctx, r.catalog); err != nil {
		return err
	}
	r.ready = true
	return nil
}

// Run executes query n and summarizes its result set.
func (r *QueryRunner) Run(ctx context.Context, n int) (domain.QueryResult, error) {
	res := domain.QueryResult{Query: n}
	if err := r.prepare(ctx); err != nil {
		return res, err
	}
	textQuery, err := ddl.TPCHQueryText(n)
	if err != nil {
		return res, err
	}
	op := fmt.Sprintf("tpch q%02d", n)

	var text string
	if err := r.session.conn.QueryRowContext(ctx, textQuery).Scan(&text); err != nil {
		return res, domain.ErrEngine(op+" text", err)
	}

	start := time.Now()
	rows, err := r.session.conn.QueryContext(ctx, text)
	if err != nil {
		return res, domain.ErrEngine(op, err)
	}
	defer rows.Close() //nolint:errcheck

	res.Columns, err = rows.Columns()
	if err != nil {
		return res, domain.ErrEngine(op, err)
	}
	res.Rows, res.Checksum, res.Data, err = digestRows(rows, len(res.Columns), r.keepRows)
	if err != nil {
		return res, domain.ErrEngine(op, err)
	}
	res.Duration = time.Since(start)

	r.session.logger.Debug().Int("query", n).Int64("rows", res.Rows).Dur("elapsed", res.Duration).Msg("query done")
	return res, nil
}

// customersPerScale is the customer cardinality dbgen produces at scale 1.
const customersPerScale = 150000

// InferScale derives the scale factor the catalog was loaded at from its
// customer count.
func (r *QueryRunner) InferScale(ctx context.Context) (float64, error) {
	q, err := ddl.CountRows(r.catalog, "main", "customer")
	if err != nil {
		return 0, fmt.Errorf("build DDL: %w", err)
	}
	n, err := r.session.queryInt(ctx, "count customer", q)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, domain.ErrEngine("infer scale", fmt.Errorf("%s.main.customer is empty, run load-tpch first", r.catalog))
	}
	return math.Round(float64(n)/customersPerScale*1e6) / 1e6, nil
}

// digestRows counts rows and folds them into an order-insensitive checksum,
// retaining the rows themselves when keep is set. Floats are rounded to two
// decimals in the checksum, so it is a coarse digest; verification compares
// retained rows with a tolerance instead.
func digestRows(rows *sql.Rows, ncols int, keep bool) (int64, string, [][]any, error) {
	vals := make([]any, ncols)
	ptrs := make([]any, ncols)
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	var (
		count int64
		sum   uint64
		data  [][]any
		b     strings.Builder
	)
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return 0, "", nil, err
		}
		b.Reset()
		for i, v := range vals {
			if i > 0 {
				b.WriteByte(0x1f)
			}
			b.WriteString(formatValue(v))
		}
		sum += xxhash.Sum64String(b.String())
		count++
		if keep {
			row := make([]any, ncols)
			for i, v := range vals {
				row[i] = normalizeValue(v)
			}
			data = append(data, row)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, "", nil, err
	}

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], sum)
	return count, fmt.Sprintf("%x", buf), data, nil
}

// normalizeValue copies driver buffers and widens floats so retained rows
// compare across sessions.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case float32:
		return float64(x)
	case []byte:
		return string(x)
	default:
		return v
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case float64:
		return strconv.FormatFloat(math.Round(x*100)/100, 'f', 2, 64)
	case float32:
		return strconv.FormatFloat(math.Round(float64(x)*100)/100, 'f', 2, 64)
	case []byte:
		return string(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}

// ParseQueryList parses a comma-separated list of query numbers and ranges
// ("1,3,5-7"). An empty list selects every query.
func ParseQueryList(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		all := make([]int, domain.TPCHQueryCount)
		for i := range all {
			all[i] = i + 1
		}
		return all, nil
	}
	var out []int
	seen := make(map[int]bool)
	add := func(n int) error {
		if n < 1 || n > domain.TPCHQueryCount {
			return fmt.Errorf("query %d out of range 1-%d", n, domain.TPCHQueryCount)
		}
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
		return nil
	}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")
		first, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid query number %q", part)
		}
		last := first
		if isRange {
			if last, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil || last < first {
				return nil, fmt.Errorf("invalid query range %q", part)
			}
		}
		for n := first; n <= last; n++ {
			if err := add(n); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
