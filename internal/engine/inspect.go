package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/mattn/go-sqlite3"    // registers the "sqlite3" driver

	"lakeboot/internal/ddl"
	"lakeboot/internal/domain"
)

// Compile-time check.
var _ domain.MetastoreQuerier = (*MetastoreReader)(nil)

// Queries against the DuckLake metadata tables. They avoid placeholders so
// the same text works on every backend driver.
const (
	dataPathQuery  = "SELECT value FROM ducklake_metadata WHERE key = 'data_path'"
	snapshotsQuery = "SELECT count(*) FROM ducklake_snapshot"
	tablesQuery    = `SELECT s.schema_name, t.table_name
FROM ducklake_table t
JOIN ducklake_schema s ON t.schema_id = s.schema_id
WHERE t.end_snapshot IS NULL AND s.end_snapshot IS NULL
ORDER BY s.schema_name, t.table_name`
)

// MetastoreReader reads catalog state straight from a DuckLake metadata store
// without attaching it.
type MetastoreReader struct {
	db *sql.DB
}

// NewMetastoreReader wraps an open connection to a metadata store.
func NewMetastoreReader(db *sql.DB) *MetastoreReader {
	return &MetastoreReader{db: db}
}

// OpenMetastore opens the metadata store read-only with the driver matching backend.
func OpenMetastore(backend, path string) (*MetastoreReader, error) {
	var driver, dsn string
	switch backend {
	case ddl.BackendDuckDB, "":
		driver, dsn = DriverName, path+"?access_mode=read_only"
	case ddl.BackendSQLite:
		driver, dsn = "sqlite3", "file:"+path+"?mode=ro"
	case ddl.BackendPostgres:
		driver, dsn = "pgx", path
	default:
		return nil, domain.ErrConfig("metadata.backend %q is not supported", backend)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, domain.ErrEngine("open metastore", err)
	}
	return NewMetastoreReader(db), nil
}

// Close closes the underlying connection.
func (m *MetastoreReader) Close() error { return m.db.Close() }

// ReadDataPath returns the data path recorded when the catalog was created.
func (m *MetastoreReader) ReadDataPath(ctx context.Context) (string, error) {
	var path string
	if err := m.db.QueryRowContext(ctx, dataPathQuery).Scan(&path); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", domain.ErrEngine("read data path", err)
	}
	return path, nil
}

// CountSnapshots returns the number of committed snapshots.
func (m *MetastoreReader) CountSnapshots(ctx context.Context) (int64, error) {
	var n int64
	if err := m.db.QueryRowContext(ctx, snapshotsQuery).Scan(&n); err != nil {
		return 0, domain.ErrEngine("count snapshots", err)
	}
	return n, nil
}

// ListTables returns live tables as schema.table.
func (m *MetastoreReader) ListTables(ctx context.Context) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, tablesQuery)
	if err != nil {
		return nil, domain.ErrEngine("list tables", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []string
	for rows.Next() {
		var schema, table string
		if err := rows.Scan(&schema, &table); err != nil {
			return nil, domain.ErrEngine("list tables", err)
		}
		out = append(out, schema+"."+table)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrEngine("list tables", err)
	}
	return out, nil
}

// Inspect summarizes the catalog state held in the metadata store. A file
// store that does not exist yet yields Exists=false and no error.
func Inspect(ctx context.Context, backend, path string) (*domain.CatalogStatus, error) {
	status := &domain.CatalogStatus{Backend: backend, MetadataPath: path}
	if backend != ddl.BackendPostgres {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return status, nil
			}
			return nil, fmt.Errorf("stat metadata: %w", err)
		}
	}

	reader, err := OpenMetastore(backend, path)
	if err != nil {
		return nil, err
	}
	defer reader.Close() //nolint:errcheck

	if err := ReadStatus(ctx, reader, status); err != nil {
		return nil, err
	}
	return status, nil
}

// ReadStatus fills status from q and marks it as existing.
func ReadStatus(ctx context.Context, q domain.MetastoreQuerier, status *domain.CatalogStatus) error {
	var err error
	if status.DataPath, err = q.ReadDataPath(ctx); err != nil {
		return err
	}
	if status.Snapshots, err = q.CountSnapshots(ctx); err != nil {
		return err
	}
	if status.Tables, err = q.ListTables(ctx); err != nil {
		return err
	}
	status.Exists = true
	return nil
}
