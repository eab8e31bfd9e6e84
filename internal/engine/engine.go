// Package engine drives an embedded DuckDB session: secrets, DuckLake
// attachment, TPC-H generation and loading, benchmark queries and read-only
// inspection of the DuckLake metadata store.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver
	"github.com/rs/zerolog"

	"lakeboot/internal/ddl"
	"lakeboot/internal/domain"
)

// DriverName is the database/sql driver used for the engine.
const DriverName = "duckdb"

// Open opens an in-process DuckDB database. An empty dsn is in-memory.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, domain.ErrEngine("open", err)
	}
	return db, nil
}

// Compile-time check.
var _ domain.SecretManager = (*Session)(nil)

// Session pins one DuckDB connection so that secrets, loaded extensions and
// attached catalogs stay visible to every statement of an operation.
type Session struct {
	conn   *sql.Conn
	logger zerolog.Logger
	loaded map[string]bool
}

// NewSession reserves a connection from db for the lifetime of the session.
func NewSession(ctx context.Context, db *sql.DB, logger zerolog.Logger) (*Session, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, domain.ErrEngine("connect", err)
	}
	return &Session{conn: conn, logger: logger, loaded: make(map[string]bool)}, nil
}

// Close returns the connection to the pool.
func (s *Session) Close() error {
	return s.conn.Close()
}

// exec runs one statement. op labels the statement in logs and errors; the
// statement text itself is never logged since it may carry credentials.
func (s *Session) exec(ctx context.Context, op, stmt string) error {
	start := time.Now()
	if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
		return domain.ErrEngine(op, err)
	}
	s.logger.Debug().Str("op", op).Dur("elapsed", time.Since(start)).Msg("statement done")
	return nil
}

func (s *Session) queryInt(ctx context.Context, op, query string, args ...any) (int64, error) {
	var n int64
	if err := s.conn.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, domain.ErrEngine(op, err)
	}
	return n, nil
}

// LoadExtensions installs and loads each extension once per session.
func (s *Session) LoadExtensions(ctx context.Context, names ...string) error {
	for _, name := range names {
		if s.loaded[name] {
			continue
		}
		stmt, err := ddl.LoadExtension(name)
		if err != nil {
			return fmt.Errorf("build DDL: %w", err)
		}
		if err := s.exec(ctx, "load extension "+name, stmt); err != nil {
			return err
		}
		s.loaded[name] = true
	}
	return nil
}

// CreateS3Secret creates or replaces the named S3 secret.
func (s *Session) CreateS3Secret(ctx context.Context, secret domain.S3Secret) error {
	stmt, err := ddl.CreateS3Secret(secret)
	if err != nil {
		return fmt.Errorf("build DDL: %w", err)
	}
	if err := s.exec(ctx, "create secret "+secret.Name, stmt); err != nil {
		return err
	}
	s.logger.Info().Str("secret", secret.Name).Str("endpoint", secret.Endpoint).Msg("storage secret registered")
	return nil
}

// IsAttached reports whether a database named alias is attached to the session.
func (s *Session) IsAttached(ctx context.Context, alias string) (bool, error) {
	n, err := s.queryInt(ctx, "check attached "+alias, attachedQuery, alias)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const attachedQuery = "SELECT count(*) FROM duckdb_databases() WHERE database_name = ?"

// Use makes catalog the session's default catalog.
func (s *Session) Use(ctx context.Context, catalog string) error {
	stmt, err := ddl.SetDefaultCatalog(catalog)
	if err != nil {
		return fmt.Errorf("build DDL: %w", err)
	}
	return s.exec(ctx, "use "+catalog, stmt)
}
