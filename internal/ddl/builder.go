// Package ddl builds DuckDB statements for extensions, secrets, catalog attachment,
// and dataset loading.
package ddl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"lakeboot/internal/domain"
)

// Metadata backends understood by the DuckLake extension.
const (
	BackendDuckDB   = "duckdb"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// ColumnDef describes a column for CREATE TABLE.
type ColumnDef struct {
	Name string
	Type string
}

// LoadExtension returns a statement that installs and loads a DuckDB extension.
// INSTALL is a no-op when the extension is already present.
func LoadExtension(name string) (string, error) {
	if err := ValidateIdentifier(name); err != nil {
		return "", fmt.Errorf("invalid extension name: %w", err)
	}
	return fmt.Sprintf("INSTALL %s; LOAD %s;", name, name), nil
}

// CreateS3Secret returns a DuckDB statement that creates or replaces an S3 secret.
func CreateS3Secret(s domain.S3Secret) (string, error) {
	if err := ValidateIdentifier(s.Name); err != nil {
		return "", fmt.Errorf("invalid secret name: %w", err)
	}
	if s.Endpoint == "" {
		return "", fmt.Errorf("secret endpoint is required")
	}
	urlStyle := s.URLStyle
	if urlStyle == "" {
		urlStyle = "path"
	}
	return fmt.Sprintf(`CREATE OR REPLACE SECRET %s (
	TYPE S3,
	KEY_ID %s,
	SECRET %s,
	ENDPOINT %s,
	REGION %s,
	URL_STYLE %s,
	USE_SSL %t
)`,
		QuoteIdentifier(s.Name),
		QuoteLiteral(s.KeyID),
		QuoteLiteral(s.Secret),
		QuoteLiteral(s.Endpoint),
		QuoteLiteral(s.Region),
		QuoteLiteral(urlStyle),
		s.UseSSL,
	), nil
}

// MetadataConnString returns the DuckLake connection string for a metadata backend:
//
//	duckdb   -> ducklake:<path>
//	sqlite   -> ducklake:sqlite:<path>
//	postgres -> ducklake:postgres:<dsn>
func MetadataConnString(backend, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("metastore path is required")
	}
	switch backend {
	case BackendDuckDB, "":
		return "ducklake:" + path, nil
	case BackendSQLite:
		return "ducklake:sqlite:" + path, nil
	case BackendPostgres:
		return "ducklake:postgres:" + path, nil
	default:
		return "", fmt.Errorf("unsupported metadata backend %q", backend)
	}
}

// AttachDuckLake returns a DuckDB statement to attach a DuckLake catalog.
// Both the connection string and dataPath are escaped as SQL string literals.
func AttachDuckLake(catalogName, connStr, dataPath string) (string, error) {
	if err := ValidateIdentifier(catalogName); err != nil {
		return "", fmt.Errorf("invalid catalog name: %w", err)
	}
	if !strings.HasPrefix(connStr, "ducklake:") {
		return "", fmt.Errorf("connection string must start with \"ducklake:\"")
	}
	if dataPath == "" {
		return "", fmt.Errorf("data path is required")
	}
	return fmt.Sprintf("ATTACH %s AS %s (\n\tDATA_PATH %s\n)",
		QuoteLiteral(connStr),
		QuoteIdentifier(catalogName),
		QuoteLiteral(dataPath),
	), nil
}

// SetDefaultCatalog returns a DuckDB USE statement to set the default catalog.
func SetDefaultCatalog(catalogName string) (string, error) {
	if err := ValidateIdentifier(catalogName); err != nil {
		return "", fmt.Errorf("invalid catalog name: %w", err)
	}
	return fmt.Sprintf("USE %s", QuoteIdentifier(catalogName)), nil
}

// CreateTableIfNotExists returns:
// CREATE TABLE IF NOT EXISTS "<catalog>"."<schema>"."<table>" ("<col>" TYPE, ...).
func CreateTableIfNotExists(catalog, schema, table string, columns []ColumnDef) (string, error) {
	name, err := QualifiedName(catalog, schema, table)
	if err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("at least one column is required")
	}
	colDefs := make([]string, 0, len(columns))
	for _, c := range columns {
		if err := ValidateIdentifier(c.Name); err != nil {
			return "", fmt.Errorf("invalid column name %q: %w", c.Name, err)
		}
		if err := ValidateColumnType(c.Type); err != nil {
			return "", fmt.Errorf("invalid column type for %q: %w", c.Name, err)
		}
		colDefs = append(colDefs, fmt.Sprintf("%s %s", QuoteIdentifier(c.Name), c.Type))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", name, strings.Join(colDefs, ", ")), nil
}

// CreateOrReplaceTableAs returns a create-table-as-select that copies every row of
// the source table into the target, replacing any table of the same name:
//
//	CREATE OR REPLACE TABLE "lake"."main"."orders" AS SELECT * FROM "memory"."main"."orders"
func CreateOrReplaceTableAs(target, source [3]string) (string, error) {
	dst, err := QualifiedName(target[:]...)
	if err != nil {
		return "", fmt.Errorf("invalid target table: %w", err)
	}
	src, err := QualifiedName(source[:]...)
	if err != nil {
		return "", fmt.Errorf("invalid source table: %w", err)
	}
	return fmt.Sprintf("CREATE OR REPLACE TABLE %s AS SELECT * FROM %s", dst, src), nil
}

// DropTableIfExists returns DROP TABLE IF EXISTS "<catalog>"."<schema>"."<table>".
func DropTableIfExists(catalog, schema, table string) (string, error) {
	name, err := QualifiedName(catalog, schema, table)
	if err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	return "DROP TABLE IF EXISTS " + name, nil
}

// GenerateTPCH returns the call to the tpch extension's generator, writing the
// benchmark relations into the given catalog.
func GenerateTPCH(scale float64, catalog string) (string, error) {
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
		return "", fmt.Errorf("scale factor must be positive, got %v", scale)
	}
	if err := ValidateIdentifier(catalog); err != nil {
		return "", fmt.Errorf("invalid catalog name: %w", err)
	}
	return fmt.Sprintf("CALL dbgen(sf = %s, catalog = %s)",
		strconv.FormatFloat(scale, 'g', -1, 64),
		QuoteLiteral(catalog),
	), nil
}

// CountRows returns SELECT count(*) FROM "<catalog>"."<schema>"."<table>".
func CountRows(catalog, schema, table string) (string, error) {
	name, err := QualifiedName(catalog, schema, table)
	if err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	return "SELECT count(*) FROM " + name, nil
}

// TPCHQueryText returns the statement that fetches the text of benchmark query n.
func TPCHQueryText(n int) (string, error) {
	if n < 1 || n > domain.TPCHQueryCount {
		return "", fmt.Errorf("TPC-H query number must be between 1 and %d, got %d", domain.TPCHQueryCount, n)
	}
	return fmt.Sprintf("SELECT query FROM tpch_queries() WHERE query_nr = %d", n), nil
}
