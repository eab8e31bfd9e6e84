// Package config handles the settings document, environment loading, and
// object-storage credential resolution.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"lakeboot/internal/ddl"
	"lakeboot/internal/domain"
)

// DefaultPath is the settings document used when --config is not given.
const DefaultPath = "config.yaml"

// Defaults applied to optional fields after the document is parsed.
const (
	DefaultBackend     = ddl.BackendDuckDB
	DefaultStorageType = StorageMinIO
	DefaultAlias       = "my_ducklake"
	DefaultSecretName  = "minio"
	DefaultURLStyle    = "path"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "auto"
)

// Storage client implementations selectable through storage.type.
const (
	StorageMinIO = "minio"
	StorageS3    = "s3"
)

// bucketRe follows the S3 bucket naming rules closely enough to catch typos.
var bucketRe = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

// Config is the validated settings record for one invocation.
type Config struct {
	Metadata MetadataConfig `yaml:"metadata"`
	Storage  StorageConfig  `yaml:"storage"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	TPCH     TPCHConfig     `yaml:"tpch"`
	Log      LogConfig      `yaml:"log"`

	// Path is the file the record was loaded from.
	Path string `yaml:"-"`
}

// MetadataConfig locates the DuckLake metadata store.
type MetadataConfig struct {
	Backend string `yaml:"backend"` // duckdb, sqlite or postgres
	Path    string `yaml:"path"`    // file path, or a libpq DSN for postgres

	// DuckDBFile is the key used by older settings documents; it fills Path when Path is empty.
	DuckDBFile string `yaml:"duckdb_file,omitempty"`
}

// StorageConfig describes the object store holding the catalog's data files.
// Empty credential fields are resolved from the environment, see ResolveCredentials.
type StorageConfig struct {
	Type       string `yaml:"type"`
	Bucket     string `yaml:"bucket"`
	Prefix     string `yaml:"prefix"`
	Endpoint   string `yaml:"endpoint,omitempty"`
	Region     string `yaml:"region,omitempty"`
	AccessKey  string `yaml:"access_key,omitempty"`
	SecretKey  string `yaml:"secret_key,omitempty"`
	SecretName string `yaml:"secret_name,omitempty"`
	UseSSL     *bool  `yaml:"use_ssl,omitempty"`
	URLStyle   string `yaml:"url_style,omitempty"`
}

// CatalogConfig names the attached lakehouse catalog.
type CatalogConfig struct {
	Alias string `yaml:"alias"`
}

// TPCHConfig holds benchmark dataset settings.
type TPCHConfig struct {
	// DefaultScale is nil when the key is absent so that an explicit 0 is rejected.
	DefaultScale *float64 `yaml:"default_scale"`
}

// Scale returns the configured default scale factor.
func (t TPCHConfig) Scale() float64 {
	if t.DefaultScale == nil {
		return domain.DefaultScale
	}
	return *t.DefaultScale
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // auto, console or json
}

// Load reads, defaults and validates the settings document at path.
// Every failure is a *domain.ConfigError.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrConfig("settings file %s not found (run init-config to create one)", path)
		}
		return nil, domain.WrapConfig(err, "read %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes a settings document, applies defaults and validates it.
// Unknown keys are rejected so that typos do not silently fall back to defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.ErrConfig("settings document is empty")
		}
		return nil, domain.WrapConfig(err, "parse settings")
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Metadata.Path == "" {
		c.Metadata.Path = c.Metadata.DuckDBFile
	}
	c.Metadata.DuckDBFile = ""
	if c.Metadata.Backend == "" {
		c.Metadata.Backend = DefaultBackend
	}
	if c.Storage.Type == "" {
		c.Storage.Type = DefaultStorageType
	}
	if c.Storage.SecretName == "" {
		c.Storage.SecretName = DefaultSecretName
	}
	if c.Storage.URLStyle == "" {
		c.Storage.URLStyle = DefaultURLStyle
	}
	if c.Catalog.Alias == "" {
		c.Catalog.Alias = DefaultAlias
	}
	if c.TPCH.DefaultScale == nil {
		scale := domain.DefaultScale
		c.TPCH.DefaultScale = &scale
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

// Validate checks required fields and enumerations.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Storage.Bucket) == "" {
		return domain.ErrConfig("storage.bucket is required")
	}
	if !bucketRe.MatchString(c.Storage.Bucket) {
		return domain.ErrConfig("storage.bucket %q is not a valid bucket name", c.Storage.Bucket)
	}
	if strings.TrimSpace(c.Metadata.Path) == "" {
		return domain.ErrConfig("metadata.path is required")
	}
	switch c.Metadata.Backend {
	case ddl.BackendDuckDB, ddl.BackendSQLite, ddl.BackendPostgres:
	default:
		return domain.ErrConfig("metadata.backend %q is not supported (use duckdb, sqlite or postgres)", c.Metadata.Backend)
	}
	switch c.Storage.Type {
	case StorageMinIO, StorageS3:
	default:
		return domain.ErrConfig("storage.type %q is not supported (use minio or s3)", c.Storage.Type)
	}
	switch c.Storage.URLStyle {
	case "path", "vhost":
	default:
		return domain.ErrConfig("storage.url_style %q is not supported (use path or vhost)", c.Storage.URLStyle)
	}
	if err := ddl.ValidateIdentifier(c.Catalog.Alias); err != nil {
		return domain.WrapConfig(err, "catalog.alias")
	}
	if err := ddl.ValidateIdentifier(c.Storage.SecretName); err != nil {
		return domain.WrapConfig(err, "storage.secret_name")
	}
	if err := domain.ValidateScale(c.TPCH.Scale()); err != nil {
		return domain.WrapConfig(err, "tpch.default_scale")
	}
	switch c.Log.Format {
	case "auto", "console", "json":
	default:
		return domain.ErrConfig("log.format %q is not supported (use auto, console or json)", c.Log.Format)
	}
	return nil
}

// DataPath returns the catalog's data location in the object store,
// always ending in a slash: s3://<bucket>/<prefix>/.
func (c *Config) DataPath() string {
	prefix := strings.Trim(c.Storage.Prefix, "/")
	if prefix == "" {
		return fmt.Sprintf("s3://%s/", c.Storage.Bucket)
	}
	return fmt.Sprintf("s3://%s/%s/", c.Storage.Bucket, prefix)
}

// MetadataIsFile reports whether the metadata store is a local file.
func (c *Config) MetadataIsFile() bool {
	return c.Metadata.Backend != ddl.BackendPostgres
}
