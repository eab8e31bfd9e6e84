package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"lakeboot/internal/domain"
)

// Template is the commented settings document written by init-config.
// Endpoint, region and credentials are left commented out so that the
// MINIO_* / AWS_* environment variables apply until they are set here.
const Template = `# lakeboot settings

metadata:
  # duckdb | sqlite | postgres
  backend: duckdb
  # Local metadata file. For the postgres backend this is a libpq
  # connection string, e.g. "dbname=ducklake host=localhost".
  path: "./metadata.ducklake"

storage:
  # Client used by ensure-bucket and wait-storage: minio | s3
  type: minio
  bucket: "ducklake-data"
  # Data files land under s3://<bucket>/<prefix>/
  prefix: "tpch/"
  # Unset fields fall back to the environment, then to the defaults shown.
  # endpoint: "http://localhost:9000"   # MINIO_ENDPOINT, AWS_ENDPOINT_URL
  # region: "us-east-1"                 # MINIO_REGION, AWS_REGION
  # access_key: "minioadmin"            # MINIO_ACCESS_KEY, AWS_ACCESS_KEY_ID
  # secret_key: "minioadmin"            # MINIO_SECRET_KEY, AWS_SECRET_ACCESS_KEY
  # use_ssl: false                      # default: true for https:// endpoints
  url_style: path
  secret_name: minio

catalog:
  alias: my_ducklake

tpch:
  default_scale: 1

log:
  level: info
  # auto | console | json
  format: auto
`

// WriteTemplate writes Template to path, creating parent directories.
// It refuses to replace an existing file unless force is set.
func WriteTemplate(path string, force bool) error {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return domain.ErrConfig("%s is a directory", path)
	case err == nil && !force:
		return domain.ErrConfigExists(path)
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return domain.WrapConfig(err, "stat %s", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return domain.WrapConfig(err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, []byte(Template), 0o644); err != nil { //nolint:gosec // settings template holds no secrets
		return domain.WrapConfig(err, "write %s", path)
	}
	return nil
}

// Marshal renders the record as YAML with credentials masked unless reveal is set.
func (c *Config) Marshal(reveal bool) ([]byte, error) {
	out := *c
	if !reveal {
		out.Storage.AccessKey = MaskSecret(out.Storage.AccessKey)
		out.Storage.SecretKey = MaskSecret(out.Storage.SecretKey)
	}
	data, err := yaml.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}
