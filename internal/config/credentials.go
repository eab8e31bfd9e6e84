package config

import (
	"fmt"
	"os"
	"strings"

	"lakeboot/internal/domain"
)

// Built-in credential defaults, matching a stock local MinIO.
const (
	DefaultAccessKey = "minioadmin"
	DefaultSecretKey = "minioadmin"
	DefaultEndpoint  = "http://localhost:9000"
	DefaultRegion    = "us-east-1"
)

// Environment variables consulted when a credential field is absent from the
// settings document. The first non-empty variable wins.
var (
	AccessKeyEnv = []string{"MINIO_ACCESS_KEY", "AWS_ACCESS_KEY_ID"}
	SecretKeyEnv = []string{"MINIO_SECRET_KEY", "MINIO_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY"}
	EndpointEnv  = []string{"MINIO_ENDPOINT", "AWS_ENDPOINT_URL"}
	RegionEnv    = []string{"MINIO_REGION", "AWS_REGION"}
)

// Value sources recorded in Credentials.Sources.
const (
	SourceConfig  = "config"
	SourceDefault = "default"
)

// LookupFunc looks up an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Credentials are the resolved object-storage coordinates for one invocation.
type Credentials struct {
	AccessKey  string
	SecretKey  string
	Endpoint   string // as resolved, possibly with scheme
	Region     string
	SecretName string
	URLStyle   string
	UseSSL     bool

	// Sources maps "access_key", "secret_key", "endpoint" and "region" to
	// SourceConfig, SourceDefault or "env:<NAME>".
	Sources map[string]string
}

// ResolveCredentials merges the settings record with the environment using the
// precedence explicit config value, then environment variable, then default.
// A nil lookup uses os.LookupEnv.
func ResolveCredentials(cfg *Config, lookup LookupFunc) Credentials {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	c := Credentials{
		SecretName: cfg.Storage.SecretName,
		URLStyle:   cfg.Storage.URLStyle,
		Sources:    make(map[string]string, 4),
	}
	c.AccessKey = c.resolve("access_key", cfg.Storage.AccessKey, AccessKeyEnv, DefaultAccessKey, lookup)
	c.SecretKey = c.resolve("secret_key", cfg.Storage.SecretKey, SecretKeyEnv, DefaultSecretKey, lookup)
	c.Endpoint = c.resolve("endpoint", cfg.Storage.Endpoint, EndpointEnv, DefaultEndpoint, lookup)
	c.Region = c.resolve("region", cfg.Storage.Region, RegionEnv, DefaultRegion, lookup)

	if cfg.Storage.UseSSL != nil {
		c.UseSSL = *cfg.Storage.UseSSL
	} else {
		c.UseSSL = strings.HasPrefix(strings.ToLower(c.Endpoint), "https://")
	}
	return c
}

func (c *Credentials) resolve(field, explicit string, envKeys []string, def string, lookup LookupFunc) string {
	if v := strings.TrimSpace(explicit); v != "" {
		c.Sources[field] = SourceConfig
		return v
	}
	for _, key := range envKeys {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			c.Sources[field] = "env:" + key
			return strings.TrimSpace(v)
		}
	}
	c.Sources[field] = SourceDefault
	return def
}

// HostPort returns the endpoint without scheme or trailing slash, the form
// DuckDB secrets and the MinIO client expect.
func (c Credentials) HostPort() string {
	host := c.Endpoint
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	return strings.TrimRight(host, "/")
}

// EndpointURL returns the endpoint as an absolute URL, adding a scheme that
// matches UseSSL when none was configured.
func (c Credentials) EndpointURL() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + c.HostPort()
}

// S3Secret returns the payload registered with the engine.
func (c Credentials) S3Secret() domain.S3Secret {
	return domain.S3Secret{
		Name:     c.SecretName,
		KeyID:    c.AccessKey,
		Secret:   c.SecretKey,
		Endpoint: c.HostPort(),
		Region:   c.Region,
		URLStyle: c.URLStyle,
		UseSSL:   c.UseSSL,
	}
}

// Defaulted returns the credential fields that fell back to built-in defaults.
func (c Credentials) Defaulted() []string {
	var out []string
	for _, field := range []string{"access_key", "secret_key", "endpoint", "region"} {
		if c.Sources[field] == SourceDefault {
			out = append(out, field)
		}
	}
	return out
}

// String masks the key material so Credentials can be printed or logged safely.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{endpoint=%s region=%s access_key=%s secret_key=%s secret=%s}",
		c.EndpointURL(), c.Region, MaskSecret(c.AccessKey), MaskSecret(c.SecretKey), c.SecretName)
}

// MaskSecret masks a sensitive string, showing at most the first and last 2 characters.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
