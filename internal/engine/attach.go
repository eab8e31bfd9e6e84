package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"lakeboot/internal/config"
	"lakeboot/internal/ddl"
	"lakeboot/internal/domain"
)

// SanityTable is created in the catalog's main schema by a sanity-checked attach.
const SanityTable = "bootstrap_check"

// Compile-time check.
var _ domain.CatalogAttacher = (*Attacher)(nil)

// AttachOptions parameterize a DuckLake attachment.
type AttachOptions struct {
	Alias        string
	Backend      string // duckdb, sqlite or postgres
	MetadataPath string
	DataPath     string
	Secret       domain.S3Secret
	SanityCheck  bool
}

// AttachOptionsFromConfig derives attach options from the settings record and
// resolved credentials.
func AttachOptionsFromConfig(cfg *config.Config, creds config.Credentials) AttachOptions {
	return AttachOptions{
		Alias:        cfg.Catalog.Alias,
		Backend:      cfg.Metadata.Backend,
		MetadataPath: cfg.Metadata.Path,
		DataPath:     cfg.DataPath(),
		Secret:       creds.S3Secret(),
	}
}

// Extensions returns the extensions an attach needs for its metadata backend.
func (o AttachOptions) Extensions() []string {
	exts := []string{"httpfs", "ducklake"}
	switch o.Backend {
	case ddl.BackendSQLite:
		exts = append(exts, "sqlite")
	case ddl.BackendPostgres:
		exts = append(exts, "postgres")
	}
	return exts
}

// Attacher registers the storage secret and attaches the DuckLake catalog.
type Attacher struct {
	session *Session
	opts    AttachOptions
}

// NewAttacher creates an Attacher bound to session.
func NewAttacher(session *Session, opts AttachOptions) *Attacher {
	return &Attacher{session: session, opts: opts}
}

// Attach loads the required extensions, replaces the storage secret and
// attaches the catalog unless the alias is already attached to the session.
// A failed secret aborts the attach.
func (a *Attacher) Attach(ctx context.Context) (*domain.AttachResult, error) {
	o := a.opts
	res := &domain.AttachResult{
		Alias:        o.Alias,
		DataPath:     o.DataPath,
		MetadataPath: o.MetadataPath,
	}

	if err := a.session.LoadExtensions(ctx, o.Extensions()...); err != nil {
		return nil, err
	}
	if err := a.session.CreateS3Secret(ctx, o.Secret); err != nil {
		return nil, err
	}

	attached, err := a.session.IsAttached(ctx, o.Alias)
	if err != nil {
		return nil, err
	}
	log := a.session.logger.With().Str("catalog", o.Alias).Logger()

	if attached {
		res.AlreadyAttached = true
		res.MetadataExisted = true
		log.Info().Msg("catalog already attached, skipping")
	} else {
		if err := a.prepareMetadata(res); err != nil {
			return nil, err
		}
		connStr, err := ddl.MetadataConnString(o.Backend, o.MetadataPath)
		if err != nil {
			return nil, domain.WrapConfig(err, "metadata")
		}
		stmt, err := ddl.AttachDuckLake(o.Alias, connStr, o.DataPath)
		if err != nil {
			return nil, fmt.Errorf("build DDL: %w", err)
		}
		if err := a.session.exec(ctx, "attach "+o.Alias, stmt); err != nil {
			return nil, err
		}
		log.Info().
			Str("data_path", o.DataPath).
			Str("backend", o.Backend).
			Bool("metadata_existed", res.MetadataExisted).
			Msg("catalog attached")
	}

	if o.SanityCheck {
		stmt, err := ddl.CreateTableIfNotExists(o.Alias, "main", SanityTable, []ddl.ColumnDef{{Name: "x", Type: "INTEGER"}})
		if err != nil {
			return nil, fmt.Errorf("build DDL: %w", err)
		}
		if err := a.session.exec(ctx, "sanity check", stmt); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// prepareMetadata records whether a file metadata store already exists and
// creates its parent directory.
func (a *Attacher) prepareMetadata(res *domain.AttachResult) error {
	if a.opts.Backend == ddl.BackendPostgres {
		return nil
	}
	path := a.opts.MetadataPath
	_, err := os.Stat(path)
	switch {
	case err == nil:
		res.MetadataExisted = true
	case !errors.Is(err, os.ErrNotExist):
		return domain.WrapConfig(err, "metadata path %s", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return domain.WrapConfig(err, "create metadata directory %s", dir)
		}
	}
	return nil
}
