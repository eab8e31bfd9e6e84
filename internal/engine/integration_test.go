package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakeboot/internal/config"
	"lakeboot/internal/ddl"
	"lakeboot/internal/domain"
)

// TestIntegration_AttachAndLoad runs against a real DuckDB and a MinIO
// reachable with the usual MINIO_* variables. The bucket must exist.
func TestIntegration_AttachAndLoad(t *testing.T) {
	if os.Getenv("LAKEBOOT_INTEGRATION") != "1" {
		t.Skip("set LAKEBOOT_INTEGRATION=1 to run against DuckDB and MinIO")
	}
	ctx := context.Background()

	cfg, err := config.Parse([]byte(config.Template))
	require.NoError(t, err)
	cfg.Metadata.Path = filepath.Join(t.TempDir(), "metadata.ducklake")
	cfg.Storage.Prefix = "integration/" + t.Name()
	creds := config.ResolveCredentials(cfg, nil)

	db, err := Open("")
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	session, err := NewSession(ctx, db, zerolog.Nop())
	require.NoError(t, err)
	defer session.Close() //nolint:errcheck

	opts := AttachOptionsFromConfig(cfg, creds)
	opts.SanityCheck = true
	attacher := NewAttacher(session, opts)

	res, err := attacher.Attach(ctx)
	require.NoError(t, err)
	assert.False(t, res.AlreadyAttached)

	again, err := attacher.Attach(ctx)
	require.NoError(t, err)
	assert.True(t, again.AlreadyAttached)

	load, err := NewLoader(session, NewAttacher(session, AttachOptionsFromConfig(cfg, creds))).Load(ctx, 0.01)
	require.NoError(t, err)
	require.Len(t, load.Relations, len(domain.TPCHRelations))
	assert.Equal(t, int64(5), load.Relations[0].Rows, "region always has 5 rows")

	require.NoError(t, session.Close())
	require.NoError(t, db.Close())

	status, err := Inspect(ctx, ddl.BackendDuckDB, cfg.Metadata.Path)
	require.NoError(t, err)
	assert.Equal(t, cfg.DataPath(), status.DataPath)
	assert.Contains(t, status.Tables, "main.lineitem")
}
