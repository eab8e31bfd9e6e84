package cli

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"lakeboot/internal/config"
	"lakeboot/internal/domain"
)

// testHarness runs commands against in-memory writers and counts every
// attempt to reach the engine, storage or metadata store.
type testHarness struct {
	deps   *deps
	stdout bytes.Buffer
	stderr bytes.Buffer
	env    map[string]string

	dbOpens       int
	bucketClients int
	inspects      int
}

var errDisabled = errors.New("disabled in test")

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	h := &testHarness{env: map[string]string{}}
	h.deps = &deps{
		stdout: &h.stdout,
		stderr: &h.stderr,
		lookupEnv: func(key string) (string, bool) {
			v, ok := h.env[key]
			return v, ok
		},
		loadEnv: func(string) ([]string, error) { return nil, nil },
		openDB: func(string) (*sql.DB, error) {
			h.dbOpens++
			return nil, errDisabled
		},
		newBucketClient: func(context.Context, string, config.Credentials) (domain.BucketManager, error) {
			h.bucketClients++
			return nil, errDisabled
		},
		inspect: func(context.Context, string, string) (*domain.CatalogStatus, error) {
			h.inspects++
			return nil, errDisabled
		},
	}
	return h
}

func (h *testHarness) run(args ...string) int {
	return h.runContext(context.Background(), args...)
}

func (h *testHarness) runContext(ctx context.Context, args ...string) int {
	h.stdout.Reset()
	h.stderr.Reset()
	return run(ctx, args, h.deps)
}

// useMockEngine makes openDB hand out a sqlmock database.
func (h *testHarness) useMockEngine(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	h.deps.openDB = func(string) (*sql.DB, error) {
		h.dbOpens++
		return db, nil
	}
	return mock
}

func (h *testHarness) totalOpens() int {
	return h.dbOpens + h.bucketClients + h.inspects
}

// writeTemplate writes the settings template into a temp dir and returns its path.
func writeTemplate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.WriteTemplate(path, false))
	return path
}
