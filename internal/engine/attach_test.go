package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakeboot/internal/config"
	"lakeboot/internal/ddl"
	"lakeboot/internal/domain"
)

func testSecret() domain.S3Secret {
	return domain.S3Secret{
		Name:     "minio",
		KeyID:    "minioadmin",
		Secret:   "minioadmin",
		Endpoint: "localhost:9000",
		Region:   "us-east-1",
		URLStyle: "path",
	}
}

func testAttachOptions(t *testing.T) AttachOptions {
	t.Helper()
	return AttachOptions{
		Alias:        "my_ducklake",
		Backend:      ddl.BackendDuckDB,
		MetadataPath: filepath.Join(t.TempDir(), "meta", "metadata.ducklake"),
		DataPath:     "s3://ducklake-data/tpch/",
		Secret:       testSecret(),
	}
}

func expectSecret(t *testing.T, mock sqlmock.Sqlmock, secret domain.S3Secret) {
	t.Helper()
	stmt, err := ddl.CreateS3Secret(secret)
	require.NoError(t, err)
	mock.ExpectExec(stmt).WillReturnResult(ok())
}

func expectAttachedCheck(mock sqlmock.Sqlmock, alias string, n int) {
	mock.ExpectQuery(attachedQuery).WithArgs(alias).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(n))
}

func attachStatement(opts AttachOptions) string {
	return "ATTACH 'ducklake:" + opts.MetadataPath + "' AS \"" + opts.Alias + "\" (\n\tDATA_PATH '" + opts.DataPath + "'\n)"
}

func TestAttach_TwiceSkipsSecondAttach(t *testing.T) {
	s, mock := newMockSession(t)
	opts := testAttachOptions(t)

	mock.ExpectExec("INSTALL httpfs; LOAD httpfs;").WillReturnResult(ok())
	mock.ExpectExec("INSTALL ducklake; LOAD ducklake;").WillReturnResult(ok())
	expectSecret(t, mock, opts.Secret)
	expectAttachedCheck(mock, "my_ducklake", 0)
	mock.ExpectExec(attachStatement(opts)).WillReturnResult(ok())

	expectSecret(t, mock, opts.Secret)
	expectAttachedCheck(mock, "my_ducklake", 1)

	a := NewAttacher(s, opts)
	first, err := a.Attach(context.Background())
	require.NoError(t, err)
	assert.False(t, first.AlreadyAttached)
	assert.False(t, first.MetadataExisted)
	assert.Equal(t, "s3://ducklake-data/tpch/", first.DataPath)
	assert.DirExists(t, filepath.Dir(opts.MetadataPath))

	second, err := a.Attach(context.Background())
	require.NoError(t, err)
	assert.True(t, second.AlreadyAttached)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttach_ExistingMetadataFile(t *testing.T) {
	s, mock := newMockSession(t)
	opts := testAttachOptions(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(opts.MetadataPath), 0o755))
	require.NoError(t, os.WriteFile(opts.MetadataPath, []byte("x"), 0o644))

	mock.ExpectExec("INSTALL httpfs; LOAD httpfs;").WillReturnResult(ok())
	mock.ExpectExec("INSTALL ducklake; LOAD ducklake;").WillReturnResult(ok())
	expectSecret(t, mock, opts.Secret)
	expectAttachedCheck(mock, "my_ducklake", 0)
	mock.ExpectExec(attachStatement(opts)).WillReturnResult(ok())

	res, err := NewAttacher(s, opts).Attach(context.Background())
	require.NoError(t, err)
	assert.True(t, res.MetadataExisted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttach_SecretFailureAborts(t *testing.T) {
	s, mock := newMockSession(t)
	opts := testAttachOptions(t)

	mock.ExpectExec("INSTALL httpfs; LOAD httpfs;").WillReturnResult(ok())
	mock.ExpectExec("INSTALL ducklake; LOAD ducklake;").WillReturnResult(ok())
	stmt, err := ddl.CreateS3Secret(opts.Secret)
	require.NoError(t, err)
	mock.ExpectExec(stmt).WillReturnError(errors.New("secret rejected"))

	_, err = NewAttacher(s, opts).Attach(context.Background())
	var engErr *domain.EngineError
	require.True(t, errors.As(err, &engErr))
	assert.Equal(t, "create secret minio", engErr.Op)
	require.NoError(t, mock.ExpectationsWereMet(), "no ATTACH after a failed secret")
}

func TestAttach_SQLiteBackendWithSanityCheck(t *testing.T) {
	s, mock := newMockSession(t)
	opts := testAttachOptions(t)
	opts.Backend = ddl.BackendSQLite
	opts.SanityCheck = true

	mock.ExpectExec("INSTALL httpfs; LOAD httpfs;").WillReturnResult(ok())
	mock.ExpectExec("INSTALL ducklake; LOAD ducklake;").WillReturnResult(ok())
	mock.ExpectExec("INSTALL sqlite; LOAD sqlite;").WillReturnResult(ok())
	expectSecret(t, mock, opts.Secret)
	expectAttachedCheck(mock, "my_ducklake", 0)
	mock.ExpectExec("ATTACH 'ducklake:sqlite:" + opts.MetadataPath + "' AS \"my_ducklake\" (\n\tDATA_PATH 's3://ducklake-data/tpch/'\n)").
		WillReturnResult(ok())
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "my_ducklake"."main"."bootstrap_check" ("x" INTEGER)`).
		WillReturnResult(ok())

	_, err := NewAttacher(s, opts).Attach(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachOptionsFromConfig(t *testing.T) {
	cfg, err := config.Parse([]byte(config.Template))
	require.NoError(t, err)
	creds := config.ResolveCredentials(cfg, func(string) (string, bool) { return "", false })

	opts := AttachOptionsFromConfig(cfg, creds)
	assert.Equal(t, "my_ducklake", opts.Alias)
	assert.Equal(t, "./metadata.ducklake", opts.MetadataPath)
	assert.Equal(t, "s3://ducklake-data/tpch/", opts.DataPath)
	assert.Equal(t, "localhost:9000", opts.Secret.Endpoint)
	assert.Equal(t, []string{"httpfs", "ducklake"}, opts.Extensions())

	opts.Backend = ddl.BackendPostgres
	assert.Equal(t, []string{"httpfs", "ducklake", "postgres"}, opts.Extensions())
}
