package engine

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakeboot/internal/ddl"
	"lakeboot/internal/domain"
)

func newMockSession(t *testing.T) (*Session, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := NewSession(context.Background(), db, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mock
}

func ok() driver.Result { return sqlmock.NewResult(0, 0) }

func TestSession_LoadExtensionsOnce(t *testing.T) {
	s, mock := newMockSession(t)
	mock.ExpectExec("INSTALL httpfs; LOAD httpfs;").WillReturnResult(ok())
	mock.ExpectExec("INSTALL tpch; LOAD tpch;").WillReturnResult(ok())

	ctx := context.Background()
	require.NoError(t, s.LoadExtensions(ctx, "httpfs"))
	require.NoError(t, s.LoadExtensions(ctx, "httpfs", "tpch"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_ExtensionFailureIsEngineError(t *testing.T) {
	s, mock := newMockSession(t)
	mock.ExpectExec("INSTALL ducklake; LOAD ducklake;").WillReturnError(errors.New("no network"))

	err := s.LoadExtensions(context.Background(), "ducklake")
	var engErr *domain.EngineError
	require.True(t, errors.As(err, &engErr))
	assert.Equal(t, "load extension ducklake", engErr.Op)

	// A failed extension is retried on the next call.
	mock.ExpectExec("INSTALL ducklake; LOAD ducklake;").WillReturnResult(ok())
	require.NoError(t, s.LoadExtensions(context.Background(), "ducklake"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_IsAttached(t *testing.T) {
	s, mock := newMockSession(t)
	mock.ExpectQuery(attachedQuery).WithArgs("lake").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(attachedQuery).WithArgs("other").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	got, err := s.IsAttached(context.Background(), "lake")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = s.IsAttached(context.Background(), "other")
	require.NoError(t, err)
	assert.False(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_Use(t *testing.T) {
	s, mock := newMockSession(t)
	mock.ExpectExec(`USE "my_ducklake"`).WillReturnResult(ok())
	require.NoError(t, s.Use(context.Background(), "my_ducklake"))

	err := s.Use(context.Background(), "bad-name")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_CreateS3SecretKeepsKeysOutOfErrors(t *testing.T) {
	s, mock := newMockSession(t)
	secret := domain.S3Secret{Name: "minio", KeyID: "AKIAKEY", Secret: "s3cr3t-value", Endpoint: "localhost:9000", Region: "us-east-1"}
	stmt, err := ddl.CreateS3Secret(secret)
	require.NoError(t, err)
	mock.ExpectExec(stmt).WillReturnError(errors.New("Invalid Input Error"))

	err = s.CreateS3Secret(context.Background(), secret)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "s3cr3t-value")
	assert.NotContains(t, err.Error(), "AKIAKEY")
	assert.Contains(t, err.Error(), "create secret minio")
}
