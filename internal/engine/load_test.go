package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakeboot/internal/domain"
)

func expectDropGenerated(mock sqlmock.Sqlmock) {
	for _, rel := range domain.TPCHRelations {
		mock.ExpectExec(`DROP TABLE IF EXISTS "memory"."main"."` + rel + `"`).WillReturnResult(ok())
	}
}

func ctas(rel string) string {
	return `CREATE OR REPLACE TABLE "my_ducklake"."main"."` + rel + `" AS SELECT * FROM "memory"."main"."` + rel + `"`
}

// expectLoad queues one full load on an already prepared session.
func expectLoad(t *testing.T, mock sqlmock.Sqlmock, opts AttachOptions, firstRun bool, scale string) {
	t.Helper()
	if firstRun {
		mock.ExpectExec("INSTALL httpfs; LOAD httpfs;").WillReturnResult(ok())
		mock.ExpectExec("INSTALL ducklake; LOAD ducklake;").WillReturnResult(ok())
	}
	expectSecret(t, mock, opts.Secret)
	if firstRun {
		expectAttachedCheck(mock, opts.Alias, 0)
		mock.ExpectExec(attachStatement(opts)).WillReturnResult(ok())
		mock.ExpectExec("INSTALL tpch; LOAD tpch;").WillReturnResult(ok())
	} else {
		expectAttachedCheck(mock, opts.Alias, 1)
	}
	expectDropGenerated(mock)
	mock.ExpectExec("CALL dbgen(sf = " + scale + ", catalog = 'memory')").WillReturnResult(ok())

	mock.ExpectBegin()
	for _, rel := range domain.TPCHRelations {
		mock.ExpectExec(ctas(rel)).WillReturnResult(ok())
	}
	mock.ExpectCommit()

	for i, rel := range domain.TPCHRelations {
		mock.ExpectQuery(`SELECT count(*) FROM "my_ducklake"."main"."` + rel + `"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(10 * (i + 1))))
	}
	expectDropGenerated(mock)
}

func TestLoad_TwiceReplacesTables(t *testing.T) {
	s, mock := newMockSession(t)
	opts := testAttachOptions(t)
	expectLoad(t, mock, opts, true, "0.01")
	expectLoad(t, mock, opts, false, "0.01")

	loader := NewLoader(s, NewAttacher(s, opts))
	for run := 1; run <= 2; run++ {
		res, err := loader.Load(context.Background(), 0.01)
		require.NoError(t, err, "run %d", run)
		assert.Equal(t, "my_ducklake", res.Catalog)
		require.Len(t, res.Relations, len(domain.TPCHRelations))
		assert.Equal(t, domain.RelationCount{Name: "region", Rows: 10}, res.Relations[0])
		assert.Equal(t, "lineitem", res.Relations[7].Name)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_InvalidScaleIssuesNothing(t *testing.T) {
	s, mock := newMockSession(t)
	loader := NewLoader(s, NewAttacher(s, testAttachOptions(t)))

	for _, scale := range []float64{0, -3} {
		_, err := loader.Load(context.Background(), scale)
		var scaleErr *domain.InvalidScaleError
		require.True(t, errors.As(err, &scaleErr), "scale %v: got %v", scale, err)
		assert.Equal(t, domain.ExitUsage, domain.ExitCode(err))
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_CopyFailureRollsBack(t *testing.T) {
	s, mock := newMockSession(t)
	opts := testAttachOptions(t)

	mock.ExpectExec("INSTALL httpfs; LOAD httpfs;").WillReturnResult(ok())
	mock.ExpectExec("INSTALL ducklake; LOAD ducklake;").WillReturnResult(ok())
	expectSecret(t, mock, opts.Secret)
	expectAttachedCheck(mock, opts.Alias, 0)
	mock.ExpectExec(attachStatement(opts)).WillReturnResult(ok())
	mock.ExpectExec("INSTALL tpch; LOAD tpch;").WillReturnResult(ok())
	expectDropGenerated(mock)
	mock.ExpectExec("CALL dbgen(sf = 1, catalog = 'memory')").WillReturnResult(ok())
	mock.ExpectBegin()
	mock.ExpectExec(ctas("region")).WillReturnResult(ok())
	mock.ExpectExec(ctas("nation")).WillReturnError(errors.New("IO Error: connection to storage lost"))
	mock.ExpectRollback()

	_, err := NewLoader(s, NewAttacher(s, opts)).Load(context.Background(), 1)
	var engErr *domain.EngineError
	require.True(t, errors.As(err, &engErr))
	assert.Equal(t, "copy nation", engErr.Op)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_AttachFailureStopsBeforeGenerate(t *testing.T) {
	s, mock := newMockSession(t)
	opts := testAttachOptions(t)

	mock.ExpectExec("INSTALL httpfs; LOAD httpfs;").WillReturnResult(ok())
	mock.ExpectExec("INSTALL ducklake; LOAD ducklake;").WillReturnResult(ok())
	expectSecret(t, mock, opts.Secret)
	expectAttachedCheck(mock, opts.Alias, 0)
	mock.ExpectExec(attachStatement(opts)).WillReturnError(errors.New("HTTP 403"))

	_, err := NewLoader(s, NewAttacher(s, opts)).Load(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attach my_ducklake")
	require.NoError(t, mock.ExpectationsWereMet())
}
