package ragcontext

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	selectLatest = regexp.QuoteMeta(`SELECT body FROM "context_imports" ORDER BY seq DESC LIMIT 1`)
	insertImport = regexp.QuoteMeta(`INSERT INTO "context_imports"(id, body) VALUES($1,$2)`)
)

func newMockPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return newPostgresStore(db, ""), mock
}

func TestPostgresStoreNoRowsReadsEmpty(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	ctx := context.Background()

	mock.ExpectQuery(selectLatest).WillReturnRows(sqlmock.NewRows([]string{"body"}))
	mock.ExpectQuery(selectLatest).WillReturnRows(sqlmock.NewRows([]string{"body"}))

	text, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", text)

	has, err := s.Has(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreLatestImportWins(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	ctx := context.Background()

	mock.ExpectExec(insertImport).WithArgs(sqlmock.AnyArg(), "first").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insertImport).WithArgs(sqlmock.AnyArg(), "second").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectQuery(selectLatest).WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow("second"))

	require.NoError(t, s.Set(ctx, "first"))
	require.NoError(t, s.Set(ctx, "second"))

	text, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", text)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSetEmptyClears(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	ctx := context.Background()

	mock.ExpectExec(insertImport).WithArgs(sqlmock.AnyArg(), "").WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery(selectLatest).WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow(""))

	require.NoError(t, s.Set(ctx, ""))

	has, err := s.Has(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreErrors(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	ctx := context.Background()

	mock.ExpectExec(insertImport).WillReturnError(errors.New("connection reset"))
	mock.ExpectQuery(selectLatest).WillReturnError(errors.New("connection reset"))

	err := s.Set(ctx, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save context")

	_, err = s.Get(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load context")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreMigrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "context_imports"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, s.migrate(context.Background()))

	mock.ExpectExec(`CREATE TABLE`).WillReturnError(errors.New("permission denied"))
	err := s.migrate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to migrate context table")

	require.NoError(t, mock.ExpectationsWereMet())
}
