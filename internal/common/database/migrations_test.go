package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "postgres"), mock
}

func TestRunMigrations(t *testing.T) {
	db, mock := newMock(t)
	for _, stmt := range Migrations {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, RunMigrations(context.Background(), db, zerolog.Nop()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsSkipsAlreadyExists(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(Migrations[0])).WillReturnError(errors.New(`relation "users" already exists`))
	for _, stmt := range Migrations[1:] {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, RunMigrations(context.Background(), db, zerolog.Nop()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsFails(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(Migrations[0])).WillReturnError(errors.New("permission denied"))

	err := RunMigrations(context.Background(), db, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration 1 failed")
}
