package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockClient(t *testing.T) (*PostgresClient, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &PostgresClient{DB: db}, mock
}

func TestEnsureSchema(t *testing.T) {
	c, mock := newMockClient(t)
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS a").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS b").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := c.EnsureSchema(context.Background(), "CREATE TABLE IF NOT EXISTS a (id TEXT)", "CREATE TABLE IF NOT EXISTS b (id TEXT)")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_RollsBack(t *testing.T) {
	c, mock := newMockClient(t)
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err := c.EnsureSchema(context.Background(), "CREATE TABLE a (id TEXT)", "CREATE TABLE b (id TEXT)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClose_NilDB(t *testing.T) {
	assert.NoError(t, (&PostgresClient{}).Close())
}
