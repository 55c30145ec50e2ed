package repository

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapErrorNil(t *testing.T) {
	assert.NoError(t, wrapError("insert category", nil))
}

func TestWrapErrorTagsOperation(t *testing.T) {
	err := wrapError("insert category", errors.New("disk full"))
	require.Error(t, err)
	assert.Equal(t, "repository: insert category: disk full", err.Error())

	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "insert category", storageErr.Op)
}

func TestClassifyNoRows(t *testing.T) {
	err := wrapError("find category by id", sql.ErrNoRows)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClassifyPostgresUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "categories_code_key"}
	err := wrapError("insert category", pgErr)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "categories_code_key")
}

func TestClassifyPostgresOtherError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23503", ConstraintName: "categories_parent_fkey"}
	err := wrapError("insert category", pgErr)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, pgErr)
}

func TestClassifySQLiteUniqueViolation(t *testing.T) {
	cause := errors.New("constraint failed: UNIQUE constraint failed: categories.code (2067)")
	err := wrapError("insert category", cause)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestClassifyPassthrough(t *testing.T) {
	cause := errors.New("database is locked")
	err := wrapError("update category", cause)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, cause)
}
