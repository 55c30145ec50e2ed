package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors surfaced by repository operations. Callers match them
// with errors.Is to decide how a failure maps onto their own error space.
var (
	ErrNotFound   = errors.New("record not found")
	ErrConflict   = errors.New("unique constraint violation")
	ErrValidation = errors.New("validation failed")
)

// StorageError ties a failed operation to its underlying cause.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("repository: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// wrapError classifies err and tags it with the operation that failed.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: classifyError(err)}
}

// classifyError maps engine-specific failures onto the package sentinels.
// Unique violations arrive as a typed pgconn error on PostgreSQL and as a
// message prefix on SQLite.
func classifyError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
		}
		return err
	}

	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}

	return err
}
