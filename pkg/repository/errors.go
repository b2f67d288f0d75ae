package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgDuplicateKeyCode     = "23505"
	pgSerializationFailure = "40001"
	pgLockNotAvailableCode = "55P03"
)

// ErrConflict indicates a write lost an optimistic concurrency race:
// the row changed between read and write.
var ErrConflict = errors.New("record modified concurrently")

// MapError translates database errors to domain errors.
// It maps sql.ErrNoRows to notFoundErr, PostgreSQL unique violation (23505)
// to duplicateErr, and serialization or lock failures to ErrConflict.
// Other errors are returned unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgDuplicateKeyCode:
			return duplicateErr
		case pgSerializationFailure, pgLockNotAvailableCode:
			return ErrConflict
		}
	}

	return err
}
