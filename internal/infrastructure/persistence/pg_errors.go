package persistence

import (
	"errors"

	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes Postgres raises when a transaction loses a race with
// a concurrent one. These resolve on retry once the competing
// transaction finishes.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
)

// translateConflict maps Postgres contention failures onto
// shared.ErrConcurrencyConflict so the application retry loop re-runs
// the whole transaction instead of surfacing a raw driver error.
func translateConflict(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected:
			return shared.ErrConcurrencyConflict
		}
	}
	return err
}

// isUniqueViolation reports whether err is a unique-index violation on
// the named constraint. An empty constraint matches any.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
