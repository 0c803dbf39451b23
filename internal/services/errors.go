package services

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a queried entity does not exist. For
	// signin it also covers a wrong password, so that an attacker cannot
	// tell a bad password from an unknown email.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken is returned when a signup collides with an existing
	// email address.
	ErrEmailTaken = errors.New("email already registered")

	// ErrUpstream is returned when the external media host rejects an
	// upload. The upstream response body is logged, never surfaced.
	ErrUpstream = errors.New("media upstream failure")
)

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
