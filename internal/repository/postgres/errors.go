package postgres

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"smartinventory/internal/repository"
)

const (
	uniqueViolation      = "23505"
	numericValueOutRange = "22003"
)

// mapError translates driver errors into repository sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return &repository.DuplicateError{Field: duplicateField(pgErr.ConstraintName)}
		case numericValueOutRange:
			return repository.ErrOutOfRange
		}
	}
	return err
}

// duplicateField derives the column from Postgres' default constraint names (users_email_key).
func duplicateField(constraint string) string {
	switch {
	case strings.Contains(constraint, "username"):
		return "username"
	case strings.Contains(constraint, "email"):
		return "email"
	case strings.Contains(constraint, "pkey"):
		return "id"
	default:
		return constraint
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
