package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
	// ErrAdminExists is returned by CreateFirstAdmin once any admin is stored.
	ErrAdminExists = errors.New("an admin already exists")
)

const uniqueViolation = "23505"

// wrap tags err with the calling function name and maps no-rows and
// unique-violation errors onto ErrNotFound and ErrConflict.
func wrap(fn string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", fn, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w: %s", fn, ErrConflict, pgErr.ConstraintName)
	}
	return fmt.Errorf("%s: %w", fn, err)
}
