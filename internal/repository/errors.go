package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound means no record has the requested key.
	ErrNotFound = errors.New("record not found")
	// ErrStaleVersion means the record exists but its version moved since it was read.
	ErrStaleVersion = errors.New("record version is stale")
	// ErrDuplicate means a unique column already holds the value.
	ErrDuplicate = errors.New("duplicate value")
)

const uniqueViolation = "23505"

// translatePgError maps driver errors onto the repository sentinels.
func translatePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}
