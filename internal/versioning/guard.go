// Package versioning enforces optimistic concurrency on versioned aggregates.
package versioning

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// Versioned is implemented by every aggregate carrying a version token.
type Versioned interface {
	CurrentVersion() int64
}

// Target names the record a mutation operates on.
type Target struct {
	Aggregate string
	ID        int64
}

func (t Target) details() map[string]any {
	return map[string]any{"id": t.ID}
}

// Mutation describes a read-modify-write cycle. Save must persist conditionally
// on readVersion and report repository.ErrStaleVersion when the row moved.
type Mutation[T Versioned] struct {
	Target Target
	// Expected is the version the caller last saw. Nil skips the client-side check.
	Expected *int64
	Load     func(ctx context.Context) (T, error)
	Apply    func(current T) (T, error)
	Save     func(ctx context.Context, next T, readVersion int64) (T, error)
}

// Mutate runs the mutation once. Conflicts are returned, never retried.
func Mutate[T Versioned](ctx context.Context, m Mutation[T]) (T, error) {
	var zero T
	current, err := m.Load(ctx)
	if err != nil {
		return zero, Translate(m.Target, err)
	}
	readVersion := current.CurrentVersion()
	if err := checkExpected(m.Target, m.Expected, readVersion); err != nil {
		return zero, err
	}

	next, err := m.Apply(current)
	if err != nil {
		return zero, err
	}

	saved, err := m.Save(ctx, next, readVersion)
	if err != nil {
		return zero, Translate(m.Target, err)
	}
	return saved, nil
}

// Remove deletes a record conditionally on the version it was read at.
func Remove[T Versioned](ctx context.Context, target Target, expected *int64,
	load func(ctx context.Context) (T, error),
	remove func(ctx context.Context, readVersion int64) error,
) (T, error) {
	var zero T
	current, err := load(ctx)
	if err != nil {
		return zero, Translate(target, err)
	}
	readVersion := current.CurrentVersion()
	if err := checkExpected(target, expected, readVersion); err != nil {
		return zero, err
	}
	if err := remove(ctx, readVersion); err != nil {
		return zero, Translate(target, err)
	}
	return current, nil
}

func checkExpected(target Target, expected *int64, actual int64) error {
	if expected == nil || *expected == actual {
		return nil
	}
	details := target.details()
	details["expectedVersion"] = *expected
	details["currentVersion"] = actual
	return apperrors.NewConflict(fmt.Sprintf("%s was modified by another request", target.Aggregate), details)
}

// Translate maps repository sentinels onto caller-facing errors for target.
func Translate(target Target, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(target.Aggregate, target.details())
	case errors.Is(err, repository.ErrStaleVersion):
		return apperrors.NewConflict(fmt.Sprintf("%s was modified by another request", target.Aggregate), target.details())
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict(fmt.Sprintf("%s violates a uniqueness constraint", target.Aggregate), target.details())
	}
	return err
}
