package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Conditional writes: Update and Delete take the version the caller read and
// fail with ErrStaleVersion when the stored row moved on, ErrNotFound when it is gone.

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// missingOrStale explains why a conditional write touched no rows.
func missingOrStale(ctx context.Context, q querier, table string, id int64) error {
	var exists bool
	sql := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE id=$1)", table)
	if err := q.QueryRow(ctx, sql, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrStaleVersion
	}
	return ErrNotFound
}

func countRows(ctx context.Context, pool *pgxpool.Pool, sql string, args []any) (int64, error) {
	var total int64
	if err := pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
