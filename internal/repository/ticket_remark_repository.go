package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// Remarks live in ticket_remarks keyed by (ticket_id, seq); seq is the
// zero-based position in the ticket's log and fixes the order.

type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func insertRemark(ctx context.Context, tx pgx.Tx, ticketID int64, seq int, remark domain.Remark) error {
	const sql = `
        INSERT INTO ticket_remarks (ticket_id, seq, remark, added_by, added_at)
        VALUES ($1,$2,$3,$4,$5)`
	_, err := tx.Exec(ctx, sql, ticketID, seq, remark.Remark, remark.AddedBy, remark.AddedAt)
	return translatePgError(err)
}

// loadRemarks returns the remark logs of the given tickets in insertion order.
func loadRemarks(ctx context.Context, q pgxQuerier, ticketIDs []int64) (map[int64][]domain.Remark, error) {
	result := make(map[int64][]domain.Remark, len(ticketIDs))
	if len(ticketIDs) == 0 {
		return result, nil
	}
	const sql = `
        SELECT ticket_id, remark, added_by, added_at
        FROM ticket_remarks WHERE ticket_id = ANY($1) ORDER BY ticket_id, seq`
	rows, err := q.Query(ctx, sql, ticketIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ticketID int64
			remark   domain.Remark
		)
		if err := rows.Scan(&ticketID, &remark.Remark, &remark.AddedBy, &remark.AddedAt); err != nil {
			return nil, err
		}
		result[ticketID] = append(result[ticketID], remark)
	}
	return result, rows.Err()
}
