package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/query"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	// Update writes the mutable columns and the updated stamp.
	Update(ctx context.Context, ticket *domain.Ticket, expectedVersion int64) error
	// AppendRemark persists the last entry of ticket.Remarks together with the updated stamp.
	AppendRemark(ctx context.Context, ticket *domain.Ticket, expectedVersion int64) error
	Delete(ctx context.Context, id, expectedVersion int64) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error)
	List(ctx context.Context, criteria []query.Criterion, page query.Pageable) ([]domain.Ticket, int64, error)
}

const ticketSelect = `
        SELECT id, ticket_number, title, body, status, assignee_id, created_date, created_by, created_by_id,
               updated_date, updated_by, version
        FROM tickets`

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const sql = `
        INSERT INTO tickets (ticket_number, title, body, status, assignee_id, created_date, created_by, created_by_id,
                             updated_date, updated_by, version)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,0)
        RETURNING id, version`
	err := r.pool.QueryRow(ctx, sql,
		ticket.TicketNumber,
		ticket.Title,
		ticket.Body,
		ticket.Status,
		ticket.AssigneeID,
		ticket.CreatedDate,
		ticket.CreatedBy,
		ticket.CreatedByID,
		ticket.UpdatedDate,
		ticket.UpdatedBy,
	).Scan(&ticket.ID, &ticket.Version)
	if err != nil {
		return translatePgError(err)
	}
	if ticket.Remarks == nil {
		ticket.Remarks = []domain.Remark{}
	}
	return nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket, expectedVersion int64) error {
	const sql = `
        UPDATE tickets SET title=$1, body=$2, status=$3, assignee_id=$4, updated_date=$5, updated_by=$6,
            version=version+1
        WHERE id=$7 AND version=$8`
	cmd, err := r.pool.Exec(ctx, sql,
		ticket.Title,
		ticket.Body,
		ticket.Status,
		ticket.AssigneeID,
		ticket.UpdatedDate,
		ticket.UpdatedBy,
		ticket.ID,
		expectedVersion,
	)
	if err != nil {
		return translatePgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return missingOrStale(ctx, r.pool, "tickets", ticket.ID)
	}
	ticket.Version = expectedVersion + 1
	return nil
}

func (r *ticketRepository) AppendRemark(ctx context.Context, ticket *domain.Ticket, expectedVersion int64) error {
	if len(ticket.Remarks) == 0 {
		return errors.New("append remark: ticket carries no remarks")
	}
	seq := len(ticket.Remarks) - 1

	return r.inTx(ctx, func(tx pgx.Tx) error {
		const sql = `UPDATE tickets SET updated_date=$1, updated_by=$2, version=version+1 WHERE id=$3 AND version=$4`
		cmd, err := tx.Exec(ctx, sql, ticket.UpdatedDate, ticket.UpdatedBy, ticket.ID, expectedVersion)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return missingOrStale(ctx, tx, "tickets", ticket.ID)
		}
		if err := insertRemark(ctx, tx, ticket.ID, seq, ticket.Remarks[seq]); err != nil {
			// A duplicate (ticket_id, seq) means another append won the race.
			if errors.Is(err, ErrDuplicate) {
				return ErrStaleVersion
			}
			return err
		}
		ticket.Version = expectedVersion + 1
		return nil
	})
}

func (r *ticketRepository) Delete(ctx context.Context, id, expectedVersion int64) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, `DELETE FROM tickets WHERE id=$1 AND version=$2`, id, expectedVersion)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return missingOrStale(ctx, tx, "tickets", id)
		}
		_, err = tx.Exec(ctx, `DELETE FROM ticket_remarks WHERE ticket_id=$1`, id)
		return err
	})
}

func (r *ticketRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, ticketSelect+` WHERE id=$1`, id)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, ticketSelect+` WHERE ticket_number=$1`, ticketNumber)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, sql string, arg any) (*domain.Ticket, error) {
	ticket, err := scanTicket(r.pool.QueryRow(ctx, sql, arg))
	if err != nil {
		return nil, translatePgError(err)
	}
	remarks, err := loadRemarks(ctx, r.pool, []int64{ticket.ID})
	if err != nil {
		return nil, err
	}
	ticket.Remarks = withRemarks(remarks[ticket.ID])
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, criteria []query.Criterion, page query.Pageable) ([]domain.Ticket, int64, error) {
	where, args, err := query.Where(query.Postgres, TicketFields, criteria, 0)
	if err != nil {
		return nil, 0, err
	}

	total, err := countRows(ctx, r.pool, "SELECT COUNT(*) FROM tickets WHERE "+where, args)
	if err != nil {
		return nil, 0, err
	}

	sql := fmt.Sprintf(`%s WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		ticketSelect, where, page.OrderBy(), page.Size, page.Offset())
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	tickets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Ticket, error) {
		return scanTicket(row)
	})
	if err != nil {
		return nil, 0, err
	}

	ids := make([]int64, 0, len(tickets))
	for _, t := range tickets {
		ids = append(ids, t.ID)
	}
	remarks, err := loadRemarks(ctx, r.pool, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range tickets {
		tickets[i].Remarks = withRemarks(remarks[tickets[i].ID])
	}
	return tickets, total, nil
}

func scanTicket(row pgx.Row) (domain.Ticket, error) {
	var t domain.Ticket
	err := row.Scan(
		&t.ID,
		&t.TicketNumber,
		&t.Title,
		&t.Body,
		&t.Status,
		&t.AssigneeID,
		&t.CreatedDate,
		&t.CreatedBy,
		&t.CreatedByID,
		&t.UpdatedDate,
		&t.UpdatedBy,
		&t.Version,
	)
	return t, err
}

func withRemarks(remarks []domain.Remark) []domain.Remark {
	if remarks == nil {
		return []domain.Remark{}
	}
	return remarks
}
