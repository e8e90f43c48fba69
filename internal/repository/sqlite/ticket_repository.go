package sqlite

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/query"
	"github.com/spec-kit/helpdesk/internal/repository"
)

// TicketRepository stores tickets and their remark logs in SQLite.
type TicketRepository struct {
	db *gorm.DB
}

var _ repository.TicketRepository = (*TicketRepository)(nil)

// NewTicketRepository instantiates the repository on an open gorm handle.
func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	m := ticketModel{
		TicketNumber: ticket.TicketNumber,
		Title:        ticket.Title,
		Body:         ticket.Body,
		Status:       string(ticket.Status),
		AssigneeID:   ticket.AssigneeID,
		CreatedDate:  ticket.CreatedDate,
		CreatedBy:    ticket.CreatedBy,
		CreatedByID:  ticket.CreatedByID,
		UpdatedDate:  ticket.UpdatedDate,
		UpdatedBy:    ticket.UpdatedBy,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translateError(err)
	}
	ticket.ID, ticket.Version = m.ID, m.Version
	if ticket.Remarks == nil {
		ticket.Remarks = []domain.Remark{}
	}
	return nil
}

func (r *TicketRepository) Update(ctx context.Context, ticket *domain.Ticket, expectedVersion int64) error {
	res := r.db.WithContext(ctx).Model(&ticketModel{}).
		Where("id = ? AND version = ?", ticket.ID, expectedVersion).
		Updates(map[string]any{
			"title":        ticket.Title,
			"body":         ticket.Body,
			"status":       string(ticket.Status),
			"assignee_id":  ticket.AssigneeID,
			"updated_date": ticket.UpdatedDate,
			"updated_by":   ticket.UpdatedBy,
			"version":      gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return missingOrStale(ctx, r.db, "tickets", ticket.ID)
	}
	ticket.Version = expectedVersion + 1
	return nil
}

func (r *TicketRepository) AppendRemark(ctx context.Context, ticket *domain.Ticket, expectedVersion int64) error {
	if len(ticket.Remarks) == 0 {
		return errors.New("append remark: ticket carries no remarks")
	}
	seq := len(ticket.Remarks) - 1
	last := ticket.Remarks[seq]

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&ticketModel{}).
			Where("id = ? AND version = ?", ticket.ID, expectedVersion).
			Updates(map[string]any{
				"updated_date": ticket.UpdatedDate,
				"updated_by":   ticket.UpdatedBy,
				"version":      gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return missingOrStale(ctx, tx, "tickets", ticket.ID)
		}
		remark := remarkModel{
			TicketID: ticket.ID,
			Seq:      seq,
			Remark:   last.Remark,
			AddedBy:  last.AddedBy,
			AddedAt:  last.AddedAt,
		}
		if err := tx.Create(&remark).Error; err != nil {
			if errors.Is(translateError(err), repository.ErrDuplicate) {
				return repository.ErrStaleVersion
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	ticket.Version = expectedVersion + 1
	return nil
}

func (r *TicketRepository) Delete(ctx context.Context, id, expectedVersion int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND version = ?", id, expectedVersion).Delete(&ticketModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return missingOrStale(ctx, tx, "tickets", id)
		}
		return tx.Where("ticket_id = ?", id).Delete(&remarkModel{}).Error
	})
}

func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *TicketRepository) GetByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	return r.first(ctx, "ticket_number = ?", ticketNumber)
}

func (r *TicketRepository) first(ctx context.Context, cond string, arg any) (*domain.Ticket, error) {
	var m ticketModel
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	tickets, err := r.attachRemarks(ctx, []ticketModel{m})
	if err != nil {
		return nil, err
	}
	return &tickets[0], nil
}

func (r *TicketRepository) List(ctx context.Context, criteria []query.Criterion, page query.Pageable) ([]domain.Ticket, int64, error) {
	base := func() *gorm.DB { return r.db.Model(&ticketModel{}) }
	q, total, err := window(ctx, base, repository.TicketFields, criteria, page)
	if err != nil {
		return nil, 0, err
	}
	var rows []ticketModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	tickets, err := r.attachRemarks(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

func (r *TicketRepository) attachRemarks(ctx context.Context, rows []ticketModel) ([]domain.Ticket, error) {
	tickets := make([]domain.Ticket, 0, len(rows))
	if len(rows) == 0 {
		return tickets, nil
	}
	ids := make([]int64, 0, len(rows))
	for _, m := range rows {
		ids = append(ids, m.ID)
	}

	var remarks []remarkModel
	if err := r.db.WithContext(ctx).Where("ticket_id IN ?", ids).Order("ticket_id, seq").Find(&remarks).Error; err != nil {
		return nil, err
	}
	byTicket := make(map[int64][]domain.Remark, len(rows))
	for _, m := range remarks {
		byTicket[m.TicketID] = append(byTicket[m.TicketID], domain.Remark{
			Remark:  m.Remark,
			AddedBy: m.AddedBy,
			AddedAt: m.AddedAt.UTC(),
		})
	}

	for _, m := range rows {
		log := byTicket[m.ID]
		if log == nil {
			log = []domain.Remark{}
		}
		tickets = append(tickets, domain.Ticket{
			ID:           m.ID,
			TicketNumber: m.TicketNumber,
			Title:        m.Title,
			Body:         m.Body,
			Status:       domain.TicketStatus(m.Status),
			AssigneeID:   m.AssigneeID,
			CreatedDate:  m.CreatedDate.UTC(),
			CreatedBy:    m.CreatedBy,
			CreatedByID:  m.CreatedByID,
			UpdatedDate:  m.UpdatedDate.UTC(),
			UpdatedBy:    m.UpdatedBy,
			Remarks:      log,
			Version:      m.Version,
		})
	}
	return tickets, nil
}
