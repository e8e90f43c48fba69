package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/query"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/versioning"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// AssigneeDirectory resolves employees that tickets can be assigned to.
type AssigneeDirectory interface {
	GetEntityByID(ctx context.Context, id int64) (*domain.Employee, error)
}

// TicketNumberGenerator yields a fresh ticket number.
type TicketNumberGenerator func() string

// NewTicketNumberGenerator returns prefix followed by eight uppercase characters of a random UUID.
// Collisions are left to the unique index.
func NewTicketNumberGenerator(prefix string) TicketNumberGenerator {
	return func() string {
		return prefix + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	}
}

// TicketService coordinates the ticket lifecycle.
type TicketService struct {
	tickets   repository.TicketRepository
	assignees AssigneeDirectory
	numbers   TicketNumberGenerator
	now       Clock
	events    eventPublisher
	logger    *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Assignees  AssigneeDirectory
	Numbers    TicketNumberGenerator
	Dispatcher events.Dispatcher
	Clock      Clock
	Logger     *zap.Logger
}

// TicketCreateInput describes a new ticket. A nil Filed counts as filed.
type TicketCreateInput struct {
	Title      string
	Name       string
	Body       string
	AssigneeID int64
	Filed      *bool
}

// TicketUpdateInput is a partial update; nil members stay untouched.
type TicketUpdateInput struct {
	Title      *string
	Body       *string
	Status     *string
	AssigneeID *int64
	Version    *int64
}

// RemarkInput is one remark to append.
type RemarkInput struct {
	Remark  string
	AddedBy string
}

// TicketFilter holds the optional ticket listing criteria.
type TicketFilter struct {
	Status      string
	AssigneeID  *int64
	CreatedByID *int64
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := orNop(deps.Logger)
	numbers := deps.Numbers
	if numbers == nil {
		numbers = NewTicketNumberGenerator("TCK-")
	}
	now := orDefault(deps.Clock)
	return &TicketService{
		tickets:   deps.TicketRepo,
		assignees: deps.Assignees,
		numbers:   numbers,
		now:       now,
		events:    eventPublisher{dispatcher: deps.Dispatcher, logger: logger, now: now},
		logger:    logger,
	}
}

// TicketCondition composes the listing filter.
func TicketCondition(f TicketFilter) query.Condition[domain.Ticket] {
	return query.Compose[domain.Ticket]().
		EqualFold("status", f.Status, func(t domain.Ticket) string { return string(t.Status) }).
		EqualID("assigneeId", f.AssigneeID, func(t domain.Ticket) int64 { return t.AssigneeID }).
		EqualOptionalID("createdById", f.CreatedByID, func(t domain.Ticket) *int64 { return t.CreatedByID }).
		Build()
}

// Create files or drafts a ticket on behalf of actor.
func (s *TicketService) Create(ctx context.Context, actor domain.Actor, in TicketCreateInput) (*domain.Ticket, error) {
	if err := requireText(map[string]string{"title": in.Title, "body": in.Body}); err != nil {
		return nil, err
	}
	if _, err := s.assignees.GetEntityByID(ctx, in.AssigneeID); err != nil {
		return nil, err
	}

	now := s.now()
	ticket := &domain.Ticket{
		TicketNumber: s.numbers(),
		Title:        in.Title,
		Body:         in.Body,
		Status:       domain.InitialTicketStatus(in.Filed),
		AssigneeID:   in.AssigneeID,
		CreatedDate:  now,
		CreatedBy:    actor.Username,
		CreatedByID:  actorID(actor),
		UpdatedDate:  now,
		UpdatedBy:    actor.Username,
		Remarks:      []domain.Remark{},
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("ticket number already issued", map[string]any{"ticketNumber": ticket.TicketNumber})
		}
		return nil, err
	}

	s.logger.Info("ticket created",
		zap.Int64("ticket_id", ticket.ID),
		zap.String("ticket_number", ticket.TicketNumber),
		zap.String("status", string(ticket.Status)))
	s.events.publish(ctx, events.Event{
		Type:        events.EventTicketCreated,
		Aggregate:   aggregateTicket,
		AggregateID: ticket.ID,
		Actor:       actor.Username,
		Payload: events.TicketCreatedPayload{
			TicketNumber: ticket.TicketNumber,
			Title:        ticket.Title,
			Status:       ticket.Status,
			AssigneeID:   ticket.AssigneeID,
		},
	})
	return ticket, nil
}

// Update patches title, body, status or assignee under the version guard.
// Any enumerated status is accepted; transitions are not restricted.
func (s *TicketService) Update(ctx context.Context, actor domain.Actor, id int64, in TicketUpdateInput) (*domain.Ticket, error) {
	var status *domain.TicketStatus
	if in.Status != nil {
		parsed, ok := domain.ParseTicketStatus(*in.Status)
		if !ok {
			return nil, apperrors.NewValidationError("invalid ticket status", map[string]any{"status": *in.Status})
		}
		status = &parsed
	}

	var before domain.Ticket
	updated, err := versioning.Mutate(ctx, versioning.Mutation[domain.Ticket]{
		Target:   ticketTarget(id),
		Expected: in.Version,
		Load:     s.load(id),
		Apply: func(t domain.Ticket) (domain.Ticket, error) {
			before = t
			if in.Title != nil {
				t.Title = *in.Title
			}
			if in.Body != nil {
				t.Body = *in.Body
			}
			if status != nil {
				t.Status = *status
			}
			if in.AssigneeID != nil {
				if _, err := s.assignees.GetEntityByID(ctx, *in.AssigneeID); err != nil {
					return t, err
				}
				t.AssigneeID = *in.AssigneeID
			}
			t.UpdatedDate = s.now()
			t.UpdatedBy = actor.Username
			return t, requireText(map[string]string{"title": t.Title, "body": t.Body})
		},
		Save: func(ctx context.Context, t domain.Ticket, readVersion int64) (domain.Ticket, error) {
			err := s.tickets.Update(ctx, &t, readVersion)
			return t, err
		},
	})
	if err != nil {
		return nil, err
	}

	s.events.publish(ctx, events.Event{
		Type:        events.EventTicketUpdated,
		Aggregate:   aggregateTicket,
		AggregateID: updated.ID,
		Actor:       actor.Username,
		Payload: events.TicketUpdatedPayload{
			TicketNumber: updated.TicketNumber,
			OldStatus:    before.Status,
			NewStatus:    updated.Status,
			OldAssignee:  before.AssigneeID,
			NewAssignee:  updated.AssigneeID,
			Version:      updated.Version,
		},
	})
	return &updated, nil
}

// AddRemark appends one entry to the ticket's remark log and returns it.
func (s *TicketService) AddRemark(ctx context.Context, id int64, in RemarkInput) (*domain.Remark, error) {
	if err := requireText(map[string]string{"remark": in.Remark, "addedBy": in.AddedBy}); err != nil {
		return nil, err
	}

	var appended domain.Remark
	updated, err := versioning.Mutate(ctx, versioning.Mutation[domain.Ticket]{
		Target: ticketTarget(id),
		Load:   s.load(id),
		Apply: func(t domain.Ticket) (domain.Ticket, error) {
			now := s.now()
			appended = domain.Remark{Remark: in.Remark, AddedBy: in.AddedBy, AddedAt: now}
			remarks := make([]domain.Remark, 0, len(t.Remarks)+1)
			t.Remarks = append(append(remarks, t.Remarks...), appended)
			t.UpdatedDate = now
			return t, nil
		},
		Save: func(ctx context.Context, t domain.Ticket, readVersion int64) (domain.Ticket, error) {
			err := s.tickets.AppendRemark(ctx, &t, readVersion)
			return t, err
		},
	})
	if err != nil {
		return nil, err
	}

	s.events.publish(ctx, events.Event{
		Type:        events.EventTicketRemarkAdded,
		Aggregate:   aggregateTicket,
		AggregateID: updated.ID,
		Actor:       in.AddedBy,
		Payload: events.TicketRemarkAddedPayload{
			TicketNumber: updated.TicketNumber,
			AddedBy:      in.AddedBy,
			Preview:      stringPreview(in.Remark, 80),
			Position:     len(updated.Remarks) - 1,
		},
	})
	return &appended, nil
}

// GetByID loads a ticket with its remarks.
func (s *TicketService) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, versioning.Translate(ticketTarget(id), err)
	}
	return ticket, nil
}

// GetByNumber loads a ticket by its public number.
func (s *TicketService) GetByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByNumber(ctx, ticketNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound(aggregateTicket, map[string]any{"ticketNumber": ticketNumber})
		}
		return nil, err
	}
	return ticket, nil
}

// List returns one page of tickets matching the filter.
func (s *TicketService) List(ctx context.Context, f TicketFilter, req query.PageRequest) (query.Page[domain.Ticket], error) {
	cond := TicketCondition(f)
	return query.Fetch(ctx, TicketPageSpec, req, func(ctx context.Context, p query.Pageable) ([]domain.Ticket, int64, error) {
		return s.tickets.List(ctx, cond.Criteria(), p)
	})
}

// Delete removes a ticket and its remarks.
func (s *TicketService) Delete(ctx context.Context, actor domain.Actor, id int64, expected *int64) error {
	removed, err := versioning.Remove(ctx, ticketTarget(id), expected, s.load(id),
		func(ctx context.Context, readVersion int64) error {
			return s.tickets.Delete(ctx, id, readVersion)
		})
	if err != nil {
		return err
	}
	s.logger.Info("ticket deleted", zap.Int64("ticket_id", id), zap.String("actor", actor.Username))
	s.events.publish(ctx, events.Event{
		Type:        events.EventTicketDeleted,
		Aggregate:   aggregateTicket,
		AggregateID: id,
		Actor:       actor.Username,
		Payload:     events.TicketDeletedPayload{TicketNumber: removed.TicketNumber},
	})
	return nil
}

func (s *TicketService) load(id int64) func(ctx context.Context) (domain.Ticket, error) {
	return func(ctx context.Context) (domain.Ticket, error) {
		ticket, err := s.tickets.GetByID(ctx, id)
		if err != nil {
			return domain.Ticket{}, err
		}
		return *ticket, nil
	}
}

func actorID(actor domain.Actor) *int64 {
	if actor.EmployeeID == 0 {
		return nil
	}
	id := actor.EmployeeID
	return &id
}

func ticketTarget(id int64) versioning.Target {
	return versioning.Target{Aggregate: aggregateTicket, ID: id}
}
