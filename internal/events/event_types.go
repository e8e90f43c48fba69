package events

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated        EventType = "ticket_created"
	EventTicketUpdated        EventType = "ticket_updated"
	EventTicketRemarkAdded    EventType = "ticket_remark_added"
	EventTicketDeleted        EventType = "ticket_deleted"
	EventEmployeeRoleAssigned EventType = "employee_role_assigned"
)

// AllEventTypes lists every event the services publish.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketUpdated,
	EventTicketRemarkAdded,
	EventTicketDeleted,
	EventEmployeeRoleAssigned,
}

// Event represents a domain event emitted by services after a commit.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Aggregate   string    `json:"aggregate"`
	AggregateID int64     `json:"aggregate_id"`
	Actor       string    `json:"actor"`
	Timestamp   time.Time `json:"timestamp"`
	Payload     any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber string              `json:"ticket_number"`
	Title        string              `json:"title"`
	Status       domain.TicketStatus `json:"status"`
	AssigneeID   int64               `json:"assignee_id"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	TicketNumber string              `json:"ticket_number"`
	OldStatus    domain.TicketStatus `json:"old_status"`
	NewStatus    domain.TicketStatus `json:"new_status"`
	OldAssignee  int64               `json:"old_assignee_id"`
	NewAssignee  int64               `json:"new_assignee_id"`
	Version      int64               `json:"version"`
}

// TicketRemarkAddedPayload payload.
type TicketRemarkAddedPayload struct {
	TicketNumber string `json:"ticket_number"`
	AddedBy      string `json:"added_by"`
	Preview      string `json:"preview"`
	Position     int    `json:"position"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	TicketNumber string `json:"ticket_number"`
}

// EmployeeRoleAssignedPayload payload.
type EmployeeRoleAssignedPayload struct {
	OldRoleID int64  `json:"old_role_id"`
	NewRoleID int64  `json:"new_role_id"`
	RoleName  string `json:"role_name"`
}
