package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusDraft      TicketStatus = "draft"
	TicketStatusFiled      TicketStatus = "filed"
	TicketStatusInProgress TicketStatus = "in-progress"
	TicketStatusClosed     TicketStatus = "closed"
	TicketStatusDuplicate  TicketStatus = "duplicate"
)

// TicketStatuses lists every accepted status value.
var TicketStatuses = []TicketStatus{
	TicketStatusDraft,
	TicketStatusFiled,
	TicketStatusInProgress,
	TicketStatusClosed,
	TicketStatusDuplicate,
}

// Valid reports whether s is one of the enumerated statuses.
func (s TicketStatus) Valid() bool {
	for _, known := range TicketStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseTicketStatus resolves a status ignoring case and surrounding whitespace.
func ParseTicketStatus(value string) (TicketStatus, bool) {
	status := TicketStatus(strings.ToLower(strings.TrimSpace(value)))
	return status, status.Valid()
}

// InitialTicketStatus derives the creation status from the filed flag.
// An absent flag counts as filed.
func InitialTicketStatus(filed *bool) TicketStatus {
	if filed != nil && !*filed {
		return TicketStatusDraft
	}
	return TicketStatusFiled
}

// Remark is one entry of a ticket's append-only remark log.
type Remark struct {
	Remark  string
	AddedBy string
	AddedAt time.Time
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID           int64
	TicketNumber string
	Title        string
	Body         string
	Status       TicketStatus
	AssigneeID   int64
	CreatedDate  time.Time
	CreatedBy    string
	CreatedByID  *int64
	UpdatedDate  time.Time
	UpdatedBy    string
	Remarks      []Remark
	Version      int64
}

// CurrentVersion returns the optimistic concurrency token.
func (t Ticket) CurrentVersion() int64 { return t.Version }
