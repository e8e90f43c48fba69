package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CreateTicketRequest payload. Name is the reporter's display name; it is checked but not stored.
type CreateTicketRequest struct {
	Title      string `json:"title" validate:"required,max=255"`
	Name       string `json:"name" validate:"required"`
	Body       string `json:"body" validate:"required"`
	AssigneeID int64  `json:"assigneeId" validate:"required,gt=0"`
	Filed      *bool  `json:"filed"`
}

// UpdateTicketRequest payload; absent members are left untouched.
type UpdateTicketRequest struct {
	Title      *string `json:"title" validate:"omitempty,min=1,max=255"`
	Body       *string `json:"body" validate:"omitempty,min=1"`
	Status     *string `json:"status" validate:"omitempty,ticket_status"`
	AssigneeID *int64  `json:"assigneeId" validate:"omitempty,gt=0"`
	Version    *int64  `json:"version" validate:"omitempty,gte=0"`
}

// RemarkRequest payload.
type RemarkRequest struct {
	Remark  string `json:"remark" validate:"required"`
	AddedBy string `json:"addedBy" validate:"required"`
}

// RemarkResponse is one remark log entry.
type RemarkResponse struct {
	Remark  string    `json:"remark"`
	AddedBy string    `json:"addedBy"`
	AddedAt time.Time `json:"addedAt"`
}

// TicketResponse provides full ticket info.
type TicketResponse struct {
	ID           int64               `json:"id"`
	TicketNumber string              `json:"ticketNumber"`
	Title        string              `json:"title"`
	Body         string              `json:"body"`
	Status       domain.TicketStatus `json:"status"`
	AssigneeID   int64               `json:"assigneeId"`
	CreatedDate  time.Time           `json:"createdDate"`
	CreatedBy    string              `json:"createdBy"`
	UpdatedDate  time.Time           `json:"updatedDate"`
	UpdatedBy    string              `json:"updatedBy"`
	Remarks      []RemarkResponse    `json:"remarks"`
	Version      int64               `json:"version"`
}

func FromRemark(r domain.Remark) RemarkResponse {
	return RemarkResponse{Remark: r.Remark, AddedBy: r.AddedBy, AddedAt: r.AddedAt}
}

func FromTicket(t domain.Ticket) TicketResponse {
	remarks := make([]RemarkResponse, 0, len(t.Remarks))
	for _, r := range t.Remarks {
		remarks = append(remarks, FromRemark(r))
	}
	return TicketResponse{
		ID:           t.ID,
		TicketNumber: t.TicketNumber,
		Title:        t.Title,
		Body:         t.Body,
		Status:       t.Status,
		AssigneeID:   t.AssigneeID,
		CreatedDate:  t.CreatedDate,
		CreatedBy:    t.CreatedBy,
		UpdatedDate:  t.UpdatedDate,
		UpdatedBy:    t.UpdatedBy,
		Remarks:      remarks,
		Version:      t.Version,
	}
}
