package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/query"
	"github.com/spec-kit/helpdesk/internal/service"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	ticket, err := h.service.Create(c.UserContext(), actor, service.TicketCreateInput{
		Title:      req.Title,
		Name:       req.Name,
		Body:       req.Body,
		AssigneeID: req.AssigneeID,
		Filed:      req.Filed,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromTicket(*ticket)})
}

// UpdateTicket PUT /api/tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	ticket, err := h.service.Update(c.UserContext(), actor, id, service.TicketUpdateInput{
		Title:      req.Title,
		Body:       req.Body,
		Status:     req.Status,
		AssigneeID: req.AssigneeID,
		Version:    req.Version,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(*ticket)})
}

// AddRemark PATCH /api/tickets/:id/remarks.
func (h *TicketsHandler) AddRemark(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.RemarkRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	remark, err := h.service.AddRemark(c.UserContext(), id, service.RemarkInput{Remark: req.Remark, AddedBy: req.AddedBy})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromRemark(*remark)})
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	req, err := pageRequest(c)
	if err != nil {
		return err
	}
	assigneeID, err := queryInt64(c, "assigneeId")
	if err != nil {
		return err
	}
	createdByID, err := queryInt64(c, "createdById")
	if err != nil {
		return err
	}
	page, err := h.service.List(c.UserContext(), service.TicketFilter{
		Status:      c.Query("status"),
		AssigneeID:  assigneeID,
		CreatedByID: createdByID,
	}, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": query.MapPage(page, dto.FromTicket)})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ticket, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(*ticket)})
}

// GetTicketByNumber GET /api/tickets/number/:ticketNumber.
func (h *TicketsHandler) GetTicketByNumber(c *fiber.Ctx) error {
	ticket, err := h.service.GetByNumber(c.UserContext(), c.Params("ticketNumber"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(*ticket)})
}

// DeleteTicket DELETE /api/tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	version, err := queryInt64(c, "version")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), actor, id, version); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
