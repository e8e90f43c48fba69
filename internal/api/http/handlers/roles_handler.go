package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/query"
	"github.com/spec-kit/helpdesk/internal/service"
)

// RolesHandler manages role endpoints.
type RolesHandler struct {
	roles *service.RoleService
}

// NewRolesHandler constructs handler.
func NewRolesHandler(roles *service.RoleService) *RolesHandler {
	return &RolesHandler{roles: roles}
}

// List GET /api/roles.
func (h *RolesHandler) List(c *fiber.Ctx) error {
	req, err := pageRequest(c)
	if err != nil {
		return err
	}
	page, err := h.roles.List(c.UserContext(), service.RoleFilter{Name: c.Query("name")}, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": query.MapPage(page, dto.FromRole)})
}

// Get GET /api/roles/:id.
func (h *RolesHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	role, err := h.roles.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromRole(*role)})
}

// Create POST /api/roles.
func (h *RolesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateRoleRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	role, err := h.roles.Create(c.UserContext(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromRole(*role)})
}

// Update PUT /api/roles/:id.
func (h *RolesHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateRoleRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	role, err := h.roles.Update(c.UserContext(), id, service.RoleUpdateInput{Name: req.Name, Version: req.Version})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromRole(*role)})
}

// Delete DELETE /api/roles/:id.
func (h *RolesHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	version, err := queryInt64(c, "version")
	if err != nil {
		return err
	}
	if err := h.roles.Delete(c.UserContext(), id, version); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
