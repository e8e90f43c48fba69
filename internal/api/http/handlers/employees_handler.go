package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/query"
	"github.com/spec-kit/helpdesk/internal/service"
)

// EmployeesHandler manages employee directory endpoints.
type EmployeesHandler struct {
	employees *service.EmployeeService
}

// NewEmployeesHandler constructs handler.
func NewEmployeesHandler(employees *service.EmployeeService) *EmployeesHandler {
	return &EmployeesHandler{employees: employees}
}

// List GET /api/employees.
func (h *EmployeesHandler) List(c *fiber.Ctx) error {
	req, err := pageRequest(c)
	if err != nil {
		return err
	}
	age, err := queryInt(c, "age")
	if err != nil {
		return err
	}
	roleID, err := queryInt64(c, "roleId")
	if err != nil {
		return err
	}
	filter := service.EmployeeFilter{
		Name:             c.Query("name"),
		Address:          c.Query("address"),
		Phone:            c.Query("phone"),
		EmploymentStatus: c.Query("employmentStatus"),
		Age:              age,
		RoleID:           roleID,
	}
	page, err := h.employees.List(c.UserContext(), filter, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": query.MapPage(page, dto.FromEmployeeProfile)})
}

// Get GET /api/employees/:id.
func (h *EmployeesHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	profile, err := h.employees.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromEmployeeProfile(*profile)})
}

// Create POST /api/employees.
func (h *EmployeesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateEmployeeRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	employee, err := h.employees.Create(c.UserContext(), service.EmployeeCreateInput{
		Name:             req.Name,
		Age:              req.Age,
		Address:          req.Address,
		Phone:            req.Phone,
		EmploymentStatus: req.EmploymentStatus,
		Username:         req.Username,
		Password:         req.Password,
		RoleID:           req.RoleID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromEmployee(*employee)})
}

// Update PUT /api/employees/:id.
func (h *EmployeesHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateEmployeeRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	employee, err := h.employees.Update(c.UserContext(), id, service.EmployeeUpdateInput{
		Name:             req.Name,
		Age:              req.Age,
		Address:          req.Address,
		Phone:            req.Phone,
		EmploymentStatus: req.EmploymentStatus,
		Username:         req.Username,
		Password:         req.Password,
		RoleID:           req.RoleID,
		Version:          req.Version,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromEmployee(*employee)})
}

// AssignRole PATCH /api/employees/:id/role/:roleId.
func (h *EmployeesHandler) AssignRole(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	roleID, err := pathID(c, "roleId")
	if err != nil {
		return err
	}
	version, err := queryInt64(c, "version")
	if err != nil {
		return err
	}
	employee, err := h.employees.AssignRole(c.UserContext(), id, roleID, version)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromEmployee(*employee)})
}

// Delete DELETE /api/employees/:id.
func (h *EmployeesHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	version, err := queryInt64(c, "version")
	if err != nil {
		return err
	}
	if err := h.employees.Delete(c.UserContext(), id, version); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
