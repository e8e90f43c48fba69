package dto

import "github.com/spec-kit/helpdesk/internal/domain"

// CreateEmployeeRequest payload.
type CreateEmployeeRequest struct {
	Name             string `json:"name" validate:"required"`
	Age              int    `json:"age" validate:"required,gte=18"`
	Address          string `json:"address" validate:"required"`
	Phone            string `json:"phone" validate:"required,phone"`
	EmploymentStatus string `json:"employmentStatus" validate:"required"`
	Username         string `json:"username" validate:"required,max=100"`
	Password         string `json:"password" validate:"required"`
	RoleID           int64  `json:"roleId" validate:"required,gt=0"`
}

// UpdateEmployeeRequest payload; absent members are left untouched.
type UpdateEmployeeRequest struct {
	Name             *string `json:"name" validate:"omitempty,min=1"`
	Age              *int    `json:"age" validate:"omitempty,gte=18"`
	Address          *string `json:"address" validate:"omitempty,min=1"`
	Phone            *string `json:"phone" validate:"omitempty,phone"`
	EmploymentStatus *string `json:"employmentStatus" validate:"omitempty,min=1"`
	Username         *string `json:"username" validate:"omitempty,min=1,max=100"`
	Password         *string `json:"password" validate:"omitempty,min=1"`
	RoleID           *int64  `json:"roleId" validate:"omitempty,gt=0"`
	Version          *int64  `json:"version" validate:"omitempty,gte=0"`
}

// EmployeeResponse is the credential-free employee projection.
type EmployeeResponse struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Age              int     `json:"age"`
	Address          string  `json:"address"`
	Phone            string  `json:"phone"`
	EmploymentStatus string  `json:"employmentStatus"`
	Role             RoleRef `json:"role"`
	Version          *int64  `json:"version,omitempty"`
}

func FromEmployeeProfile(p domain.EmployeeProfile) EmployeeResponse {
	return EmployeeResponse{
		ID:               p.ID,
		Name:             p.Name,
		Age:              p.Age,
		Address:          p.Address,
		Phone:            p.Phone,
		EmploymentStatus: p.EmploymentStatus,
		Role:             RoleRef{ID: p.Role.ID, Name: p.Role.Name},
	}
}

// FromEmployee also exposes the version, which write endpoints hand back for the next update.
func FromEmployee(e domain.Employee) EmployeeResponse {
	resp := FromEmployeeProfile(e.Profile())
	version := e.Version
	resp.Version = &version
	return resp
}
