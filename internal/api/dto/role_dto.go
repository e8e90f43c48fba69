package dto

import "github.com/spec-kit/helpdesk/internal/domain"

// CreateRoleRequest payload.
type CreateRoleRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// UpdateRoleRequest payload. Version is the version the caller last read.
type UpdateRoleRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=100"`
	Version *int64  `json:"version" validate:"omitempty,gte=0"`
}

// RoleResponse is a role with its version token.
type RoleResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Version int64  `json:"version"`
}

// RoleRef is the role as embedded in an employee.
type RoleRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func FromRole(r domain.Role) RoleResponse {
	return RoleResponse{ID: r.ID, Name: r.Name, Version: r.Version}
}
