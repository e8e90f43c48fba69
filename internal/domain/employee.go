package domain

import "regexp"

// Employee is a staff member able to log in and own tickets.
type Employee struct {
	ID               int64
	Name             string
	Age              int
	Address          string
	Phone            string
	EmploymentStatus string
	Username         string
	PasswordHash     string
	// Role carries the referenced role id. Name is empty when the role was deleted.
	Role    Role
	Version int64
}

// CurrentVersion returns the optimistic concurrency token.
func (e Employee) CurrentVersion() int64 { return e.Version }

// EmployeeProfile is the outward projection of an employee without credentials.
type EmployeeProfile struct {
	ID               int64
	Name             string
	Age              int
	Address          string
	Phone            string
	EmploymentStatus string
	Role             Role
}

// Profile strips credential fields.
func (e Employee) Profile() EmployeeProfile {
	return EmployeeProfile{
		ID:               e.ID,
		Name:             e.Name,
		Age:              e.Age,
		Address:          e.Address,
		Phone:            e.Phone,
		EmploymentStatus: e.EmploymentStatus,
		Role:             e.Role,
	}
}

// MinEmployeeAge is the youngest age accepted for an employee.
const MinEmployeeAge = 18

// PhonePattern is an optional leading plus followed by 7 to 15 digits.
var PhonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
