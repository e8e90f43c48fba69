package domain

// Actor identifies the authenticated caller of an operation.
type Actor struct {
	EmployeeID int64
	Username   string
	Role       string
}

// IsAdmin reports whether the actor holds the administrative role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// SystemActor is used for bootstrap and CLI driven writes.
var SystemActor = Actor{Username: "system", Role: RoleAdmin}
