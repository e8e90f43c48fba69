package domain

// RoleAdmin is the role name granted full administrative access.
const RoleAdmin = "ADMIN"

// Role is an organizational role referenced by employees.
type Role struct {
	ID      int64
	Name    string
	Version int64
}

// CurrentVersion returns the optimistic concurrency token.
func (r Role) CurrentVersion() int64 { return r.Version }
