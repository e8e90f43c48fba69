package repository

import "github.com/spec-kit/helpdesk/internal/query"

// Field names accepted in filters and sortBy, mapped to their SQL columns.
// Both storage adapters share these so filters behave identically.
var (
	RoleFields = query.Fields{
		"id":   "id",
		"name": "name",
	}

	EmployeeFields = query.Fields{
		"id":               "e.id",
		"name":             "e.name",
		"age":              "e.age",
		"address":          "e.address",
		"phone":            "e.phone",
		"employmentStatus": "e.employment_status",
		"username":         "e.username",
		"roleId":           "e.role_id",
	}

	TicketFields = query.Fields{
		"id":           "id",
		"ticketNumber": "ticket_number",
		"title":        "title",
		"status":       "status",
		"assigneeId":   "assignee_id",
		"createdById":  "created_by_id",
		"createdDate":  "created_date",
		"createdBy":    "created_by",
		"updatedDate":  "updated_date",
		"updatedBy":    "updated_by",
	}
)

// ID columns used as ordering tie-breakers.
const (
	RoleIDColumn     = "id"
	EmployeeIDColumn = "e.id"
	TicketIDColumn   = "id"
)
