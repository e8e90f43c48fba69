package sqlite

import "time"

type roleModel struct {
	ID      int64  `gorm:"primaryKey"`
	Name    string `gorm:"uniqueIndex;not null"`
	Version int64  `gorm:"not null"`
}

func (roleModel) TableName() string { return "roles" }

type employeeModel struct {
	ID               int64  `gorm:"primaryKey"`
	Name             string `gorm:"not null"`
	Age              int    `gorm:"not null"`
	Address          string `gorm:"not null"`
	Phone            string `gorm:"not null"`
	EmploymentStatus string `gorm:"not null"`
	Username         string `gorm:"uniqueIndex;not null"`
	PasswordHash     string `gorm:"not null"`
	RoleID           int64  `gorm:"not null;index"`
	Version          int64  `gorm:"not null"`
}

func (employeeModel) TableName() string { return "employees" }

// employeeRow is the joined projection used for reads.
type employeeRow struct {
	employeeModel
	RoleName string
}

type ticketModel struct {
	ID           int64  `gorm:"primaryKey"`
	TicketNumber string `gorm:"uniqueIndex;not null"`
	Title        string `gorm:"not null"`
	Body         string `gorm:"not null"`
	Status       string `gorm:"not null"`
	AssigneeID   int64  `gorm:"not null;index"`
	CreatedDate  time.Time
	CreatedBy    string
	CreatedByID  *int64
	UpdatedDate  time.Time
	UpdatedBy    string
	Version      int64 `gorm:"not null"`
}

func (ticketModel) TableName() string { return "tickets" }

type remarkModel struct {
	TicketID int64 `gorm:"primaryKey;autoIncrement:false"`
	Seq      int   `gorm:"primaryKey;autoIncrement:false"`
	Remark   string
	AddedBy  string
	AddedAt  time.Time
}

func (remarkModel) TableName() string { return "ticket_remarks" }
