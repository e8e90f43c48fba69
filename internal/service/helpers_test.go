package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	sqlitestore "github.com/spec-kit/helpdesk/internal/repository/sqlite"
)

type fixture struct {
	roles      *RoleService
	employees  *EmployeeService
	tickets    *TicketService
	auth       *AuthService
	dispatcher events.Dispatcher
	ticketRepo repository.TicketRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	db, err := persistence.NewSQLite(config.SQLiteConfig{
		Path:          filepath.Join(t.TempDir(), "helpdesk_test.db"),
		BusyTimeoutMS: 5000,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	sqlDB, err := db.SQLDB()
	require.NoError(t, err)
	require.NoError(t, persistence.RunMigrations(ctx, sqlDB, config.DriverSQLite, logger))

	f := &fixture{
		dispatcher: events.NewInMemoryDispatcher(),
		ticketRepo: sqlitestore.NewTicketRepository(db.DB),
	}

	hasher := auth.NewBcryptHasher(4)
	roleRepo := sqlitestore.NewRoleRepository(db.DB)
	f.roles = NewRoleService(RoleDependencies{RoleRepo: roleRepo, Logger: logger})
	f.employees = NewEmployeeService(EmployeeDependencies{
		EmployeeRepo: sqlitestore.NewEmployeeRepository(db.DB),
		RoleRepo:     roleRepo,
		Hasher:       hasher,
		Dispatcher:   f.dispatcher,
		Logger:       logger,
	})
	f.tickets = NewTicketService(TicketDependencies{
		TicketRepo: f.ticketRepo,
		Assignees:  f.employees,
		Numbers:    NewTicketNumberGenerator("TCK-"),
		Dispatcher: f.dispatcher,
		Logger:     logger,
	})
	f.auth = NewAuthService(AuthDependencies{
		Employees: f.employees,
		Hasher:    hasher,
		Tokens:    auth.NewTokenManager("test-secret", 5),
		Logger:    logger,
	})
	return f
}

func (f *fixture) role(t *testing.T, name string) *domain.Role {
	t.Helper()
	role, err := f.roles.Create(context.Background(), name)
	require.NoError(t, err)
	return role
}

func (f *fixture) employee(t *testing.T, username string, roleID int64) *domain.Employee {
	t.Helper()
	employee, err := f.employees.Create(context.Background(), EmployeeCreateInput{
		Name:             "Employee " + username,
		Age:              30,
		Address:          "HQ",
		Phone:            "+15550000",
		EmploymentStatus: "Active",
		Username:         username,
		Password:         "x",
		RoleID:           roleID,
	})
	require.NoError(t, err)
	return employee
}

func (f *fixture) ticket(t *testing.T, actor domain.Actor, assigneeID int64, title string) *domain.Ticket {
	t.Helper()
	ticket, err := f.tickets.Create(context.Background(), actor, TicketCreateInput{
		Title:      title,
		Name:       actor.Username,
		Body:       "body of " + title,
		AssigneeID: assigneeID,
	})
	require.NoError(t, err)
	return ticket
}

func actorFor(e *domain.Employee) domain.Actor {
	return domain.Actor{EmployeeID: e.ID, Username: e.Username, Role: e.Role.Name}
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }
