package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/query"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/versioning"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// EmployeeService manages the employee directory.
type EmployeeService struct {
	employees repository.EmployeeRepository
	roles     repository.RoleRepository
	hasher    PasswordHasher
	events    eventPublisher
	logger    *zap.Logger
}

// EmployeeDependencies bundles collaborators for the employee service.
type EmployeeDependencies struct {
	EmployeeRepo repository.EmployeeRepository
	RoleRepo     repository.RoleRepository
	Hasher       PasswordHasher
	Dispatcher   events.Dispatcher
	Clock        Clock
	Logger       *zap.Logger
}

// EmployeeFilter holds the optional employee listing criteria.
type EmployeeFilter struct {
	Name             string
	Address          string
	Phone            string
	EmploymentStatus string
	Age              *int
	RoleID           *int64
}

// EmployeeCreateInput describes a new employee.
type EmployeeCreateInput struct {
	Name             string
	Age              int
	Address          string
	Phone            string
	EmploymentStatus string
	Username         string
	Password         string
	RoleID           int64
}

// EmployeeUpdateInput is a partial update; nil members stay untouched.
type EmployeeUpdateInput struct {
	Name             *string
	Age              *int
	Address          *string
	Phone            *string
	EmploymentStatus *string
	Username         *string
	Password         *string
	RoleID           *int64
	Version          *int64
}

// NewEmployeeService constructs the service.
func NewEmployeeService(deps EmployeeDependencies) *EmployeeService {
	logger := orNop(deps.Logger)
	return &EmployeeService{
		employees: deps.EmployeeRepo,
		roles:     deps.RoleRepo,
		hasher:    deps.Hasher,
		events:    eventPublisher{dispatcher: deps.Dispatcher, logger: logger, now: orDefault(deps.Clock)},
		logger:    logger,
	}
}

// EmployeeCondition composes the listing filter.
func EmployeeCondition(f EmployeeFilter) query.Condition[domain.Employee] {
	return query.Compose[domain.Employee]().
		Contains("name", f.Name, func(e domain.Employee) string { return e.Name }).
		Contains("address", f.Address, func(e domain.Employee) string { return e.Address }).
		Contains("phone", f.Phone, func(e domain.Employee) string { return e.Phone }).
		EqualFold("employmentStatus", f.EmploymentStatus, func(e domain.Employee) string { return e.EmploymentStatus }).
		EqualInt("age", f.Age, func(e domain.Employee) int { return e.Age }).
		EqualID("roleId", f.RoleID, func(e domain.Employee) int64 { return e.Role.ID }).
		Build()
}

// List returns one page of employee profiles matching the filter.
func (s *EmployeeService) List(ctx context.Context, f EmployeeFilter, req query.PageRequest) (query.Page[domain.EmployeeProfile], error) {
	cond := EmployeeCondition(f)
	page, err := query.Fetch(ctx, EmployeePageSpec, req, func(ctx context.Context, p query.Pageable) ([]domain.Employee, int64, error) {
		return s.employees.List(ctx, cond.Criteria(), p)
	})
	if err != nil {
		return query.Page[domain.EmployeeProfile]{}, err
	}
	return query.MapPage(page, domain.Employee.Profile), nil
}

// GetByID returns the credential-free projection of an employee.
func (s *EmployeeService) GetByID(ctx context.Context, id int64) (*domain.EmployeeProfile, error) {
	employee, err := s.GetEntityByID(ctx, id)
	if err != nil {
		return nil, err
	}
	profile := employee.Profile()
	return &profile, nil
}

// GetEntityByID returns the full employee record.
func (s *EmployeeService) GetEntityByID(ctx context.Context, id int64) (*domain.Employee, error) {
	employee, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, versioning.Translate(employeeTarget(id), err)
	}
	return employee, nil
}

// GetByUsername returns the full employee record for a login name.
func (s *EmployeeService) GetByUsername(ctx context.Context, username string) (*domain.Employee, error) {
	employee, err := s.employees.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound(aggregateEmployee, map[string]any{"username": username})
		}
		return nil, err
	}
	return employee, nil
}

// Create hires an employee under an existing role.
func (s *EmployeeService) Create(ctx context.Context, in EmployeeCreateInput) (*domain.Employee, error) {
	if err := requireText(map[string]string{
		"name":             in.Name,
		"address":          in.Address,
		"employmentStatus": in.EmploymentStatus,
		"username":         in.Username,
		"password":         in.Password,
	}); err != nil {
		return nil, err
	}
	if err := validateEmployeeFields(in.Age, in.Phone); err != nil {
		return nil, err
	}

	role, err := s.resolveRole(ctx, in.RoleID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUsernameFree(ctx, in.Username, 0); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	employee := &domain.Employee{
		Name:             in.Name,
		Age:              in.Age,
		Address:          in.Address,
		Phone:            in.Phone,
		EmploymentStatus: in.EmploymentStatus,
		Username:         in.Username,
		PasswordHash:     hash,
		Role:             *role,
	}
	if err := s.employees.Create(ctx, employee); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateUsername(in.Username)
		}
		return nil, err
	}
	s.logger.Info("employee created", zap.Int64("employee_id", employee.ID), zap.Int64("role_id", role.ID))
	return employee, nil
}

// Update applies the supplied fields under the version guard.
func (s *EmployeeService) Update(ctx context.Context, id int64, in EmployeeUpdateInput) (*domain.Employee, error) {
	return s.mutate(ctx, id, in.Version, func(e domain.Employee) (domain.Employee, error) {
		if in.Name != nil {
			e.Name = *in.Name
		}
		if in.Age != nil {
			e.Age = *in.Age
		}
		if in.Address != nil {
			e.Address = *in.Address
		}
		if in.Phone != nil {
			e.Phone = *in.Phone
		}
		if in.EmploymentStatus != nil {
			e.EmploymentStatus = *in.EmploymentStatus
		}
		if in.Username != nil && *in.Username != e.Username {
			if err := s.ensureUsernameFree(ctx, *in.Username, e.ID); err != nil {
				return e, err
			}
			e.Username = *in.Username
		}
		if in.Password != nil {
			hash, err := s.hasher.Hash(*in.Password)
			if err != nil {
				return e, fmt.Errorf("hash password: %w", err)
			}
			e.PasswordHash = hash
		}
		if in.RoleID != nil {
			role, err := s.resolveRole(ctx, *in.RoleID)
			if err != nil {
				return e, err
			}
			e.Role = *role
		}
		if err := requireText(map[string]string{
			"name":             e.Name,
			"address":          e.Address,
			"employmentStatus": e.EmploymentStatus,
			"username":         e.Username,
		}); err != nil {
			return e, err
		}
		return e, validateEmployeeFields(e.Age, e.Phone)
	})
}

// AssignRole links an employee to another role under the version guard.
func (s *EmployeeService) AssignRole(ctx context.Context, employeeID, roleID int64, expected *int64) (*domain.Employee, error) {
	var oldRoleID int64
	updated, err := s.mutate(ctx, employeeID, expected, func(e domain.Employee) (domain.Employee, error) {
		role, err := s.resolveRole(ctx, roleID)
		if err != nil {
			return e, err
		}
		oldRoleID = e.Role.ID
		e.Role = *role
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	s.events.publish(ctx, events.Event{
		Type:        events.EventEmployeeRoleAssigned,
		Aggregate:   aggregateEmployee,
		AggregateID: updated.ID,
		Actor:       updated.Username,
		Payload: events.EmployeeRoleAssignedPayload{
			OldRoleID: oldRoleID,
			NewRoleID: updated.Role.ID,
			RoleName:  updated.Role.Name,
		},
	})
	return updated, nil
}

// Delete removes an employee. Tickets assigned to it are left untouched.
func (s *EmployeeService) Delete(ctx context.Context, id int64, expected *int64) error {
	_, err := versioning.Remove(ctx, employeeTarget(id), expected, s.load(id),
		func(ctx context.Context, readVersion int64) error {
			return s.employees.Delete(ctx, id, readVersion)
		})
	if err != nil {
		return err
	}
	s.logger.Info("employee deleted", zap.Int64("employee_id", id))
	return nil
}

func (s *EmployeeService) mutate(ctx context.Context, id int64, expected *int64, apply func(domain.Employee) (domain.Employee, error)) (*domain.Employee, error) {
	updated, err := versioning.Mutate(ctx, versioning.Mutation[domain.Employee]{
		Target:   employeeTarget(id),
		Expected: expected,
		Load:     s.load(id),
		Apply:    apply,
		Save: func(ctx context.Context, e domain.Employee, readVersion int64) (domain.Employee, error) {
			err := s.employees.Update(ctx, &e, readVersion)
			if errors.Is(err, repository.ErrDuplicate) {
				return e, duplicateUsername(e.Username)
			}
			return e, err
		},
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *EmployeeService) load(id int64) func(ctx context.Context) (domain.Employee, error) {
	return func(ctx context.Context) (domain.Employee, error) {
		employee, err := s.employees.GetByID(ctx, id)
		if err != nil {
			return domain.Employee{}, err
		}
		return *employee, nil
	}
}

func (s *EmployeeService) resolveRole(ctx context.Context, roleID int64) (*domain.Role, error) {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, versioning.Translate(roleTarget(roleID), err)
	}
	return role, nil
}

func (s *EmployeeService) ensureUsernameFree(ctx context.Context, username string, selfID int64) error {
	existing, err := s.employees.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != selfID:
		return duplicateUsername(username)
	}
	return nil
}

func validateEmployeeFields(age int, phone string) error {
	details := map[string]any{}
	if age < domain.MinEmployeeAge {
		details["age"] = fmt.Sprintf("must be at least %d", domain.MinEmployeeAge)
	}
	if !domain.PhonePattern.MatchString(strings.TrimSpace(phone)) {
		details["phone"] = "must be an optional + followed by 7 to 15 digits"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid employee", details)
	}
	return nil
}

func duplicateUsername(username string) error {
	return apperrors.NewConflict(fmt.Sprintf("username %q is taken", username), map[string]any{"field": "username", "value": username})
}

func employeeTarget(id int64) versioning.Target {
	return versioning.Target{Aggregate: aggregateEmployee, ID: id}
}
