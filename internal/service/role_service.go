package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/query"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/versioning"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// RoleService manages the role directory.
type RoleService struct {
	roles  repository.RoleRepository
	logger *zap.Logger
}

// RoleDependencies bundles collaborators for the role service.
type RoleDependencies struct {
	RoleRepo repository.RoleRepository
	Logger   *zap.Logger
}

// RoleFilter holds the optional role listing criteria.
type RoleFilter struct {
	Name string
}

// RoleUpdateInput is a partial update; nil members stay untouched.
type RoleUpdateInput struct {
	Name    *string
	Version *int64
}

// NewRoleService constructs the service.
func NewRoleService(deps RoleDependencies) *RoleService {
	return &RoleService{roles: deps.RoleRepo, logger: orNop(deps.Logger)}
}

// RoleCondition composes the listing filter.
func RoleCondition(f RoleFilter) query.Condition[domain.Role] {
	return query.Compose[domain.Role]().
		Contains("name", f.Name, func(r domain.Role) string { return r.Name }).
		Build()
}

// List returns one page of roles matching the filter.
func (s *RoleService) List(ctx context.Context, f RoleFilter, req query.PageRequest) (query.Page[domain.Role], error) {
	cond := RoleCondition(f)
	return query.Fetch(ctx, RolePageSpec, req, func(ctx context.Context, p query.Pageable) ([]domain.Role, int64, error) {
		return s.roles.List(ctx, cond.Criteria(), p)
	})
}

// GetByID loads a role.
func (s *RoleService) GetByID(ctx context.Context, id int64) (*domain.Role, error) {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return nil, versioning.Translate(roleTarget(id), err)
	}
	return role, nil
}

// GetByName loads a role by its exact name.
func (s *RoleService) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	role, err := s.roles.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound(aggregateRole, map[string]any{"name": name})
		}
		return nil, err
	}
	return role, nil
}

// Create adds a role. Names are unique, compared case-sensitively.
func (s *RoleService) Create(ctx context.Context, name string) (*domain.Role, error) {
	if err := requireText(map[string]string{"name": name}); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, name, 0); err != nil {
		return nil, err
	}
	role := &domain.Role{Name: name}
	if err := s.roles.Create(ctx, role); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateRole(name)
		}
		return nil, err
	}
	s.logger.Info("role created", zap.Int64("role_id", role.ID), zap.String("name", role.Name))
	return role, nil
}

// Update renames a role under the version guard.
func (s *RoleService) Update(ctx context.Context, id int64, in RoleUpdateInput) (*domain.Role, error) {
	if in.Name != nil {
		if err := requireText(map[string]string{"name": *in.Name}); err != nil {
			return nil, err
		}
	}
	updated, err := versioning.Mutate(ctx, versioning.Mutation[domain.Role]{
		Target:   roleTarget(id),
		Expected: in.Version,
		Load: func(ctx context.Context) (domain.Role, error) {
			role, err := s.roles.GetByID(ctx, id)
			if err != nil {
				return domain.Role{}, err
			}
			return *role, nil
		},
		Apply: func(role domain.Role) (domain.Role, error) {
			if in.Name != nil && *in.Name != role.Name {
				if err := s.ensureNameFree(ctx, *in.Name, role.ID); err != nil {
					return role, err
				}
				role.Name = *in.Name
			}
			return role, nil
		},
		Save: func(ctx context.Context, role domain.Role, readVersion int64) (domain.Role, error) {
			err := s.roles.Update(ctx, &role, readVersion)
			if errors.Is(err, repository.ErrDuplicate) {
				return role, duplicateRole(role.Name)
			}
			return role, err
		},
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a role. Employees referencing it keep the dangling id.
func (s *RoleService) Delete(ctx context.Context, id int64, expected *int64) error {
	_, err := versioning.Remove(ctx, roleTarget(id), expected,
		func(ctx context.Context) (domain.Role, error) {
			role, err := s.roles.GetByID(ctx, id)
			if err != nil {
				return domain.Role{}, err
			}
			return *role, nil
		},
		func(ctx context.Context, readVersion int64) error {
			return s.roles.Delete(ctx, id, readVersion)
		})
	if err != nil {
		return err
	}
	s.logger.Info("role deleted", zap.Int64("role_id", id))
	return nil
}

func (s *RoleService) ensureNameFree(ctx context.Context, name string, selfID int64) error {
	existing, err := s.roles.GetByName(ctx, name)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != selfID:
		return duplicateRole(name)
	}
	return nil
}

func duplicateRole(name string) error {
	return apperrors.NewConflict(fmt.Sprintf("role %q already exists", name), map[string]any{"field": "name", "value": name})
}

func roleTarget(id int64) versioning.Target {
	return versioning.Target{Aggregate: aggregateRole, ID: id}
}
