package sqlite

import (
	"context"

	"gorm.io/gorm"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/query"
	"github.com/spec-kit/helpdesk/internal/repository"
)

// RoleRepository stores roles in SQLite.
type RoleRepository struct {
	db *gorm.DB
}

var _ repository.RoleRepository = (*RoleRepository)(nil)

// NewRoleRepository instantiates the repository on an open gorm handle.
func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) error {
	m := roleModel{Name: role.Name}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translateError(err)
	}
	role.ID, role.Version = m.ID, m.Version
	return nil
}

func (r *RoleRepository) Update(ctx context.Context, role *domain.Role, expectedVersion int64) error {
	res := r.db.WithContext(ctx).Model(&roleModel{}).
		Where("id = ? AND version = ?", role.ID, expectedVersion).
		Updates(map[string]any{"name": role.Name, "version": gorm.Expr("version + 1")})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return missingOrStale(ctx, r.db, "roles", role.ID)
	}
	role.Version = expectedVersion + 1
	return nil
}

func (r *RoleRepository) Delete(ctx context.Context, id, expectedVersion int64) error {
	res := r.db.WithContext(ctx).Where("id = ? AND version = ?", id, expectedVersion).Delete(&roleModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return missingOrStale(ctx, r.db, "roles", id)
	}
	return nil
}

func (r *RoleRepository) GetByID(ctx context.Context, id int64) (*domain.Role, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	return r.first(ctx, "name = ?", name)
}

func (r *RoleRepository) first(ctx context.Context, cond string, arg any) (*domain.Role, error) {
	var m roleModel
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	role := toRole(m)
	return &role, nil
}

func (r *RoleRepository) List(ctx context.Context, criteria []query.Criterion, page query.Pageable) ([]domain.Role, int64, error) {
	base := func() *gorm.DB { return r.db.Model(&roleModel{}) }
	q, total, err := window(ctx, base, repository.RoleFields, criteria, page)
	if err != nil {
		return nil, 0, err
	}
	var rows []roleModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	roles := make([]domain.Role, 0, len(rows))
	for _, m := range rows {
		roles = append(roles, toRole(m))
	}
	return roles, total, nil
}

func toRole(m roleModel) domain.Role {
	return domain.Role{ID: m.ID, Name: m.Name, Version: m.Version}
}
