package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/query"
)

// RoleRepository handles persistence for roles.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	Update(ctx context.Context, role *domain.Role, expectedVersion int64) error
	Delete(ctx context.Context, id, expectedVersion int64) error
	GetByID(ctx context.Context, id int64) (*domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context, criteria []query.Criterion, page query.Pageable) ([]domain.Role, int64, error)
}

type roleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository instantiates the repository.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepository{pool: pool}
}

func (r *roleRepository) Create(ctx context.Context, role *domain.Role) error {
	const sql = `INSERT INTO roles (name, version) VALUES ($1, 0) RETURNING id, version`
	if err := r.pool.QueryRow(ctx, sql, role.Name).Scan(&role.ID, &role.Version); err != nil {
		return translatePgError(err)
	}
	return nil
}

func (r *roleRepository) Update(ctx context.Context, role *domain.Role, expectedVersion int64) error {
	const sql = `UPDATE roles SET name=$1, version=version+1 WHERE id=$2 AND version=$3`
	cmd, err := r.pool.Exec(ctx, sql, role.Name, role.ID, expectedVersion)
	if err != nil {
		return translatePgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return missingOrStale(ctx, r.pool, "roles", role.ID)
	}
	role.Version = expectedVersion + 1
	return nil
}

func (r *roleRepository) Delete(ctx context.Context, id, expectedVersion int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id=$1 AND version=$2`, id, expectedVersion)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return missingOrStale(ctx, r.pool, "roles", id)
	}
	return nil
}

func (r *roleRepository) GetByID(ctx context.Context, id int64) (*domain.Role, error) {
	return r.fetchSingle(ctx, `SELECT id, name, version FROM roles WHERE id=$1`, id)
}

func (r *roleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	return r.fetchSingle(ctx, `SELECT id, name, version FROM roles WHERE name=$1`, name)
}

func (r *roleRepository) fetchSingle(ctx context.Context, sql string, arg any) (*domain.Role, error) {
	var role domain.Role
	if err := r.pool.QueryRow(ctx, sql, arg).Scan(&role.ID, &role.Name, &role.Version); err != nil {
		return nil, translatePgError(err)
	}
	return &role, nil
}

func (r *roleRepository) List(ctx context.Context, criteria []query.Criterion, page query.Pageable) ([]domain.Role, int64, error) {
	where, args, err := query.Where(query.Postgres, RoleFields, criteria, 0)
	if err != nil {
		return nil, 0, err
	}

	total, err := countRows(ctx, r.pool, "SELECT COUNT(*) FROM roles WHERE "+where, args)
	if err != nil {
		return nil, 0, err
	}

	sql := fmt.Sprintf(`SELECT id, name, version FROM roles WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		where, page.OrderBy(), page.Size, page.Offset())
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	roles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Role, error) {
		var role domain.Role
		err := row.Scan(&role.ID, &role.Name, &role.Version)
		return role, err
	})
	if err != nil {
		return nil, 0, err
	}
	return roles, total, nil
}
