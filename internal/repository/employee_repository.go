package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/query"
)

// EmployeeRepository handles persistence for employees.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) error
	Update(ctx context.Context, employee *domain.Employee, expectedVersion int64) error
	Delete(ctx context.Context, id, expectedVersion int64) error
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
	GetByUsername(ctx context.Context, username string) (*domain.Employee, error)
	List(ctx context.Context, criteria []query.Criterion, page query.Pageable) ([]domain.Employee, int64, error)
}

// The role name is joined in; a deleted role leaves it empty.
const employeeSelect = `
        SELECT e.id, e.name, e.age, e.address, e.phone, e.employment_status, e.username, e.password_hash,
               e.role_id, COALESCE(r.name, ''), e.version
        FROM employees e
        LEFT JOIN roles r ON r.id = e.role_id`

type employeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository instantiates the repository.
func NewEmployeeRepository(pool *pgxpool.Pool) EmployeeRepository {
	return &employeeRepository{pool: pool}
}

func (r *employeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	const sql = `
        INSERT INTO employees (name, age, address, phone, employment_status, username, password_hash, role_id, version)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,0)
        RETURNING id, version`
	err := r.pool.QueryRow(ctx, sql,
		employee.Name,
		employee.Age,
		employee.Address,
		employee.Phone,
		employee.EmploymentStatus,
		employee.Username,
		employee.PasswordHash,
		employee.Role.ID,
	).Scan(&employee.ID, &employee.Version)
	return translatePgError(err)
}

func (r *employeeRepository) Update(ctx context.Context, employee *domain.Employee, expectedVersion int64) error {
	const sql = `
        UPDATE employees
        SET name=$1, age=$2, address=$3, phone=$4, employment_status=$5, username=$6, password_hash=$7,
            role_id=$8, version=version+1
        WHERE id=$9 AND version=$10`
	cmd, err := r.pool.Exec(ctx, sql,
		employee.Name,
		employee.Age,
		employee.Address,
		employee.Phone,
		employee.EmploymentStatus,
		employee.Username,
		employee.PasswordHash,
		employee.Role.ID,
		employee.ID,
		expectedVersion,
	)
	if err != nil {
		return translatePgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return missingOrStale(ctx, r.pool, "employees", employee.ID)
	}
	employee.Version = expectedVersion + 1
	return nil
}

func (r *employeeRepository) Delete(ctx context.Context, id, expectedVersion int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id=$1 AND version=$2`, id, expectedVersion)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return missingOrStale(ctx, r.pool, "employees", id)
	}
	return nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	return r.fetchSingle(ctx, employeeSelect+` WHERE e.id=$1`, id)
}

func (r *employeeRepository) GetByUsername(ctx context.Context, username string) (*domain.Employee, error) {
	return r.fetchSingle(ctx, employeeSelect+` WHERE e.username=$1`, username)
}

func (r *employeeRepository) fetchSingle(ctx context.Context, sql string, arg any) (*domain.Employee, error) {
	employee, err := scanEmployee(r.pool.QueryRow(ctx, sql, arg))
	if err != nil {
		return nil, translatePgError(err)
	}
	return &employee, nil
}

func (r *employeeRepository) List(ctx context.Context, criteria []query.Criterion, page query.Pageable) ([]domain.Employee, int64, error) {
	where, args, err := query.Where(query.Postgres, EmployeeFields, criteria, 0)
	if err != nil {
		return nil, 0, err
	}

	total, err := countRows(ctx, r.pool,
		"SELECT COUNT(*) FROM employees e LEFT JOIN roles r ON r.id = e.role_id WHERE "+where, args)
	if err != nil {
		return nil, 0, err
	}

	sql := fmt.Sprintf(`%s WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		employeeSelect, where, page.OrderBy(), page.Size, page.Offset())
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	employees, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Employee, error) {
		return scanEmployee(row)
	})
	if err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

func scanEmployee(row pgx.Row) (domain.Employee, error) {
	var e domain.Employee
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Age,
		&e.Address,
		&e.Phone,
		&e.EmploymentStatus,
		&e.Username,
		&e.PasswordHash,
		&e.Role.ID,
		&e.Role.Name,
		&e.Version,
	)
	return e, err
}
