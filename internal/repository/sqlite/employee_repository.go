package sqlite

import (
	"context"

	"gorm.io/gorm"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/query"
	"github.com/spec-kit/helpdesk/internal/repository"
)

const employeeColumns = `e.id, e.name, e.age, e.address, e.phone, e.employment_status, e.username,
        e.password_hash, e.role_id, e.version, COALESCE(r.name, '') AS role_name`

// EmployeeRepository stores employees in SQLite.
type EmployeeRepository struct {
	db *gorm.DB
}

var _ repository.EmployeeRepository = (*EmployeeRepository)(nil)

// NewEmployeeRepository instantiates the repository on an open gorm handle.
func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) joined() *gorm.DB {
	return r.db.Table("employees e").Joins("LEFT JOIN roles r ON r.id = e.role_id")
}

func (r *EmployeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	m := fromEmployee(*employee)
	m.ID, m.Version = 0, 0
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translateError(err)
	}
	employee.ID, employee.Version = m.ID, m.Version
	return nil
}

func (r *EmployeeRepository) Update(ctx context.Context, employee *domain.Employee, expectedVersion int64) error {
	res := r.db.WithContext(ctx).Model(&employeeModel{}).
		Where("id = ? AND version = ?", employee.ID, expectedVersion).
		Updates(map[string]any{
			"name":              employee.Name,
			"age":               employee.Age,
			"address":           employee.Address,
			"phone":             employee.Phone,
			"employment_status": employee.EmploymentStatus,
			"username":          employee.Username,
			"password_hash":     employee.PasswordHash,
			"role_id":           employee.Role.ID,
			"version":           gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return missingOrStale(ctx, r.db, "employees", employee.ID)
	}
	employee.Version = expectedVersion + 1
	return nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id, expectedVersion int64) error {
	res := r.db.WithContext(ctx).Where("id = ? AND version = ?", id, expectedVersion).Delete(&employeeModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return missingOrStale(ctx, r.db, "employees", id)
	}
	return nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	return r.first(ctx, "e.id = ?", id)
}

func (r *EmployeeRepository) GetByUsername(ctx context.Context, username string) (*domain.Employee, error) {
	return r.first(ctx, "e.username = ?", username)
}

func (r *EmployeeRepository) first(ctx context.Context, cond string, arg any) (*domain.Employee, error) {
	var rows []employeeRow
	err := r.joined().WithContext(ctx).Select(employeeColumns).Where(cond, arg).Limit(1).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, repository.ErrNotFound
	}
	employee := toEmployee(rows[0])
	return &employee, nil
}

func (r *EmployeeRepository) List(ctx context.Context, criteria []query.Criterion, page query.Pageable) ([]domain.Employee, int64, error) {
	q, total, err := window(ctx, r.joined, repository.EmployeeFields, criteria, page)
	if err != nil {
		return nil, 0, err
	}
	var rows []employeeRow
	if err := q.Select(employeeColumns).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	employees := make([]domain.Employee, 0, len(rows))
	for _, row := range rows {
		employees = append(employees, toEmployee(row))
	}
	return employees, total, nil
}

func fromEmployee(e domain.Employee) employeeModel {
	return employeeModel{
		ID:               e.ID,
		Name:             e.Name,
		Age:              e.Age,
		Address:          e.Address,
		Phone:            e.Phone,
		EmploymentStatus: e.EmploymentStatus,
		Username:         e.Username,
		PasswordHash:     e.PasswordHash,
		RoleID:           e.Role.ID,
		Version:          e.Version,
	}
}

func toEmployee(row employeeRow) domain.Employee {
	return domain.Employee{
		ID:               row.ID,
		Name:             row.Name,
		Age:              row.Age,
		Address:          row.Address,
		Phone:            row.Phone,
		EmploymentStatus: row.EmploymentStatus,
		Username:         row.Username,
		PasswordHash:     row.PasswordHash,
		Role:             domain.Role{ID: row.RoleID, Name: row.RoleName},
		Version:          row.Version,
	}
}
