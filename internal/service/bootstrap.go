package service

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// Defaults for the seeded administrator.
const (
	adminDisplayName      = "Super Admin"
	adminAge              = 30
	adminAddress          = "HQ"
	adminPhone            = "+10000000000"
	adminEmploymentStatus = "Active"
)

// SeedFile lists extra roles and employees created at startup.
type SeedFile struct {
	Roles     []string       `yaml:"roles"`
	Employees []SeedEmployee `yaml:"employees"`
}

// SeedEmployee is one employee entry of a seed file. Role is a role name.
type SeedEmployee struct {
	Name             string `yaml:"name"`
	Age              int    `yaml:"age"`
	Address          string `yaml:"address"`
	Phone            string `yaml:"phone"`
	EmploymentStatus string `yaml:"employmentStatus"`
	Username         string `yaml:"username"`
	Password         string `yaml:"password"`
	Role             string `yaml:"role"`
}

// LoadSeedFile parses a YAML seed file.
func LoadSeedFile(path string) (*SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed SeedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return &seed, nil
}

// Bootstrapper creates the administrator and optional seed data.
// Every step skips records that already exist, so Run can be repeated.
type Bootstrapper struct {
	roles     *RoleService
	employees *EmployeeService
	logger    *zap.Logger
}

// NewBootstrapper constructs the bootstrapper.
func NewBootstrapper(roles *RoleService, employees *EmployeeService, logger *zap.Logger) *Bootstrapper {
	return &Bootstrapper{roles: roles, employees: employees, logger: orNop(logger)}
}

// Run ensures the ADMIN role and administrator exist, then applies cfg.File when set.
func (b *Bootstrapper) Run(ctx context.Context, cfg config.SeedConfig) error {
	adminRole, err := b.ensureRole(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if err := b.ensureEmployee(ctx, EmployeeCreateInput{
		Name:             adminDisplayName,
		Age:              adminAge,
		Address:          adminAddress,
		Phone:            adminPhone,
		EmploymentStatus: adminEmploymentStatus,
		Username:         cfg.AdminUsername,
		Password:         cfg.AdminPassword,
		RoleID:           adminRole.ID,
	}); err != nil {
		return err
	}

	if cfg.File == "" {
		return nil
	}
	seed, err := LoadSeedFile(cfg.File)
	if err != nil {
		return err
	}
	return b.Apply(ctx, seed)
}

// Apply creates the roles and employees of a seed file that do not exist yet.
func (b *Bootstrapper) Apply(ctx context.Context, seed *SeedFile) error {
	for _, name := range seed.Roles {
		if _, err := b.ensureRole(ctx, name); err != nil {
			return err
		}
	}
	for _, e := range seed.Employees {
		role, err := b.ensureRole(ctx, e.Role)
		if err != nil {
			return err
		}
		if err := b.ensureEmployee(ctx, EmployeeCreateInput{
			Name:             e.Name,
			Age:              e.Age,
			Address:          e.Address,
			Phone:            e.Phone,
			EmploymentStatus: e.EmploymentStatus,
			Username:         e.Username,
			Password:         e.Password,
			RoleID:           role.ID,
		}); err != nil {
			return fmt.Errorf("seed employee %q: %w", e.Username, err)
		}
	}
	return nil
}

func (b *Bootstrapper) ensureRole(ctx context.Context, name string) (*domain.Role, error) {
	role, err := b.roles.GetByName(ctx, name)
	if err == nil {
		return role, nil
	}
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		return nil, err
	}
	role, err = b.roles.Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("seed role %q: %w", name, err)
	}
	b.logger.Info("seeded role", zap.String("name", name))
	return role, nil
}

func (b *Bootstrapper) ensureEmployee(ctx context.Context, in EmployeeCreateInput) error {
	_, err := b.employees.GetByUsername(ctx, in.Username)
	if err == nil {
		return nil
	}
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		return err
	}
	if _, err := b.employees.Create(ctx, in); err != nil {
		return err
	}
	b.logger.Info("seeded employee", zap.String("username", in.Username))
	return nil
}
