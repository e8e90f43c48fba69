package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// AuthService exchanges credentials for access tokens.
type AuthService struct {
	employees *EmployeeService
	hasher    PasswordHasher
	tokenMgr  *auth.TokenManager
	logger    *zap.Logger
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	Employees *EmployeeService
	Hasher    PasswordHasher
	Tokens    *auth.TokenManager
	Logger    *zap.Logger
}

// LoginResult is a signed token and the employee it was issued to.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Employee  *domain.Employee
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		employees: deps.Employees,
		hasher:    deps.Hasher,
		tokenMgr:  deps.Tokens,
		logger:    orNop(deps.Logger),
	}
}

// TokenManager exposes the signer for the auth middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Login verifies username and password. Unknown users and wrong passwords fail alike.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	employee, err := s.employees.GetByUsername(ctx, username)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeNotFound) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := s.hasher.Compare(employee.PasswordHash, password); err != nil {
		s.logger.Info("login rejected", zap.String("username", username))
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(*employee)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: exp, Employee: employee}, nil
}
