package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// EmployeeLookup loads the employee behind a token.
type EmployeeLookup interface {
	GetEntityByID(ctx context.Context, id int64) (*domain.Employee, error)
}

// Principal represents the authenticated caller.
type Principal struct {
	Employee *domain.Employee
}

// Actor returns the identity passed to services. The role is read from the
// stored employee so a reassignment takes effect before the token expires.
func (p *Principal) Actor() domain.Actor {
	return domain.Actor{
		EmployeeID: p.Employee.ID,
		Username:   p.Employee.Username,
		Role:       p.Employee.Role.Name,
	}
}

// AuthMiddleware turns a bearer token into a Principal backed by the stored employee.
type AuthMiddleware struct {
	tokens    *TokenManager
	employees EmployeeLookup
}

func NewAuthMiddleware(tokens *TokenManager, employees EmployeeLookup) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, employees: employees}
}

// Handle rejects the request unless the token is valid and its employee still exists.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	raw, err := bearerToken(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}
	claims, err := m.tokens.ParseToken(raw)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	employee, err := m.employees.GetEntityByID(c.UserContext(), claims.EmployeeID)
	switch {
	case apperrors.HasCode(err, apperrors.CodeNotFound):
		return apperrors.NewUnauthorized("employee not found")
	case err != nil:
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{Employee: employee})
	return c.Next()
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", apperrors.NewUnauthorized("missing authorization header")
	}
	scheme, token, found := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", apperrors.NewUnauthorized("invalid authorization header")
	}
	return token, nil
}

// PrincipalFromContext returns the principal stored by Handle.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	principal, ok := c.Locals(principalKey).(*Principal)
	return principal, ok && principal != nil
}
