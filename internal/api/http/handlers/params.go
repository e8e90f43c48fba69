package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/query"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// bindBody decodes the JSON body into req and runs the struct validation.
func bindBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"body": err.Error()})
	}
	return dto.Validate(req)
}

func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id < 1 {
		return 0, apperrors.NewInvalidParameter(name, "must be a positive integer")
	}
	return id, nil
}

func queryInt(c *fiber.Ctx, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.NewInvalidParameter(name, "must be an integer")
	}
	return &v, nil
}

func queryInt64(c *fiber.Ctx, name string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperrors.NewInvalidParameter(name, "must be an integer")
	}
	return &v, nil
}

// pageRequest reads page, size, sortBy and sortDir. Range checks happen in the pager.
func pageRequest(c *fiber.Ctx) (query.PageRequest, error) {
	page, err := queryInt(c, "page")
	if err != nil {
		return query.PageRequest{}, err
	}
	size, err := queryInt(c, "size")
	if err != nil {
		return query.PageRequest{}, err
	}
	return query.PageRequest{
		Page:    page,
		Size:    size,
		SortBy:  c.Query("sortBy"),
		SortDir: c.Query("sortDir"),
	}, nil
}

func currentActor(c *fiber.Ctx) (domain.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Employee == nil {
		return domain.Actor{}, apperrors.NewUnauthorized("employee required")
	}
	return principal.Actor(), nil
}
