package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/query"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

func TestRoleCreateStartsAtVersionZero(t *testing.T) {
	f := newFixture(t)

	role := f.role(t, "ADMIN")
	assert.NotZero(t, role.ID)
	assert.Equal(t, int64(0), role.Version)
}

func TestRoleCreateRejectsDuplicateName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.role(t, "ADMIN")

	_, err := f.roles.Create(ctx, "ADMIN")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	// names compare case-sensitively
	_, err = f.roles.Create(ctx, "admin")
	require.NoError(t, err)
}

func TestRoleUpdateRename(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	role := f.role(t, "AGENT")
	f.role(t, "ADMIN")

	renamed, err := f.roles.Update(ctx, role.ID, RoleUpdateInput{Name: strPtr("SUPPORT")})
	require.NoError(t, err)
	assert.Equal(t, "SUPPORT", renamed.Name)
	assert.Equal(t, int64(1), renamed.Version)

	_, err = f.roles.Update(ctx, role.ID, RoleUpdateInput{Name: strPtr("ADMIN")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	unchanged, err := f.roles.Update(ctx, role.ID, RoleUpdateInput{})
	require.NoError(t, err)
	assert.Equal(t, "SUPPORT", unchanged.Name)
	assert.Equal(t, int64(2), unchanged.Version)
}

func TestRoleUpdateWithOutdatedVersion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	role := f.role(t, "AGENT")

	_, err := f.roles.Update(ctx, role.ID, RoleUpdateInput{Name: strPtr("A"), Version: int64Ptr(0)})
	require.NoError(t, err)

	_, err = f.roles.Update(ctx, role.ID, RoleUpdateInput{Name: strPtr("B"), Version: int64Ptr(0)})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	stored, err := f.roles.GetByID(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", stored.Name)
}

func TestRoleDeleteLeavesEmployeesDangling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	role := f.role(t, "AGENT")
	employee := f.employee(t, "jane", role.ID)

	require.NoError(t, f.roles.Delete(ctx, role.ID, nil))

	_, err := f.roles.GetByID(ctx, role.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	profile, err := f.employees.GetByID(ctx, employee.ID)
	require.NoError(t, err)
	assert.Equal(t, role.ID, profile.Role.ID)
	assert.Empty(t, profile.Role.Name)
}

func TestRoleDeleteMissing(t *testing.T) {
	f := newFixture(t)

	err := f.roles.Delete(context.Background(), 42, nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestRoleListFiltersAndPages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, name := range []string{"ADMIN", "AGENT", "AUDITOR", "MANAGER"} {
		f.role(t, name)
	}

	page, err := f.roles.List(ctx, RoleFilter{Name: "ag"}, query.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Content, 2)
	assert.Equal(t, "AGENT", page.Content[0].Name)
	assert.Equal(t, "MANAGER", page.Content[1].Name)
	assert.Equal(t, 10, page.Size)
	assert.True(t, page.Last)

	_, err = f.roles.List(ctx, RoleFilter{}, query.PageRequest{SortBy: "colour"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidParameter))
}

func TestRoleListPastLastPage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.role(t, "AGENT")
	f.role(t, "ÉQUIPE")

	page, err := f.roles.List(ctx, RoleFilter{}, query.PageRequest{Page: intPtr(5), Size: intPtr(4)})
	require.NoError(t, err)
	assert.Empty(t, page.Content)
	assert.Equal(t, int64(2), page.TotalElements)
	assert.True(t, page.Last)

	_, err = f.roles.List(ctx, RoleFilter{}, query.PageRequest{Page: intPtr(math.MaxInt / 2), Size: intPtr(4)})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidParameter))

	page, err = f.roles.List(ctx, RoleFilter{Name: "équipe"}, query.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "ÉQUIPE", page.Content[0].Name)
}
