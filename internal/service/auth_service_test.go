package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

func TestLoginIssuesTokenWithRoleClaim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	role := f.role(t, "AGENT")
	jane := f.employee(t, "jane", role.ID)

	result, err := f.auth.Login(ctx, "jane", "x")
	require.NoError(t, err)
	assert.Equal(t, jane.ID, result.Employee.ID)

	claims, err := f.auth.TokenManager().ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, jane.ID, claims.EmployeeID)
	assert.Equal(t, "AGENT", claims.Role)
}

func TestLoginFailuresLookAlike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	role := f.role(t, "AGENT")
	f.employee(t, "jane", role.ID)

	_, wrongPassword := f.auth.Login(ctx, "jane", "y")
	_, unknownUser := f.auth.Login(ctx, "ghost", "x")

	assert.True(t, apperrors.HasCode(wrongPassword, apperrors.CodeUnauthorized))
	assert.True(t, apperrors.HasCode(unknownUser, apperrors.CodeUnauthorized))
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}
