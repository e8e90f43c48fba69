package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

func TestBearerToken(t *testing.T) {
	token, err := bearerToken("bearer  abc.def ")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	for _, header := range []string{"", "Basic abc", "Bearer", "Bearer   "} {
		_, err := bearerToken(header)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized), header)
	}
}
