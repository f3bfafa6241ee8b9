package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/service-desk/internal/domain"
)

func TestTokenRoundtrip(t *testing.T) {
	manager := NewTokenManager("unit-secret", 5)

	token, exp, err := manager.GenerateToken("user-42", domain.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.False(t, exp.IsZero())

	claims, err := manager.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.SubjectID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	manager := NewTokenManager("unit-secret", 5)
	other := NewTokenManager("different-secret", 5)

	token, _, err := manager.GenerateToken("user-42", domain.RoleUser)
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	manager := NewTokenManager("unit-secret", 5)

	_, err := manager.ParseToken("not.a.jwt")
	assert.Error(t, err)
}
