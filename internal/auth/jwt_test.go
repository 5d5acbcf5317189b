package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *ServiceTokenService {
	return NewServiceTokenService(ServiceTokenConfig{
		SigningKey: "test-signing-key-0123456789abcdef",
		Issuer:     "https://api.commutewise.dev",
		Audience:   "commutewise-api",
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateToken("ops-tooling", ScopeAdmin, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops-tooling", claims.Subject)
	assert.Equal(t, ScopeAdmin, claims.Scope)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateToken("ops-tooling", ScopeAdmin, -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateToken_WrongKey(t *testing.T) {
	svc := newTestService()
	other := NewServiceTokenService(ServiceTokenConfig{
		SigningKey: "a-different-key-0123456789abcdef",
		Issuer:     "https://api.commutewise.dev",
		Audience:   "commutewise-api",
	})

	token, err := other.GenerateToken("ops-tooling", ScopeAdmin, time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_WrongAudience(t *testing.T) {
	svc := newTestService()
	other := NewServiceTokenService(ServiceTokenConfig{
		SigningKey: "test-signing-key-0123456789abcdef",
		Issuer:     "https://api.commutewise.dev",
		Audience:   "some-other-api",
	})

	token, err := other.GenerateToken("ops-tooling", ScopeAdmin, time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := newTestService()

	_, err := svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRequireScope(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateToken("reporting", "read-only", time.Hour)
	require.NoError(t, err)

	_, err = svc.RequireScope(token, ScopeAdmin)
	assert.ErrorIs(t, err, ErrMissingScope)

	adminToken, err := svc.GenerateToken("ops-tooling", ScopeAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := svc.RequireScope(adminToken, ScopeAdmin)
	require.NoError(t, err)
	assert.Equal(t, ScopeAdmin, claims.Scope)
}
