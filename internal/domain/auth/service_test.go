package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vcbot/internal/core/apperror"
	"vcbot/pkg/logger"
)

func newTestAuth(t *testing.T) *Service {
	t.Helper()
	clerk, err := NewOperator("clerk", "clerk-password", []string{"clerk"}, false)
	require.NoError(t, err)
	admin, err := NewOperator("admin", "admin-password", []string{"clerk", "admin"}, true)
	require.NoError(t, err)

	jwtService := NewJWTService(DefaultJWTConfig("test-secret"))
	return NewService([]Operator{clerk, admin}, jwtService, logger.Default())
}

func TestLoginSuccess(t *testing.T) {
	svc := newTestAuth(t)

	pair, err := svc.Login(context.Background(), Credentials{Name: "clerk", Password: "clerk-password"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.ExpiresAt.After(time.Now()))
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestAuth(t)

	_, err := svc.Login(context.Background(), Credentials{Name: "clerk", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))
}

func TestLoginUnknownOperator(t *testing.T) {
	svc := newTestAuth(t)

	_, err := svc.Login(context.Background(), Credentials{Name: "ghost", Password: "x"})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))
}

func TestLoginMissingFields(t *testing.T) {
	svc := newTestAuth(t)

	_, err := svc.Login(context.Background(), Credentials{Name: "clerk"})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestTokenRoundTrip(t *testing.T) {
	jwtService := NewJWTService(DefaultJWTConfig("test-secret"))

	token, _, err := jwtService.GenerateAccessToken("u1", "admin", []string{"clerk", "admin"}, true)
	require.NoError(t, err)

	user, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.UserID)
	assert.Equal(t, "admin", user.UserName)
	assert.Equal(t, []string{"clerk", "admin"}, user.Roles)
	assert.True(t, user.IsAdmin)
}

func TestTokenWrongSecretRejected(t *testing.T) {
	token, _, err := NewJWTService(DefaultJWTConfig("secret-a")).GenerateAccessToken("u1", "clerk", nil, false)
	require.NoError(t, err)

	_, err = NewJWTService(DefaultJWTConfig("secret-b")).ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenExpiryRejected(t *testing.T) {
	cfg := DefaultJWTConfig("test-secret")
	cfg.AccessTokenTTL = -time.Minute
	svc := NewJWTService(cfg)

	token, _, err := svc.GenerateAccessToken("u1", "clerk", nil, false)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
