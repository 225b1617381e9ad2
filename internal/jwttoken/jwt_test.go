package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certledger/internal/domain"
	dErrors "certledger/pkg/domain-errors"
)

func newTestService() *JWTService {
	return NewJWTService("test-signing-key", "certledger", "certledger-api")
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestService()

	token, jti, err := svc.GenerateSessionToken("0xabc", domain.RoleTeacher, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, jti)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "0xabc", claims.Identity)
	assert.Equal(t, int(domain.RoleTeacher), claims.Role)
	assert.Equal(t, jti, claims.ID)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestService()

	token, _, err := svc.GenerateSessionToken("0xabc", domain.RoleStudent, -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateToken_WrongKey(t *testing.T) {
	token, _, err := newTestService().GenerateSessionToken("0xabc", domain.RoleStudent, time.Hour)
	require.NoError(t, err)

	other := NewJWTService("a-different-key", "certledger", "certledger-api")
	_, err = other.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := newTestService().ValidateToken("not-a-token")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
