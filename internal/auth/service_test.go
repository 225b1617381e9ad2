package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certledger/internal/audit"
	"certledger/internal/auth/revocation"
	"certledger/internal/domain"
	"certledger/internal/jwttoken"
	"certledger/internal/registry"
	dErrors "certledger/pkg/domain-errors"
)

func commitmentOf(b byte) domain.Commitment {
	var c domain.Commitment
	for i := range c {
		c[i] = b
	}
	return c
}

func newFixture(t *testing.T) (*Service, *registry.MemoryStore) {
	t.Helper()
	accounts := registry.NewMemoryStore()
	tokens := jwttoken.NewJWTService("test-key", "certledger", "certledger-api")
	svc := NewService(accounts, tokens, revocation.NewMemoryTRL(), time.Hour, audit.Nop{}, nil)
	return svc, accounts
}

func TestLogin(t *testing.T) {
	svc, accounts := newFixture(t)
	ctx := context.Background()

	stored := commitmentOf(0xaa)
	require.NoError(t, accounts.Create(ctx, domain.Account{
		Identity:    "0xstudent",
		DisplayName: "student1",
		Commitment:  stored,
		Role:        domain.RoleStudent,
	}))

	t.Run("correct commitment authenticates and returns role", func(t *testing.T) {
		res, err := svc.Login(ctx, "0xstudent", stored)
		require.NoError(t, err)
		assert.True(t, res.Authenticated)
		assert.Equal(t, domain.RoleStudent, res.Role)
		assert.NotEmpty(t, res.Token)
	})

	t.Run("wrong commitment fails without error", func(t *testing.T) {
		res, err := svc.Login(ctx, "0xstudent", commitmentOf(0xbb))
		require.NoError(t, err)
		assert.False(t, res.Authenticated)
		assert.Empty(t, res.Token)
	})

	t.Run("unregistered identity is NotRegistered, distinguishable from wrong credential", func(t *testing.T) {
		_, err := svc.Login(ctx, "0xnobody", stored)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotRegistered))
	})
}

func TestLogin_NeverMutatesState(t *testing.T) {
	svc, accounts := newFixture(t)
	ctx := context.Background()

	stored := commitmentOf(0x01)
	require.NoError(t, accounts.Create(ctx, domain.Account{
		Identity: "0xa", DisplayName: "a", Commitment: stored, Role: domain.RoleTeacher,
	}))

	for i := 0; i < 3; i++ {
		_, _ = svc.Login(ctx, "0xa", commitmentOf(0x02))
	}
	account, err := accounts.FindByIdentity(ctx, "0xa")
	require.NoError(t, err)
	assert.Equal(t, stored, account.Commitment)
	assert.Equal(t, domain.RoleTeacher, account.Role)
}

func TestLogout(t *testing.T) {
	accounts := registry.NewMemoryStore()
	tokens := jwttoken.NewJWTService("test-key", "certledger", "certledger-api")
	trl := revocation.NewMemoryTRL()
	svc := NewService(accounts, tokens, trl, time.Hour, audit.Nop{}, nil)
	ctx := context.Background()

	require.NoError(t, svc.Logout(ctx, "0xa", "some-jti"))
	revoked, err := trl.IsRevoked(ctx, "some-jti")
	require.NoError(t, err)
	assert.True(t, revoked)

	t.Run("missing jti is invalid input", func(t *testing.T) {
		err := svc.Logout(ctx, "0xa", "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestMemoryTRL_Expiry(t *testing.T) {
	trl := revocation.NewMemoryTRL()
	ctx := context.Background()

	require.NoError(t, trl.Revoke(ctx, "jti-1", -time.Second))
	revoked, err := trl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "expired revocation entries drop out")
}
