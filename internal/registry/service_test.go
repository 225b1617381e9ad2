package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certledger/internal/audit"
	"certledger/internal/domain"
	dErrors "certledger/pkg/domain-errors"
)

const owner = "0xowner"

func newTestService() *Service {
	return NewService(NewMemoryStore(), owner, audit.Nop{}, nil)
}

func commitmentOf(t *testing.T, b byte) domain.Commitment {
	t.Helper()
	var c domain.Commitment
	for i := range c {
		c[i] = b
	}
	return c
}

func TestRegister(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	req := RegisterRequest{
		Caller:      owner,
		Identity:    "0xstudent1",
		DisplayName: "student1",
		Commitment:  commitmentOf(t, 0x11),
		Role:        domain.RoleStudent,
	}

	t.Run("owner registers an account", func(t *testing.T) {
		account, err := svc.Register(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "0xstudent1", account.Identity)
		assert.Equal(t, domain.RoleStudent, account.Role)
		assert.Equal(t, owner, account.RegisteredBy)
		assert.False(t, account.RegisteredAt.IsZero())
	})

	t.Run("duplicate identity fails regardless of payload", func(t *testing.T) {
		dup := req
		dup.DisplayName = "someone else"
		dup.Role = domain.RoleTeacher
		_, err := svc.Register(ctx, dup)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyExists))
	})

	t.Run("non-owner caller is rejected", func(t *testing.T) {
		other := req
		other.Caller = "0xstudent1"
		other.Identity = "0xnew"
		_, err := svc.Register(ctx, other)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("blank identity is invalid", func(t *testing.T) {
		blank := req
		blank.Identity = "  "
		_, err := svc.Register(ctx, blank)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestGetRole(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{
		Caller: owner, Identity: "0xteacher1", DisplayName: "teacher1",
		Commitment: commitmentOf(t, 0x22), Role: domain.RoleTeacher,
	})
	require.NoError(t, err)

	role, err := svc.GetRole(ctx, "0xteacher1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTeacher, role)

	t.Run("absent identity is NotRegistered, not Student", func(t *testing.T) {
		_, err := svc.GetRole(ctx, "0xnobody")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotRegistered))
	})
}

func TestListByRole_RegistrationOrder(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for i, identity := range []string{"0xs1", "0xs2", "0xs3"} {
		_, err := svc.Register(ctx, RegisterRequest{
			Caller: owner, Identity: identity, DisplayName: identity,
			Commitment: commitmentOf(t, byte(i)), Role: domain.RoleStudent,
		})
		require.NoError(t, err)
	}
	_, err := svc.Register(ctx, RegisterRequest{
		Caller: owner, Identity: "0xt1", DisplayName: "t1",
		Commitment: commitmentOf(t, 0x99), Role: domain.RoleTeacher,
	})
	require.NoError(t, err)

	students, err := svc.ListByRole(ctx, domain.RoleStudent)
	require.NoError(t, err)
	require.Len(t, students, 3)
	assert.Equal(t, "0xs1", students[0].Identity)
	assert.Equal(t, "0xs2", students[1].Identity)
	assert.Equal(t, "0xs3", students[2].Identity)

	teachers, err := svc.ListByRole(ctx, domain.RoleTeacher)
	require.NoError(t, err)
	require.Len(t, teachers, 1)

	empty, err := svc.ListByRole(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
