//go:build integration

package registry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certledger/internal/domain"
	"certledger/internal/registry"
	"certledger/pkg/testutil/containers"
	dErrors "certledger/pkg/domain-errors"
)

func TestPostgresStore_Integration(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()

	store := registry.NewPostgresStore(pg.DB, nil)

	account := func(identity string, role domain.Role) domain.Account {
		commitment, err := domain.ParseCommitment("8b1a9953c4611296a827abf8c47804d7e6c49c6f9e8d1a0e8e8b1a9953c46112")
		require.NoError(t, err)
		return domain.Account{
			Identity:     identity,
			DisplayName:  "someone",
			Commitment:   commitment,
			Role:         role,
			RegisteredBy: "0xowner",
			RegisteredAt: time.Now(),
		}
	}

	reset := func(t *testing.T) {
		t.Helper()
		require.NoError(t, pg.Truncate(ctx, "certificates", "accounts"))
	}

	t.Run("create and find round-trip", func(t *testing.T) {
		reset(t)
		want := account("0xalice", domain.RoleStudent)
		require.NoError(t, store.Create(ctx, want))

		got, err := store.FindByIdentity(ctx, "0xalice")
		require.NoError(t, err)
		assert.Equal(t, want.Identity, got.Identity)
		assert.Equal(t, want.Commitment, got.Commitment)
		assert.Equal(t, domain.RoleStudent, got.Role)
		assert.Equal(t, "0xowner", got.RegisteredBy)
	})

	t.Run("duplicate identity maps to already exists", func(t *testing.T) {
		reset(t)
		require.NoError(t, store.Create(ctx, account("0xalice", domain.RoleStudent)))
		err := store.Create(ctx, account("0xalice", domain.RoleTeacher))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyExists))

		// The losing write must not have changed anything.
		got, err := store.FindByIdentity(ctx, "0xalice")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleStudent, got.Role)
	})

	t.Run("missing identity maps to not registered", func(t *testing.T) {
		reset(t)
		_, err := store.FindByIdentity(ctx, "0xghost")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotRegistered))
	})

	t.Run("list by role preserves registration order", func(t *testing.T) {
		reset(t)
		for _, identity := range []string{"0xc", "0xa", "0xb"} {
			require.NoError(t, store.Create(ctx, account(identity, domain.RoleTeacher)))
		}
		require.NoError(t, store.Create(ctx, account("0xstudent", domain.RoleStudent)))

		teachers, err := store.ListByRole(ctx, domain.RoleTeacher)
		require.NoError(t, err)
		require.Len(t, teachers, 3)
		assert.Equal(t, []string{"0xc", "0xa", "0xb"}, []string{teachers[0].Identity, teachers[1].Identity, teachers[2].Identity})
	})
}
