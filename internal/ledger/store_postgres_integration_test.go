//go:build integration

package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certledger/internal/domain"
	"certledger/internal/ledger"
	"certledger/internal/registry"
	"certledger/pkg/testutil/containers"
	dErrors "certledger/pkg/domain-errors"
)

func TestPostgresStore_Integration(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()

	accounts := registry.NewPostgresStore(pg.DB, nil)
	store := ledger.NewPostgresStore(pg.DB, nil)

	reset := func(t *testing.T) {
		t.Helper()
		require.NoError(t, pg.Truncate(ctx, "certificates", "accounts"))
		for _, a := range []domain.Account{
			{Identity: "0xteacher", DisplayName: "teacher", Role: domain.RoleTeacher, RegisteredBy: "0xowner", RegisteredAt: time.Now()},
			{Identity: "0xstudent", DisplayName: "student", Role: domain.RoleStudent, RegisteredBy: "0xowner", RegisteredAt: time.Now()},
		} {
			require.NoError(t, accounts.Create(ctx, a))
		}
	}

	cert := func(id string, issuedAt int64) domain.Certificate {
		return domain.Certificate{
			ID:             id,
			HolderIdentity: "0xstudent",
			IssuerIdentity: "0xteacher",
			Title:          "Algorithms",
			IssuedAt:       issuedAt,
			ArtifactRef:    "deadbeef",
			Status:         domain.StatusPendingReview,
			CreatedAt:      time.Now(),
		}
	}

	t.Run("create and find round-trip", func(t *testing.T) {
		reset(t)
		want := cert("cert-1", 100)
		require.NoError(t, store.Create(ctx, want))

		got, err := store.FindByID(ctx, "cert-1")
		require.NoError(t, err)
		assert.Equal(t, want.HolderIdentity, got.HolderIdentity)
		assert.Equal(t, want.IssuedAt, got.IssuedAt)
		assert.Equal(t, want.ArtifactRef, got.ArtifactRef)
		assert.Equal(t, domain.StatusPendingReview, got.Status)
		assert.Empty(t, got.ReviewedBy)
		assert.True(t, got.ReviewedAt.IsZero())
	})

	t.Run("duplicate id maps to already exists", func(t *testing.T) {
		reset(t)
		require.NoError(t, store.Create(ctx, cert("cert-1", 100)))
		err := store.Create(ctx, cert("cert-1", 200))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyExists))
	})

	t.Run("unknown holder maps to not registered", func(t *testing.T) {
		reset(t)
		c := cert("cert-1", 100)
		c.HolderIdentity = "0xghost"
		err := store.Create(ctx, c)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotRegistered))
	})

	t.Run("list by holder is newest first", func(t *testing.T) {
		reset(t)
		for _, c := range []domain.Certificate{cert("cert-100", 100), cert("cert-300", 300), cert("cert-200", 200)} {
			require.NoError(t, store.Create(ctx, c))
		}
		certs, err := store.ListByHolder(ctx, "0xstudent")
		require.NoError(t, err)
		require.Len(t, certs, 3)
		assert.Equal(t, []string{"cert-300", "cert-200", "cert-100"}, []string{certs[0].ID, certs[1].ID, certs[2].ID})
	})

	t.Run("conditional update resolves exactly once", func(t *testing.T) {
		reset(t)
		require.NoError(t, store.Create(ctx, cert("cert-1", 100)))

		now := time.Now()
		require.NoError(t, store.UpdateStatus(ctx, "cert-1", domain.StatusPendingReview, domain.StatusVerified, "0xteacher2", now))

		err := store.UpdateStatus(ctx, "cert-1", domain.StatusPendingReview, domain.StatusRejected, "0xteacher2", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))

		got, err := store.FindByID(ctx, "cert-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusVerified, got.Status)
		assert.Equal(t, "0xteacher2", got.ReviewedBy)
		assert.False(t, got.ReviewedAt.IsZero())
	})

	t.Run("update of missing id is not found", func(t *testing.T) {
		reset(t)
		err := store.UpdateStatus(ctx, "missing", domain.StatusPendingReview, domain.StatusVerified, "0xteacher2", time.Now())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("pending excludes resolved, oldest first", func(t *testing.T) {
		reset(t)
		require.NoError(t, store.Create(ctx, cert("cert-b", 200)))
		require.NoError(t, store.Create(ctx, cert("cert-a", 100)))
		require.NoError(t, store.UpdateStatus(ctx, "cert-b", domain.StatusPendingReview, domain.StatusRejected, "0xteacher2", time.Now()))

		pending, err := store.ListPending(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "cert-a", pending[0].ID)
	})
}
