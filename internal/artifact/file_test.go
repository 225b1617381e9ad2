package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "certledger/pkg/domain-errors"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	return store
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	t.Run("round-trip returns identical bytes", func(t *testing.T) {
		store := newTestStore(t)
		data := []byte("transcript pdf bytes \x00\x01\x02")

		ref, err := store.Put(ctx, data)
		require.NoError(t, err)

		want := sha256.Sum256(data)
		assert.Equal(t, hex.EncodeToString(want[:]), string(ref))

		got, err := store.Get(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("storing the same bytes twice yields the same ref", func(t *testing.T) {
		store := newTestStore(t)
		first, err := store.Put(ctx, []byte("same"))
		require.NoError(t, err)
		second, err := store.Put(ctx, []byte("same"))
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("unknown ref is not found", func(t *testing.T) {
		store := newTestStore(t)
		missing := Ref(hex.EncodeToString(make([]byte, sha256.Size)))
		_, err := store.Get(ctx, missing)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("malformed ref is rejected before touching the disk", func(t *testing.T) {
		store := newTestStore(t)
		for _, ref := range []Ref{"", "short", "../../etc/passwd", Ref("zz" + hex.EncodeToString(make([]byte, sha256.Size-1)))} {
			_, err := store.Get(ctx, ref)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), "ref %q", ref)
		}
	})
}
