package statestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"soulbound/pkg/platform/sentinel"
)

// runBlobContract exercises the behaviour every Blob must share.
func runBlobContract(t *testing.T, blob Blob) {
	t.Helper()
	ctx := context.Background()

	t.Run("absent key loads as version zero", func(t *testing.T) {
		data, version, err := blob.Load(ctx, "absent")
		require.NoError(t, err)
		require.Zero(t, version)
		require.Nil(t, data)
	})

	t.Run("create then update", func(t *testing.T) {
		v1, err := blob.CompareAndSwap(ctx, "k", 0, []byte("one"))
		require.NoError(t, err)
		require.Equal(t, uint64(1), v1)

		v2, err := blob.CompareAndSwap(ctx, "k", v1, []byte("two"))
		require.NoError(t, err)
		require.Equal(t, uint64(2), v2)

		data, version, err := blob.Load(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, v2, version)
		require.Equal(t, []byte("two"), data)
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		_, err := blob.CompareAndSwap(ctx, "stale", 0, []byte("a"))
		require.NoError(t, err)

		_, err = blob.CompareAndSwap(ctx, "stale", 0, []byte("b"))
		require.ErrorIs(t, err, sentinel.ErrConflict)

		data, _, err := blob.Load(ctx, "stale")
		require.NoError(t, err)
		require.Equal(t, []byte("a"), data)
	})
}
