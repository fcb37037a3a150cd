//go:build integration

package statestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"soulbound/internal/platform/postgres"
	"soulbound/pkg/testutil/containers"
)

func TestRedisBlob(t *testing.T) {
	runBlobContract(t, NewRedisBlob(containers.StartRedis(t)))
}

func TestPostgresBlob(t *testing.T) {
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, containers.StartPostgres(t))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	blob := NewPostgresBlob(pool)
	require.NoError(t, blob.Migrate(ctx))
	runBlobContract(t, blob)
}
