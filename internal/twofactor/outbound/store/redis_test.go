package store

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	uri, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)

	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	s := NewRedis(client, "test:secret:", instrument.NewNoop())
	t.Cleanup(func() { _ = s.Close() })

	testStoreContract(t, s)

	t.Run("keys are prefixed", func(t *testing.T) {
		keys, err := client.Keys(ctx, "test:secret:*").Result()
		require.NoError(t, err)
		assert.Equal(t, []string{"test:secret:race"}, keys)
	})
}
