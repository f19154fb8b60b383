package redis_test

import (
	"context"
	"testing"

	"go-hiring-pipeline/pkg/redis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	t.Run("missing url", func(t *testing.T) {
		_, err := redis.Options(redis.Config{})
		assert.ErrorIs(t, err, redis.ErrNotConfigured)
	})

	t.Run("plain url gets default port and pool settings", func(t *testing.T) {
		opts, err := redis.Options(redis.Config{URL: "redis://cache.internal"})
		require.NoError(t, err)
		assert.Equal(t, "cache.internal:6379", opts.Addr)
		assert.Nil(t, opts.TLSConfig)
		assert.Equal(t, 10, opts.PoolSize)
		assert.Equal(t, 2, opts.MinIdleConns)
	})

	t.Run("rediss enables tls and keeps db and password", func(t *testing.T) {
		opts, err := redis.Options(redis.Config{URL: "rediss://:secret@cache.internal:6380/2"})
		require.NoError(t, err)
		assert.Equal(t, "cache.internal:6380", opts.Addr)
		assert.NotNil(t, opts.TLSConfig)
		assert.Equal(t, "secret", opts.Password)
		assert.Equal(t, 2, opts.DB)
	})

	t.Run("explicit password wins", func(t *testing.T) {
		opts, err := redis.Options(redis.Config{URL: "redis://:inurl@cache:6379", Password: "override"})
		require.NoError(t, err)
		assert.Equal(t, "override", opts.Password)
	})

	t.Run("bad scheme", func(t *testing.T) {
		_, err := redis.Options(redis.Config{URL: "http://cache:6379"})
		assert.Error(t, err)
	})
}

func TestHealthCheckWithoutClient(t *testing.T) {
	assert.Nil(t, redis.Client())
	assert.Error(t, redis.HealthCheck(context.Background()))
	assert.NoError(t, redis.Close())
}
