//go:build integration

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"gitlab.connectwisedev.com/product-scanner/models"
	"gitlab.connectwisedev.com/product-scanner/pkg/config"
	"gitlab.connectwisedev.com/product-scanner/pkg/database"
)

func startPostgres(t *testing.T) *database.DBClient {
	t.Helper()
	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("scanner_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432")
	require.NoError(t, err)

	client, err := database.NewPostgresClient(ctx, config.DBConfig{
		Host: host, Port: port.Port(), User: "test", Password: "test", Name: "scanner_test", SSLMode: "disable",
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)
	require.NoError(t, client.Migrate(ctx))
	return client
}

func startRedis(t *testing.T) *RedisClient {
	t.Helper()
	ctx := context.Background()

	rc, err := tcredis.Run(ctx,
		"redis:7.4-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Terminate(ctx) })

	host, err := rc.Host(ctx)
	require.NoError(t, err)
	port, err := rc.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := NewRedisClient(ctx, config.RedisConfig{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func exerciseBackend(t *testing.T, backend Backend) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	_, err := backend.Latest(ctx, "fitness_resistance_bands", now)
	assert.ErrorIs(t, err, ErrCacheMiss)

	older := &models.CacheEntry{
		ID: "7f0c5a8e-0000-4000-8000-000000000001", CacheKey: "fitness_resistance_bands",
		Products: sampleRecords()[:1], CreatedAt: now.Add(-2 * time.Minute), ExpiresAt: now.Add(time.Hour),
	}
	newer := &models.CacheEntry{
		ID: "7f0c5a8e-0000-4000-8000-000000000002", CacheKey: "fitness_resistance_bands",
		Products: sampleRecords(), CreatedAt: now.Add(-time.Minute), ExpiresAt: now.Add(time.Hour), HitCount: 3,
	}
	require.NoError(t, backend.Insert(ctx, older))
	require.NoError(t, backend.Insert(ctx, newer))

	got, err := backend.Latest(ctx, "fitness_resistance_bands", now)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)
	assert.Equal(t, sampleRecords(), got.Products)
	assert.EqualValues(t, 3, got.HitCount)

	require.NoError(t, backend.IncrementHit(ctx, newer.ID))
	got, err = backend.Latest(ctx, "fitness_resistance_bands", now)
	require.NoError(t, err)
	assert.EqualValues(t, 4, got.HitCount)

	_, err = backend.Latest(ctx, "fitness_resistance_bands", now.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestPostgresBackend_Integration(t *testing.T) {
	exerciseBackend(t, NewPostgresBackend(startPostgres(t)))
}

func TestRedisBackend_Integration(t *testing.T) {
	exerciseBackend(t, NewRedisBackend(startRedis(t), "test:"))
}
