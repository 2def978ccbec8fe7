//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"gitlab.connectwisedev.com/product-scanner/models"
	"gitlab.connectwisedev.com/product-scanner/pkg/config"
	"gitlab.connectwisedev.com/product-scanner/pkg/database"
)

func newIntegrationStore(t *testing.T) *Store {
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
	require.NoError(t, client.Migrate(ctx), "migrations must be idempotent")
	return New(client)
}

func TestStore_Integration(t *testing.T) {
	ctx := context.Background()
	s := newIntegrationStore(t)
	p := models.ProductRecord{Title: "Yoga Mat", ASIN: "B0ABCDEFGH", Price: 29.99, SupplierPrice: 9, BestSellerRank: 1200, Rating: 4.5, ReviewCount: 800}

	t.Run("saved products", func(t *testing.T) {
		saved, err := s.SaveProduct(ctx, "u1", p)
		require.NoError(t, err)
		list, err := s.ListSaved(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, p, list[0].Product)
		require.NoError(t, s.DeleteSaved(ctx, "u1", saved.ID))
		assert.ErrorIs(t, s.DeleteSaved(ctx, "u1", saved.ID), ErrNotFound)
	})

	t.Run("competitors", func(t *testing.T) {
		first, err := s.AddCompetitor(ctx, "u1", p.ASIN)
		require.NoError(t, err)
		again, err := s.AddCompetitor(ctx, "u1", p.ASIN)
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)

		list, err := s.ListCompetitors(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, list, 1)
		require.NoError(t, s.RemoveCompetitor(ctx, "u1", p.ASIN))
	})

	t.Run("alerts", func(t *testing.T) {
		_, err := s.CreateAlert(ctx, "u1", p.ASIN, 30)
		require.NoError(t, err)
		_, err = s.CreateAlert(ctx, "u1", p.ASIN, 20)
		require.NoError(t, err)

		fired, err := s.TriggerAlerts(ctx, []models.ProductRecord{p})
		require.NoError(t, err)
		require.Len(t, fired, 1)
		assert.Equal(t, 30.0, fired[0].TargetPrice)
		assert.NotNil(t, fired[0].TriggeredAt)

		fired, err = s.TriggerAlerts(ctx, []models.ProductRecord{p})
		require.NoError(t, err)
		assert.Empty(t, fired, "an alert fires once")
	})

	t.Run("bundles", func(t *testing.T) {
		_, err := s.SaveBundle(ctx, "u1", "Home Gym Kit", []models.ProductRecord{p, p})
		require.NoError(t, err)
		list, err := s.ListBundles(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Len(t, list[0].Products, 2)
	})

	t.Run("history", func(t *testing.T) {
		base := time.Now().UTC().Truncate(time.Second)
		require.NoError(t, s.RecordHistory(ctx, []models.HistorySample{
			{ASIN: p.ASIN, Price: 31, BestSellerRank: 1500, Rating: 4.4, ReviewCount: 780, Timestamp: base.Add(-time.Hour)},
			{ASIN: p.ASIN, Price: 29.99, BestSellerRank: 1200, Rating: 4.5, ReviewCount: 800, Timestamp: base},
		}))
		series, err := s.History(ctx, p.ASIN, 10)
		require.NoError(t, err)
		require.Len(t, series, 2)
		assert.Equal(t, 31.0, series[0].Price)
		assert.Equal(t, 29.99, series[1].Price)
	})
}
