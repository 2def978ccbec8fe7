package database

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS product_cache (
		id           UUID PRIMARY KEY,
		cache_key    TEXT NOT NULL,
		search_query TEXT NOT NULL DEFAULT '',
		category     TEXT NOT NULL DEFAULT '',
		products_data JSONB NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL,
		expires_at   TIMESTAMPTZ NOT NULL,
		search_count BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS product_cache_lookup_idx ON product_cache (cache_key, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS product_history (
		id          BIGSERIAL PRIMARY KEY,
		asin        TEXT NOT NULL,
		price       NUMERIC(12,2) NOT NULL,
		bsr         INTEGER NOT NULL,
		rating      NUMERIC(3,2) NOT NULL,
		reviews     INTEGER NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS product_history_asin_idx ON product_history (asin, recorded_at)`,
	`CREATE TABLE IF NOT EXISTS user_saved (
		id         UUID PRIMARY KEY,
		user_id    TEXT NOT NULL DEFAULT '',
		product    JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS competitors (
		id       UUID PRIMARY KEY,
		user_id  TEXT NOT NULL DEFAULT '',
		asin     TEXT NOT NULL,
		added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, asin)
	)`,
	`CREATE TABLE IF NOT EXISTS price_alerts (
		id           UUID PRIMARY KEY,
		user_id      TEXT NOT NULL DEFAULT '',
		asin         TEXT NOT NULL,
		target_price NUMERIC(12,2) NOT NULL,
		triggered    BOOLEAN NOT NULL DEFAULT FALSE,
		triggered_at TIMESTAMPTZ,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS user_bundles (
		id          UUID PRIMARY KEY,
		user_id     TEXT NOT NULL DEFAULT '',
		bundle_name TEXT NOT NULL,
		products    JSONB NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates every table the scanner uses. It is safe to run repeatedly.
func (c *DBClient) Migrate(ctx context.Context) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Rollback on error by default

	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migrations: %w", err)
	}
	return nil
}
