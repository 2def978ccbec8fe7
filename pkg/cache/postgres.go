package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gitlab.connectwisedev.com/product-scanner/models"
	"gitlab.connectwisedev.com/product-scanner/pkg/database"
)

// PostgresBackend stores entries in the product_cache table.
type PostgresBackend struct {
	db *sql.DB
}

func NewPostgresBackend(client *database.DBClient) *PostgresBackend {
	return &PostgresBackend{db: client.GetDB()}
}

func (p *PostgresBackend) Latest(ctx context.Context, key string, now time.Time) (*models.CacheEntry, error) {
	if p.db == nil {
		return nil, database.ErrStorageUnavailable
	}
	row := p.db.QueryRowContext(ctx, `
		SELECT id, cache_key, category, search_query, products_data, created_at, expires_at, search_count
		FROM product_cache
		WHERE cache_key = $1 AND expires_at > $2
		ORDER BY created_at DESC
		LIMIT 1`, key, now)

	var (
		e    models.CacheEntry
		data []byte
	)
	err := row.Scan(&e.ID, &e.CacheKey, &e.Category, &e.Keyword, &data, &e.CreatedAt, &e.ExpiresAt, &e.HitCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product_cache: %w", err)
	}
	if err := json.Unmarshal(data, &e.Products); err != nil {
		return nil, fmt.Errorf("failed to decode cached products for %s: %w", e.ID, err)
	}
	return &e, nil
}

func (p *PostgresBackend) Insert(ctx context.Context, entry *models.CacheEntry) error {
	if p.db == nil {
		return database.ErrStorageUnavailable
	}
	data, err := json.Marshal(entry.Products)
	if err != nil {
		return fmt.Errorf("failed to encode products: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO product_cache (id, cache_key, category, search_query, products_data, created_at, expires_at, search_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.CacheKey, entry.Category, entry.Keyword, string(data), entry.CreatedAt, entry.ExpiresAt, entry.HitCount)
	if err != nil {
		return fmt.Errorf("failed to insert product_cache row: %w", err)
	}
	return nil
}

func (p *PostgresBackend) IncrementHit(ctx context.Context, id string) error {
	if p.db == nil {
		return database.ErrStorageUnavailable
	}
	_, err := p.db.ExecContext(ctx, `UPDATE product_cache SET search_count = search_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment search_count: %w", err)
	}
	return nil
}
