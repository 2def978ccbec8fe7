package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"gitlab.connectwisedev.com/product-scanner/models"
)

// ErrNotFound is returned when a delete targets a missing row.
var ErrNotFound = errors.New("not found")

// SaveProduct stores p in the user's saved list.
func (s *Store) SaveProduct(ctx context.Context, userID string, p models.ProductRecord) (*models.SavedProduct, error) {
	if err := s.available(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode product: %w", err)
	}

	saved := &models.SavedProduct{ID: uuid.New().String(), UserID: userID, Product: p}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO user_saved (id, user_id, product, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`, saved.ID, userID, string(data), s.now()).Scan(&saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save product %s: %w", p.ASIN, err)
	}
	return saved, nil
}

// ListSaved returns the user's saved products, newest first.
func (s *Store) ListSaved(ctx context.Context, userID string) ([]models.SavedProduct, error) {
	if err := s.available(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, product, created_at FROM user_saved
		WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query saved products: %w", err)
	}
	defer rows.Close()

	out := []models.SavedProduct{}
	for rows.Next() {
		var (
			sp   models.SavedProduct
			data []byte
		)
		if err := rows.Scan(&sp.ID, &sp.UserID, &data, &sp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan saved product: %w", err)
		}
		if err := json.Unmarshal(data, &sp.Product); err != nil {
			return nil, fmt.Errorf("failed to decode saved product %s: %w", sp.ID, err)
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

// DeleteSaved removes one saved product.
func (s *Store) DeleteSaved(ctx context.Context, userID, id string) error {
	if err := s.available(); err != nil {
		return err
	}
	return s.deleteOne(ctx, `DELETE FROM user_saved WHERE user_id = $1 AND id = $2`, userID, id)
}

// AddCompetitor puts asin on the watchlist. Adding it twice returns the existing row.
func (s *Store) AddCompetitor(ctx context.Context, userID, asin string) (*models.Competitor, error) {
	if err := s.available(); err != nil {
		return nil, err
	}
	c := &models.Competitor{UserID: userID, ASIN: asin}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO competitors (id, user_id, asin, added_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, asin) DO UPDATE SET asin = EXCLUDED.asin
		RETURNING id, added_at`, uuid.New().String(), userID, asin, s.now()).Scan(&c.ID, &c.AddedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add competitor %s: %w", asin, err)
	}
	return c, nil
}

// RemoveCompetitor takes asin off the watchlist.
func (s *Store) RemoveCompetitor(ctx context.Context, userID, asin string) error {
	if err := s.available(); err != nil {
		return err
	}
	return s.deleteOne(ctx, `DELETE FROM competitors WHERE user_id = $1 AND asin = $2`, userID, asin)
}

// ListCompetitors returns the watchlist, newest first.
func (s *Store) ListCompetitors(ctx context.Context, userID string) ([]models.Competitor, error) {
	if err := s.available(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, asin, added_at FROM competitors
		WHERE user_id = $1 ORDER BY added_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query competitors: %w", err)
	}
	defer rows.Close()

	out := []models.Competitor{}
	for rows.Next() {
		var c models.Competitor
		if err := rows.Scan(&c.ID, &c.UserID, &c.ASIN, &c.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan competitor: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SaveBundle stores a named bundle.
func (s *Store) SaveBundle(ctx context.Context, userID, name string, products []models.ProductRecord) (*models.Bundle, error) {
	if err := s.available(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(products)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bundle products: %w", err)
	}

	b := &models.Bundle{ID: uuid.New().String(), UserID: userID, BundleName: name, Products: products}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO user_bundles (id, user_id, bundle_name, products, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`, b.ID, userID, name, string(data), s.now()).Scan(&b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save bundle %q: %w", name, err)
	}
	return b, nil
}

// ListBundles returns the user's bundles, newest first.
func (s *Store) ListBundles(ctx context.Context, userID string) ([]models.Bundle, error) {
	if err := s.available(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, bundle_name, products, created_at FROM user_bundles
		WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bundles: %w", err)
	}
	defer rows.Close()

	out := []models.Bundle{}
	for rows.Next() {
		var (
			b    models.Bundle
			data []byte
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.BundleName, &data, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bundle: %w", err)
		}
		if err := json.Unmarshal(data, &b.Products); err != nil {
			return nil, fmt.Errorf("failed to decode bundle %s: %w", b.ID, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) deleteOne(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
