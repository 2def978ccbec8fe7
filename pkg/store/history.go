package store

import (
	"context"
	"fmt"

	"gitlab.connectwisedev.com/product-scanner/models"
)

const defaultHistoryLimit = 500

// RecordHistory appends one row per sample.
func (s *Store) RecordHistory(ctx context.Context, samples []models.HistorySample) error {
	if err := s.available(); err != nil {
		return err
	}
	if len(samples) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Rollback on error by default

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO product_history (asin, price, bsr, rating, reviews, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer stmt.Close()

	for _, h := range samples {
		ts := h.Timestamp
		if ts.IsZero() {
			ts = s.now()
		}
		if _, err := stmt.ExecContext(ctx, h.ASIN, h.Price, h.BestSellerRank, h.Rating, h.ReviewCount, ts); err != nil {
			return fmt.Errorf("failed to insert history for %s: %w", h.ASIN, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history: %w", err)
	}
	return nil
}

// History returns the most recent samples for asin, oldest first.
func (s *Store) History(ctx context.Context, asin string, limit int) ([]models.HistorySample, error) {
	if err := s.available(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, asin, price, bsr, rating, reviews, recorded_at FROM (
			SELECT id, asin, price, bsr, rating, reviews, recorded_at
			FROM product_history
			WHERE asin = $1
			ORDER BY recorded_at DESC
			LIMIT $2
		) recent
		ORDER BY recorded_at ASC`, asin, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query product history: %w", err)
	}
	defer rows.Close()

	samples := []models.HistorySample{}
	for rows.Next() {
		var h models.HistorySample
		if err := rows.Scan(&h.ID, &h.ASIN, &h.Price, &h.BestSellerRank, &h.Rating, &h.ReviewCount, &h.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		samples = append(samples, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration from DB: %w", err)
	}
	return samples, nil
}
