package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"gitlab.connectwisedev.com/product-scanner/models"
)

const alertColumns = `id, user_id, asin, target_price, triggered, triggered_at, created_at`

// CreateAlert registers a price alert for asin.
func (s *Store) CreateAlert(ctx context.Context, userID, asin string, target float64) (*models.PriceAlert, error) {
	if err := s.available(); err != nil {
		return nil, err
	}
	a, err := scanAlert(s.db.QueryRowContext(ctx, `
		INSERT INTO price_alerts (id, user_id, asin, target_price, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+alertColumns, uuid.New().String(), userID, asin, target, s.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to create alert for %s: %w", asin, err)
	}
	return &a, nil
}

// ListAlerts returns the user's alerts, newest first.
func (s *Store) ListAlerts(ctx context.Context, userID string) ([]models.PriceAlert, error) {
	if err := s.available(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+alertColumns+` FROM price_alerts
		WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	out := []models.PriceAlert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// TriggerAlerts marks every untriggered alert whose ASIN appears in records at
// or below its target price, and returns the alerts it fired.
func (s *Store) TriggerAlerts(ctx context.Context, records []models.ProductRecord) ([]models.PriceAlert, error) {
	if err := s.available(); err != nil {
		return nil, err
	}

	fired := []models.PriceAlert{}
	for _, p := range records {
		rows, err := s.db.QueryContext(ctx, `
			UPDATE price_alerts SET triggered = TRUE, triggered_at = $3
			WHERE asin = $1 AND NOT triggered AND target_price >= $2
			RETURNING `+alertColumns, p.ASIN, p.Price, s.now())
		if err != nil {
			return fired, fmt.Errorf("failed to trigger alerts for %s: %w", p.ASIN, err)
		}
		for rows.Next() {
			a, err := scanAlert(rows)
			if err != nil {
				rows.Close()
				return fired, fmt.Errorf("failed to scan alert: %w", err)
			}
			fired = append(fired, a)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return fired, fmt.Errorf("error during row iteration from DB: %w", err)
		}
	}
	return fired, nil
}

// scanAlert reads one price_alerts row.
func scanAlert(sc interface{ Scan(...any) error }) (models.PriceAlert, error) {
	var (
		a           models.PriceAlert
		triggeredAt sql.NullTime
	)
	if err := sc.Scan(&a.ID, &a.UserID, &a.ASIN, &a.TargetPrice, &a.Triggered, &triggeredAt, &a.CreatedAt); err != nil {
		return a, err
	}
	if triggeredAt.Valid {
		a.TriggeredAt = &triggeredAt.Time
	}
	return a, nil
}
