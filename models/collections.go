package models

import (
	"time"
)

// SavedProduct is a product a user kept from a search.
type SavedProduct struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Product   ProductRecord `json:"product"`
	CreatedAt time.Time     `json:"created_at"`
}

// Competitor is an ASIN on the watchlist.
type Competitor struct {
	ID      string    `json:"id"`
	UserID  string    `json:"user_id"`
	ASIN    string    `json:"asin"`
	AddedAt time.Time `json:"added_at"`
}

// PriceAlert fires once a product with ASIN is seen at or below TargetPrice.
type PriceAlert struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	ASIN        string     `json:"asin"`
	TargetPrice float64    `json:"target_price"`
	Triggered   bool       `json:"triggered"`
	TriggeredAt *time.Time `json:"triggered_at"` // Pointer for nullable field
	CreatedAt   time.Time  `json:"created_at"`
}

// Bundle is a named group of products.
type Bundle struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	BundleName string          `json:"bundle_name"`
	Products   []ProductRecord `json:"products"`
	CreatedAt  time.Time       `json:"created_at"`
}
