// Package cache stores normalized search results with a fixed time-to-live.
//
// Entries are insert-only. A read returns the newest entry for a key whose
// expiry lies in the future; expired entries are skipped, never deleted.
package cache

import (
	"context"
	"errors"
	"time"

	"gitlab.connectwisedev.com/product-scanner/models"
)

// ErrCacheMiss is returned by a Backend when no live entry exists for a key.
var ErrCacheMiss = errors.New("cache miss")

// Backend is a durable store for cache entries.
type Backend interface {
	// Latest returns the most recently created entry for key that is still
	// live at now, or ErrCacheMiss.
	Latest(ctx context.Context, key string, now time.Time) (*models.CacheEntry, error)
	// Insert stores a new entry. It never replaces an existing one.
	Insert(ctx context.Context, entry *models.CacheEntry) error
	// IncrementHit bumps the hit counter of the entry with the given id.
	IncrementHit(ctx context.Context, id string) error
}
