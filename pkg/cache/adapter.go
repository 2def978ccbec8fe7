package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"gitlab.connectwisedev.com/product-scanner/models"
	"gitlab.connectwisedev.com/product-scanner/pkg/config"
	"gitlab.connectwisedev.com/product-scanner/pkg/metrics"
)

// Adapter fronts a Backend and absorbs every storage failure. With a nil
// backend all reads miss and all writes are no-ops.
type Adapter struct {
	backend Backend
	ttl     time.Duration
	now     func() time.Time
	logger  zerolog.Logger
	metrics *metrics.Registry
}

// Option customises an Adapter.
type Option func(*Adapter)

// WithTTL overrides the default 24h lifetime of new entries.
func WithTTL(ttl time.Duration) Option {
	return func(a *Adapter) {
		if ttl > 0 {
			a.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(a *Adapter) { a.logger = logger }
}

func WithMetrics(m *metrics.Registry) Option {
	return func(a *Adapter) { a.metrics = m }
}

// NewAdapter wraps backend, which may be nil.
func NewAdapter(backend Backend, opts ...Option) *Adapter {
	a := &Adapter{
		backend: backend,
		ttl:     config.DefaultCacheTTL,
		now:     time.Now,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Enabled reports whether a backend is attached.
func (a *Adapter) Enabled() bool {
	return a != nil && a.backend != nil
}

// Get returns the live entry for key. Any backend failure is reported as a miss.
func (a *Adapter) Get(ctx context.Context, key string) (*models.CacheEntry, bool) {
	if !a.Enabled() {
		return nil, false
	}
	entry, err := a.backend.Latest(ctx, key, a.now())
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			a.metrics.StorageError("cache_get")
			a.logger.Warn().Err(err).Str("cache_key", key).Msg("cache read failed, treating as miss")
		}
		return nil, false
	}
	return entry, true
}

// PutOptions describes the query a stored result set belongs to.
type PutOptions struct {
	Category string
	Keyword  string
	TTL      time.Duration
}

// Put inserts a new entry expiring after the configured TTL. It returns nil
// when the entry could not be stored.
func (a *Adapter) Put(ctx context.Context, key string, records []models.ProductRecord, opts PutOptions) *models.CacheEntry {
	if !a.Enabled() {
		return nil
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = a.ttl
	}
	now := a.now()
	entry := &models.CacheEntry{
		ID:        uuid.New().String(),
		CacheKey:  key,
		Category:  opts.Category,
		Keyword:   opts.Keyword,
		Products:  records,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := a.backend.Insert(ctx, entry); err != nil {
		a.metrics.StorageError("cache_put")
		a.logger.Warn().Err(err).Str("cache_key", key).Msg("cache write failed")
		return nil
	}
	return entry
}

// IncrementHit bumps the entry's hit counter. Failures are only logged.
func (a *Adapter) IncrementHit(ctx context.Context, id string) {
	if !a.Enabled() {
		return
	}
	if err := a.backend.IncrementHit(ctx, id); err != nil {
		a.metrics.StorageError("cache_hit")
		a.logger.Warn().Err(err).Str("entry_id", id).Msg("cache hit increment failed")
	}
}
