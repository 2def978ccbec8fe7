package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gitlab.connectwisedev.com/product-scanner/models"
)

// MemoryBackend keeps entries in process. It is used for local runs and tests.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[string][]*models.CacheEntry // by cache key, insertion order
	byID    map[string]*models.CacheEntry
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		entries: make(map[string][]*models.CacheEntry),
		byID:    make(map[string]*models.CacheEntry),
	}
}

func (m *MemoryBackend) Latest(_ context.Context, key string, now time.Time) (*models.CacheEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var latest *models.CacheEntry
	for _, e := range m.entries[key] {
		if e.Expired(now) {
			continue
		}
		if latest == nil || !e.CreatedAt.Before(latest.CreatedAt) {
			latest = e
		}
	}
	if latest == nil {
		return nil, ErrCacheMiss
	}
	cp := *latest
	cp.Products = append([]models.ProductRecord(nil), latest.Products...)
	return &cp, nil
}

func (m *MemoryBackend) Insert(_ context.Context, entry *models.CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[entry.ID]; ok {
		return fmt.Errorf("duplicate cache entry id %s", entry.ID)
	}
	cp := *entry
	cp.Products = append([]models.ProductRecord(nil), entry.Products...)
	m.entries[entry.CacheKey] = append(m.entries[entry.CacheKey], &cp)
	m.byID[entry.ID] = &cp
	return nil
}

func (m *MemoryBackend) IncrementHit(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("cache entry %s not found", id)
	}
	e.HitCount++
	return nil
}
