package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.connectwisedev.com/product-scanner/models"
)

// incrHitScript only increments live entries so an expired hash is not
// resurrected without a TTL.
var incrHitScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return redis.call("HINCRBY", KEYS[1], "hits", 1)
end
return 0
`)

// RedisBackend stores each entry as a hash and indexes entry ids per cache key
// in a sorted set scored by creation time.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

func NewRedisBackend(client *RedisClient, prefix string) *RedisBackend {
	return &RedisBackend{client: client.GetClient(), prefix: prefix}
}

func (r *RedisBackend) indexKey(key string) string { return r.prefix + "product_cache:" + key }
func (r *RedisBackend) entryKey(id string) string  { return r.prefix + "product_cache_entry:" + id }

func (r *RedisBackend) Latest(ctx context.Context, key string, now time.Time) (*models.CacheEntry, error) {
	ids, err := r.client.ZRevRange(ctx, r.indexKey(key), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cache index from Redis: %w", err)
	}

	for _, id := range ids {
		fields, err := r.client.HGetAll(ctx, r.entryKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read cache entry %s from Redis: %w", id, err)
		}
		if len(fields) == 0 {
			// Evicted or expired by Redis; drop it from the index.
			r.client.ZRem(ctx, r.indexKey(key), id)
			continue
		}
		entry, err := decodeRedisEntry(id, fields)
		if err != nil {
			return nil, err
		}
		if entry.Expired(now) {
			continue
		}
		return entry, nil
	}
	return nil, ErrCacheMiss
}

func (r *RedisBackend) Insert(ctx context.Context, entry *models.CacheEntry) error {
	data, err := json.Marshal(entry.Products)
	if err != nil {
		return fmt.Errorf("failed to encode products: %w", err)
	}
	ttl := entry.ExpiresAt.Sub(entry.CreatedAt)

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.entryKey(entry.ID), map[string]interface{}{
			"cache_key":  entry.CacheKey,
			"category":   entry.Category,
			"keyword":    entry.Keyword,
			"products":   data,
			"created_at": entry.CreatedAt.UnixNano(),
			"expires_at": entry.ExpiresAt.UnixNano(),
			"hits":       entry.HitCount,
		})
		pipe.Expire(ctx, r.entryKey(entry.ID), ttl)
		pipe.ZAdd(ctx, r.indexKey(entry.CacheKey), &redis.Z{
			Score:  float64(entry.CreatedAt.UnixNano()),
			Member: entry.ID,
		})
		pipe.Expire(ctx, r.indexKey(entry.CacheKey), ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to execute Redis pipeline for cache insert: %w", err)
	}
	return nil
}

func (r *RedisBackend) IncrementHit(ctx context.Context, id string) error {
	if err := incrHitScript.Run(ctx, r.client, []string{r.entryKey(id)}).Err(); err != nil {
		return fmt.Errorf("failed to increment hits for %s: %w", id, err)
	}
	return nil
}

func decodeRedisEntry(id string, fields map[string]string) (*models.CacheEntry, error) {
	e := &models.CacheEntry{
		ID:       id,
		CacheKey: fields["cache_key"],
		Category: fields["category"],
		Keyword:  fields["keyword"],
	}
	created, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad created_at on cache entry %s: %w", id, err)
	}
	expires, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad expires_at on cache entry %s: %w", id, err)
	}
	e.CreatedAt = time.Unix(0, created).UTC()
	e.ExpiresAt = time.Unix(0, expires).UTC()
	if h := fields["hits"]; h != "" {
		if e.HitCount, err = strconv.ParseInt(h, 10, 64); err != nil {
			return nil, fmt.Errorf("bad hits on cache entry %s: %w", id, err)
		}
	}
	if err := json.Unmarshal([]byte(fields["products"]), &e.Products); err != nil {
		return nil, fmt.Errorf("failed to decode cached products for %s: %w", id, err)
	}
	return e, nil
}
