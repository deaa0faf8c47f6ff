package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/shortener"
)

// RedisCacheStore wraps an AtomicStore with a Redis read cache.
// Only non-empty mappings are cached; misses always reach the underlying store.
type RedisCacheStore struct {
	store  shortener.AtomicStore
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCacheStore creates a new Redis-cached store decorator.
func NewRedisCacheStore(store shortener.AtomicStore, client *redis.Client, ttl time.Duration) *RedisCacheStore {
	return &RedisCacheStore{
		store:  store,
		client: client,
		prefix: "cache:",
		ttl:    ttl,
	}
}

// Get returns the mapping for key, checking the cache first.
func (r *RedisCacheStore) Get(ctx context.Context, key string) (string, error) {
	if url, err := r.client.Get(ctx, r.prefix+key).Result(); err == nil && url != "" {
		return url, nil
	}

	url, err := r.store.Get(ctx, key)
	if err != nil {
		return "", err
	}

	if url != "" {
		r.cache(ctx, key, url)
	}

	return url, nil
}

// Set writes through to the underlying store, then refreshes the cache.
func (r *RedisCacheStore) Set(ctx context.Context, key, value string) error {
	if err := r.store.Set(ctx, key, value); err != nil {
		return err
	}

	r.cache(ctx, key, value)

	return nil
}

// SetIfAbsent claims key in the underlying store and caches whichever value won.
func (r *RedisCacheStore) SetIfAbsent(ctx context.Context, key, value string) (string, error) {
	current, err := r.store.SetIfAbsent(ctx, key, value)
	if err != nil {
		return "", err
	}

	r.cache(ctx, key, current)

	return current, nil
}

// Warm caches a mapping known to be persisted, e.g. from a mapping.created event.
func (r *RedisCacheStore) Warm(ctx context.Context, key, value string) error {
	if key == "" || value == "" {
		return errors.New("cannot warm empty mapping")
	}

	return r.client.Set(ctx, r.prefix+key, value, r.ttl).Err()
}

// cache failures are ignored: the underlying store stays the source of truth.
func (r *RedisCacheStore) cache(ctx context.Context, key, value string) {
	_ = r.client.Set(ctx, r.prefix+key, value, r.ttl).Err()
}

// Shutdown is a no-op for RedisCacheStore (client managed externally).
func (r *RedisCacheStore) Shutdown() error {
	return nil
}

// Compile-time check.
var _ shortener.AtomicStore = (*RedisCacheStore)(nil)
