package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/shortener"
)

// RedisStore is a Redis implementation of shortener.AtomicStore.
type RedisStore struct {
	client *redis.Client
	prefix string // "url:" + short url -> long url (string keys)
}

// NewRedisStore creates a new Redis-backed URL store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "url:",
	}
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	url, err := r.client.Get(ctx, r.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}

		return "", err
	}

	return url, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

// SetIfAbsent uses SET NX GET, so the claim and the read of the current
// holder happen in one round trip. NX combined with GET needs Redis 7.0 or newer.
func (r *RedisStore) SetIfAbsent(ctx context.Context, key, value string) (string, error) {
	current, err := r.client.SetArgs(ctx, r.prefix+key, value, redis.SetArgs{
		Mode: "NX",
		Get:  true,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// key was absent and is now ours
			return value, nil
		}

		return "", err
	}

	return current, nil
}

var _ shortener.AtomicStore = (*RedisStore)(nil)
