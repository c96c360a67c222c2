package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares cached entries between server replicas. Entries carry
// the same metadata as the in-memory cache and expire from Redis once they
// are very stale.
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// ConnectRedis creates a client; a blank address disables Redis
func ConnectRedis(addr, password string) *redis.Client {
	if addr == "" {
		return nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}

// NewRedisStore creates a store that namespaces keys with prefix
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

func (r *RedisStore) key(key string) string {
	return r.prefix + key
}

// Set stores data with a Redis TTL of twice the refresh interval
func (r *RedisStore) Set(ctx context.Context, key string, data interface{}, refreshInterval time.Duration, source string) error {
	entry, err := newEntry(key, data, refreshInterval, source, r.now())
	if err != nil {
		return err
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := r.client.Set(ctx, r.key(key), payload, 2*refreshInterval).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// GetWithMetadata retrieves data and metadata even when stale
func (r *RedisStore) GetWithMetadata(ctx context.Context, key string, result interface{}) (*CacheEntry, bool, error) {
	payload, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var entry CacheEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}

	if result != nil {
		if err := json.Unmarshal(entry.Data, result); err != nil {
			return &entry, true, fmt.Errorf("failed to unmarshal cached data: %w", err)
		}
	}
	return &entry, true, nil
}

// Delete removes an entry
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}
