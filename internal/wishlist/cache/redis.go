package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/wishlist-service/pkg/logger"
)

// RedisCache shares cached values between replicas. Values are JSON encoded
// and expire through Redis TTLs. Backend failures degrade to misses.
type RedisCache[V any] struct {
	client    redis.UniversalClient
	name      string
	namespace string
	ttl       time.Duration
}

// NewRedisCache creates a cache storing keys under namespace.
func NewRedisCache[V any](client redis.UniversalClient, name, namespace string, ttl time.Duration) *RedisCache[V] {
	return &RedisCache[V]{
		client:    client,
		name:      name,
		namespace: namespace,
		ttl:       ttl,
	}
}

// Get implements Cache.
func (r *RedisCache[V]) Get(ctx context.Context, key string) (V, bool) {
	var value V

	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		recordLookup(r.name, false)
		return value, false
	}
	if err != nil {
		r.fail(ctx, "get", key, err)
		recordLookup(r.name, false)
		return value, false
	}

	if err := json.Unmarshal(data, &value); err != nil {
		r.fail(ctx, "decode", key, err)
		recordLookup(r.name, false)
		var zero V
		return zero, false
	}

	recordLookup(r.name, true)
	return value, true
}

// Set implements Cache.
func (r *RedisCache[V]) Set(ctx context.Context, key string, value V) {
	data, err := json.Marshal(value)
	if err != nil {
		r.fail(ctx, "encode", key, err)
		return
	}
	if err := r.client.Set(ctx, r.key(key), data, r.ttl).Err(); err != nil {
		r.fail(ctx, "set", key, err)
	}
}

// Delete implements Cache.
func (r *RedisCache[V]) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		r.fail(ctx, "delete", key, err)
	}
}

// Clear implements Cache by scanning the namespace.
func (r *RedisCache[V]) Clear(ctx context.Context) {
	var keys []string
	iter := r.client.Scan(ctx, 0, r.namespace+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.fail(ctx, "clear", r.namespace, err)
		return
	}

	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.fail(ctx, "clear", r.namespace, err)
		return
	}

	logger.Debug(ctx).
		Str("cache", r.name).
		Int("keys", len(keys)).
		Msg("Cache cleared")
}

func (r *RedisCache[V]) key(key string) string {
	return r.namespace + key
}

func (r *RedisCache[V]) fail(ctx context.Context, op, key string, err error) {
	cacheErrorsTotal.WithLabelValues(r.name, op).Inc()
	logger.Warn(ctx).
		Err(err).
		Str("cache", r.name).
		Str("operation", op).
		Str("key", key).
		Msg("Cache backend error")
}
