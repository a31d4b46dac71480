// internal/infrastructure/database/redis/kv.go
package redis

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/handmade-storefront/internal/domain/cart"
)

// KV is a cart.KVStore backed by Redis. Every write refreshes the key's TTL,
// so an abandoned cart expires ttl after its last edit.
type KV struct {
	client *Client
	ttl    time.Duration
}

var _ cart.KVStore = (*KV)(nil)

// NewKV creates a KVStore; ttl <= 0 keeps keys forever
func NewKV(client *Client, ttl time.Duration) *KV {
	if ttl < 0 {
		ttl = 0
	}
	return &KV{client: client, ttl: ttl}
}

// Get returns the value of key or cart.ErrNotFound
func (k *KV) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := k.client.Redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cart.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "redis get %s", key)
	}
	return val, nil
}

// Set stores value under key
func (k *KV) Set(ctx context.Context, key string, value []byte) error {
	if err := k.client.Redis.Set(ctx, key, value, k.ttl).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", key)
	}
	return nil
}

// Delete removes key
func (k *KV) Delete(ctx context.Context, key string) error {
	if err := k.client.Redis.Del(ctx, key).Err(); err != nil {
		return errors.Wrapf(err, "redis del %s", key)
	}
	return nil
}
