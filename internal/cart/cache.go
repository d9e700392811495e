package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache is the read-through cache over cart aggregates, keyed by owner.
type Cache interface {
	Get(ctx context.Context, owner Owner) (*Cart, error)
	Set(ctx context.Context, owner Owner, cart *Cart) error
	Delete(ctx context.Context, owner Owner) error
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

func (r *RedisCache) Get(ctx context.Context, owner Owner) (*Cart, error) {
	data, err := r.client.Get(ctx, cacheKey(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}

	return &cart, nil
}

func (r *RedisCache) Set(ctx context.Context, owner Owner, cart *Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	// Jitter spreads expiry so a burst of carts does not fall out at once.
	ttl := r.baseTTL + time.Duration(rand.Intn(5))*time.Minute
	if err := r.client.Set(ctx, cacheKey(owner), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, owner Owner) error {
	if err := r.client.Del(ctx, cacheKey(owner)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(owner Owner) string {
	return "cart:" + owner.Key()
}
