package store

import (
	"context"
	"time"

	"github.com/Yo-Self/menu-mestre-facil-sub001/pkg/cache"
	"github.com/redis/go-redis/v9"
)

// GateCache menyimpan hasil lookup waiter_call_enabled per key (menu:<id> / restaurant:<id>).
type GateCache interface {
	Get(ctx context.Context, key string) (enabled bool, ok bool)
	Set(ctx context.Context, key string, enabled bool)
	Delete(ctx context.Context, keys ...string)
}

// RedisGateCache shares gate results between instances.
// Redis errors are treated as a cache miss.
type RedisGateCache struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
}

func NewRedisGateCache(client *redis.Client, ttl time.Duration) *RedisGateCache {
	return &RedisGateCache{Client: client, Prefix: "waiter_gate", TTL: ttl}
}

func (r *RedisGateCache) key(k string) string {
	return r.Prefix + ":" + k
}

func (r *RedisGateCache) Get(ctx context.Context, key string) (bool, bool) {
	v, err := r.Client.Get(ctx, r.key(key)).Result()
	if err != nil {
		return false, false
	}
	return v == "1", true
}

func (r *RedisGateCache) Set(ctx context.Context, key string, enabled bool) {
	v := "0"
	if enabled {
		v = "1"
	}
	r.Client.Set(ctx, r.key(key), v, r.TTL)
}

func (r *RedisGateCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, r.key(k))
	}
	r.Client.Del(ctx, full...)
}

// MemoryGateCache is the single-instance fallback when Redis is not configured.
type MemoryGateCache struct {
	c *cache.TTLCache[string, bool]
}

func NewMemoryGateCache(ttl time.Duration) *MemoryGateCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &MemoryGateCache{c: cache.New[string, bool](ttl, ttl*2)}
}

func (m *MemoryGateCache) Get(_ context.Context, key string) (bool, bool) {
	return m.c.Get(key)
}

func (m *MemoryGateCache) Set(_ context.Context, key string, enabled bool) {
	m.c.Set(key, enabled)
}

func (m *MemoryGateCache) Delete(_ context.Context, keys ...string) {
	for _, k := range keys {
		m.c.Delete(k)
	}
}

func (m *MemoryGateCache) Close() {
	m.c.Close()
}
