// Package preferences persists small UI preferences such as the current view.
package preferences

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Well-known keys.
const (
	KeyCurrentView = "current_view"
)

// Store reads and writes string preferences. Get reports ok=false for a
// missing key.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore keeps preferences in process memory with expiry.
type MemoryStore struct {
	c *cache.Cache
}

// NewMemoryStore creates a store whose entries expire after ttl. A zero
// cleanup interval disables the background janitor.
func NewMemoryStore(ttl, cleanup time.Duration) *MemoryStore {
	if ttl == 0 {
		ttl = cache.NoExpiration
	}
	return &MemoryStore{c: cache.New(ttl, cleanup)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	return s, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.c.SetDefault(key, value)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

// RedisStore keeps preferences in Redis under a key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps client. A zero ttl keeps keys forever.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "ecobalance:prefs:"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.prefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Config selects and configures a store.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Prefix        string
	TTL           time.Duration
}

// Open returns a RedisStore when an address is configured and reachable,
// otherwise a MemoryStore.
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) Store {
	if cfg.RedisAddr == "" {
		return NewMemoryStore(cfg.TTL, 10*time.Minute)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, keeping preferences in memory")
		_ = client.Close()
		return NewMemoryStore(cfg.TTL, 10*time.Minute)
	}

	logger.Info().Str("addr", cfg.RedisAddr).Int("db", cfg.RedisDB).Msg("preferences stored in redis")
	return NewRedisStore(client, cfg.Prefix, cfg.TTL)
}
