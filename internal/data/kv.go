package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/patrickmn/go-cache"

	"github.com/codemind-go/internal/config"
)

// ErrKeyNotFound is returned by KVStore.Get for a missing key.
var ErrKeyNotFound = errors.New("key not found")

// KVStore persists opaque blobs under string keys.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// NewKVStore builds the backend named by cfg.Backend.
func NewKVStore(ctx context.Context, cfg config.SessionConfig) (KVStore, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryKV(cfg.TTL), nil
	case "redis":
		return NewRedisKV(ctx, cfg)
	case "file":
		return NewFileKV(cfg.FilePath)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

// MemoryKV keeps blobs in process memory; nothing survives a restart.
type MemoryKV struct {
	cache *cache.Cache
}

// NewMemoryKV creates a store whose entries expire after ttl; zero means never.
func NewMemoryKV(ttl time.Duration) *MemoryKV {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &MemoryKV{cache: cache.New(ttl, 10*time.Minute)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	if x, found := m.cache.Get(key); found {
		return append([]byte(nil), x.([]byte)...), nil
	}
	return nil, ErrKeyNotFound
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.cache.Set(key, append([]byte(nil), value...), cache.DefaultExpiration)
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.cache.Delete(key)
	return nil
}

func (m *MemoryKV) Close() error {
	m.cache.Flush()
	return nil
}

// RedisKV stores blobs in Redis.
type RedisKV struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisKV connects and pings the server.
func NewRedisKV(ctx context.Context, cfg config.SessionConfig) (*RedisKV, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	return NewRedisKVFromClient(rdb, cfg.TTL), nil
}

// NewRedisKVFromClient wraps an existing client.
func NewRedisKVFromClient(rdb *redis.Client, ttl time.Duration) *RedisKV {
	return &RedisKV{rdb: rdb, ttl: ttl}
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	return b, err
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	return r.rdb.Set(ctx, key, value, r.ttl).Err()
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}

func (r *RedisKV) Close() error {
	return r.rdb.Close()
}
