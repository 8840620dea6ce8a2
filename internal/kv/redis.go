package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedis crea un Store sobre Redis y verifica la conexión.
func NewRedis(ctx context.Context, cfg Config) (Store, error) {
	addr := cfg.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("kv/redis: ping %s failed: %w", addr, err)
	}

	return &redisStore{client: rdb, prefix: cfg.Prefix}, nil
}

func (r *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, prefixed(r.prefix, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *redisStore) Set(ctx context.Context, key string, value []byte) error {
	// ttl 0 => sin expiración
	return r.client.Set(ctx, prefixed(r.prefix, key), value, 0).Err()
}

func (r *redisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, prefixed(r.prefix, key)).Err()
}

func (r *redisStore) Ping(ctx context.Context) error { return r.client.Ping(ctx).Err() }
func (r *redisStore) Close() error                   { return r.client.Close() }
func (r *redisStore) Driver() string                 { return "redis" }
