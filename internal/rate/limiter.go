// Package rate implementa rate limiting de ventana fija (memoria o Redis).
package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	rdb "github.com/redis/go-redis/v9"
)

type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	WindowTTL   time.Duration
	CurrentHits int64
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// window calcula la clave de la ventana actual y cuánto le queda.
func window(prefix, key string, size time.Duration, now time.Time) (string, time.Duration) {
	start := now.Truncate(size)
	k := fmt.Sprintf("%s%s:%d", prefix, strings.ReplaceAll(key, " ", "_"), start.Unix())
	return k, start.Add(size).Sub(now)
}

func result(hits, max int64, ttl time.Duration) Result {
	res := Result{Allowed: hits <= max, CurrentHits: hits, WindowTTL: ttl}
	if rem := max - hits; rem > 0 {
		res.Remaining = rem
	}
	if !res.Allowed {
		res.RetryAfter = ttl
	}
	return res
}

// Memory cuenta hits en un go-cache; sirve para una sola instancia.
type Memory struct {
	c      *gocache.Cache
	max    int64
	window time.Duration
	now    func() time.Time
}

// NewMemory crea un limiter en memoria de max requests por window.
func NewMemory(max int, window time.Duration) *Memory {
	return &Memory{
		c:      gocache.New(window, 2*window),
		max:    int64(max),
		window: window,
		now:    time.Now,
	}
}

func (l *Memory) Allow(_ context.Context, key string) (Result, error) {
	k, ttl := window("", key, l.window, l.now().UTC())

	for i := 0; i < 2; i++ {
		if err := l.c.Add(k, int64(1), ttl); err == nil {
			return result(1, l.max, ttl), nil
		}
		hits, err := l.c.IncrementInt64(k, 1)
		if err == nil {
			return result(hits, l.max, ttl), nil
		}
		// expiró entre Add e Increment: reintentar una vez
	}
	return Result{}, fmt.Errorf("rate: counter %q unavailable", k)
}

// Redis es un fixed window con INCR + EXPIRE, compartido entre instancias.
type Redis struct {
	Client *rdb.Client
	Prefix string
	Max    int64
	Window time.Duration
}

func NewRedis(client *rdb.Client, prefix string, max int, window time.Duration) *Redis {
	if prefix == "" {
		prefix = "rl:"
	}
	return &Redis{Client: client, Prefix: prefix, Max: int64(max), Window: window}
}

func (l *Redis) Allow(ctx context.Context, key string) (Result, error) {
	k, ttl := window(l.Prefix, key, l.Window, time.Now().UTC())

	hits, err := l.Client.Incr(ctx, k).Result()
	if err != nil {
		return Result{}, err
	}
	// expiry en el primer hit
	if hits == 1 {
		_ = l.Client.Expire(ctx, k, ttl).Err()
	}
	return result(hits, l.Max, ttl), nil
}
