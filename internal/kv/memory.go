package kv

import (
	"context"

	gocache "github.com/patrickmn/go-cache"
)

// memoryStore implementa Store sobre go-cache sin expiración.
// Equivale al localStorage de una pestaña: vive lo que vive el proceso.
type memoryStore struct {
	prefix string
	c      *gocache.Cache
}

// NewMemory crea un Store en memoria.
func NewMemory(prefix string) Store {
	return &memoryStore{
		prefix: prefix,
		c:      gocache.New(gocache.NoExpiration, 0),
	}
}

func (m *memoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(prefixed(m.prefix, key))
	if !ok {
		return nil, ErrNotFound
	}
	b, _ := v.([]byte)
	return append([]byte(nil), b...), nil
}

func (m *memoryStore) Set(ctx context.Context, key string, value []byte) error {
	m.c.Set(prefixed(m.prefix, key), append([]byte(nil), value...), gocache.NoExpiration)
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, key string) error {
	m.c.Delete(prefixed(m.prefix, key))
	return nil
}

func (m *memoryStore) Ping(ctx context.Context) error { return nil }
func (m *memoryStore) Close() error                   { m.c.Flush(); return nil }
func (m *memoryStore) Driver() string                 { return "memory" }
