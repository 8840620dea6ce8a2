// Package kv implementa el Persistence Adapter: un almacenamiento key-value
// sin expiración donde el store guarda el snapshot completo de usuarios.
//
// Soporta:
//   - memory   (go-cache, in-process; default para dev/testing)
//   - file     (un archivo por key, escritura atómica)
//   - redis    (go-redis)
//   - sqlite   (go-sqlite3, tabla kv)
//   - postgres (pgx, tabla userdash_kv)
package kv

import (
	"context"
	"fmt"
	"strings"
)

// Store define las operaciones del Persistence Adapter.
type Store interface {
	// Get obtiene el valor. Retorna ErrNotFound si la key no existe.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set guarda el valor sin expiración, reemplazando el anterior.
	Set(ctx context.Context, key string, value []byte) error

	// Delete elimina la key. No falla si no existe.
	Delete(ctx context.Context, key string) error

	// Ping verifica que el backend responde.
	Ping(ctx context.Context) error

	// Close libera recursos.
	Close() error

	// Driver retorna el nombre del backend.
	Driver() string
}

// Config para crear un Store.
type Config struct {
	Driver string // memory | file | redis | sqlite | postgres
	Prefix string // prefijo "prefix:key" para todas las keys

	FileRoot string

	RedisAddr     string
	RedisDB       int
	RedisPassword string

	SQLitePath string

	PostgresDSN string
}

// ErrNotFound indica que la key no existe.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "kv: key not found" }

// IsNotFound verifica si el error es porque la key no existe.
func IsNotFound(err error) bool {
	_, ok := err.(errNotFound)
	return ok
}

// New crea un Store según cfg.Driver.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "memory", "":
		return NewMemory(cfg.Prefix), nil
	case "file":
		return NewFile(cfg.FileRoot, cfg.Prefix)
	case "redis":
		return NewRedis(ctx, cfg)
	case "sqlite":
		return NewSQLite(ctx, cfg.SQLitePath, cfg.Prefix)
	case "postgres":
		return NewPostgres(ctx, cfg.PostgresDSN, cfg.Prefix)
	default:
		return nil, fmt.Errorf("kv: driver %q not supported", cfg.Driver)
	}
}

func prefixed(prefix, k string) string {
	if prefix == "" {
		return k
	}
	return prefix + ":" + k
}
