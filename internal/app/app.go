// Package app arma las dependencias compartidas por el server, el CLI y el shell.
package app

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/userdash/internal/config"
	"github.com/dropDatabas3/userdash/internal/kv"
	"github.com/dropDatabas3/userdash/internal/observability/logger"
	"github.com/dropDatabas3/userdash/internal/seed"
	"github.com/dropDatabas3/userdash/internal/users"
)

// Container agrupa el Persistence Adapter y el User Store ya cableados.
type Container struct {
	Config *config.Config
	KV     kv.Store
	Users  *users.Store
}

// New construye el Container según cfg. No llama a Load.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	store, err := kv.New(ctx, kv.Config{
		Driver:        cfg.Storage.Driver,
		Prefix:        cfg.Storage.Prefix,
		FileRoot:      cfg.Storage.File.Root,
		RedisAddr:     cfg.Storage.Redis.Addr,
		RedisDB:       cfg.Storage.Redis.DB,
		RedisPassword: cfg.Storage.Redis.Password,
		SQLitePath:    cfg.Storage.SQLite.Path,
		PostgresDSN:   cfg.Storage.Postgres.DSN,
	})
	if err != nil {
		return nil, fmt.Errorf("app: persistence: %w", err)
	}

	logger.From(ctx).Info("persistence ready",
		logger.Component("app"),
		logger.Driver(store.Driver()),
		logger.Key(cfg.Storage.Key),
	)

	return &Container{
		Config: cfg,
		KV:     store,
		Users:  users.NewStore(store, SeedSource(cfg), users.Options{Key: cfg.Storage.Key}),
	}, nil
}

// SeedSource devuelve la fuente remota configurada. URL vacía = sin seed (offline).
func SeedSource(cfg *config.Config) seed.Source {
	if cfg.Seed.URL == "" {
		return seed.Static(nil)
	}
	return seed.NewHTTPSource(cfg.Seed.URL, cfg.SeedTimeout())
}

// Close libera el Persistence Adapter.
func (c *Container) Close() error {
	if c == nil || c.KV == nil {
		return nil
	}
	return c.KV.Close()
}
