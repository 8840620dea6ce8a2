package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS userdash_kv (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type postgresStore struct {
	pool   *pgxpool.Pool
	prefix string
}

// NewPostgres conecta con pgxpool y crea la tabla si falta.
func NewPostgres(ctx context.Context, dsn, prefix string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("kv/postgres: dsn required")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("kv/postgres: parse dsn: %w", err)
	}
	// un solo writer; pool chico alcanza
	cfg.MaxConns = 4
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("kv/postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("kv/postgres: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("kv/postgres: schema: %w", err)
	}
	return &postgresStore{pool: pool, prefix: prefix}, nil
}

func (p *postgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := p.pool.QueryRow(ctx, `SELECT value FROM userdash_kv WHERE key = $1`, prefixed(p.prefix, key)).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (p *postgresStore) Set(ctx context.Context, key string, value []byte) error {
	const query = `
		INSERT INTO userdash_kv (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()
	`
	_, err := p.pool.Exec(ctx, query, prefixed(p.prefix, key), value)
	return err
}

func (p *postgresStore) Delete(ctx context.Context, key string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM userdash_kv WHERE key = $1`, prefixed(p.prefix, key))
	return err
}

func (p *postgresStore) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }
func (p *postgresStore) Close() error                   { p.pool.Close(); return nil }
func (p *postgresStore) Driver() string                 { return "postgres" }
