// Package postgres is the PostgreSQL backend for the store package.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/datamanager/internal/store"
)

func init() {
	store.Register("postgres", func(ctx context.Context, cfg store.Config) (store.KV, error) {
		return Open(ctx, cfg)
	})
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS kv_entries (
		namespace  TEXT        NOT NULL,
		key        TEXT        NOT NULL,
		value      BYTEA       NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (namespace, key)
	)`,
	`CREATE INDEX IF NOT EXISTS kv_entries_updated_at_idx ON kv_entries (updated_at)`,
}

// KV implements store.KV on a pgx connection pool.
type KV struct {
	pool *pgxpool.Pool
}

// Open connects with the pool settings from cfg and ensures the schema.
func Open(ctx context.Context, cfg store.Config) (*KV, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse DSN: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres: create schema: %w", err)
		}
	}

	return &KV{pool: pool}, nil
}

func (s *KV) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	var value []byte
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM kv_entries WHERE namespace = $1 AND key = $2`,
		namespace, key,
	).Scan(&value)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("postgres: get %s/%s: %w", namespace, key, err)
	}
	return value, true, nil
}

func (s *KV) Put(ctx context.Context, namespace, key string, value []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO kv_entries (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (namespace, key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		namespace, key, value,
	)
	if err != nil {
		return fmt.Errorf("postgres: put %s/%s: %w", namespace, key, err)
	}
	return nil
}

func (s *KV) Delete(ctx context.Context, namespace, key string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM kv_entries WHERE namespace = $1 AND key = $2`,
		namespace, key,
	)
	if err != nil {
		return fmt.Errorf("postgres: delete %s/%s: %w", namespace, key, err)
	}
	return nil
}

func (s *KV) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM kv_entries WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("postgres: purge: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *KV) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *KV) Close() { s.pool.Close() }
