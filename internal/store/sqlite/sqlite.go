// Package sqlite is the SQLite backend for the store package.
//
// Timestamps are stored as Unix nanoseconds so purge comparisons stay
// numeric; SQLite has no native timestamp type.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/datamanager/internal/store"
)

func init() {
	store.Register("sqlite", func(ctx context.Context, cfg store.Config) (store.KV, error) {
		return Open(ctx, cfg.DSN)
	})
}

const schema = `
CREATE TABLE IF NOT EXISTS kv_entries (
	namespace  TEXT    NOT NULL,
	key        TEXT    NOT NULL,
	value      BLOB    NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (namespace, key)
)`

// KV implements store.KV on a SQLite database file.
type KV struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at dsn and ensures the schema.
func Open(ctx context.Context, dsn string) (*KV, error) {
	if dsn == "" {
		return nil, errors.New("sqlite: empty DSN")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w", err)
	}

	return &KV{db: db, now: time.Now}, nil
}

func (s *KV) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv_entries WHERE namespace = ? AND key = ?`,
		namespace, key,
	).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: get %s/%s: %w", namespace, key, err)
	}
	return value, true, nil
}

func (s *KV) Put(ctx context.Context, namespace, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_entries (namespace, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (namespace, key) DO UPDATE
		SET value = excluded.value, updated_at = excluded.updated_at`,
		namespace, key, value, s.now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: put %s/%s: %w", namespace, key, err)
	}
	return nil
}

func (s *KV) Delete(ctx context.Context, namespace, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE namespace = ? AND key = ?`,
		namespace, key,
	)
	if err != nil {
		return fmt.Errorf("sqlite: delete %s/%s: %w", namespace, key, err)
	}
	return nil
}

func (s *KV) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE updated_at < ?`,
		cutoff.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: purge: %w", err)
	}
	return res.RowsAffected()
}

func (s *KV) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *KV) Close() { _ = s.db.Close() }
