// Package store persists small values per namespace, most importantly the
// column layout of each table.
//
// Backends register themselves by kind from an init function and are opened
// with [Open]:
//
//	import _ "github.com/JonMunkholm/datamanager/internal/store/sqlite"
//
//	kv, err := store.Open(ctx, store.Config{Kind: "sqlite", DSN: "layouts.db"})
//
// The "memory" backend is built in.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/JonMunkholm/datamanager/internal/config"
)

// Config selects and configures a backend.
type Config struct {
	Kind string
	DSN  string

	// Pool settings, used by backends with connection pools.
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// ConfigFrom maps the storage config section onto a backend Config.
func ConfigFrom(c config.StorageConfig) Config {
	return Config{
		Kind:            c.Backend,
		DSN:             c.DSN,
		MaxConns:        c.MaxConns,
		MinConns:        c.MinConns,
		MaxConnLifetime: c.MaxConnLifetime,
		MaxConnIdleTime: c.MaxConnIdleTime,
	}
}

// KV is a namespaced key-value store. Values are opaque bytes.
type KV interface {
	// Get returns the value and true, or false when the key is absent.
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Put(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error

	// PurgeBefore deletes entries last written before cutoff and returns
	// how many were removed.
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)

	Ping(ctx context.Context) error
	Close()
}

type factory func(ctx context.Context, cfg Config) (KV, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register makes a backend available under kind. It panics on an empty
// kind, a nil factory, or a kind registered twice.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("store: Register called with empty kind")
	}
	if f == nil {
		panic("store: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("store: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// Open constructs the backend registered under cfg.Kind.
func Open(ctx context.Context, cfg Config) (KV, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("store: missing kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("store: unsupported kind %q (registered: %v)", cfg.Kind, Kinds())
	}
	return f(ctx, cfg)
}

// Kinds lists the registered backend kinds.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()

	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
