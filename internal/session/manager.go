// Package session keeps one editable table per user session.
//
// A [Manager] hands out [Workspace] values by session id. Each workspace
// wraps a core.TableState whose column layout is persisted in the shared
// store under the session id, so a returning session gets its layout back
// even after its in-memory table was evicted.
package session

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/encoding"

	"github.com/JonMunkholm/datamanager/internal/core"
	"github.com/JonMunkholm/datamanager/internal/store"
)

// ErrTooManySessions is returned when the live session cap is reached.
var ErrTooManySessions = errors.New("too many active sessions, rate limit reached")

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Options configures a Manager. Zero values fall back to defaults.
type Options struct {
	IdleTTL         time.Duration // default 2h
	MaxSessions     int           // default 500
	MaxFileSize     int64         // 0 disables the check
	ImportTimeout   time.Duration // default 2m
	LayoutTimeout   time.Duration // default core.DefaultLayoutTimeout
	LayoutRetention time.Duration // 0 keeps layouts forever
	Fallback        encoding.Encoding
}

// Manager owns the live workspaces.
type Manager struct {
	kv      store.KV
	limiter *core.ImportLimiter
	opts    Options
	logger  *slog.Logger
	now     func() time.Time

	importFn func(context.Context, []byte, string, core.ImportOptions) (*core.ImportResult, error)

	mu       sync.RWMutex
	sessions map[string]*Workspace
}

// NewManager creates a manager persisting layouts in kv and bounding
// decodes with limiter.
func NewManager(kv store.KV, limiter *core.ImportLimiter, opts Options) *Manager {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 2 * time.Hour
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 500
	}
	if opts.ImportTimeout <= 0 {
		opts.ImportTimeout = 2 * time.Minute
	}
	if opts.LayoutTimeout <= 0 {
		opts.LayoutTimeout = core.DefaultLayoutTimeout
	}
	if limiter == nil {
		limiter = core.NewImportLimiter(0, 0)
	}

	return &Manager{
		kv:       kv,
		limiter:  limiter,
		opts:     opts,
		logger:   slog.Default().With("component", "session"),
		now:      time.Now,
		importFn: core.Import,
		sessions: make(map[string]*Workspace),
	}
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id can name a session.
func ValidID(id string) bool {
	return validID.MatchString(id)
}

// Get returns the workspace for id, creating it when it is not live. A new
// workspace loads the layout saved under id.
func (m *Manager) Get(ctx context.Context, id string) (*Workspace, error) {
	if !ValidID(id) {
		return nil, errors.New("invalid session id")
	}

	m.mu.RLock()
	w, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return w, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if w, ok := m.sessions[id]; ok {
		return w, nil
	}
	if len(m.sessions) >= m.opts.MaxSessions {
		return nil, ErrTooManySessions
	}

	ctx = core.ContextWithSessionID(ctx, id)
	logger := m.logger.With("session_id", id)
	w = &Workspace{
		id:       id,
		manager:  m,
		lastSeen: m.now(),
		state: core.NewTableState(ctx, store.NewLayout(m.kv, id),
			core.WithLogger(logger),
			core.WithLayoutTimeout(m.opts.LayoutTimeout),
		),
	}
	m.sessions[id] = w

	logger.Debug("session created", "restored_columns", len(w.state.Columns()))
	return w, nil
}

// Count returns the number of live workspaces.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Limiter exposes the import limiter for status reporting and shutdown.
func (m *Manager) Limiter() *core.ImportLimiter {
	return m.limiter
}

// Sweep evicts workspaces idle for longer than the idle TTL and returns how
// many were removed. Their layouts stay in the store.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.opts.IdleTTL)

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, w := range m.sessions {
		if w.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// StartSweeper evicts idle sessions and purges stale layouts every interval
// until ctx is cancelled. Failures are logged and do not stop the loop.
func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration) {
	m.logger.Info("session sweeper started",
		"interval", interval,
		"idle_ttl", m.opts.IdleTTL,
		"layout_retention", m.opts.LayoutRetention,
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("session sweeper stopped")
			return
		case <-ticker.C:
			m.sweepOnce(ctx)
		}
	}
}

func (m *Manager) sweepOnce(ctx context.Context) {
	if n := m.Sweep(); n > 0 {
		m.logger.Info("evicted idle sessions", "count", n, "live", m.Count())
	}

	if m.opts.LayoutRetention <= 0 {
		return
	}
	purged, err := m.kv.PurgeBefore(ctx, m.now().Add(-m.opts.LayoutRetention))
	if err != nil {
		m.logger.Error("layout purge failed", "error", err)
		return
	}
	if purged > 0 {
		m.logger.Info("purged stale layouts", "count", purged)
	}
}
