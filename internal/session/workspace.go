package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/datamanager/internal/core"
	"github.com/JonMunkholm/datamanager/internal/logging"
)

// Outcome reports an edit. Changed is false for no-ops, in which case Info
// says why; no-ops are never errors.
type Outcome struct {
	Changed bool   `json:"changed"`
	Info    string `json:"info,omitempty"`
}

func changed() Outcome { return Outcome{Changed: true} }

func outcome(ok bool, info string) Outcome {
	if ok {
		return changed()
	}
	return Outcome{Info: info}
}

// ImportInfo describes the import that produced the current table.
type ImportInfo struct {
	ID         string        `json:"id"`
	FileName   string        `json:"fileName"`
	Format     core.Format   `json:"format"`
	HasHeaders bool          `json:"hasHeaders"`
	Columns    int           `json:"columns"`
	Rows       int           `json:"rows"`
	Duration   time.Duration `json:"durationNs"`
	At         time.Time     `json:"at"`
}

// View is a render-ready copy of a workspace's table.
type View struct {
	Columns     []core.Column  `json:"columns"`
	Rows        [][]string     `json:"rows"`
	Sort        core.SortState `json:"sort"`
	HasOriginal bool           `json:"hasOriginal"`
	LastImport  *ImportInfo    `json:"lastImport,omitempty"`
}

// Workspace is one session's table. Its methods are safe for concurrent use;
// transitions are applied one at a time.
type Workspace struct {
	id      string
	manager *Manager

	mu         sync.Mutex
	state      *core.TableState
	generation uint64
	lastImport *ImportInfo
	lastSeen   time.Time
}

// ID returns the session id.
func (w *Workspace) ID() string { return w.id }

func (w *Workspace) touch() {
	w.lastSeen = w.manager.now()
}

func (w *Workspace) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

// View returns the current table.
func (w *Workspace) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touch()

	t := w.state.Snapshot()
	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = t.Values(r)
	}

	v := View{
		Columns:     t.Columns,
		Rows:        rows,
		Sort:        w.state.SortState(),
		HasOriginal: w.state.HasOriginal(),
	}
	if w.lastImport != nil {
		info := *w.lastImport
		v.LastImport = &info
	}
	return v
}

// Import decodes data and, if no later import started meanwhile, replaces
// the table with the result. A failed import leaves the table unchanged.
// An import overtaken by a newer one fails with core.ErrImportSuperseded
// and its result is dropped.
func (w *Workspace) Import(ctx context.Context, data []byte, fileName string, mode core.HeaderMode) (*ImportInfo, error) {
	m := w.manager

	if m.opts.MaxFileSize > 0 && int64(len(data)) > m.opts.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", core.ErrFileTooLarge, len(data), m.opts.MaxFileSize)
	}

	w.mu.Lock()
	w.generation++
	token := w.generation
	w.touch()
	w.mu.Unlock()

	importID := uuid.NewString()
	ctx = core.ContextWithImportID(core.ContextWithSessionID(ctx, w.id), importID)
	logger := logging.WithFields(ctx, "file", fileName, "size", len(data))

	if !m.limiter.TryAcquire() {
		logger.Info("import waiting for a slot", "active", m.limiter.ActiveCount())
		if err := m.limiter.Acquire(ctx); err != nil {
			logger.Warn("import rejected", "error", err)
			return nil, err
		}
	}
	decodeCtx, cancel := context.WithTimeout(ctx, m.opts.ImportTimeout)
	res, err := m.importFn(decodeCtx, data, fileName, core.ImportOptions{
		Header:   mode,
		Fallback: m.opts.Fallback,
	})
	cancel()
	m.limiter.Release()

	w.mu.Lock()
	defer w.mu.Unlock()

	if token != w.generation {
		logger.Info("import superseded", "token", token, "latest", w.generation)
		return nil, core.ErrImportSuperseded
	}
	if err != nil {
		logger.Warn("import failed", "error", err)
		return nil, fmt.Errorf("import %s: %w", fileName, err)
	}

	w.state.Replace(ctx, res.Table)
	w.lastImport = &ImportInfo{
		ID:         importID,
		FileName:   fileName,
		Format:     res.Format,
		HasHeaders: res.HasHeaders,
		Columns:    len(res.Table.Columns),
		Rows:       len(res.Table.Rows),
		Duration:   res.Duration,
		At:         m.now(),
	}
	w.touch()

	logger.Info("import applied",
		"format", res.Format,
		"has_headers", res.HasHeaders,
		"columns", len(res.Table.Columns),
		"rows", len(res.Table.Rows),
		"duration", res.Duration,
	)

	info := *w.lastImport
	return &info, nil
}

// Sort orders rows by a column, toggling direction on repeat.
func (w *Workspace) Sort(columnID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touch()
	return w.state.Sort(columnID)
}

// Rename relabels a column.
func (w *Workspace) Rename(ctx context.Context, columnID, label string) Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touch()
	return outcome(w.state.Rename(ctx, columnID, label), "Column not found")
}

// Reorder moves a column to targetIndex.
func (w *Workspace) Reorder(ctx context.Context, columnID string, targetIndex int) Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touch()
	return outcome(w.state.Reorder(ctx, columnID, targetIndex), "Column is already in that position")
}

// MoveOnto moves a column to where another column is.
func (w *Workspace) MoveOnto(ctx context.Context, activeID, overID string) Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touch()
	return outcome(w.state.MoveOnto(ctx, activeID, overID), "Column is already in that position")
}

// Promote turns the first row into headers.
func (w *Workspace) Promote(ctx context.Context) Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touch()
	return outcome(w.state.PromoteFirstRowToHeaders(ctx), "There are no rows to use as headers")
}

// Demote pushes the headers down into the first row.
func (w *Workspace) Demote(ctx context.Context) Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touch()
	return outcome(w.state.DemoteHeadersToFirstRow(ctx), "There are no headers to move into the data")
}

// Reset restores the imported table, or clears it when nothing was imported.
func (w *Workspace) Reset(ctx context.Context) Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touch()

	if w.state.ResetLayout(ctx) == core.ResetCleared {
		w.lastImport = nil
		return Outcome{Changed: true, Info: "No imported data to restore; the table was cleared"}
	}
	return changed()
}

// Export serializes the current table.
func (w *Workspace) Export(f core.Format) ([]byte, error) {
	w.mu.Lock()
	t := w.state.Snapshot()
	w.touch()
	w.mu.Unlock()

	return core.Serialize(t, f)
}
