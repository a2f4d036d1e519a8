package core

// table.go implements the table state machine.
//
// A TableState owns the current table, the snapshot taken at import and the
// active sort. Every user edit is a method; each either applies completely
// or, when there is nothing to do, returns false and leaves the state alone.
// TableState is not safe for concurrent use; callers serialize transitions.

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DefaultLayoutTimeout bounds a single layout save or clear.
const DefaultLayoutTimeout = 5 * time.Second

// ResetOutcome describes what ResetLayout did.
type ResetOutcome int

const (
	// ResetRestored means the imported snapshot was restored.
	ResetRestored ResetOutcome = iota
	// ResetCleared means there was no snapshot and the table was emptied.
	ResetCleared
)

// TableState is the editable table plus its import snapshot and sort.
type TableState struct {
	table    Table
	original *Table
	sort     SortState

	layout        LayoutStore
	layoutTimeout time.Duration
	logger        *slog.Logger
}

// TableOption configures a TableState.
type TableOption func(*TableState)

// WithLogger sets the logger used for layout persistence failures.
func WithLogger(l *slog.Logger) TableOption {
	return func(s *TableState) { s.logger = l }
}

// WithLayoutTimeout bounds each layout save or clear.
func WithLayoutTimeout(d time.Duration) TableOption {
	return func(s *TableState) {
		if d > 0 {
			s.layoutTimeout = d
		}
	}
}

// NewTableState creates an empty table. When layout holds a saved column
// list it becomes the table's columns, with no rows. A nil layout disables
// persistence. Load failures are logged and leave the table empty.
func NewTableState(ctx context.Context, layout LayoutStore, opts ...TableOption) *TableState {
	s := &TableState{
		sort:          NoSort,
		layout:        layout,
		layoutTimeout: DefaultLayoutTimeout,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.layout == nil {
		return s
	}

	cols, ok, err := s.layout.LoadLayout(ctx)
	switch {
	case err != nil:
		s.logger.Warn("layout load failed, starting empty", "error", err)
	case ok:
		s.table.Columns = cols
		s.logger.Debug("layout restored", "columns", len(cols))
	}
	return s
}

// Snapshot returns a copy of the current table.
func (s *TableState) Snapshot() Table {
	return s.table.Clone()
}

// Columns returns a copy of the current column list.
func (s *TableState) Columns() []Column {
	return append([]Column(nil), s.table.Columns...)
}

// RowCount returns the number of rows.
func (s *TableState) RowCount() int {
	return len(s.table.Rows)
}

// SortState returns the active sort.
func (s *TableState) SortState() SortState {
	return s.sort
}

// HasOriginal reports whether an import snapshot exists for ResetLayout.
func (s *TableState) HasOriginal() bool {
	return s.original != nil
}

// Replace installs a freshly imported table. It becomes both the current
// table and the snapshot ResetLayout restores; the sort is cleared.
func (s *TableState) Replace(ctx context.Context, t Table) {
	orig := t.Clone()
	s.table = t.Clone()
	s.original = &orig
	s.sort = NoSort
	s.saveLayout(ctx)
}

// Sort orders rows by columnID. Sorting the active column again flips the
// direction; any other column starts ascending. Values compare as strings,
// ties keep their relative order. An unknown column fails with
// ErrUnknownColumn and changes nothing.
func (s *TableState) Sort(columnID string) error {
	if s.table.ColumnIndex(columnID) < 0 {
		return wrapf(ErrUnknownColumn, "%q", columnID)
	}

	dir := SortAsc
	if s.sort.ColumnID == columnID && s.sort.Direction == SortAsc {
		dir = SortDesc
	}

	slices.SortStableFunc(s.table.Rows, func(a, b Row) int {
		c := cmp.Compare(a.Get(columnID), b.Get(columnID))
		if dir == SortDesc {
			return -c
		}
		return c
	})

	s.sort = SortState{ColumnID: columnID, Direction: dir}
	return nil
}

// Rename changes a column's label. The label is trimmed and a blank one
// becomes UnnamedColumn; the id never changes. Returns false for an unknown
// column.
func (s *TableState) Rename(ctx context.Context, columnID, label string) bool {
	i := s.table.ColumnIndex(columnID)
	if i < 0 {
		return false
	}

	s.table.Columns[i].Label = normalizeLabel(label)
	s.saveLayout(ctx)
	return true
}

// Reorder moves a column to targetIndex, shifting the columns in between.
// The index is clamped to the column range. Rows are untouched. Returns
// false for an unknown column or when it already sits at targetIndex.
func (s *TableState) Reorder(ctx context.Context, columnID string, targetIndex int) bool {
	from := s.table.ColumnIndex(columnID)
	if from < 0 {
		return false
	}

	to := min(max(targetIndex, 0), len(s.table.Columns)-1)
	if from == to {
		return false
	}

	s.table.Columns = arrayMove(s.table.Columns, from, to)
	s.saveLayout(ctx)
	return true
}

// MoveOnto moves the active column to the position of the over column, the
// way a drag and drop ends. Returns false when either is unknown or they
// are the same column.
func (s *TableState) MoveOnto(ctx context.Context, activeID, overID string) bool {
	if activeID == overID {
		return false
	}
	to := s.table.ColumnIndex(overID)
	if to < 0 {
		return false
	}
	return s.Reorder(ctx, activeID, to)
}

// PromoteFirstRowToHeaders turns the first row into column labels and drops
// it. Blank values fall back to "col <n>"; labels then go through
// BuildColumns, so columns get fresh ids and rows are re-keyed by position.
// Returns false when there are no rows.
func (s *TableState) PromoteFirstRowToHeaders(ctx context.Context) bool {
	if len(s.table.Rows) == 0 {
		return false
	}

	first := s.table.Rows[0]
	candidates := make([]string, len(s.table.Columns))
	for i, c := range s.table.Columns {
		v := strings.TrimSpace(first.Get(c.ID))
		if v == "" {
			v = syntheticLabel(i)
		}
		candidates[i] = v
	}

	newCols := BuildColumns(candidates)
	s.table.Rows = rekey(s.table.Rows[1:], s.table.Columns, newCols)
	s.table.Columns = newCols
	s.sort = NoSort
	s.saveLayout(ctx)
	return true
}

// DemoteHeadersToFirstRow pushes the current labels down as a new first row
// and labels the columns "col 1" .. "col N" with ids "col-1" .. "col-N".
// This is not the inverse of promotion. Returns false when there are no
// columns.
func (s *TableState) DemoteHeadersToFirstRow(ctx context.Context) bool {
	if len(s.table.Columns) == 0 {
		return false
	}

	header := make(Row, len(s.table.Columns))
	for _, c := range s.table.Columns {
		header[c.ID] = c.Label
	}

	newCols := make([]Column, len(s.table.Columns))
	for i := range newCols {
		newCols[i] = Column{ID: "col-" + strconv.Itoa(i+1), Label: syntheticLabel(i)}
	}

	rows := make([]Row, 0, len(s.table.Rows)+1)
	rows = append(rows, header)
	rows = append(rows, s.table.Rows...)

	s.table.Rows = rekey(rows, s.table.Columns, newCols)
	s.table.Columns = newCols
	s.sort = NoSort
	s.saveLayout(ctx)
	return true
}

// ResetLayout restores the import snapshot, or empties the table when there
// is none, and clears the persisted layout either way.
func (s *TableState) ResetLayout(ctx context.Context) ResetOutcome {
	s.sort = NoSort
	s.clearLayout(ctx)

	if s.original == nil {
		s.table = Table{}
		return ResetCleared
	}

	s.table = s.original.Clone()
	return ResetRestored
}

// arrayMove removes the element at from and reinserts it at to.
func arrayMove[T any](items []T, from, to int) []T {
	out := make([]T, 0, len(items))
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)
	return slices.Insert(out, to, items[from])
}

// rekey maps each row's values from the old column ids to the new ones by
// position. Keys outside oldCols are dropped.
func rekey(rows []Row, oldCols, newCols []Column) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		nr := make(Row, len(newCols))
		for j, c := range newCols {
			if j < len(oldCols) {
				nr[c.ID] = r.Get(oldCols[j].ID)
			} else {
				nr[c.ID] = ""
			}
		}
		out[i] = nr
	}
	return out
}

func (s *TableState) saveLayout(ctx context.Context) {
	if s.layout == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.layoutTimeout)
	defer cancel()

	if err := s.layout.SaveLayout(ctx, s.Columns()); err != nil {
		s.logger.Warn("layout save failed", "columns", len(s.table.Columns), "error", err)
	}
}

func (s *TableState) clearLayout(ctx context.Context) {
	if s.layout == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.layoutTimeout)
	defer cancel()

	if err := s.layout.ClearLayout(ctx); err != nil {
		s.logger.Warn("layout clear failed", "error", err)
	}
}
