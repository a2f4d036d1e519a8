package core

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// memLayout records layout traffic for assertions.
type memLayout struct {
	cols    []Column
	saved   bool
	saves   int
	clears  int
	loadErr error
	saveErr error
}

func (m *memLayout) LoadLayout(context.Context) ([]Column, bool, error) {
	if m.loadErr != nil {
		return nil, false, m.loadErr
	}
	return append([]Column(nil), m.cols...), m.saved, nil
}

func (m *memLayout) SaveLayout(_ context.Context, cols []Column) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.cols = append([]Column(nil), cols...)
	m.saved = true
	return nil
}

func (m *memLayout) ClearLayout(context.Context) error {
	m.clears++
	m.cols, m.saved = nil, false
	return nil
}

// newState imports csv text into a fresh TableState.
func newState(t *testing.T, csvText string) (*TableState, *memLayout) {
	t.Helper()

	res, err := Import(context.Background(), []byte(csvText), "t.csv", ImportOptions{})
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}

	layout := &memLayout{}
	s := NewTableState(context.Background(), layout)
	s.Replace(context.Background(), res.Table)
	return s, layout
}

func column(t *testing.T, s *TableState, label string) string {
	t.Helper()
	for _, c := range s.Columns() {
		if c.Label == label {
			return c.ID
		}
	}
	t.Fatalf("no column labelled %q in %v", label, s.Columns())
	return ""
}

func snapshotValues(s *TableState) [][]string {
	return rowValues(s.Snapshot())
}

func assertUniqueIDs(t *testing.T, s *TableState) {
	t.Helper()
	seen := make(map[string]bool)
	for _, c := range s.Columns() {
		if seen[c.ID] {
			t.Fatalf("duplicate column id %q in %v", c.ID, s.Columns())
		}
		seen[c.ID] = true
	}
	for i, r := range s.Snapshot().Rows {
		for k := range r {
			if s.Snapshot().ColumnIndex(k) < 0 {
				t.Fatalf("row %d has key %q not in columns", i, k)
			}
		}
	}
}

// ============================================================================
// Construction and Replace
// ============================================================================

func TestNewTableState_LoadsLayout(t *testing.T) {
	layout := &memLayout{
		cols:  []Column{{ID: "a-1", Label: "A"}, {ID: "b-1", Label: "B"}},
		saved: true,
	}

	s := NewTableState(context.Background(), layout)

	if got := s.Columns(); !reflect.DeepEqual(got, layout.cols) {
		t.Errorf("Columns = %v, want %v", got, layout.cols)
	}
	if s.RowCount() != 0 {
		t.Errorf("RowCount = %d, want 0", s.RowCount())
	}
	if s.HasOriginal() {
		t.Error("HasOriginal = true before any import")
	}
}

func TestNewTableState_LoadErrorStartsEmpty(t *testing.T) {
	s := NewTableState(context.Background(), &memLayout{loadErr: errors.New("disk on fire")})
	if !s.Snapshot().Empty() {
		t.Errorf("table = %+v, want empty", s.Snapshot())
	}
}

func TestNewTableState_NilLayout(t *testing.T) {
	s := NewTableState(context.Background(), nil)
	s.Replace(context.Background(), Table{Columns: []Column{{ID: "a-1", Label: "a"}}})
	if !s.Rename(context.Background(), "a-1", "b") {
		t.Error("Rename without layout store returned false")
	}
}

func TestReplace_SavesLayoutAndResetsSort(t *testing.T) {
	s, layout := newState(t, "a,b\n2,x\n1,y\n")
	if err := s.Sort(column(t, s, "a")); err != nil {
		t.Fatal(err)
	}

	res, err := Import(context.Background(), []byte("c\n1\n"), "n.csv", ImportOptions{})
	if err != nil {
		t.Fatal(err)
	}
	s.Replace(context.Background(), res.Table)

	if s.SortState() != NoSort {
		t.Errorf("SortState = %+v, want NoSort", s.SortState())
	}
	if !reflect.DeepEqual(layout.cols, res.Table.Columns) {
		t.Errorf("saved layout = %v, want %v", layout.cols, res.Table.Columns)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	s, _ := newState(t, "a\n1\n")
	snap := s.Snapshot()
	snap.Rows[0][snap.Columns[0].ID] = "changed"
	snap.Columns[0].Label = "changed"

	if got := snapshotValues(s); got[0][0] != "1" {
		t.Errorf("mutating snapshot changed the state: %q", got)
	}
	if s.Columns()[0].Label != "a" {
		t.Error("mutating snapshot changed a label")
	}
}

// ============================================================================
// Sort
// ============================================================================

func TestSort_ToggleAndStability(t *testing.T) {
	s, _ := newState(t, "key,tag\nb,1\na,2\nb,3\na,4\n")
	key := column(t, s, "key")

	if err := s.Sort(key); err != nil {
		t.Fatalf("Sort() error: %v", err)
	}
	wantAsc := [][]string{{"a", "2"}, {"a", "4"}, {"b", "1"}, {"b", "3"}}
	if got := snapshotValues(s); !reflect.DeepEqual(got, wantAsc) {
		t.Errorf("asc = %q, want %q", got, wantAsc)
	}
	if got := s.SortState(); got != (SortState{ColumnID: key, Direction: SortAsc}) {
		t.Errorf("SortState = %+v", got)
	}

	if err := s.Sort(key); err != nil {
		t.Fatal(err)
	}
	wantDesc := [][]string{{"b", "1"}, {"b", "3"}, {"a", "2"}, {"a", "4"}}
	if got := snapshotValues(s); !reflect.DeepEqual(got, wantDesc) {
		t.Errorf("desc = %q, want %q", got, wantDesc)
	}
	if got := s.SortState().Direction; got != SortDesc {
		t.Errorf("Direction = %q, want desc", got)
	}

	// Two more toggles land back on the ascending order.
	if err := s.Sort(key); err != nil {
		t.Fatal(err)
	}
	if got := snapshotValues(s); !reflect.DeepEqual(got, wantAsc) {
		t.Errorf("after toggling back = %q, want %q", got, wantAsc)
	}
}

func TestSort_NewColumnStartsAscending(t *testing.T) {
	s, _ := newState(t, "a,b\n1,z\n2,y\n")

	if err := s.Sort(column(t, s, "a")); err != nil {
		t.Fatal(err)
	}
	if err := s.Sort(column(t, s, "a")); err != nil {
		t.Fatal(err)
	}
	if err := s.Sort(column(t, s, "b")); err != nil {
		t.Fatal(err)
	}

	if got := s.SortState(); got.ColumnID != column(t, s, "b") || got.Direction != SortAsc {
		t.Errorf("SortState = %+v, want b asc", got)
	}
	want := [][]string{{"2", "y"}, {"1", "z"}}
	if got := snapshotValues(s); !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %q, want %q", got, want)
	}
}

func TestSort_ComparesAsStrings(t *testing.T) {
	s, _ := newState(t, "n\n10\n9\n\n100\n")
	if err := s.Sort(column(t, s, "n")); err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"10"}, {"100"}, {"9"}}
	if got := snapshotValues(s); !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %q, want %q", got, want)
	}
}

func TestSort_UnknownColumn(t *testing.T) {
	s, _ := newState(t, "a\n2\n1\n")
	before := s.Snapshot()

	err := s.Sort("missing-1")
	if !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("Sort(missing) error = %v, want ErrUnknownColumn", err)
	}
	if s.SortState() != NoSort {
		t.Errorf("SortState = %+v, want NoSort", s.SortState())
	}
	if !reflect.DeepEqual(s.Snapshot(), before) {
		t.Error("table changed after failed sort")
	}
}

// ============================================================================
// Rename
// ============================================================================

func TestRename(t *testing.T) {
	tests := []struct {
		name      string
		label     string
		wantLabel string
	}{
		{"plain", "Full Name", "Full Name"},
		{"trimmed", "  Spaced  ", "Spaced"},
		{"blank", "   ", UnnamedColumn},
		{"duplicate allowed", "b", "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, layout := newState(t, "a,b\n1,2\n")
			id := column(t, s, "a")

			if !s.Rename(context.Background(), id, tt.label) {
				t.Fatal("Rename() = false")
			}
			got := s.Columns()[0]
			if got.ID != id {
				t.Errorf("id changed to %q", got.ID)
			}
			if got.Label != tt.wantLabel {
				t.Errorf("label = %q, want %q", got.Label, tt.wantLabel)
			}
			if layout.cols[0].Label != tt.wantLabel {
				t.Errorf("saved label = %q, want %q", layout.cols[0].Label, tt.wantLabel)
			}
		})
	}
}

func TestRename_UnknownColumnIsNoOp(t *testing.T) {
	s, layout := newState(t, "a\n1\n")
	saves := layout.saves

	if s.Rename(context.Background(), "nope", "x") {
		t.Error("Rename(unknown) = true")
	}
	if layout.saves != saves {
		t.Error("layout saved for a no-op rename")
	}
}

// ============================================================================
// Reorder
// ============================================================================

func TestReorder(t *testing.T) {
	tests := []struct {
		name   string
		move   string
		target int
		want   []string
		ok     bool
	}{
		{"first to last", "a", 2, []string{"b", "c", "a"}, true},
		{"last to first", "c", 0, []string{"c", "a", "b"}, true},
		{"middle forward", "b", 2, []string{"a", "c", "b"}, true},
		{"same position", "b", 1, []string{"a", "b", "c"}, false},
		{"clamped high", "a", 99, []string{"b", "c", "a"}, true},
		{"clamped low", "c", -5, []string{"c", "a", "b"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newState(t, "a,b,c\n1,2,3\n4,5,6\n")
			rowsBefore := s.Snapshot().Rows

			ok := s.Reorder(context.Background(), column(t, s, tt.move), tt.target)
			if ok != tt.ok {
				t.Errorf("Reorder() = %v, want %v", ok, tt.ok)
			}
			if got := s.Snapshot().Labels(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("labels = %q, want %q", got, tt.want)
			}
			if !reflect.DeepEqual(s.Snapshot().Rows, rowsBefore) {
				t.Error("Reorder changed row content")
			}
		})
	}
}

func TestReorder_ExportFollowsNewOrder(t *testing.T) {
	s, _ := newState(t, "a,b\n1,2\n")
	s.Reorder(context.Background(), column(t, s, "b"), 0)

	out, err := Serialize(s.Snapshot(), FormatCSV)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(out), "b,a\r\n2,1\r\n"; got != want {
		t.Errorf("export = %q, want %q", got, want)
	}
}

func TestMoveOnto(t *testing.T) {
	s, layout := newState(t, "a,b,c\n1,2,3\n")
	a, c := column(t, s, "a"), column(t, s, "c")

	if !s.MoveOnto(context.Background(), a, c) {
		t.Fatal("MoveOnto() = false")
	}
	if got, want := s.Snapshot().Labels(), []string{"b", "c", "a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("labels = %q, want %q", got, want)
	}
	if got := layout.cols[2].ID; got != a {
		t.Errorf("saved layout last id = %q, want %q", got, a)
	}

	if s.MoveOnto(context.Background(), a, a) {
		t.Error("MoveOnto(self) = true")
	}
	if s.MoveOnto(context.Background(), a, "missing") {
		t.Error("MoveOnto(missing) = true")
	}
}

// ============================================================================
// Promote / Demote
// ============================================================================

func TestPromoteFirstRowToHeaders(t *testing.T) {
	s, layout := newState(t, "1,2,3\nName,,Name\nAnn,x,Lee\n")
	// Blank sorts first, so the "Name" row stays on top.
	if err := s.Sort(column(t, s, "2")); err != nil {
		t.Fatal(err)
	}

	if !s.PromoteFirstRowToHeaders(context.Background()) {
		t.Fatal("Promote() = false")
	}

	wantCols := []Column{
		{ID: "Name-1", Label: "Name"},
		{ID: "col 2-1", Label: "col 2"},
		{ID: "Name-2", Label: "Name (2)"},
	}
	if got := s.Columns(); !reflect.DeepEqual(got, wantCols) {
		t.Errorf("Columns = %v, want %v", got, wantCols)
	}
	want := [][]string{{"Ann", "x", "Lee"}}
	if got := snapshotValues(s); !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %q, want %q", got, want)
	}
	if s.SortState() != NoSort {
		t.Errorf("SortState = %+v, want NoSort", s.SortState())
	}
	if !reflect.DeepEqual(layout.cols, wantCols) {
		t.Errorf("saved layout = %v, want %v", layout.cols, wantCols)
	}
	assertUniqueIDs(t, s)
}

func TestPromote_NoRowsIsNoOp(t *testing.T) {
	s, _ := newState(t, "a,b\n")
	before := s.Columns()

	if s.PromoteFirstRowToHeaders(context.Background()) {
		t.Error("Promote() on empty rows = true")
	}
	if !reflect.DeepEqual(s.Columns(), before) {
		t.Error("columns changed")
	}
}

func TestDemoteHeadersToFirstRow(t *testing.T) {
	s, layout := newState(t, "Name,Age\nAnn,30\n")
	if err := s.Sort(column(t, s, "Name")); err != nil {
		t.Fatal(err)
	}

	if !s.DemoteHeadersToFirstRow(context.Background()) {
		t.Fatal("Demote() = false")
	}

	wantCols := []Column{{ID: "col-1", Label: "col 1"}, {ID: "col-2", Label: "col 2"}}
	if got := s.Columns(); !reflect.DeepEqual(got, wantCols) {
		t.Errorf("Columns = %v, want %v", got, wantCols)
	}
	want := [][]string{{"Name", "Age"}, {"Ann", "30"}}
	if got := snapshotValues(s); !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %q, want %q", got, want)
	}
	if s.SortState() != NoSort {
		t.Errorf("SortState = %+v, want NoSort", s.SortState())
	}
	if !reflect.DeepEqual(layout.cols, wantCols) {
		t.Errorf("saved layout = %v, want %v", layout.cols, wantCols)
	}
	assertUniqueIDs(t, s)
}

func TestDemote_NoColumnsIsNoOp(t *testing.T) {
	s := NewTableState(context.Background(), &memLayout{})
	if s.DemoteHeadersToFirstRow(context.Background()) {
		t.Error("Demote() on empty table = true")
	}
}

func TestPromoteDemote_NotInverse(t *testing.T) {
	s, _ := newState(t, "h1,h2\nA,B\nC,D\n")
	rowsBefore := s.RowCount()

	s.PromoteFirstRowToHeaders(context.Background())
	s.DemoteHeadersToFirstRow(context.Background())

	if s.RowCount() != rowsBefore {
		t.Errorf("RowCount = %d, want %d", s.RowCount(), rowsBefore)
	}
	wantLabels := []string{"col 1", "col 2"}
	if got := s.Snapshot().Labels(); !reflect.DeepEqual(got, wantLabels) {
		t.Errorf("labels = %q, want %q", got, wantLabels)
	}
	want := [][]string{{"A", "B"}, {"C", "D"}}
	if got := snapshotValues(s); !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %q, want %q", got, want)
	}
}

// ============================================================================
// ResetLayout
// ============================================================================

func TestResetLayout_RestoresSnapshot(t *testing.T) {
	s, layout := newState(t, "a,b\n2,x\n1,y\n")
	original := s.Snapshot()

	s.Rename(context.Background(), column(t, s, "a"), "renamed")
	s.Reorder(context.Background(), column(t, s, "b"), 0)
	s.PromoteFirstRowToHeaders(context.Background())

	if got := s.ResetLayout(context.Background()); got != ResetRestored {
		t.Errorf("ResetLayout() = %v, want ResetRestored", got)
	}
	if !reflect.DeepEqual(s.Snapshot(), original) {
		t.Errorf("table = %+v, want %+v", s.Snapshot(), original)
	}
	if layout.saved || layout.clears != 1 {
		t.Errorf("layout saved = %v, clears = %d; want cleared once", layout.saved, layout.clears)
	}
	if s.SortState() != NoSort {
		t.Errorf("SortState = %+v, want NoSort", s.SortState())
	}

	// The snapshot survives a reset and can be restored again.
	s.DemoteHeadersToFirstRow(context.Background())
	s.ResetLayout(context.Background())
	if !reflect.DeepEqual(s.Snapshot(), original) {
		t.Error("second reset did not restore the snapshot")
	}
}

func TestResetLayout_WithoutSnapshotClears(t *testing.T) {
	layout := &memLayout{cols: []Column{{ID: "x-1", Label: "x"}}, saved: true}
	s := NewTableState(context.Background(), layout)

	if got := s.ResetLayout(context.Background()); got != ResetCleared {
		t.Errorf("ResetLayout() = %v, want ResetCleared", got)
	}
	if !s.Snapshot().Empty() {
		t.Errorf("table = %+v, want empty", s.Snapshot())
	}
	if layout.saved {
		t.Error("layout still saved")
	}
}

func TestLayoutSaveFailureDoesNotBlockEdits(t *testing.T) {
	s, layout := newState(t, "a\n1\n")
	layout.saveErr = errors.New("read-only")

	if !s.Rename(context.Background(), column(t, s, "a"), "b") {
		t.Fatal("Rename() = false")
	}
	if got := s.Columns()[0].Label; got != "b" {
		t.Errorf("label = %q, want b", got)
	}
}

func TestArrayMove(t *testing.T) {
	in := []int{0, 1, 2, 3}
	if got := arrayMove(in, 0, 3); !reflect.DeepEqual(got, []int{1, 2, 3, 0}) {
		t.Errorf("arrayMove(0,3) = %v", got)
	}
	if got := arrayMove(in, 3, 1); !reflect.DeepEqual(got, []int{0, 3, 1, 2}) {
		t.Errorf("arrayMove(3,1) = %v", got)
	}
	if !reflect.DeepEqual(in, []int{0, 1, 2, 3}) {
		t.Errorf("input mutated: %v", in)
	}
}
