package core

import (
	"path/filepath"
	"strings"
)

// UnnamedColumn is the label given to a column whose candidate label is blank.
const UnnamedColumn = "Unnamed Column"

// Column is one column of a table. ID is stable for the column's lifetime and
// unique within its table; Label is what the user sees and may repeat.
type Column struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Row maps column ids to cell values. A missing key reads as "".
type Row map[string]string

// Get returns the value stored under columnID, or "" when absent.
func (r Row) Get(columnID string) string {
	return r[columnID]
}

// Table is an ordered list of columns and an ordered list of rows.
// Column order is display and export order.
type Table struct {
	Columns []Column
	Rows    []Row
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	out := Table{
		Columns: append([]Column(nil), t.Columns...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		cp := make(Row, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}

// Empty reports whether the table has no columns and no rows.
func (t Table) Empty() bool {
	return len(t.Columns) == 0 && len(t.Rows) == 0
}

// ColumnIndex returns the position of columnID, or -1.
func (t Table) ColumnIndex(columnID string) int {
	for i, c := range t.Columns {
		if c.ID == columnID {
			return i
		}
	}
	return -1
}

// Values returns the row's cells in column order.
func (t Table) Values(r Row) []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = r.Get(c.ID)
	}
	return out
}

// Labels returns the column labels in order.
func (t Table) Labels() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Label
	}
	return out
}

// SortDirection is the direction of the active sort.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortState records which column the rows were last sorted by.
// An empty ColumnID means no sort is active.
type SortState struct {
	ColumnID  string        `json:"columnId,omitempty"`
	Direction SortDirection `json:"direction"`
}

// NoSort is the state after import, promotion, demotion and reset.
var NoSort = SortState{Direction: SortAsc}

// Active reports whether a sort column is set.
func (s SortState) Active() bool {
	return s.ColumnID != ""
}

// Format identifies a supported file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// IsExcel reports whether the format is one of the spreadsheet formats.
func (f Format) IsExcel() bool {
	return f == FormatXLSX || f == FormatXLS
}

// FormatFromName derives the format from a file name's extension,
// case-insensitively. Unknown extensions return ErrUnsupportedFormat.
func FormatFromName(name string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch Format(ext) {
	case FormatCSV, FormatXLSX, FormatXLS:
		return Format(ext), nil
	}
	if ext == "" {
		return "", wrapf(ErrUnsupportedFormat, "%q has no extension", name)
	}
	return "", wrapf(ErrUnsupportedFormat, "extension %q", ext)
}

// AcceptedTypes lists the file extensions and MIME types an import accepts.
var AcceptedTypes = []string{
	".csv",
	".xls",
	".xlsx",
	"text/csv",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// CellKind records what a decoded cell looked like in the source file.
// Only header inference for spreadsheets looks at it; values are always text.
type CellKind int

const (
	CellBlank CellKind = iota
	CellText
	CellNumber
	CellBool
	CellDate
	CellError
)

// Cell is a decoded cell: its value normalized to a string plus its kind.
type Cell struct {
	Value string
	Kind  CellKind
}

// IsText reports whether the cell holds a non-blank string.
func (c Cell) IsText() bool {
	return c.Kind == CellText && strings.TrimSpace(c.Value) != ""
}

// HeaderMode selects how the first row is treated.
type HeaderMode string

const (
	// HeaderAuto infers headers from the content.
	HeaderAuto HeaderMode = "auto"
	// HeaderNone treats every row as data and labels columns positionally.
	HeaderNone HeaderMode = "none"
	// HeaderFirst always uses the first row as labels.
	HeaderFirst HeaderMode = "first"
)

// ParseHeaderMode parses a header mode, defaulting to HeaderAuto for "".
func ParseHeaderMode(s string) (HeaderMode, bool) {
	switch HeaderMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", HeaderAuto:
		return HeaderAuto, true
	case HeaderNone:
		return HeaderNone, true
	case HeaderFirst:
		return HeaderFirst, true
	}
	return "", false
}
