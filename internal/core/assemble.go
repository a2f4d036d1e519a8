package core

import (
	"context"
	"time"

	"golang.org/x/text/encoding"
)

// Assemble keys raw rows by column id. The value at position i lands under
// columns[i].ID; values past the last column are dropped and missing ones
// read as "". Rows keep file order. No columns fails with
// ErrNoColumnsInferred.
func Assemble(labels []string, raw [][]Cell) (Table, error) {
	cols := BuildColumns(labels)
	if len(cols) == 0 {
		return Table{}, wrapf(ErrNoColumnsInferred, "header row is empty")
	}

	rows := make([]Row, len(raw))
	for i, cells := range raw {
		r := make(Row, len(cols))
		for j, c := range cols {
			if j < len(cells) {
				r[c.ID] = cells[j].Value
			} else {
				r[c.ID] = ""
			}
		}
		rows[i] = r
	}

	return Table{Columns: cols, Rows: rows}, nil
}

// ImportOptions tunes a full import.
type ImportOptions struct {
	Header   HeaderMode
	Fallback encoding.Encoding
}

// ImportResult is a successfully assembled table plus how it was read.
type ImportResult struct {
	FileName   string
	Format     Format
	HasHeaders bool
	Table      Table
	Duration   time.Duration
}

// Import decodes file content and assembles it into a table. It never
// touches any existing table; callers apply the result themselves, so a
// failed import leaves their state as it was.
func Import(ctx context.Context, data []byte, name string, opts ImportOptions) (*ImportResult, error) {
	start := time.Now()

	if opts.Header == "" {
		opts.Header = HeaderAuto
	}

	d, err := Decode(ctx, data, name, DecodeOptions{Fallback: opts.Fallback})
	if err != nil {
		return nil, err
	}

	hd, err := InferHeaders(d, opts.Header)
	if err != nil {
		return nil, err
	}

	t, err := Assemble(hd.Labels, hd.Rows)
	if err != nil {
		return nil, err
	}

	return &ImportResult{
		FileName:   name,
		Format:     d.Format,
		HasHeaders: hd.HasHeaders,
		Table:      t,
		Duration:   time.Since(start),
	}, nil
}
