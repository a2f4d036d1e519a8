package core

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"golang.org/x/text/encoding"
)

// Decoded is the raw content of an imported file.
type Decoded struct {
	Format Format

	// Fields is the CSV field list found by the header-first read. It is nil
	// for spreadsheets and for CSV content whose first record names nothing.
	Fields []string

	// Rows holds the data rows in file order. For CSV with Fields set, the
	// field record is not included. For spreadsheets every row is padded to
	// the sheet width. Cell kinds are exact for the first spreadsheet row;
	// later rows only distinguish blank from text.
	Rows [][]Cell
}

// widest returns the longest row length.
func widest(rows [][]Cell) int {
	w := 0
	for _, r := range rows {
		w = max(w, len(r))
	}
	return w
}

// DecodeOptions tunes decoding.
type DecodeOptions struct {
	// Fallback decodes CSV bytes that are not valid UTF-8. Nil replaces
	// invalid sequences with U+FFFD.
	Fallback encoding.Encoding
}

// Decode reads file content into raw rows. The format comes from the file
// name's extension. Unknown extensions fail with ErrUnsupportedFormat,
// zero-byte files with ErrEmptyFile and unreadable content with ErrParse.
func Decode(ctx context.Context, data []byte, name string, opts DecodeOptions) (*Decoded, error) {
	format, err := FormatFromName(name)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, wrapf(ErrEmptyFile, "%q is empty", name)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch format {
	case FormatCSV:
		return decodeCSV(ctx, data, opts)
	case FormatXLSX:
		return decodeXLSX(ctx, data)
	case FormatXLS:
		return decodeXLS(ctx, data)
	}
	return nil, wrapf(ErrUnsupportedFormat, "format %q", format)
}

// decodeCSV parses comma-separated text. The first record is tried as a
// field list; when none of its fields has a name the content is re-read
// positionally and every record is data.
func decodeCSV(ctx context.Context, data []byte, opts DecodeOptions) (*Decoded, error) {
	text, err := NormalizeText(data, opts.Fallback)
	if err != nil {
		return nil, err
	}

	records, err := readRecords(ctx, text)
	if err != nil {
		return nil, err
	}

	d := &Decoded{Format: FormatCSV}
	if len(records) > 0 && hasFieldName(records[0]) {
		d.Fields = records[0]
		records = records[1:]
	}

	d.Rows = make([][]Cell, len(records))
	for i, rec := range records {
		d.Rows[i] = textCells(rec)
	}
	return d, nil
}

// readRecords reads every CSV record. Rows may have differing field counts
// and stray quotes are tolerated; blank lines are skipped by encoding/csv.
func readRecords(ctx context.Context, text []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		if len(records)%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, wrapf(ErrParse, "invalid csv at line %d: %v", pe.Line, pe.Err)
			}
			return nil, wrapf(ErrParse, "invalid csv: %v", err)
		}
		records = append(records, rec)
	}
}

// hasFieldName reports whether any field of the record is non-blank.
func hasFieldName(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return true
		}
	}
	return false
}

func textCells(values []string) []Cell {
	cells := make([]Cell, len(values))
	for i, v := range values {
		cells[i] = textCell(v)
	}
	return cells
}

func textCell(v string) Cell {
	if v == "" {
		return Cell{Kind: CellBlank}
	}
	return Cell{Value: v, Kind: CellText}
}

// padRows extends every row to the widest row with blank cells.
func padRows(rows [][]Cell) {
	width := widest(rows)
	for i, r := range rows {
		for len(r) < width {
			r = append(r, Cell{Kind: CellBlank})
		}
		rows[i] = r
	}
}
