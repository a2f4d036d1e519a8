package core

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportSheet is the name of the single worksheet in an XLSX export.
const ExportSheet = "Sheet1"

// ExportFileName returns the download name for an export format.
func ExportFileName(f Format) string {
	return "exported_data." + string(f)
}

// ContentType returns the MIME type for an export format.
func ContentType(f Format) string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// ParseExportFormat accepts "csv" or "xlsx".
func ParseExportFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatXLSX:
		return Format(s), nil
	}
	return "", wrapf(ErrUnsupportedFormat, "export format %q", s)
}

// Serialize writes the table with a header row of labels followed by one
// row per table row, all in column order. Absent values are written as "".
// A table without columns or rows fails with ErrNothingToExport.
func Serialize(t Table, f Format) ([]byte, error) {
	if len(t.Columns) == 0 || len(t.Rows) == 0 {
		return nil, wrapf(ErrNothingToExport, "%d columns, %d rows", len(t.Columns), len(t.Rows))
	}

	switch f {
	case FormatCSV:
		return serializeCSV(t)
	case FormatXLSX:
		return serializeXLSX(t)
	}
	return nil, wrapf(ErrUnsupportedFormat, "export format %q", f)
}

// serializeCSV writes comma-separated records with CRLF line endings.
func serializeCSV(t Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	if err := w.Write(t.Labels()); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range t.Rows {
		if err := w.Write(t.Values(r)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// serializeXLSX writes every cell as a string so values round-trip exactly.
func serializeXLSX(t Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// NewFile creates the default sheet "Sheet1".
	if err := writeSheetRow(f, 1, t.Labels()); err != nil {
		return nil, err
	}
	for i, r := range t.Rows {
		if err := writeSheetRow(f, i+2, t.Values(r)); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheetRow(f *excelize.File, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("cell name for row %d: %w", rowNum, err)
	}

	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(ExportSheet, cell, &row); err != nil {
		return fmt.Errorf("write xlsx row %d: %w", rowNum, err)
	}
	return nil
}
