package core

import (
	"bytes"
	"context"

	"github.com/xuri/excelize/v2"
)

// decodeXLSX reads the first worksheet of an Office Open XML workbook.
// Values are the formatted cell text; blank cells are "".
func decodeXLSX(ctx context.Context, data []byte) (*Decoded, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, wrapf(ErrParse, "xlsx: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, wrapf(ErrParse, "xlsx: workbook has no sheets")
	}
	sheet := sheets[0]

	values, err := f.GetRows(sheet)
	if err != nil {
		return nil, wrapf(ErrParse, "xlsx: read sheet %q: %v", sheet, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows := make([][]Cell, len(values))
	for i, vals := range values {
		rows[i] = textCells(vals)
	}
	padRows(rows)

	if len(rows) > 0 {
		for c := range rows[0] {
			rows[0][c].Kind = xlsxCellKind(f, sheet, c, rows[0][c].Value)
		}
	}

	return &Decoded{Format: FormatXLSX, Rows: rows}, nil
}

// xlsxCellKind classifies a cell in the first row. Cells without a type
// attribute are numeric in the file format.
func xlsxCellKind(f *excelize.File, sheet string, col int, value string) CellKind {
	if value == "" {
		return CellBlank
	}

	axis, err := excelize.CoordinatesToCellName(col+1, 1)
	if err != nil {
		return CellText
	}
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return CellText
	}

	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return CellText
	case excelize.CellTypeBool:
		return CellBool
	case excelize.CellTypeDate:
		return CellDate
	case excelize.CellTypeError:
		return CellError
	default:
		return CellNumber
	}
}
