package core

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"github.com/extrame/xls"
)

// decodeXLS reads the first worksheet of a legacy BIFF workbook.
// The reader panics on some malformed files, so panics become ErrParse.
func decodeXLS(ctx context.Context, data []byte) (d *Decoded, err error) {
	defer func() {
		if r := recover(); r != nil {
			d, err = nil, wrapf(ErrParse, "xls: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, wrapf(ErrParse, "xls: %v", err)
	}

	if wb == nil {
		return nil, wrapf(ErrParse, "xls: no workbook stream")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, wrapf(ErrParse, "xls: workbook has no sheets")
	}

	rows := make([][]Cell, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row := sheetRow(sheet, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}

		cells := make([]Cell, max(row.LastCol(), 0))
		for c := max(row.FirstCol(), 0); c < len(cells); c++ {
			cells[c] = xlsCell(row.Col(c))
		}
		rows = append(rows, cells)
	}

	rows = trimTrailingBlankRows(rows)
	padRows(rows)

	return &Decoded{Format: FormatXLS, Rows: rows}, nil
}

// sheetRow returns row i, or nil when the sheet has no record for it.
// WorkSheet.Row dereferences the missing row instead of returning nil.
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// xlsCell infers a cell kind from its formatted text; the reader does not
// expose record types.
func xlsCell(v string) Cell {
	if v == "" {
		return Cell{Kind: CellBlank}
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
		return Cell{Value: v, Kind: CellNumber}
	}
	switch strings.ToUpper(v) {
	case "TRUE", "FALSE":
		return Cell{Value: v, Kind: CellBool}
	}
	return Cell{Value: v, Kind: CellText}
}

func trimTrailingBlankRows(rows [][]Cell) [][]Cell {
	for len(rows) > 0 && isBlankRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

func isBlankRow(r []Cell) bool {
	for _, c := range r {
		if c.Value != "" {
			return false
		}
	}
	return true
}
