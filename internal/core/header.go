package core

// HeaderDecision is the outcome of header inference: the candidate labels
// and the rows that remain data.
type HeaderDecision struct {
	Labels     []string
	Rows       [][]Cell
	HasHeaders bool
}

// InferHeaders decides whether the decoded content names its columns.
//
// With HeaderAuto, CSV content has headers when the header-first read found
// a field list; spreadsheet content has headers only when every cell of the
// first row is non-blank text. Without headers the labels are "col 1" ..
// "col N", N being the widest row, and every row is data. Content with no
// determinable column count fails with ErrEmptyFile.
func InferHeaders(d *Decoded, mode HeaderMode) (HeaderDecision, error) {
	rows := d.Rows
	var header []Cell

	switch d.Format {
	case FormatCSV:
		if d.Fields != nil {
			header = textCells(d.Fields)
		}
		if mode == HeaderNone && header != nil {
			rows = append([][]Cell{header}, rows...)
			header = nil
		}
		if mode == HeaderFirst && header == nil && len(rows) > 0 {
			header, rows = rows[0], rows[1:]
		}

	default:
		if len(rows) > 0 {
			switch mode {
			case HeaderFirst:
				header, rows = rows[0], rows[1:]
			case HeaderAuto:
				if allText(rows[0]) {
					header, rows = rows[0], rows[1:]
				}
			}
		}
	}

	if header != nil {
		labels := make([]string, len(header))
		for i, c := range header {
			labels[i] = c.Value
		}
		return HeaderDecision{Labels: labels, Rows: rows, HasHeaders: true}, nil
	}

	width := widest(rows)
	if width == 0 {
		return HeaderDecision{}, wrapf(ErrEmptyFile, "no rows with values")
	}

	return HeaderDecision{Labels: SyntheticLabels(width), Rows: rows}, nil
}

// allText reports whether a row is non-empty and every cell is non-blank text.
func allText(row []Cell) bool {
	if len(row) == 0 {
		return false
	}
	for _, c := range row {
		if !c.IsText() {
			return false
		}
	}
	return true
}
