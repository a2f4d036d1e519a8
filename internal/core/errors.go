package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine. Callers match them with errors.Is; the
// messages double as the patterns MapError looks for.
var (
	// ErrUnsupportedFormat is returned for file extensions other than csv, xlsx and xls.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrParse is returned when the file content cannot be read as its format.
	ErrParse = errors.New("parse error")

	// ErrEmptyFile is returned when no column count can be determined.
	ErrEmptyFile = errors.New("empty file")

	// ErrNoColumnsInferred is returned when assembly produced no columns.
	ErrNoColumnsInferred = errors.New("no columns inferred")

	// ErrNothingToExport is returned when exporting a table without columns or rows.
	ErrNothingToExport = errors.New("nothing to export")

	// ErrUnknownColumn is returned when an operation names a column id the
	// table does not contain.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrImportSuperseded is returned when a later import started before this
	// one finished; the result of this import was discarded.
	ErrImportSuperseded = errors.New("import superseded")

	// ErrFileTooLarge is returned when an upload exceeds the configured limit.
	ErrFileTooLarge = errors.New("file too large")
)

// wrapf wraps a sentinel with formatted detail, keeping it matchable.
func wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
