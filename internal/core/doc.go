// Package core provides the tabular normalization and state engine behind
// the data manager.
//
// This package holds all domain logic independent of any UI or transport
// layer. The web server, the terminal editor and the CLI all drive it the
// same way.
//
// # Architecture
//
// An import runs through four stages, each a plain function:
//
//   - Decode: bytes plus a file name become raw rows of cells ([Decode]).
//     CSV, XLSX and XLS are supported; only the first worksheet is read.
//   - Header inference: decide whether the first row names the columns
//     ([InferHeaders]).
//   - Column identity: candidate labels become columns with unique ids
//     ([BuildColumns]).
//   - Assembly: raw rows are keyed by column id ([Assemble]).
//
// [Import] chains all four. The result is handed to a [TableState], which
// owns the table and applies user edits: sort, rename, reorder, header
// promotion and demotion, and layout reset. [Serialize] writes a snapshot
// back out as CSV or XLSX.
//
// # Layout Persistence
//
// The column list is saved through a [LayoutStore] after every change to it
// and loaded once when the [TableState] is constructed. Stores live in the
// store package (memory, SQLite, PostgreSQL).
//
// # Error Handling
//
// Failures are reported with the sentinel errors in errors.go wrapped with
// context. [MapError] turns any of them into a [UserMessage] with a support
// code:
//
//   - FILE001-FILE006: File errors (size, parse, encoding, format)
//   - TBL001-TBL003: Table errors (no columns, nothing to export, unknown column)
//   - IMP001-IMP002: Import errors (superseded, busy)
//   - UPL004-UPL005: Request errors (cancelled, timeout)
package core
