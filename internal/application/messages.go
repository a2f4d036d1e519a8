// Package application is the terminal front end: a bubbletea program that
// edits one workspace through a menu tree and a column cursor.
package application

import "github.com/JonMunkholm/datamanager/internal/session"

// DoneMsg reports a finished action with a status line.
type DoneMsg string

// ErrMsg reports a failed action.
type ErrMsg struct{ Err error }

func (e ErrMsg) Error() string { return e.Err.Error() }

// importedMsg carries a successful import.
type importedMsg struct{ info *session.ImportInfo }

// outcomeMsg carries an edit result; no-ops carry their reason.
type outcomeMsg struct {
	label string
	out   session.Outcome
}
