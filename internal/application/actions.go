package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/datamanager/internal/core"
	"github.com/JonMunkholm/datamanager/internal/session"
)

// ActionTimeout bounds a single menu action, imports included.
var ActionTimeout = 2 * time.Minute

// Actions turns workspace operations into tea commands.
type Actions struct {
	ws        *session.Workspace
	importDir string
	exportDir string
	header    core.HeaderMode
}

// NewActions creates actions importing from importDir and exporting to
// exportDir.
func NewActions(ws *session.Workspace, importDir, exportDir string, header core.HeaderMode) *Actions {
	return &Actions{ws: ws, importDir: importDir, exportDir: exportDir, header: header}
}

func actionContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), ActionTimeout)
}

// ImportFiles lists importable files in the import directory, sorted by
// name. A missing directory yields an error.
func (a *Actions) ImportFiles() ([]string, error) {
	entries, err := os.ReadDir(a.importDir)
	if err != nil {
		return nil, fmt.Errorf("read import dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := core.FormatFromName(e.Name()); err == nil {
			files = append(files, e.Name())
		}
	}
	slices.Sort(files)
	return files, nil
}

// Import reads name from the import directory into the workspace.
func (a *Actions) Import(name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := actionContext()
		defer cancel()

		data, err := os.ReadFile(filepath.Join(a.importDir, name))
		if err != nil {
			return ErrMsg{Err: err}
		}
		info, err := a.ws.Import(ctx, data, name, a.header)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return importedMsg{info: info}
	}
}

// Promote uses the first row as headers.
func (a *Actions) Promote() tea.Cmd {
	return a.edit("Headers set from first row", func(ctx context.Context) session.Outcome {
		return a.ws.Promote(ctx)
	})
}

// Demote moves the headers into the data.
func (a *Actions) Demote() tea.Cmd {
	return a.edit("Headers moved into data", func(ctx context.Context) session.Outcome {
		return a.ws.Demote(ctx)
	})
}

// Reset restores the imported table.
func (a *Actions) Reset() tea.Cmd {
	return a.edit("Table reset", func(ctx context.Context) session.Outcome {
		return a.ws.Reset(ctx)
	})
}

// Rename relabels a column.
func (a *Actions) Rename(columnID, label string) tea.Cmd {
	return a.edit("Column renamed", func(ctx context.Context) session.Outcome {
		return a.ws.Rename(ctx, columnID, label)
	})
}

// Move shifts a column to targetIndex.
func (a *Actions) Move(columnID string, targetIndex int) tea.Cmd {
	return a.edit("Column moved", func(ctx context.Context) session.Outcome {
		return a.ws.Reorder(ctx, columnID, targetIndex)
	})
}

// Sort orders rows by a column.
func (a *Actions) Sort(columnID string) tea.Cmd {
	return func() tea.Msg {
		if err := a.ws.Sort(columnID); err != nil {
			return ErrMsg{Err: err}
		}
		return DoneMsg("Sorted")
	}
}

// Export writes the table into the export directory.
func (a *Actions) Export(f core.Format) tea.Cmd {
	return func() tea.Msg {
		data, err := a.ws.Export(f)
		if err != nil {
			return ErrMsg{Err: err}
		}
		path := filepath.Join(a.exportDir, core.ExportFileName(f))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return ErrMsg{Err: fmt.Errorf("write export: %w", err)}
		}
		return DoneMsg("Exported " + path)
	}
}

func (a *Actions) edit(label string, fn func(context.Context) session.Outcome) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := actionContext()
		defer cancel()
		return outcomeMsg{label: label, out: fn(ctx)}
	}
}

// importSummary is the status line after an import.
func importSummary(info *session.ImportInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Imported %s: %d rows, %d columns", info.FileName, info.Rows, info.Columns)
	if !info.HasHeaders {
		b.WriteString(" (no header row detected)")
	}
	return b.String()
}
