package application

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/datamanager/internal/core"
	"github.com/JonMunkholm/datamanager/internal/session"
	"github.com/JonMunkholm/datamanager/internal/store"
)

func newTestModel(t *testing.T) (Model, string) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "people.csv", "name,age\nalice,30\nbob,25\n")
	writeFile(t, dir, "notes.txt", "ignored")

	mgr := session.NewManager(store.NewMemory(), nil, session.Options{})
	ws, err := mgr.Get(context.Background(), "tui")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	return NewModel(ws, NewActions(ws, dir, dir, core.HeaderAuto)), dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and runs any resulting command to completion, feeding
// its message back into the model.
func press(t *testing.T, m Model, s string) Model {
	t.Helper()
	next, cmd := m.Update(key(s))
	m = next.(Model)
	if cmd != nil {
		next, _ = m.Update(cmd())
		m = next.(Model)
	}
	return m
}

func labels(ws *session.Workspace) []string {
	var out []string
	for _, c := range ws.View().Columns {
		out = append(out, c.Label)
	}
	return out
}

func importPeople(t *testing.T, m Model) Model {
	t.Helper()
	m = press(t, m, "enter") // Import ->
	if m.menu.Title != "Import" {
		t.Fatalf("menu = %q, want Import", m.menu.Title)
	}
	m = press(t, m, "enter") // people.csv
	if !strings.Contains(m.status, "Imported people.csv") {
		t.Fatalf("status = %q", m.status)
	}
	return m
}

// =============================================================================
// Menu tree
// =============================================================================

func TestLinkParents(t *testing.T) {
	child := &Menu{Title: "child", Items: []MenuItem{{Label: backLabel}}}
	root := &Menu{Title: "root", Items: []MenuItem{{Label: "Go", Submenu: child}}}

	linkParents(root, nil)

	if child.Parent != root {
		t.Error("child.Parent should be root")
	}
	if child.Items[0].Submenu != root {
		t.Error("Back should point at the parent menu")
	}
}

func TestImportMenu_ListsSupportedFiles(t *testing.T) {
	m, _ := newTestModel(t)
	menu := loadImportMenu(m.actions)

	var got []string
	for _, it := range menu.Items {
		got = append(got, it.Label)
	}
	if strings.Join(got, ",") != "people.csv,Back" {
		t.Errorf("items = %v", got)
	}
}

func TestImportMenu_MissingDir(t *testing.T) {
	a := NewActions(nil, filepath.Join(t.TempDir(), "missing"), "", core.HeaderAuto)
	menu := loadImportMenu(a)

	if !strings.HasPrefix(menu.Items[0].Label, "Error: ") {
		t.Errorf("first item = %q, want error", menu.Items[0].Label)
	}
}

// =============================================================================
// Model
// =============================================================================

func TestModel_ImportAndBack(t *testing.T) {
	m, _ := newTestModel(t)
	m = importPeople(t, m)

	if got := strings.Join(labels(m.ws), ","); got != "name,age" {
		t.Errorf("labels = %s", got)
	}

	m = press(t, m, "esc")
	if m.menu.Title != "Data Manager" {
		t.Errorf("esc should return to root, got %q", m.menu.Title)
	}
}

func TestModel_TableKeys(t *testing.T) {
	m, _ := newTestModel(t)
	m = importPeople(t, m)
	m = press(t, m, "esc")
	m = press(t, m, "tab")

	m = press(t, m, "right")
	m = press(t, m, "s")
	if rows := m.ws.View().Rows; rows[0][0] != "bob" {
		t.Errorf("after sort by age first row = %v", rows[0])
	}

	m = press(t, m, "<")
	if got := strings.Join(labels(m.ws), ","); got != "age,name" {
		t.Errorf("after move labels = %s", got)
	}
	if m.col != 0 {
		t.Errorf("cursor should follow the column, col = %d", m.col)
	}

	m = press(t, m, "r")
	for range "age" {
		m = press(t, m, "backspace")
	}
	m = press(t, m, "Y")
	m = press(t, m, "e")
	m = press(t, m, "a")
	m = press(t, m, "r")
	m = press(t, m, "s")
	m = press(t, m, "enter")
	if got := strings.Join(labels(m.ws), ","); got != "Years,name" {
		t.Errorf("after rename labels = %s", got)
	}
}

func TestModel_MenuEditsAndExport(t *testing.T) {
	m, dir := newTestModel(t)
	m = importPeople(t, m)
	m = press(t, m, "esc")

	m = press(t, m, "down") // Use first row as headers
	m = press(t, m, "down") // Move headers into data
	m = press(t, m, "enter")
	if got := strings.Join(labels(m.ws), ","); got != "col 1,col 2" {
		t.Errorf("after demote labels = %s", got)
	}

	m = press(t, m, "down") // Reset
	m = press(t, m, "enter")
	if got := strings.Join(labels(m.ws), ","); got != "name,age" {
		t.Errorf("after reset labels = %s", got)
	}

	m = press(t, m, "down")  // Export ->
	m = press(t, m, "enter") // CSV
	m = press(t, m, "enter")
	if m.isErr {
		t.Fatalf("export failed: %s", m.status)
	}
	data, err := os.ReadFile(filepath.Join(dir, "exported_data.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "name,age\r\nalice,30\r\nbob,25\r\n" {
		t.Errorf("export = %q", data)
	}
}

func TestModel_ErrorsAreUserFacing(t *testing.T) {
	m, _ := newTestModel(t)

	next, _ := m.Update(ErrMsg{Err: core.ErrNothingToExport})
	m = next.(Model)

	if !m.isErr || !strings.Contains(m.status, "TBL002") {
		t.Errorf("status = %q, isErr = %v", m.status, m.isErr)
	}
}

func TestModel_View(t *testing.T) {
	m, _ := newTestModel(t)
	if !strings.Contains(m.View(), "No data") {
		t.Error("empty view should prompt for an import")
	}

	m = importPeople(t, m)
	out := m.View()
	for _, want := range []string{"name", "alice", "rows 1-2 of 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestPad(t *testing.T) {
	if got := pad("abc", 5); got != "abc  " {
		t.Errorf("pad = %q", got)
	}
	if got := pad("abcdef", 4); got != "abc…" {
		t.Errorf("pad = %q", got)
	}
}
