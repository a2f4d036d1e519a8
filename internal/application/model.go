package application

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/JonMunkholm/datamanager/internal/core"
	"github.com/JonMunkholm/datamanager/internal/session"
)

type focusArea int

const (
	focusMenu focusArea = iota
	focusTable
)

const maxCellWidth = 18

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	menuStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Model is the bubbletea model for the table editor.
type Model struct {
	actions *Actions
	ws      *session.Workspace

	menu   *Menu
	cursor int
	focus  focusArea

	col       int
	rowOffset int

	renaming bool
	input    []rune

	busy   bool
	status string
	isErr  bool

	width, height int
}

// NewModel builds the model around a workspace.
func NewModel(ws *session.Workspace, actions *Actions) Model {
	return Model{
		actions: actions,
		ws:      ws,
		menu:    buildMenuTree(actions),
		height:  24,
		width:   80,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case importedMsg:
		m.busy = false
		m.col, m.rowOffset = 0, 0
		m.setStatus(importSummary(msg.info), false)
		return m, nil

	case outcomeMsg:
		m.busy = false
		switch {
		case msg.out.Changed && msg.out.Info != "":
			m.setStatus(msg.out.Info, false)
		case msg.out.Changed:
			m.setStatus(msg.label, false)
		default:
			m.setStatus(msg.out.Info, false)
		}
		m.clampColumn()
		return m, nil

	case DoneMsg:
		m.busy = false
		m.setStatus(string(msg), false)
		return m, nil

	case ErrMsg:
		m.busy = false
		m.setStatus(core.FormatUserError(msg.Err), true)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status, m.isErr = s, isErr
}

func (m *Model) clampColumn() {
	n := len(m.ws.View().Columns)
	m.col = min(max(m.col, 0), max(n-1, 0))
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.renaming {
		return m.handleRenameKey(msg)
	}
	if m.busy {
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab":
		if m.focus == focusMenu {
			m.focus = focusTable
		} else {
			m.focus = focusMenu
		}
		return m, nil
	}

	if m.focus == focusTable {
		return m.handleTableKey(msg)
	}
	return m.handleMenuKey(msg)
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.menu.Items)-1 {
			m.cursor++
		}
	case "esc", "backspace":
		if m.menu.Parent != nil {
			m.menu, m.cursor = m.menu.Parent, 0
		}
	case "enter":
		return m.selectItem(m.menu.Items[m.cursor])
	}
	return m, nil
}

func (m Model) selectItem(item MenuItem) (tea.Model, tea.Cmd) {
	switch {
	case item.Load != nil:
		sub := item.Load()
		linkParents(sub, m.menu)
		m.menu, m.cursor = sub, 0
	case item.Submenu != nil:
		m.menu, m.cursor = item.Submenu, 0
	case item.Action != nil:
		m.busy = true
		m.setStatus("Working...", false)
		return m, item.Action()
	}
	return m, nil
}

func (m Model) handleTableKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	view := m.ws.View()
	if len(view.Columns) == 0 {
		return m, nil
	}
	m.col = min(m.col, len(view.Columns)-1)
	current := view.Columns[m.col]

	switch msg.String() {
	case "left", "h":
		m.col = max(m.col-1, 0)
	case "right", "l":
		m.col = min(m.col+1, len(view.Columns)-1)
	case "up", "k":
		m.rowOffset = max(m.rowOffset-1, 0)
	case "down", "j":
		m.rowOffset = min(m.rowOffset+1, max(len(view.Rows)-1, 0))
	case "s":
		m.busy = true
		return m, m.actions.Sort(current.ID)
	case "r":
		m.renaming = true
		m.input = []rune(current.Label)
	case "<", ",":
		if m.col > 0 {
			m.col--
			m.busy = true
			return m, m.actions.Move(current.ID, m.col)
		}
	case ">", ".":
		if m.col < len(view.Columns)-1 {
			m.col++
			m.busy = true
			return m, m.actions.Move(current.ID, m.col)
		}
	}
	return m, nil
}

func (m Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.renaming, m.input = false, nil
		return m, nil
	case tea.KeyEnter:
		view := m.ws.View()
		m.renaming = false
		if m.col >= len(view.Columns) {
			return m, nil
		}
		label := string(m.input)
		m.input = nil
		m.busy = true
		return m, m.actions.Rename(view.Columns[m.col].ID, label)
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.menu.Title))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		menuStyle.Render(m.renderMenu()),
		"  ",
		m.renderTable(),
	))
	b.WriteString("\n\n")

	if m.renaming {
		b.WriteString("Rename column: " + string(m.input) + "█\n")
	}
	if m.status != "" {
		style := statusStyle
		if m.isErr {
			style = errorStyle
		}
		b.WriteString(style.Render(m.status) + "\n")
	}
	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

func (m Model) help() string {
	if m.renaming {
		return "enter: save • esc: cancel"
	}
	if m.focus == focusTable {
		return "←/→: column • ↑/↓: scroll • s: sort • r: rename • </>: move • tab: menu • q: quit"
	}
	return "↑/↓: move • enter: select • esc: back • tab: table • q: quit"
}

func (m Model) renderMenu() string {
	var b strings.Builder
	for i, item := range m.menu.Items {
		line := "  " + item.Label
		if i == m.cursor && m.focus == focusMenu {
			line = cursorStyle.Render("> " + item.Label)
		}
		b.WriteString(line)
		if i < len(m.menu.Items)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderTable() string {
	view := m.ws.View()
	if len(view.Columns) == 0 {
		return helpStyle.Render("No data. Choose Import to load a file.")
	}

	visible := max(m.height-12, 3)
	end := min(m.rowOffset+visible, len(view.Rows))
	rows := view.Rows[min(m.rowOffset, end):end]

	widths := make([]int, len(view.Columns))
	for i, c := range view.Columns {
		widths[i] = utf8.RuneCountInString(headerLabel(c, view.Sort))
		for _, r := range rows {
			widths[i] = max(widths[i], utf8.RuneCountInString(r[i]))
		}
		widths[i] = min(widths[i], maxCellWidth)
	}

	var b strings.Builder
	for i, c := range view.Columns {
		cell := pad(headerLabel(c, view.Sort), widths[i])
		if i == m.col && m.focus == focusTable {
			cell = selectedStyle.Render(cell)
		} else {
			cell = headerStyle.Render(cell)
		}
		b.WriteString(cell + " ")
	}
	b.WriteString("\n")

	for _, r := range rows {
		for i := range view.Columns {
			b.WriteString(pad(r[i], widths[i]) + " ")
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "rows %d-%d of %d", min(m.rowOffset+1, end), end, len(view.Rows))
	return b.String()
}

func headerLabel(c core.Column, s core.SortState) string {
	if s.ColumnID != c.ID {
		return c.Label
	}
	if s.Direction == core.SortDesc {
		return c.Label + " ↓"
	}
	return c.Label + " ↑"
}

// pad truncates or right-pads s to exactly width runes.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		r := []rune(s)
		return string(r[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-n)
}
