package application

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/datamanager/internal/core"
)

/* ----------------------------------------
	MENU TREE
---------------------------------------- */

// MenuItem is one menu line. It opens Submenu, builds one lazily with Load,
// or runs Action.
type MenuItem struct {
	Label   string
	Submenu *Menu
	Load    func() *Menu
	Action  func() tea.Cmd
}

// Menu is a titled list of items.
type Menu struct {
	Title  string
	Items  []MenuItem
	Parent *Menu
}

const backLabel = "Back"

// linkParents points every submenu, and every Back item, at its parent.
func linkParents(menu *Menu, parent *Menu) {
	menu.Parent = parent

	for i := range menu.Items {
		item := &menu.Items[i]

		if item.Label == backLabel {
			item.Submenu = parent
			continue
		}
		if item.Submenu != nil {
			linkParents(item.Submenu, menu)
		}
	}
}

/* ----------------------------------------
	MENU TREE DEFINITION
---------------------------------------- */

func buildMenuTree(a *Actions) *Menu {
	root := &Menu{
		Title: "Data Manager",
		Items: []MenuItem{
			{Label: "Import ->", Load: func() *Menu { return loadImportMenu(a) }},
			{Label: "Use first row as headers", Action: a.Promote},
			{Label: "Move headers into data", Action: a.Demote},
			{Label: "Reset", Action: a.Reset},
			{Label: "Export ->", Submenu: loadExportMenu(a)},
		},
	}

	linkParents(root, nil)
	return root
}

/* ----------------------------------------
	LOAD MENUS
---------------------------------------- */

// loadImportMenu lists the import directory. A read failure becomes a menu
// showing the error.
func loadImportMenu(a *Actions) *Menu {
	files, err := a.ImportFiles()
	if err != nil {
		return &Menu{
			Title: "Import",
			Items: []MenuItem{
				{Label: "Error: " + err.Error()},
				{Label: backLabel},
			},
		}
	}

	items := make([]MenuItem, 0, len(files)+1)
	for _, f := range files {
		items = append(items, MenuItem{Label: f, Action: func() tea.Cmd { return a.Import(f) }})
	}
	if len(files) == 0 {
		items = append(items, MenuItem{Label: "(no .csv, .xls or .xlsx files)"})
	}
	items = append(items, MenuItem{Label: backLabel})

	return &Menu{Title: "Import", Items: items}
}

func loadExportMenu(a *Actions) *Menu {
	return &Menu{
		Title: "Export",
		Items: []MenuItem{
			{Label: "CSV", Action: func() tea.Cmd { return a.Export(core.FormatCSV) }},
			{Label: "XLSX", Action: func() tea.Cmd { return a.Export(core.FormatXLSX) }},
			{Label: backLabel},
		},
	}
}
