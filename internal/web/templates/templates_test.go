package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/datamanager/internal/core"
	"github.com/JonMunkholm/datamanager/internal/session"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func sampleView() session.View {
	return session.View{
		Columns: []core.Column{
			{ID: "name", Label: "Name"},
			{ID: "a/b-1", Label: "<b>note</b>"},
		},
		Rows: [][]string{
			{"alice", "x < y"},
			{"bob", ""},
		},
		Sort:        core.SortState{ColumnID: "name", Direction: core.SortDesc},
		HasOriginal: true,
		LastImport:  &session.ImportInfo{FileName: "people.csv"},
	}
}

func TestTableView(t *testing.T) {
	out := renderString(t, TableView(TableData{View: sampleView(), Notice: "Imported 2 rows"}))

	assert.Contains(t, out, `id="table"`)
	assert.Contains(t, out, "Imported 2 rows")
	assert.Contains(t, out, "people.csv: 2 columns, 2 rows")
	assert.Contains(t, out, `data-column-id="name"`)
	assert.Contains(t, out, `aria-sort="descending"`)
	assert.Contains(t, out, `action="/api/columns/a%2Fb-1/rename"`)
	assert.Contains(t, out, `href="/api/export/csv"`)
	assert.Contains(t, out, `href="/api/export/xlsx"`)

	// Labels and values are escaped.
	assert.NotContains(t, out, "<b>note</b>")
	assert.Contains(t, out, "&lt;b&gt;note&lt;/b&gt;")
	assert.Contains(t, out, "x &lt; y")
}

func TestTableView_Empty(t *testing.T) {
	out := renderString(t, TableView(TableData{}))

	assert.Contains(t, out, "Import a CSV or Excel file")
	assert.NotContains(t, out, "<table>")
	assert.NotContains(t, out, `href="/api/export/`)
	assert.Contains(t, out, "Export CSV")
}

func TestPage(t *testing.T) {
	out := renderString(t, Page(PageData{
		View:          sampleView(),
		AcceptedTypes: []string{".csv", ".xlsx"},
		HeaderMode:    core.HeaderFirst,
		MaxFileSize:   1024,
	}))

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>Data Manager</title>")
	assert.Contains(t, out, `accept=".csv,.xlsx"`)
	assert.Contains(t, out, `data-max-size="1024"`)
	assert.Contains(t, out, `<option value="first" selected>`)
	assert.Contains(t, out, `id="table"`)
	assert.True(t, strings.HasSuffix(out, "</html>"))
}

func TestErrorAlert(t *testing.T) {
	out := renderString(t, ErrorAlert("The file has no data", "Choose another file", "FILE005"))

	assert.Contains(t, out, `role="alert"`)
	assert.Contains(t, out, "The file has no data")
	assert.Contains(t, out, "Choose another file")
	assert.Contains(t, out, "<code>FILE005</code>")
}
