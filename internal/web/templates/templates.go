// Package templates renders the table editor's HTML as templ components.
package templates

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/datamanager/internal/core"
	"github.com/JonMunkholm/datamanager/internal/session"
)

// PageData is everything the full page needs.
type PageData struct {
	Title         string
	View          session.View
	AcceptedTypes []string
	HeaderMode    core.HeaderMode
	MaxFileSize   int64
}

// TableData is the swappable table region with an optional notice.
type TableData struct {
	View   session.View
	Notice string
}

// html accumulates the first write error so components can write freely.
type html struct {
	w   io.Writer
	err error
}

func (h *html) raw(parts ...string) {
	for _, p := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, p)
	}
}

func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *html) attr(name, value string) {
	h.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// Page renders the full editor document.
func Page(p PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		title := p.Title
		if title == "" {
			title = "Data Manager"
		}

		h.raw("<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\">")
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw("<title>")
		h.text(title)
		h.raw("</title>")
		h.raw(`<link rel="stylesheet" href="/static/app.css">`)
		h.raw(`<script src="/static/app.js" defer></script>`)
		h.raw("</head><body><header class=\"bar\"><h1>")
		h.text(title)
		h.raw("</h1></header><main>")
		if h.err != nil {
			return h.err
		}

		if err := ImportForm(p.AcceptedTypes, p.HeaderMode, p.MaxFileSize).Render(ctx, w); err != nil {
			return err
		}
		if err := TableView(TableData{View: p.View}).Render(ctx, w); err != nil {
			return err
		}

		h.raw("</main></body></html>")
		return h.err
	})
}

// ImportForm renders the file picker and header mode choice.
func ImportForm(accepted []string, mode core.HeaderMode, maxSize int64) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<form id="import-form" class="import" action="/api/import" method="post" enctype="multipart/form-data" data-target="table">`)
		h.raw(`<input type="file" name="file" required`)
		h.attr("accept", strings.Join(accepted, ","))
		if maxSize > 0 {
			h.attr("data-max-size", strconv.FormatInt(maxSize, 10))
		}
		h.raw(`>`)

		h.raw(`<label>Headers <select name="headers">`)
		for _, m := range []struct {
			mode  core.HeaderMode
			label string
		}{
			{core.HeaderAuto, "Detect"},
			{core.HeaderFirst, "First row"},
			{core.HeaderNone, "None"},
		} {
			h.raw(`<option`)
			h.attr("value", string(m.mode))
			if m.mode == mode {
				h.raw(" selected")
			}
			h.raw(">")
			h.text(m.label)
			h.raw("</option>")
		}
		h.raw(`</select></label>`)
		h.raw(`<button type="submit">Import</button></form>`)
		return h.err
	})
}

// TableView renders the table region: toolbar, notice, and grid. It is the
// fragment every edit swaps in.
func TableView(d TableData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		v := d.View

		h.raw(`<section id="table" class="table-region">`)
		if d.Notice != "" {
			h.raw(`<div class="alert alert-info" role="status">`)
			h.text(d.Notice)
			h.raw(`</div>`)
		}

		h.raw(`<div class="toolbar">`)
		h.raw(`<span class="summary">`)
		h.text(summary(v))
		h.raw(`</span>`)
		button(h, "/api/promote", "Use first row as headers", len(v.Rows) == 0)
		button(h, "/api/demote", "Move headers into data", len(v.Columns) == 0)
		button(h, "/api/reset", "Reset", false)
		disabled := len(v.Columns) == 0 || len(v.Rows) == 0
		for _, f := range []core.Format{core.FormatCSV, core.FormatXLSX} {
			if disabled {
				h.raw(`<span class="export disabled">Export `, strings.ToUpper(string(f)), `</span>`)
				continue
			}
			h.raw(`<a class="export"`)
			h.attr("href", "/api/export/"+string(f))
			h.raw(`>Export `, strings.ToUpper(string(f)), `</a>`)
		}
		h.raw(`</div>`)

		if len(v.Columns) == 0 {
			h.raw(`<p class="empty">Import a CSV or Excel file to get started.</p></section>`)
			return h.err
		}

		h.raw(`<div class="grid"><table><thead><tr>`)
		for _, c := range v.Columns {
			header(h, c, v.Sort)
		}
		h.raw(`</tr></thead><tbody>`)
		for _, row := range v.Rows {
			h.raw("<tr>")
			for _, cell := range row {
				h.raw("<td>")
				h.text(cell)
				h.raw("</td>")
			}
			h.raw("</tr>")
		}
		h.raw(`</tbody></table></div></section>`)
		return h.err
	})
}

func summary(v session.View) string {
	s := fmt.Sprintf("%d columns, %d rows", len(v.Columns), len(v.Rows))
	if v.LastImport != nil {
		s = v.LastImport.FileName + ": " + s
	}
	return s
}

func button(h *html, action, label string, disabled bool) {
	h.raw(`<form class="inline" method="post"`)
	h.attr("action", action)
	h.raw(` data-target="table"><button type="submit"`)
	if disabled {
		h.raw(" disabled")
	}
	h.raw(">")
	h.text(label)
	h.raw("</button></form>")
}

func header(h *html, c core.Column, sort core.SortState) {
	h.raw(`<th draggable="true"`)
	h.attr("data-column-id", c.ID)
	if sort.ColumnID == c.ID {
		h.attr("aria-sort", map[core.SortDirection]string{
			core.SortAsc:  "ascending",
			core.SortDesc: "descending",
		}[sort.Direction])
	}
	h.raw(">")

	h.raw(`<form class="rename" method="post" data-target="table"`)
	h.attr("action", "/api/columns/"+url.PathEscape(c.ID)+"/rename")
	h.raw(`><input name="label"`)
	h.attr("value", c.Label)
	h.attr("aria-label", "Rename "+c.Label)
	h.raw(`></form>`)

	h.raw(`<form class="sort" method="post" action="/api/sort" data-target="table">`)
	h.raw(`<input type="hidden" name="columnId"`)
	h.attr("value", c.ID)
	h.raw(`><button type="submit"`)
	h.attr("title", "Sort by "+c.Label)
	h.raw(">")
	h.text(sortIndicator(c.ID, sort))
	h.raw("</button></form></th>")
}

func sortIndicator(id string, sort core.SortState) string {
	if sort.ColumnID != id {
		return "↕"
	}
	if sort.Direction == core.SortDesc {
		return "↓"
	}
	return "↑"
}

// ErrorAlert renders a user-facing error fragment.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<div class="alert alert-error" role="alert"><strong>`)
		h.text(message)
		h.raw(`</strong>`)
		if action != "" {
			h.raw(` <span>`)
			h.text(action)
			h.raw(`</span>`)
		}
		if code != "" {
			h.raw(` <code>`)
			h.text(code)
			h.raw(`</code>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}
