// Package templates holds the HTML components of the chart studio.
//
// Components are templ.Component values so handlers render them the same way
// whether they produce a full page or an HTMX partial.
package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// ChartForm is the chart state echoed back into the page forms.
type ChartForm struct {
	Template string
	Items    string
	Values   string
	Groups   string
	Legend   bool
	YMin     float64
	YMax     float64
}

// GroupColor is one row of the color chooser.
type GroupColor struct {
	Name  string
	Color string
}

// IndexParams is everything the studio page shows.
type IndexParams struct {
	Templates    []string
	Form         ChartForm
	Hidden       string // url-encoded chart state for post-redirect-get
	Source       string
	Rows         int
	Columns      []string
	Preview      [][]string
	Groups       []GroupColor
	SVGURL       string
	PNGURL       string
	CanChart     bool
	QueryEnabled bool
	MaxUploadMB  int64
}

// Index renders the full studio page.
func Index(p IndexParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		hw.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.raw(`<title>Radial chart studio</title>`)
		hw.raw(`<link rel="stylesheet" href="/static/app.css"><script src="/static/app.js" defer></script>`)
		hw.raw(`</head><body><header><h1>Radial chart studio</h1></header><main>`)
		hw.raw(`<div id="alerts"></div>`)

		dataPanel(hw, p)
		if len(p.Columns) > 0 {
			chartPanel(hw, p)
			if len(p.Groups) > 0 {
				colorPanel(hw, p)
			}
			previewPanel(hw, p)
		}

		hw.raw(`</main></body></html>`)
		return hw.err
	})
}

func dataPanel(hw *htmlWriter, p IndexParams) {
	hw.raw(`<section class="panel" id="data"><h2>Data</h2>`)
	if p.Source != "" {
		hw.printf(`<p class="source">Loaded <strong>%s</strong>: %d rows, %d columns.</p>`,
			templ.EscapeString(p.Source), p.Rows, len(p.Columns))
	}

	hw.raw(`<form method="post" action="/load" enctype="multipart/form-data">`)
	hw.printf(`<label>File (CSV or XLSX, up to %d MB) <input type="file" name="file" accept=".csv,.tsv,.txt,.xlsx,.xlsm"></label>`, p.MaxUploadMB)
	hw.raw(`<label>Sheet <input type="text" name="sheet" placeholder="first sheet"></label>`)
	hw.raw(`<label>Or paste data <textarea name="text" rows="6" placeholder="subject,score,team"></textarea></label>`)
	if p.QueryEnabled {
		hw.raw(`<label>Or run a query <textarea name="query" rows="3" placeholder="SELECT subject, score, team FROM results"></textarea></label>`)
	}
	hw.raw(`<button type="submit">Load</button></form>`)

	if p.Source != "" {
		hw.raw(`<form method="post" action="/clear"><button type="submit" class="secondary">Clear data</button></form>`)
	}
	hw.raw(`</section>`)
}

func chartPanel(hw *htmlWriter, p IndexParams) {
	f := p.Form
	hw.raw(`<section class="panel" id="chart"><h2>Chart</h2>`)
	hw.raw(`<form method="get" action="/" id="chart-form" class="autosubmit">`)

	hw.raw(`<label>Template <select name="template">`)
	for _, name := range p.Templates {
		option(hw, name, name == f.Template)
	}
	hw.raw(`</select></label>`)

	columnSelect(hw, "Items", "items", p.Columns, f.Items)
	columnSelect(hw, "Values", "values", p.Columns, f.Values)
	columnSelect(hw, "Groups", "groups", p.Columns, f.Groups)

	checked := ""
	if f.Legend {
		checked = " checked"
	}
	hw.printf(`<label><input type="checkbox" name="legend" value="1"%s> Legend</label>`, checked)
	hw.printf(`<label>y-min <input type="number" name="ymin" min="-100" max="100" step="any" value="%s"></label>`, formatFloat(f.YMin))
	hw.printf(`<label>y-max <input type="number" name="ymax" min="-100" max="100" step="any" value="%s"></label>`, formatFloat(f.YMax))
	hw.raw(`<button type="submit">Draw</button></form>`)

	if p.CanChart {
		hw.printf(`<figure><img id="chart-image" src="%s" alt="%s chart"></figure>`,
			templ.EscapeString(p.SVGURL), templ.EscapeString(f.Template))
		hw.printf(`<p class="downloads"><a href="%s&amp;download=1">Download SVG</a> <a href="%s&amp;download=1">Download PNG</a></p>`,
			templ.EscapeString(p.SVGURL), templ.EscapeString(p.PNGURL))
	} else {
		hw.raw(`<p class="hint">Choose the items, values and groups columns to draw a chart.</p>`)
	}
	hw.raw(`</section>`)
}

func colorPanel(hw *htmlWriter, p IndexParams) {
	hw.raw(`<section class="panel" id="colors"><h2>Group colors</h2>`)
	hw.raw(`<form method="post" action="/colors">`)
	hiddenState(hw, p.Hidden)
	hw.raw(`<table class="colors"><tbody>`)
	for _, g := range p.Groups {
		hw.printf(`<tr><td>%s</td><td><input type="hidden" name="group" value="%s"><input type="color" name="color" value="%s"></td></tr>`,
			templ.EscapeString(g.Name), templ.EscapeString(g.Name), templ.EscapeString(g.Color))
	}
	hw.raw(`</tbody></table><button type="submit">Apply colors</button></form>`)

	hw.raw(`<form method="post" action="/colors/reset">`)
	hiddenState(hw, p.Hidden)
	hw.raw(`<button type="submit" class="secondary">Reset colors</button></form></section>`)
}

func previewPanel(hw *htmlWriter, p IndexParams) {
	hw.raw(`<section class="panel" id="preview"><h2>Preview</h2>`)
	hw.raw(PreviewTableHTML(p.Columns, p.Preview))
	hw.raw(`</section>`)
}

// PreviewTable renders the first rows of the loaded data.
func PreviewTable(columns []string, rows [][]string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, PreviewTableHTML(columns, rows))
		return err
	})
}

// PreviewTableHTML is PreviewTable as a string.
func PreviewTableHTML(columns []string, rows [][]string) string {
	hw := &stringWriter{}
	hw.raw(`<table class="preview"><thead><tr>`)
	for _, c := range columns {
		hw.printf(`<th>%s</th>`, templ.EscapeString(c))
	}
	hw.raw(`</tr></thead><tbody>`)
	for _, row := range rows {
		hw.raw(`<tr>`)
		for _, cell := range row {
			hw.printf(`<td>%s</td>`, templ.EscapeString(cell))
		}
		hw.raw(`</tr>`)
	}
	hw.raw(`</tbody></table>`)
	return hw.String()
}

// ErrorAlert renders an error message with a suggested action and a support
// code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.printf(`<div class="alert alert-error" role="alert"><p class="alert-message">%s</p>`, templ.EscapeString(message))
		if action != "" {
			hw.printf(`<p class="alert-action">%s</p>`, templ.EscapeString(action))
		}
		hw.printf(`<p class="alert-code">Code: %s</p></div>`, templ.EscapeString(code))
		return hw.err
	})
}

// ErrorPage wraps ErrorAlert in a page with a link back to the studio.
func ErrorPage(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>Error</title>`)
		hw.raw(`<link rel="stylesheet" href="/static/app.css"></head><body><main>`)
		if hw.err != nil {
			return hw.err
		}
		if err := ErrorAlert(message, action, code).Render(ctx, w); err != nil {
			return err
		}
		hw.raw(`<p><a href="/">Back to the studio</a></p></main></body></html>`)
		return hw.err
	})
}

func columnSelect(hw *htmlWriter, label, name string, columns []string, selected string) {
	hw.printf(`<label>%s <select name="%s"><option value="">(choose)</option>`, label, name)
	for _, c := range columns {
		option(hw, c, c == selected)
	}
	hw.raw(`</select></label>`)
}

func option(hw *htmlWriter, value string, selected bool) {
	sel := ""
	if selected {
		sel = " selected"
	}
	v := templ.EscapeString(value)
	hw.printf(`<option value="%s"%s>%s</option>`, v, sel, v)
}

func hiddenState(hw *htmlWriter, state string) {
	hw.printf(`<input type="hidden" name="state" value="%s">`, templ.EscapeString(state))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// htmlWriter keeps the first write error so components can write freely and
// report once.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) printf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

type stringWriter struct {
	buf []byte
}

func (s *stringWriter) raw(v string)                  { s.buf = append(s.buf, v...) }
func (s *stringWriter) printf(format string, a ...any) { s.buf = fmt.Appendf(s.buf, format, a...) }
func (s *stringWriter) String() string                 { return string(s.buf) }
