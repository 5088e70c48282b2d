package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/radial/internal/chart"
	"github.com/JonMunkholm/radial/internal/core"
	"github.com/JonMunkholm/radial/internal/logging"
	"github.com/JonMunkholm/radial/internal/render"
	"github.com/JonMunkholm/radial/internal/web/templates"
)

const (
	// previewRows is how many rows the studio page shows.
	previewRows = 10
	// maxPreviewRows caps the preview API.
	maxPreviewRows = 100
	// maxMemory is the multipart form memory budget; larger uploads spill
	// to temporary files.
	maxMemory = 32 << 20
	// minImageSize and maxImageSize bound the w and h query parameters.
	minImageSize = 64
	maxImageSize = 4096
)

// handleIndex renders the studio page for the session.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	st, err := s.parseChartState(r.URL.Query(), sess)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	names, err := s.service.Templates()
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	params := templates.IndexParams{
		Templates: names,
		Form: templates.ChartForm{
			Template: st.Template,
			Items:    st.Sel.Items,
			Values:   st.Sel.Values,
			Groups:   st.Sel.Groups,
			Legend:   st.Legend,
			YMin:     st.YMin,
			YMax:     st.YMax,
		},
		Hidden:       st.values().Encode(),
		QueryEnabled: s.service.HasQuerySource(),
		MaxUploadMB:  s.cfg.Upload.MaxFileSize >> 20,
	}

	if tbl := sess.Table(); tbl != nil {
		params.Source = tbl.Source
		params.Rows = tbl.Len()
		params.Columns = sess.Columns()
		params.Preview = tbl.Preview(previewRows)
		params.Groups = s.groupColors(tbl, st, sess.Colors())
		params.CanChart = st.complete()
		q := st.values().Encode()
		params.SVGURL = "/chart.svg?" + q
		params.PNGURL = "/chart.png?" + q
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Index(params).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
}

// groupColors lists the groups of the selected groups column with the color
// the selected template draws each in. An unusable color map or template
// falls back to the stock palette so the chooser still renders.
func (s *Server) groupColors(tbl *core.Table, st chartState, cm chart.ColorMap) []templates.GroupColor {
	if st.Sel.Groups == "" {
		return nil
	}
	cells, ok := tbl.Column(st.Sel.Groups)
	if !ok {
		return nil
	}

	resolve := func(cells []string, cm chart.ColorMap) (chart.GroupColors, error) {
		return chart.ResolveColors(cells, cm, chart.Tab10)
	}
	if tpl, err := s.service.Registry().Resolve(st.Template); err == nil {
		resolve = tpl.GroupColors
	}
	gc, err := resolve(cells, cm)
	if err != nil {
		gc, _ = resolve(cells, nil)
	}

	out := make([]templates.GroupColor, len(gc.Order))
	for i, g := range gc.Order {
		out[i] = templates.GroupColor{Name: g, Color: chart.Hex(gc.Of(g))}
	}
	return out
}

// handleChart renders the session's chart as an image.
func (s *Server) handleChart(format render.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		logger := logging.FromContext(r.Context())

		st, err := s.parseChartState(r.URL.Query(), sess)
		if err != nil {
			respondError(w, r, err, http.StatusBadRequest)
			return
		}

		start := time.Now()
		sc, err := s.service.Render(r.Context(), sess, st.Template, st.Sel, st.options())
		if err != nil {
			respondError(w, r, err, statusFor(err))
			return
		}

		opts := render.Options{
			Width:  imageSize(r, "w", s.cfg.Render.Width),
			Height: imageSize(r, "h", s.cfg.Render.Height),
		}

		release, err := s.service.Workload().Acquire(r.Context(), core.StageRaster)
		if err != nil {
			respondError(w, r, err, statusFor(err))
			return
		}
		var buf bytes.Buffer
		err = render.Write(&buf, sc, format, opts)
		release()
		if err != nil {
			respondError(w, r, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Cache-Control", "no-store")
		if r.URL.Query().Get("download") != "" {
			w.Header().Set("Content-Disposition",
				`attachment; filename="`+st.Template+"."+string(format)+`"`)
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			logger.Warn("write chart", "error", err)
			return
		}

		logger.Info("chart rendered",
			"template", st.Template,
			"format", string(format),
			"bytes", buf.Len(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// imageSize reads a pixel dimension, clamped to a sane range.
func imageSize(r *http.Request, name string, def int) int {
	n := parseIntParam(r, name, def)
	return max(minImageSize, min(n, maxImageSize))
}

// handleLoad replaces the session's table with an uploaded file, pasted text
// or a database query, in that order of precedence.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	// Leave headroom for the multipart envelope; the loaders enforce the
	// exact limit on the data itself.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize+1<<20)
	// ParseForm first: ParseMultipartForm hides url-encoded body errors
	// behind ErrNotMultipart.
	if err := r.ParseForm(); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		respondError(w, r, err, statusFor(err))
		return
	}

	release, err := s.service.Workload().Acquire(ctx, core.StageLoad)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	defer release()

	err = s.loadFromRequest(r, sess)
	if err != nil {
		status := statusFor(err)
		if errors.Is(err, errNoInput) {
			status = http.StatusBadRequest
		}
		respondError(w, r, err, status)
		return
	}

	tbl := sess.Table()
	logger.Info("data loaded", "source", tbl.Source, "rows", tbl.Len())

	switch {
	case isHTMX(r):
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusNoContent)
	case wantsJSON(r):
		writeJSON(w, columnsResponse(sess))
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (s *Server) loadFromRequest(r *http.Request, sess *core.Session) error {
	f, hdr, err := r.FormFile("file")
	switch {
	case err == nil:
		defer f.Close()
		if sheet := strings.TrimSpace(r.FormValue("sheet")); sheet != "" && core.IsWorkbook(hdr.Filename) {
			tbl, err := core.LoadWorkbookReader(f, hdr.Filename, sheet, s.cfg.Upload.MaxFileSize)
			if err != nil {
				return err
			}
			return sess.SetTable(tbl)
		}
		return sess.LoadReader(f, hdr.Filename)
	case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		return err
	}

	if text := r.FormValue("text"); strings.TrimSpace(text) != "" {
		return sess.Load(text, false)
	}
	if query := r.FormValue("query"); strings.TrimSpace(query) != "" {
		return s.service.LoadQuery(r.Context(), sess, query)
	}
	return errNoInput
}

// handleClear drops the session's data and chart.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sessionFrom(r).Clear()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleColors stores the posted group colors. The form carries parallel
// "group" and "color" fields.
func (s *Server) handleColors(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := r.ParseForm(); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	groups, colors := r.PostForm["group"], r.PostForm["color"]
	if len(groups) != len(colors) {
		respondError(w, r, fmt.Errorf("color form: %d groups but %d colors", len(groups), len(colors)), http.StatusBadRequest)
		return
	}
	for i, g := range groups {
		if err := sess.SetColor(g, colors[i]); err != nil {
			respondError(w, r, err, http.StatusUnprocessableEntity)
			return
		}
	}

	if wantsJSON(r) {
		writeJSON(w, map[string]any{"colors": sess.Colors()})
		return
	}
	http.Redirect(w, r, redirectTarget(r.PostFormValue("state")), http.StatusSeeOther)
}

// handleColorsReset restores the default palette. With a groups column the
// palette is assigned explicitly, otherwise the choices are just forgotten.
func (s *Server) handleColorsReset(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := r.ParseForm(); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	target := redirectTarget(r.PostFormValue("state"))
	groups := r.PostFormValue("groups")
	if groups == "" {
		if v, err := url.ParseQuery(r.PostFormValue("state")); err == nil {
			groups = v.Get("groups")
		}
	}

	if groups != "" {
		if err := sess.AssignDefaultColors(groups); err != nil {
			respondError(w, r, err, statusFor(err))
			return
		}
	} else {
		sess.ResetColors()
	}

	if wantsJSON(r) {
		writeJSON(w, map[string]any{"colors": sess.Colors()})
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// TemplatesResponse lists the chart templates.
type TemplatesResponse struct {
	Templates []string `json:"templates"`
	Default   string   `json:"default"`
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	names, err := s.service.Templates()
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, TemplatesResponse{Templates: names, Default: s.service.Defaults().Template})
}

// ColumnsResponse describes the loaded table.
type ColumnsResponse struct {
	Columns []string `json:"columns"`
	Rows    int      `json:"rows"`
	Source  string   `json:"source,omitempty"`
}

func columnsResponse(sess *core.Session) ColumnsResponse {
	resp := ColumnsResponse{Columns: sess.Columns()}
	if tbl := sess.Table(); tbl != nil {
		resp.Rows = tbl.Len()
		resp.Source = tbl.Source
	}
	return resp
}

func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, columnsResponse(sessionFrom(r)))
}

// PreviewResponse holds the first rows of the loaded table.
type PreviewResponse struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Total   int        `json:"total"`
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	tbl := sessionFrom(r).Table()
	if tbl == nil {
		respondError(w, r, core.ErrNoTable, http.StatusConflict)
		return
	}

	n := min(parseIntParam(r, "n", previewRows), maxPreviewRows)
	rows := tbl.Preview(n)
	if rows == nil {
		rows = [][]string{}
	}
	writeJSON(w, PreviewResponse{Columns: tbl.Columns, Rows: rows, Total: tbl.Len()})
}

// HealthResponse reports liveness and load.
type HealthResponse struct {
	Status   string              `json:"status"`
	Sessions int                 `json:"sessions"`
	Workload core.WorkloadStatus `json:"workload"`
	Database bool                `json:"database"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, HealthResponse{
		Status:   "ok",
		Sessions: s.service.SessionCount(),
		Workload: s.service.Workload().Status(),
		Database: s.service.HasQuerySource(),
	})
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
