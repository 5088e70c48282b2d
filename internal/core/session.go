package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/radial/internal/chart"
)

// Radial bound limits accepted from users.
const (
	MinBound = -100.0
	MaxBound = 100.0
)

// CheckBounds validates a (y-min, y-max) pair chosen by a user.
func CheckBounds(yMin, yMax float64) error {
	if yMin < MinBound || yMax > MaxBound {
		return fmt.Errorf("%w: must lie within [%g, %g]", ErrInvalidBounds, MinBound, MaxBound)
	}
	if yMin >= yMax {
		return fmt.Errorf("%w: y-min (%g) must be below y-max (%g)", ErrInvalidBounds, yMin, yMax)
	}
	return nil
}

// Session is one user's working state: the loaded table, the group colors
// and the last chart that rendered successfully. All methods are safe for
// concurrent use; each call is serialized.
//
// Failed operations never touch the state: a failed load keeps the previous
// table and a failed render keeps the previous chart.
type Session struct {
	ID string

	mu        sync.Mutex
	table     *Table
	colors    chart.ColorMap
	scene     *chart.Scene
	selection Selection
	template  string
	maxSize   int64
	lastUsed  time.Time
}

// NewSession returns an empty session. maxSize bounds loaded sources.
func NewSession(id string, maxSize int64) *Session {
	return &Session{
		ID:       id,
		colors:   make(chart.ColorMap),
		maxSize:  maxSize,
		lastUsed: time.Now(),
	}
}

func (s *Session) logger() *slog.Logger {
	return slog.Default().With("session_id", s.ID)
}

// Load reads a table from a path or from raw text.
func (s *Session) Load(source string, isPath bool) error {
	if isPath {
		return s.load(func() (*Table, error) { return LoadFile(source, s.maxSize) })
	}
	return s.LoadReader(strings.NewReader(source), PastedSource)
}

// LoadReader reads a CSV table from r, or an XLSX workbook when name has a
// workbook extension.
func (s *Session) LoadReader(r io.Reader, name string) error {
	return s.load(func() (*Table, error) {
		if IsWorkbook(name) {
			return LoadWorkbookReader(r, name, "", s.maxSize)
		}
		return LoadReader(r, name, s.maxSize)
	})
}

// LoadWorkbook reads one sheet of an XLSX file.
func (s *Session) LoadWorkbook(path, sheet string) error {
	return s.load(func() (*Table, error) { return LoadWorkbook(path, sheet, s.maxSize) })
}

// SetTable installs a table produced elsewhere, such as a database query.
func (s *Session) SetTable(t *Table) error {
	return s.load(func() (*Table, error) {
		if t == nil {
			return nil, &LoadError{Kind: LoadEmpty, Err: ErrNoTable}
		}
		if err := t.Validate(); err != nil {
			return nil, &LoadError{Kind: LoadMalformed, Source: t.Source, Err: err}
		}
		return t, nil
	})
}

func (s *Session) load(fn func() (*Table, error)) error {
	start := time.Now()
	t, err := fn()
	if err != nil {
		s.logger().Warn("load failed", "error", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.table = t
	s.colors = filterColors(s.colors, t)
	s.scene = nil
	s.lastUsed = time.Now()

	s.logger().Info("table loaded",
		"source", t.Source,
		"rows", t.Len(),
		"columns", len(t.Columns),
		"delimiter", string(t.Delimiter),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// filterColors keeps the entries whose group still occurs as a cell of t.
func filterColors(cm chart.ColorMap, t *Table) chart.ColorMap {
	cells := make(map[string]bool)
	for _, row := range t.Rows {
		for _, c := range row {
			cells[c] = true
		}
	}
	out := make(chart.ColorMap, len(cm))
	for g, c := range cm {
		if cells[g] {
			out[g] = c
		}
	}
	return out
}

// Clear drops the table, the colors and the last chart.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.table = nil
	s.colors = make(chart.ColorMap)
	s.scene = nil
	s.selection = Selection{}
	s.template = ""
	s.lastUsed = time.Now()
}

// Table returns the loaded table or nil. Tables are never mutated after
// loading, so the pointer may be read without the session lock.
func (s *Session) Table() *Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table
}

// Columns returns the column names of the loaded table, empty when nothing
// is loaded.
func (s *Session) Columns() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return []string{}
	}
	out := make([]string, len(s.table.Columns))
	copy(out, s.table.Columns)
	return out
}

// Project extracts the selected columns of the loaded table.
func (s *Session) Project(sel Selection) (chart.Series, error) {
	return ProjectSelection(s.Table(), sel)
}

// SetColor records the color of a group.
func (s *Session) SetColor(group, color string) error {
	if _, err := chart.ParseColor(color); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.colors[group] = color
	return nil
}

// AssignDefaultColors replaces the color map with one Tab10 color per
// distinct value of groupsCol, in first-seen order.
func (s *Session) AssignDefaultColors(groupsCol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return ErrNoTable
	}
	groups, ok := s.table.Column(groupsCol)
	if !ok {
		return &ProjectionError{Kind: UnknownColumn, Column: groupsCol}
	}
	s.colors = chart.DefaultColors(groups, chart.Tab10)
	return nil
}

// ResetColors forgets every color choice.
func (s *Session) ResetColors() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.colors = make(chart.ColorMap)
}

// Colors returns a copy of the group color map.
func (s *Session) Colors() chart.ColorMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.colors.Clone()
}

// Render projects sel, resolves the template and draws it. When opts.Colors
// is nil the session colors are used. On success the chart becomes the
// session's current chart; on failure the previous one is kept.
func (s *Session) Render(reg *chart.Registry, templateName string, sel Selection, opts chart.Options) (*chart.Scene, error) {
	start := time.Now()
	logger := s.logger().With("template", templateName)

	series, err := s.Project(sel)
	if err != nil {
		logger.Warn("projection failed", "error", err)
		return nil, err
	}

	tpl, err := reg.Resolve(templateName)
	if err != nil {
		logger.Warn("template resolution failed", "error", err)
		return nil, err
	}

	if opts.Colors == nil {
		opts.Colors = s.Colors()
	}

	sc := chart.NewScene()
	if err := tpl.Draw(series, sc, opts); err != nil {
		logger.Warn("render failed", "error", err)
		return nil, err
	}
	sc.Title = tpl.Title

	s.mu.Lock()
	s.scene = sc
	s.selection = sel
	s.template = templateName
	s.lastUsed = time.Now()
	s.mu.Unlock()

	logger.Debug("chart rendered",
		"kind", tpl.Kind,
		"rows", series.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return sc, nil
}

// Chart returns the last successfully rendered chart and the choices that
// produced it. The scene is nil when nothing has been rendered since the
// last load.
func (s *Session) Chart() (*chart.Scene, string, Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scene, s.template, s.selection
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

// LastUsed returns when the session was last accessed.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// QuerySource runs a read-only query and returns its result as a table.
type QuerySource interface {
	Query(ctx context.Context, query string) (*Table, error)
}

// LoadQuery installs the result of a database query.
func (s *Session) LoadQuery(ctx context.Context, src QuerySource, query string) error {
	return s.load(func() (*Table, error) { return src.Query(ctx, query) })
}
