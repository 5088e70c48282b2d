package core

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/JonMunkholm/radial/internal/chart"
)

const teamCSV = "subject,score,team\nspeed,10,red\ngrip,-5,blue\nstamina,40,red\n"

func stockRegistry() *chart.Registry {
	return chart.NewRegistry(chart.StockTemplates())
}

func defaultOptions() chart.Options {
	return chart.Options{ShowLegend: true, YMin: -50, YMax: 90}
}

var teamSelection = Selection{Items: "subject", Values: "score", Groups: "team"}

func TestSession_LoadAndColumns(t *testing.T) {
	s := NewSession("s1", 0)

	if got := s.Columns(); len(got) != 0 {
		t.Errorf("Columns() before load = %v, want empty", got)
	}

	if err := s.Load(teamCSV, false); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := []string{"subject", "score", "team"}; !reflect.DeepEqual(s.Columns(), want) {
		t.Errorf("Columns() = %v, want %v", s.Columns(), want)
	}

	cols := s.Columns()
	cols[0] = "mutated"
	if s.Columns()[0] != "subject" {
		t.Error("Columns() exposes internal state")
	}
}

func TestSession_FailedLoadKeepsTable(t *testing.T) {
	s := NewSession("s1", 0)
	if err := s.Load(teamCSV, false); err != nil {
		t.Fatal(err)
	}
	before := s.Table()

	err := s.Load("a,b\n1,2,3\n", false)
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("Load() error = %v, want *LoadError", err)
	}
	if s.Table() != before {
		t.Error("failed load replaced the table")
	}
}

func TestSession_LoadReaderWorkbookName(t *testing.T) {
	s := NewSession("s1", 0)
	err := s.LoadReader(strings.NewReader("not a zip"), "book.xlsx")

	var le *LoadError
	if !errors.As(err, &le) || le.Kind != LoadUnreadable {
		t.Errorf("LoadReader(xlsx) error = %v, want source unreadable", err)
	}
}

func TestSession_Colors(t *testing.T) {
	s := NewSession("s1", 0)
	if err := s.Load(teamCSV, false); err != nil {
		t.Fatal(err)
	}

	if err := s.AssignDefaultColors("team"); err != nil {
		t.Fatalf("AssignDefaultColors() error = %v", err)
	}
	want := chart.ColorMap{"red": chart.Tab10[0], "blue": chart.Tab10[1]}
	if got := s.Colors(); !reflect.DeepEqual(got, want) {
		t.Errorf("Colors() = %v, want %v", got, want)
	}

	if err := s.SetColor("red", "#123456"); err != nil {
		t.Fatalf("SetColor() error = %v", err)
	}
	if err := s.SetColor("blue", "not-a-color"); err == nil {
		t.Error("SetColor(invalid) should fail")
	}
	if got := s.Colors()["blue"]; got != chart.Tab10[1] {
		t.Errorf("blue = %q after invalid SetColor, want %q", got, chart.Tab10[1])
	}

	if err := s.AssignDefaultColors("nope"); err == nil {
		t.Error("AssignDefaultColors(unknown column) should fail")
	}

	// Reload keeps only colors of groups still present.
	if err := s.Load("subject,score,team\nspeed,1,red\n", false); err != nil {
		t.Fatal(err)
	}
	if got := s.Colors(); !reflect.DeepEqual(got, chart.ColorMap{"red": "#123456"}) {
		t.Errorf("Colors() after reload = %v", got)
	}

	s.ResetColors()
	if got := s.Colors(); len(got) != 0 {
		t.Errorf("Colors() after reset = %v, want empty", got)
	}
}

func TestSession_AssignDefaultColorsWithoutTable(t *testing.T) {
	s := NewSession("s1", 0)
	if err := s.AssignDefaultColors("team"); !errors.Is(err, ErrNoTable) {
		t.Errorf("AssignDefaultColors() error = %v, want %v", err, ErrNoTable)
	}
}

func TestSession_Render(t *testing.T) {
	reg := stockRegistry()
	s := NewSession("s1", 0)
	if err := s.Load(teamCSV, false); err != nil {
		t.Fatal(err)
	}

	sc, err := s.Render(reg, "circular_barchart", teamSelection, defaultOptions())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := len(sc.Bars); got != 3 {
		t.Errorf("len(Bars) = %d, want 3", got)
	}
	if sc.Title != "Circular bar chart" {
		t.Errorf("Title = %q", sc.Title)
	}
	if sc.RMin != -50 || sc.RMax != 90 {
		t.Errorf("bounds = (%v, %v), want (-50, 90)", sc.RMin, sc.RMax)
	}

	current, name, sel := s.Chart()
	if current != sc || name != "circular_barchart" || sel != teamSelection {
		t.Errorf("Chart() = (%p, %q, %+v)", current, name, sel)
	}

	t.Run("failures keep the previous chart", func(t *testing.T) {
		failures := []struct {
			name     string
			template string
			sel      Selection
			opts     chart.Options
		}{
			{name: "unknown template", template: "nope", sel: teamSelection, opts: defaultOptions()},
			{name: "unknown column", template: "scatter", sel: Selection{Items: "x", Values: "score", Groups: "team"}, opts: defaultOptions()},
			{name: "text values", template: "scatter", sel: Selection{Items: "subject", Values: "team", Groups: "team"}, opts: defaultOptions()},
			{name: "inverted bounds", template: "scatter", sel: teamSelection, opts: chart.Options{YMin: 5, YMax: 1}},
			{
				name:     "invalid color",
				template: "scatter",
				sel:      teamSelection,
				opts:     chart.Options{YMin: -50, YMax: 90, Colors: chart.ColorMap{"red": "#zzz"}},
			},
		}

		for _, f := range failures {
			if _, err := s.Render(reg, f.template, f.sel, f.opts); err == nil {
				t.Errorf("%s: Render() should fail", f.name)
			}
			if got, _, _ := s.Chart(); got != sc {
				t.Errorf("%s: previous chart was replaced", f.name)
			}
		}
	})

	t.Run("load drops the chart", func(t *testing.T) {
		if err := s.Load(teamCSV, false); err != nil {
			t.Fatal(err)
		}
		if got, _, _ := s.Chart(); got != nil {
			t.Error("Chart() after load should be nil")
		}
	})
}

func TestSession_RenderUsesSessionColors(t *testing.T) {
	s := NewSession("s1", 0)
	if err := s.Load(teamCSV, false); err != nil {
		t.Fatal(err)
	}
	if err := s.SetColor("blue", "#0000ff"); err != nil {
		t.Fatal(err)
	}

	sc, err := s.Render(stockRegistry(), "circular_barchart", teamSelection, defaultOptions())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	found := false
	for _, e := range sc.Legend {
		if e.Label == "blue" {
			found = true
			if chart.Hex(e.Color) != "#0000ff" {
				t.Errorf("blue legend color = %s, want #0000ff", chart.Hex(e.Color))
			}
		}
	}
	if !found {
		t.Error("legend has no entry for blue")
	}
}

func TestSession_Clear(t *testing.T) {
	s := NewSession("s1", 0)
	if err := s.Load(teamCSV, false); err != nil {
		t.Fatal(err)
	}
	if err := s.SetColor("red", "red"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Render(stockRegistry(), "scatter", teamSelection, defaultOptions()); err != nil {
		t.Fatal(err)
	}

	s.Clear()

	if s.Table() != nil {
		t.Error("Table() after Clear should be nil")
	}
	if len(s.Colors()) != 0 {
		t.Error("Colors() after Clear should be empty")
	}
	if sc, _, _ := s.Chart(); sc != nil {
		t.Error("Chart() after Clear should be nil")
	}
	if _, err := s.Project(teamSelection); !errors.Is(err, ErrNoTable) {
		t.Errorf("Project() after Clear error = %v, want %v", err, ErrNoTable)
	}
}

type fakeQuery struct {
	table *Table
	err   error
	got   string
}

func (f *fakeQuery) Query(_ context.Context, q string) (*Table, error) {
	f.got = q
	return f.table, f.err
}

func TestSession_LoadQuery(t *testing.T) {
	s := NewSession("s1", 0)
	src := &fakeQuery{table: &Table{
		Columns: []string{"subject", "score", "team"},
		Rows:    [][]string{{"speed", "3", "red"}},
		Source:  "query",
	}}

	if err := s.LoadQuery(context.Background(), src, "SELECT 1"); err != nil {
		t.Fatalf("LoadQuery() error = %v", err)
	}
	if src.got != "SELECT 1" {
		t.Errorf("query = %q", src.got)
	}
	if s.Table().Source != "query" {
		t.Errorf("Source = %q, want %q", s.Table().Source, "query")
	}

	src.err = errors.New("query rejected: not a select")
	if err := s.LoadQuery(context.Background(), src, "DELETE FROM x"); err == nil {
		t.Error("LoadQuery() should propagate the source error")
	}
	if s.Table().Source != "query" {
		t.Error("failed query replaced the table")
	}
}

func TestSession_SetTableRejects(t *testing.T) {
	tests := []struct {
		name     string
		table    *Table
		wantKind LoadErrorKind
	}{
		{name: "nil table", table: nil, wantKind: LoadEmpty},
		{name: "ragged rows", table: &Table{Columns: []string{"a", "b"}, Rows: [][]string{{"1"}}}, wantKind: LoadMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession("s1", 0)
			if err := s.Load(teamCSV, false); err != nil {
				t.Fatal(err)
			}

			err := s.SetTable(tt.table)
			var le *LoadError
			if !errors.As(err, &le) || le.Kind != tt.wantKind {
				t.Fatalf("SetTable() error = %v, want %v", err, tt.wantKind)
			}
			if got := len(s.Columns()); got != 3 {
				t.Errorf("len(Columns()) after failed SetTable = %d, want 3", got)
			}
		})
	}
}

func TestCheckBounds(t *testing.T) {
	tests := []struct {
		min, max float64
		wantErr  bool
	}{
		{min: -50, max: 90},
		{min: -100, max: 100},
		{min: 0, max: 0, wantErr: true},
		{min: 10, max: 5, wantErr: true},
		{min: -101, max: 0, wantErr: true},
		{min: 0, max: 100.5, wantErr: true},
	}

	for _, tt := range tests {
		err := CheckBounds(tt.min, tt.max)
		if (err != nil) != tt.wantErr {
			t.Errorf("CheckBounds(%v, %v) error = %v, wantErr %v", tt.min, tt.max, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidBounds) {
			t.Errorf("CheckBounds(%v, %v) error does not wrap ErrInvalidBounds", tt.min, tt.max)
		}
	}
}
