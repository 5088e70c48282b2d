package chart

import (
	"math"
	"testing"
)

func TestSmoothClosed_PassesThroughKnots(t *testing.T) {
	values := []float64{4, 3, 5, 2, 4}
	theta, r, err := SmoothClosed(values, 101)
	if err != nil {
		t.Fatalf("SmoothClosed() error = %v", err)
	}
	if len(theta) != 101 || len(r) != 101 {
		t.Fatalf("len = %d/%d, want 101", len(theta), len(r))
	}
	if theta[0] != 0 || math.Abs(theta[100]-2*math.Pi) > 1e-12 {
		t.Errorf("theta spans %v..%v, want 0..2π", theta[0], theta[100])
	}
	if r[0] != r[100] {
		t.Errorf("curve not closed: first %v, last %v", r[0], r[100])
	}

	// 101 samples over [0, 2π] land exactly on every fifth of the circle.
	for k, v := range values {
		got := r[k*20]
		if math.Abs(got-v) > 1e-9 {
			t.Errorf("r at knot %d = %v, want %v", k, got, v)
		}
	}
}

func TestPeriodicSpline_SmoothAcrossSeam(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{0, 2, -1, 1, 0}
	s, err := NewPeriodicSpline(x, y)
	if err != nil {
		t.Fatalf("NewPeriodicSpline() error = %v", err)
	}

	const h = 1e-6
	slopeStart := (s.At(h) - s.At(0)) / h
	slopeEnd := (s.At(4) - s.At(4-h)) / h
	if math.Abs(slopeStart-slopeEnd) > 1e-3 {
		t.Errorf("slope at 0 = %v, at period end = %v", slopeStart, slopeEnd)
	}
}

func TestPeriodicSpline_Constant(t *testing.T) {
	s, err := NewPeriodicSpline([]float64{0, 2 * math.Pi}, []float64{3, 3})
	if err != nil {
		t.Fatalf("NewPeriodicSpline() error = %v", err)
	}
	for _, tt := range []float64{0, 1, math.Pi, 6} {
		if got := s.At(tt); math.Abs(got-3) > 1e-12 {
			t.Errorf("At(%v) = %v, want 3", tt, got)
		}
	}
}

func TestPeriodicSpline_Errors(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
	}{
		{"open sequence", []float64{0, 1, 2}, []float64{1, 2, 3}},
		{"length mismatch", []float64{0, 1}, []float64{1}},
		{"too short", []float64{0}, []float64{0}},
		{"not increasing", []float64{0, 1, 1}, []float64{1, 2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewPeriodicSpline(tt.x, tt.y); err == nil {
				t.Error("NewPeriodicSpline() error = nil, want error")
			}
		})
	}
}

func TestSpiderPolygons_ClosedAndSparse(t *testing.T) {
	s := Series{
		Items:  []string{"math", "art", "math", "music"},
		Values: []float64{90, 70, 60, 80},
		Groups: []string{"alice", "alice", "bob", "bob"},
	}
	groups, polygons := SpiderPolygons(s)

	if len(groups) != 2 || groups[0] != "alice" || groups[1] != "bob" {
		t.Fatalf("groups = %v, want [alice bob]", groups)
	}

	want := map[string][]float64{
		"alice": {90, 70, 0, 90},
		"bob":   {60, 0, 80, 60},
	}
	for i, g := range groups {
		pts := polygons[i]
		if len(pts) != 4 {
			t.Fatalf("%s: len = %d, want 4", g, len(pts))
		}
		if pts[0] != pts[len(pts)-1] {
			t.Errorf("%s: first %v != last %v", g, pts[0], pts[len(pts)-1])
		}
		for j, p := range pts {
			if p.R != want[g][j] {
				t.Errorf("%s[%d].R = %v, want %v", g, j, p.R, want[g][j])
			}
		}
	}
}

func TestSpiderChart_Render(t *testing.T) {
	r, err := newSpiderChart(Params{Hole: 0.3, CenterText: "scores"})
	if err != nil {
		t.Fatalf("newSpiderChart() error = %v", err)
	}
	sc := NewScene()
	s := Series{
		Items:  []string{"a", "b", "c", "a"},
		Values: []float64{1, 2, 3, 4},
		Groups: []string{"g1", "g1", "g1", "g2"},
	}
	if err := r.Render(s, sc, Options{ShowLegend: true}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if len(sc.Polygons) != 2 {
		t.Fatalf("len(Polygons) = %d, want 2", len(sc.Polygons))
	}
	if sc.Direction != -1 || sc.ThetaOffset != math.Pi/2 {
		t.Errorf("orientation = (%v, %v), want (π/2, -1)", sc.ThetaOffset, sc.Direction)
	}
	if len(sc.Disks) != 1 || !sc.Disks[0].Front {
		t.Errorf("Disks = %+v, want one front disk", sc.Disks)
	}
	if sc.CenterText != "scores" {
		t.Errorf("CenterText = %q, want %q", sc.CenterText, "scores")
	}
	if got := Hex(sc.Polygons[0].Fill); got != SpiderPalette[0] {
		t.Errorf("g1 fill = %s, want %s", got, SpiderPalette[0])
	}
}

func TestSmoothRadar_Render(t *testing.T) {
	r, err := newSmoothRadar(Params{Samples: 50})
	if err != nil {
		t.Fatalf("newSmoothRadar() error = %v", err)
	}
	sc := NewScene()
	s := Series{
		Items:  []string{"speed", "power", "wit"},
		Values: []float64{4, 3, 5},
		Groups: []string{"hero", "hero", "hero"},
	}
	if err := r.Render(s, sc, Options{ShowLegend: true}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(sc.Polygons) != 1 || len(sc.Polygons[0].Points) != 50 {
		t.Fatalf("Polygons = %d, want one with 50 points", len(sc.Polygons))
	}
	pts := sc.Polygons[0].Points
	if pts[0].R != pts[49].R {
		t.Errorf("curve not closed: %v vs %v", pts[0], pts[49])
	}
	if len(sc.Texts) != 3 {
		t.Errorf("len(Texts) = %d, want 3 category labels", len(sc.Texts))
	}
	if len(sc.Legend) != 1 {
		t.Errorf("len(Legend) = %d, want 1", len(sc.Legend))
	}
}
