package chart

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// PeriodicSpline is a cubic spline through closed knots: the curve and its
// first two derivatives are continuous across the last knot back to the first.
type PeriodicSpline struct {
	x, y []float64
	m    []float64 // second derivatives at the knots
}

// NewPeriodicSpline fits a periodic cubic spline. x must be strictly
// increasing and y[len(y)-1] must equal y[0].
func NewPeriodicSpline(x, y []float64) (*PeriodicSpline, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("spline: %d knots but %d values", len(x), len(y))
	}
	if len(x) < 2 {
		return nil, errors.New("spline: need at least 2 knots")
	}
	last := len(x) - 1
	if y[last] != y[0] {
		return nil, errors.New("spline: sequence is not closed")
	}

	h := make([]float64, last)
	for i := range h {
		h[i] = x[i+1] - x[i]
		if h[i] <= 0 {
			return nil, fmt.Errorf("spline: knots not increasing at %d", i)
		}
	}

	// Cyclic tridiagonal system for M_0..M_{k-1}, M_k wraps to M_0.
	k := last
	a := mat.NewDense(k, k, nil)
	b := mat.NewVecDense(k, nil)
	for i := 0; i < k; i++ {
		prev := (i - 1 + k) % k
		next := (i + 1) % k
		hp, hi := h[prev], h[i]
		a.Set(i, prev, a.At(i, prev)+hp)
		a.Set(i, i, a.At(i, i)+2*(hp+hi))
		a.Set(i, next, a.At(i, next)+hi)
		b.SetVec(i, 6*((y[i+1]-y[i])/hi-(y[i]-y[prevY(i, k)])/hp))
	}

	var sol mat.VecDense
	if err := sol.SolveVec(a, b); err != nil {
		return nil, fmt.Errorf("spline: %w", err)
	}

	m := make([]float64, len(x))
	for i := 0; i < k; i++ {
		m[i] = sol.AtVec(i)
	}
	m[k] = m[0]

	return &PeriodicSpline{x: x, y: y, m: m}, nil
}

// prevY is the index of the knot value preceding i on the closed sequence,
// skipping the duplicated closing knot.
func prevY(i, k int) int {
	if i == 0 {
		return k - 1
	}
	return i - 1
}

// At evaluates the spline at t. Outside the knot range the end segments are
// extended.
func (s *PeriodicSpline) At(t float64) float64 {
	i := 0
	for i < len(s.x)-2 && t > s.x[i+1] {
		i++
	}
	x0, x1 := s.x[i], s.x[i+1]
	h := x1 - x0
	l, r := x1-t, t-x0
	return s.m[i]*l*l*l/(6*h) + s.m[i+1]*r*r*r/(6*h) +
		(s.y[i]/h-s.m[i]*h/6)*l + (s.y[i+1]/h-s.m[i+1]*h/6)*r
}

// SmoothClosed closes values over evenly spaced angles and samples a periodic
// cubic spline at n points over [0, 2π]. The last sample equals the first.
func SmoothClosed(values []float64, n int) (theta, r []float64, err error) {
	if len(values) == 0 {
		return nil, nil, ErrNoData
	}
	if n < 2 {
		return nil, nil, fmt.Errorf("need at least 2 samples, got %d", n)
	}

	angles := append(EvenAngles(len(values)), 2*math.Pi)
	closed := append(append([]float64(nil), values...), values[0])

	spline, err := NewPeriodicSpline(angles, closed)
	if err != nil {
		return nil, nil, err
	}

	theta = floats.Span(make([]float64, n), 0, 2*math.Pi)
	r = make([]float64, n)
	for i, t := range theta {
		r[i] = spline.At(t)
	}
	r[n-1] = r[0]
	return theta, r, nil
}

type smoothRadar struct {
	palette []string
	samples int
	alpha   float64
}

func newSmoothRadar(p Params) (Renderer, error) {
	sr := &smoothRadar{palette: Tab10, samples: 100, alpha: 0.25}
	if len(p.Palette) > 0 {
		sr.palette = p.Palette
	}
	if p.Samples < 0 || p.Samples == 1 {
		return nil, fmt.Errorf("samples must be at least 2, got %d", p.Samples)
	}
	if p.Samples > 0 {
		sr.samples = p.Samples
	}
	if p.Alpha < 0 || p.Alpha > 1 {
		return nil, fmt.Errorf("alpha must be in [0, 1], got %g", p.Alpha)
	}
	if p.Alpha > 0 {
		sr.alpha = p.Alpha
	}
	return sr, nil
}

// Render draws one smoothed polygon over the items. Every row is a category
// and the color is the one of the first group.
func (sr *smoothRadar) GroupColors(groups []string, cm ColorMap) (GroupColors, error) {
	return ResolveColors(groups, cm, sr.palette)
}

func (sr *smoothRadar) Render(s Series, sc *Scene, opts Options) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.Len() == 0 {
		return ErrNoData
	}

	colors, err := sr.GroupColors(s.Groups, opts.Colors)
	if err != nil {
		return err
	}

	theta, r, err := SmoothClosed(s.Values, sr.samples)
	if err != nil {
		return err
	}

	c := colors.Of(s.Groups[0])
	pts := make([]PolarPoint, len(theta))
	for i := range theta {
		pts[i] = PolarPoint{Theta: theta[i], R: r[i]}
	}
	sc.AddPolygon(Polygon{
		Points:      pts,
		Fill:        WithAlpha(c, sr.alpha),
		Stroke:      c,
		StrokeWidth: 2,
		Label:       s.Groups[0],
	})

	for i, angle := range EvenAngles(s.Len()) {
		sc.AddText(Text{
			Theta:   angle,
			Text:    s.Items[i],
			Size:    8,
			Color:   MustParseColor("#333333"),
			Outside: true,
		})
	}

	sc.SetRadialBounds(0, floats.Max(s.Values)+1)
	sc.SetLegend(opts.ShowLegend, colors.Legend()[:1])
	return nil
}

// SpiderPolygons builds one closed polygon per group over the subjects
// (distinct items, first seen). A (group, subject) pair without a row scores
// zero; when a pair repeats, the last row wins.
func SpiderPolygons(s Series) (groups []string, polygons [][]PolarPoint) {
	subjects := Distinct(s.Items)
	groups = Distinct(s.Groups)

	scores := make(map[string]map[string]float64, len(groups))
	for i, g := range s.Groups {
		if scores[g] == nil {
			scores[g] = make(map[string]float64)
		}
		scores[g][s.Items[i]] = s.Values[i]
	}

	angles := EvenAngles(len(subjects))
	polygons = make([][]PolarPoint, len(groups))
	for gi, g := range groups {
		pts := make([]PolarPoint, 0, len(subjects)+1)
		for si, subj := range subjects {
			pts = append(pts, PolarPoint{Theta: angles[si], R: scores[g][subj]})
		}
		pts = append(pts, pts[0])
		polygons[gi] = pts
	}
	return groups, polygons
}

type spiderChart struct {
	palette    []string
	alpha      float64
	hole       float64
	centerText string
}

func newSpiderChart(p Params) (Renderer, error) {
	sp := &spiderChart{palette: SpiderPalette, alpha: 1}
	if len(p.Palette) > 0 {
		sp.palette = p.Palette
	}
	if p.Alpha < 0 || p.Alpha > 1 {
		return nil, fmt.Errorf("alpha must be in [0, 1], got %g", p.Alpha)
	}
	if p.Alpha > 0 {
		sp.alpha = p.Alpha
	}
	if p.Hole < 0 || p.Hole >= 1 {
		return nil, fmt.Errorf("hole must be in [0, 1), got %g", p.Hole)
	}
	sp.hole = p.Hole
	sp.centerText = p.CenterText
	return sp, nil
}

func (sp *spiderChart) GroupColors(groups []string, cm ColorMap) (GroupColors, error) {
	return ResolveColors(groups, cm, sp.palette)
}

func (sp *spiderChart) Render(s Series, sc *Scene, opts Options) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.Len() == 0 {
		return ErrNoData
	}

	colors, err := sp.GroupColors(s.Groups, opts.Colors)
	if err != nil {
		return err
	}

	sc.ThetaOffset = math.Pi / 2
	sc.Direction = -1

	groups, polygons := SpiderPolygons(s)
	for i, g := range groups {
		c := colors.Of(g)
		sc.AddPolygon(Polygon{
			Points: polygons[i],
			Fill:   WithAlpha(c, sp.alpha),
			Stroke: c,
			Label:  g,
		})
	}

	if sp.hole > 0 {
		sc.AddDisk(Disk{Radius: sp.hole, Fill: MustParseColor("white"), Front: true})
	}
	sc.CenterText = sp.centerText

	sc.SetLegend(opts.ShowLegend, colors.Legend())
	return nil
}
