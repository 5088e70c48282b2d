package chart

import (
	"image/color"
	"math"
)

// Align is the horizontal anchor of a text mark.
type Align int

const (
	AlignCenter Align = iota
	AlignLeft
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	default:
		return "center"
	}
}

// PolarPoint is a point in data coordinates: an angle in radians and a radius
// in value units.
type PolarPoint struct {
	Theta float64
	R     float64
}

// Point is a point in plot-unit coordinates: the plot disk has radius 1,
// centered at the origin, y pointing up.
type Point struct {
	X, Y float64
}

// Disk is a filled circle centered on the pole. Radius is a fraction of the
// plot radius so disks do not depend on the radial bounds.
type Disk struct {
	Radius float64
	Fill   color.NRGBA
	// Front disks are drawn above data marks.
	Front bool
}

// Bar is an annular sector centered on Theta.
type Bar struct {
	Theta     float64
	Width     float64
	Bottom    float64
	Height    float64
	Fill      color.NRGBA
	Edge      color.NRGBA
	EdgeWidth float64
}

// Dot is a filled circle at a polar position. Size is its radius in points.
type Dot struct {
	Theta     float64
	R         float64
	Size      float64
	Fill      color.NRGBA
	Edge      color.NRGBA
	EdgeWidth float64
	Filled    bool
	Group     string
}

// Polygon is a closed or open polyline in polar coordinates.
type Polygon struct {
	Points      []PolarPoint
	Fill        color.NRGBA
	Stroke      color.NRGBA
	StrokeWidth float64
	Label       string
}

// Text is a label at a polar position. Rotation is in degrees,
// counterclockwise. Outside places the label just beyond the plot edge,
// ignoring R.
type Text struct {
	Theta    float64
	R        float64
	Text     string
	Rotation float64
	Align    Align
	Size     float64
	Color    color.NRGBA
	Outside  bool
}

// LegendEntry is one row of the legend.
type LegendEntry struct {
	Label string
	Color color.NRGBA
}

// Scene is the shared drawing surface all renderers fill. It retains the
// marks so the radial bounds can be set after drawing, and the backends can
// turn it into an image later.
type Scene struct {
	// ThetaOffset rotates angle zero, in radians counterclockwise from east.
	ThetaOffset float64
	// Direction is 1 for counterclockwise angles, -1 for clockwise.
	Direction float64

	RMin, RMax float64

	Title      string
	CenterText string

	Disks    []Disk
	Bars     []Bar
	Polygons []Polygon
	Dots     []Dot
	Texts    []Text

	ShowLegend bool
	Legend     []LegendEntry
}

// NewScene returns a cleared scene.
func NewScene() *Scene {
	sc := &Scene{}
	sc.Clear()
	return sc
}

// Clear drops every mark and restores the default orientation and bounds.
func (sc *Scene) Clear() {
	*sc = Scene{
		Direction: 1,
		RMin:      0,
		RMax:      1,
	}
}

// Empty reports whether the scene holds no marks.
func (sc *Scene) Empty() bool {
	return len(sc.Disks) == 0 && len(sc.Bars) == 0 && len(sc.Polygons) == 0 &&
		len(sc.Dots) == 0 && len(sc.Texts) == 0 && len(sc.Legend) == 0
}

// SetRadialBounds sets the radius shown at the pole and at the plot edge.
func (sc *Scene) SetRadialBounds(min, max float64) {
	sc.RMin, sc.RMax = min, max
}

// AddDisk appends a disk.
func (sc *Scene) AddDisk(d Disk) { sc.Disks = append(sc.Disks, d) }

// AddBar appends a bar.
func (sc *Scene) AddBar(b Bar) { sc.Bars = append(sc.Bars, b) }

// AddPolygon appends a polygon.
func (sc *Scene) AddPolygon(p Polygon) { sc.Polygons = append(sc.Polygons, p) }

// AddDot appends a dot.
func (sc *Scene) AddDot(d Dot) { sc.Dots = append(sc.Dots, d) }

// AddText appends a text label.
func (sc *Scene) AddText(t Text) { sc.Texts = append(sc.Texts, t) }

// SetLegend records the legend entries and whether they are shown.
func (sc *Scene) SetLegend(show bool, entries []LegendEntry) {
	sc.ShowLegend = show
	if show {
		sc.Legend = entries
	} else {
		sc.Legend = nil
	}
}

// Rho maps a data radius to a fraction of the plot radius, clamped to [0, 1].
func (sc *Scene) Rho(r float64) float64 {
	span := sc.RMax - sc.RMin
	if span <= 0 || math.IsNaN(r) {
		return 0
	}
	rho := (r - sc.RMin) / span
	return math.Max(0, math.Min(1, rho))
}

// ScreenAngle converts a data angle to an angle counterclockwise from east.
func (sc *Scene) ScreenAngle(theta float64) float64 {
	return sc.ThetaOffset + sc.Direction*theta
}

// Project maps a polar data point into plot-unit coordinates.
func (sc *Scene) Project(p PolarPoint) Point {
	return sc.projectRho(p.Theta, sc.Rho(p.R))
}

// ProjectOutside maps an angle onto a ring slightly beyond the plot edge,
// used for outside labels.
func (sc *Scene) ProjectOutside(theta float64) Point {
	return sc.projectRho(theta, 1.08)
}

func (sc *Scene) projectRho(theta, rho float64) Point {
	a := sc.ScreenAngle(theta)
	return Point{X: rho * math.Cos(a), Y: rho * math.Sin(a)}
}

// BarOutline approximates the sector of b with a closed polygon in plot
// units. steps is the number of segments per arc.
func (sc *Scene) BarOutline(b Bar, steps int) []Point {
	if steps < 1 {
		steps = 1
	}
	lo, hi := b.Bottom, b.Bottom+b.Height
	if hi < lo {
		lo, hi = hi, lo
	}
	inner, outer := sc.Rho(lo), sc.Rho(hi)
	start, end := b.Theta-b.Width/2, b.Theta+b.Width/2

	pts := make([]Point, 0, 2*(steps+1))
	for i := 0; i <= steps; i++ {
		t := start + (end-start)*float64(i)/float64(steps)
		pts = append(pts, sc.projectRho(t, outer))
	}
	for i := steps; i >= 0; i-- {
		t := start + (end-start)*float64(i)/float64(steps)
		pts = append(pts, sc.projectRho(t, inner))
	}
	return pts
}
