// Package render turns a chart.Scene into an image.
//
// Both backends share one paint pass (see paint) over a small painter
// interface, so SVG and PNG output differ only in how primitives are
// emitted. Device coordinates have their origin at the top-left corner with
// y pointing down.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/JonMunkholm/radial/internal/chart"
)

// Format is an output image format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat accepts "svg" or "png" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	}
	return "", fmt.Errorf("unsupported image format %q", s)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Default image size in pixels.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// ErrNoScene is returned when there is nothing to draw.
var ErrNoScene = errors.New("no chart to draw")

// Options control the output image.
type Options struct {
	Width  int
	Height int
}

func (o Options) size() (w, h float64) {
	wi, hi := o.Width, o.Height
	if wi <= 0 {
		wi = DefaultWidth
	}
	if hi <= 0 {
		hi = DefaultHeight
	}
	return float64(wi), float64(hi)
}

// Write renders sc to w in format f.
func Write(w io.Writer, sc *chart.Scene, f Format, o Options) error {
	switch f {
	case FormatSVG:
		return SVG(w, sc, o)
	case FormatPNG:
		return PNG(w, sc, o)
	}
	return fmt.Errorf("unsupported image format %q", f)
}

// painter draws primitives in device coordinates. Fully transparent colors
// are skipped by the implementations.
type painter interface {
	circle(x, y, r float64, fill, stroke color.NRGBA, width float64)
	polygon(xs, ys []float64, fill, stroke color.NRGBA, width float64)
	polyline(xs, ys []float64, stroke color.NRGBA, width float64)
	text(x, y float64, s string, size, rotation float64, align chart.Align, c color.NRGBA)
}

// Layout constants in pixels.
const (
	titleHeight  = 32.0
	legendWidth  = 150.0
	legendRow    = 22.0
	plotFraction = 0.40
)

var (
	white     = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	gridColor = color.NRGBA{R: 0xb0, G: 0xb0, B: 0xb0, A: 0xff}
	inkColor  = color.NRGBA{R: 0x26, G: 0x26, B: 0x26, A: 0xff}
	none      = color.NRGBA{}
)

// layout places the polar plot, title and legend on the device.
type layout struct {
	w, h   float64
	cx, cy float64
	r      float64
	legend bool
}

func newLayout(sc *chart.Scene, w, h float64) layout {
	l := layout{w: w, h: h, legend: sc.ShowLegend && len(sc.Legend) > 0}

	top := 0.0
	if sc.Title != "" {
		top = titleHeight
	}
	plotW := w
	if l.legend {
		plotW = math.Max(w-math.Min(legendWidth, w/3), w/2)
	}
	plotH := h - top

	l.cx = plotW / 2
	l.cy = top + plotH/2
	l.r = plotFraction * math.Min(plotW, plotH)
	return l
}

// at converts plot units to device coordinates.
func (l layout) at(p chart.Point) (x, y float64) {
	return l.cx + p.X*l.r, l.cy - p.Y*l.r
}

// scale converts a mark size in points to pixels, relative to the plot size.
func (l layout) scale(size float64) float64 {
	return size * l.r / 200
}

func (l layout) fontSize(size float64) float64 {
	if size <= 0 {
		size = 10
	}
	return math.Max(8, size*l.r/110)
}

// paint draws sc in back-to-front order: background disks, grid, bars,
// polygons, dots, labels, front disks, then the title and legend.
func paint(sc *chart.Scene, p painter, l layout) {
	p.polygon([]float64{0, l.w, l.w, 0}, []float64{0, 0, l.h, l.h}, white, none, 0)

	for _, d := range sc.Disks {
		if !d.Front {
			p.circle(l.cx, l.cy, d.Radius*l.r, d.Fill, none, 0)
		}
	}

	paintGrid(sc, p, l)

	for _, b := range sc.Bars {
		xs, ys := l.points(sc.BarOutline(b, 24))
		p.polygon(xs, ys, b.Fill, b.Edge, b.EdgeWidth)
	}

	for _, pg := range sc.Polygons {
		pts := make([]chart.Point, len(pg.Points))
		for i, pp := range pg.Points {
			pts[i] = sc.Project(pp)
		}
		xs, ys := l.points(pts)
		if pg.Fill.A > 0 {
			p.polygon(xs, ys, pg.Fill, none, 0)
		}
		p.polyline(xs, ys, pg.Stroke, pg.StrokeWidth)
	}

	for _, d := range sc.Dots {
		x, y := l.at(sc.Project(chart.PolarPoint{Theta: d.Theta, R: d.R}))
		p.circle(x, y, math.Max(1, l.scale(d.Size)), d.Fill, d.Edge, d.EdgeWidth)
	}

	for _, t := range sc.Texts {
		var pt chart.Point
		if t.Outside {
			pt = sc.ProjectOutside(t.Theta)
		} else {
			pt = sc.Project(chart.PolarPoint{Theta: t.Theta, R: t.R})
		}
		x, y := l.at(pt)
		p.text(x, y, t.Text, l.fontSize(t.Size), t.Rotation, t.Align, t.Color)
	}

	for _, d := range sc.Disks {
		if d.Front {
			p.circle(l.cx, l.cy, d.Radius*l.r, d.Fill, none, 0)
		}
	}

	if sc.CenterText != "" {
		p.text(l.cx, l.cy, sc.CenterText, l.fontSize(12), 0, chart.AlignCenter, inkColor)
	}
	if sc.Title != "" {
		p.text(l.w/2, titleHeight/2, sc.Title, 16, 0, chart.AlignCenter, inkColor)
	}
	if l.legend {
		paintLegend(sc.Legend, p, l)
	}
}

// paintGrid draws four rings with their radius values and eight spokes.
func paintGrid(sc *chart.Scene, p painter, l layout) {
	for i := 1; i <= 4; i++ {
		rho := float64(i) / 4
		p.circle(l.cx, l.cy, rho*l.r, none, gridColor, 0.6)

		v := sc.RMin + rho*(sc.RMax-sc.RMin)
		a := sc.ScreenAngle(math.Pi / 8)
		x, y := l.at(chart.Point{X: rho * math.Cos(a), Y: rho * math.Sin(a)})
		p.text(x, y, fmt.Sprintf("%g", round(v)), 9, 0, chart.AlignLeft, gridColor)
	}
	for i := 0; i < 8; i++ {
		a := float64(i) * math.Pi / 4
		x, y := l.at(chart.Point{X: math.Cos(a), Y: math.Sin(a)})
		p.polyline([]float64{l.cx, x}, []float64{l.cy, y}, gridColor, 0.6)
	}
}

func paintLegend(entries []chart.LegendEntry, p painter, l layout) {
	x := l.w - math.Min(legendWidth, l.w/3) + 12
	y := l.cy - float64(len(entries))*legendRow/2
	for _, e := range entries {
		p.polygon(
			[]float64{x, x + 12, x + 12, x},
			[]float64{y, y, y + 12, y + 12},
			e.Color, none, 0,
		)
		p.text(x+18, y+6, e.Label, 11, 0, chart.AlignLeft, inkColor)
		y += legendRow
	}
}

func (l layout) points(pts []chart.Point) (xs, ys []float64) {
	xs = make([]float64, len(pts))
	ys = make([]float64, len(pts))
	for i, pt := range pts {
		xs[i], ys[i] = l.at(pt)
	}
	return xs, ys
}

// round trims floating point noise from grid labels.
func round(v float64) float64 {
	return math.Round(v*100) / 100
}
