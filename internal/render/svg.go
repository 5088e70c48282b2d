package render

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/JonMunkholm/radial/internal/chart"
)

const fontFamily = "font-family:DejaVu Sans,Arial,sans-serif"

// SVG writes sc as an SVG document.
func SVG(w io.Writer, sc *chart.Scene, o Options) error {
	if sc == nil {
		return ErrNoScene
	}
	width, height := o.size()

	bw := bufio.NewWriter(w)
	canvas := svg.New(bw)
	canvas.Start(int(width), int(height))
	if sc.Title != "" {
		canvas.Title(sc.Title)
	}
	canvas.Gstyle(fontFamily)

	paint(sc, &svgPainter{canvas: canvas}, newLayout(sc, width, height))

	canvas.Gend()
	canvas.End()
	return bw.Flush()
}

type svgPainter struct {
	canvas *svg.SVG
}

func (p *svgPainter) circle(x, y, r float64, fill, stroke color.NRGBA, width float64) {
	p.canvas.Circle(px(x), px(y), px(r), shapeStyle(fill, stroke, width))
}

func (p *svgPainter) polygon(xs, ys []float64, fill, stroke color.NRGBA, width float64) {
	if len(xs) < 3 {
		return
	}
	p.canvas.Polygon(pxs(xs), pxs(ys), shapeStyle(fill, stroke, width))
}

func (p *svgPainter) polyline(xs, ys []float64, stroke color.NRGBA, width float64) {
	if len(xs) < 2 || stroke.A == 0 || width <= 0 {
		return
	}
	p.canvas.Polyline(pxs(xs), pxs(ys), shapeStyle(none, stroke, width))
}

func (p *svgPainter) text(x, y float64, s string, size, rotation float64, align chart.Align, c color.NRGBA) {
	if s == "" || c.A == 0 {
		return
	}
	style := fmt.Sprintf("font-size:%.1fpx;text-anchor:%s;dominant-baseline:middle;%s",
		size, anchor(align), paintStyle("fill", c))
	if rotation == 0 {
		p.canvas.Text(px(x), px(y), s, style)
		return
	}
	// SVG rotates clockwise with y pointing down.
	p.canvas.Gtransform(fmt.Sprintf("translate(%d,%d) rotate(%.2f)", px(x), px(y), -rotation))
	p.canvas.Text(0, 0, s, style)
	p.canvas.Gend()
}

func anchor(a chart.Align) string {
	switch a {
	case chart.AlignLeft:
		return "start"
	case chart.AlignRight:
		return "end"
	default:
		return "middle"
	}
}

func shapeStyle(fill, stroke color.NRGBA, width float64) string {
	s := paintStyle("fill", fill)
	if stroke.A > 0 && width > 0 {
		s += ";" + paintStyle("stroke", stroke) + fmt.Sprintf(";stroke-width:%.2f", width)
	}
	return s
}

// paintStyle formats a fill or stroke property with its opacity.
func paintStyle(prop string, c color.NRGBA) string {
	if c.A == 0 {
		return prop + ":none"
	}
	s := fmt.Sprintf("%s:rgb(%d,%d,%d)", prop, c.R, c.G, c.B)
	if c.A < 0xff {
		s += fmt.Sprintf(";%s-opacity:%.3f", prop, float64(c.A)/0xff)
	}
	return s
}

func px(v float64) int {
	return int(math.Round(v))
}

func pxs(vs []float64) []int {
	out := make([]int, len(vs))
	for i, v := range vs {
		out[i] = px(v)
	}
	return out
}
