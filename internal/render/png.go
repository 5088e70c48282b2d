package render

import (
	"image/color"
	"io"
	"math"
	"sync"

	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/font/liberation"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/JonMunkholm/radial/internal/chart"
)

// pngDPI makes one point one pixel.
const pngDPI = 72

var registerFonts sync.Once

var labelFont = font.Font{Typeface: "Liberation", Variant: "Sans"}

// PNG rasterizes sc with the gonum/plot image canvas.
func PNG(w io.Writer, sc *chart.Scene, o Options) error {
	if sc == nil {
		return ErrNoScene
	}
	registerFonts.Do(func() {
		font.DefaultCache.Add(liberation.Collection())
	})

	width, height := o.size()
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(width), vg.Length(height)),
		vgimg.UseDPI(pngDPI),
		vgimg.UseBackgroundColor(color.White),
	)

	paint(sc, &vgPainter{c: c, h: height}, newLayout(sc, width, height))

	_, err := vgimg.PngCanvas{Canvas: c}.WriteTo(w)
	return err
}

// vgPainter draws on a vg canvas, whose origin is the bottom-left corner.
type vgPainter struct {
	c vg.Canvas
	h float64
}

func (p *vgPainter) pt(x, y float64) vg.Point {
	return vg.Point{X: vg.Length(x), Y: vg.Length(p.h - y)}
}

func (p *vgPainter) circle(x, y, r float64, fill, stroke color.NRGBA, width float64) {
	if r <= 0 {
		return
	}
	var path vg.Path
	path.Move(p.pt(x+r, y))
	path.Arc(p.pt(x, y), vg.Length(r), 0, 2*math.Pi)
	path.Close()
	p.draw(path, fill, stroke, width)
}

func (p *vgPainter) polygon(xs, ys []float64, fill, stroke color.NRGBA, width float64) {
	if len(xs) < 3 {
		return
	}
	path := p.path(xs, ys)
	path.Close()
	p.draw(path, fill, stroke, width)
}

func (p *vgPainter) polyline(xs, ys []float64, stroke color.NRGBA, width float64) {
	if len(xs) < 2 {
		return
	}
	p.draw(p.path(xs, ys), none, stroke, width)
}

func (p *vgPainter) path(xs, ys []float64) vg.Path {
	var path vg.Path
	path.Move(p.pt(xs[0], ys[0]))
	for i := 1; i < len(xs); i++ {
		path.Line(p.pt(xs[i], ys[i]))
	}
	return path
}

func (p *vgPainter) draw(path vg.Path, fill, stroke color.NRGBA, width float64) {
	if fill.A > 0 {
		p.c.SetColor(fill)
		p.c.Fill(path)
	}
	if stroke.A > 0 && width > 0 {
		p.c.SetColor(stroke)
		p.c.SetLineWidth(vg.Length(width))
		p.c.Stroke(path)
	}
}

func (p *vgPainter) text(x, y float64, s string, size, rotation float64, align chart.Align, c color.NRGBA) {
	if s == "" || c.A == 0 {
		return
	}
	face := font.DefaultCache.Lookup(labelFont, vg.Length(size))
	ext := face.Extents()

	dx := vg.Length(0)
	switch align {
	case chart.AlignCenter:
		dx = -face.Width(s) / 2
	case chart.AlignRight:
		dx = -face.Width(s)
	}
	// Center the glyph box vertically on the anchor.
	dy := -(ext.Ascent - ext.Descent) / 2

	p.c.Push()
	p.c.Translate(p.pt(x, y))
	if rotation != 0 {
		p.c.Rotate(rotation * math.Pi / 180)
	}
	p.c.SetColor(c)
	p.c.FillString(face, vg.Point{X: dx, Y: dy}, s)
	p.c.Pop()
}
