package render

import (
	"bytes"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/JonMunkholm/radial/internal/chart"
)

func drawScene(t *testing.T, template string, legend bool) *chart.Scene {
	t.Helper()

	reg := chart.NewRegistry(chart.StockTemplates())
	tpl, err := reg.Resolve(template)
	if err != nil {
		t.Fatalf("Resolve(%q) error = %v", template, err)
	}

	s := chart.Series{
		Items:  []string{"speed", "grip", "stamina", "focus"},
		Values: []float64{10, 40, 75, -20},
		Groups: []string{"red", "blue", "red", "green"},
	}
	sc := chart.NewScene()
	if err := tpl.Draw(s, sc, chart.Options{ShowLegend: legend, YMin: -50, YMax: 90}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	sc.Title = tpl.Title
	return sc
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "svg", want: FormatSVG},
		{in: " PNG ", want: FormatPNG},
		{in: "gif", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if FormatPNG.ContentType() != "image/png" || FormatSVG.ContentType() != "image/svg+xml" {
		t.Error("unexpected content types")
	}
}

func TestSVG(t *testing.T) {
	sc := drawScene(t, "scatter", true)

	var buf bytes.Buffer
	if err := SVG(&buf, sc, Options{Width: 640, Height: 480}); err != nil {
		t.Fatalf("SVG() error = %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, `width="640"`) || !strings.Contains(out, `height="480"`) {
		t.Error("SVG does not carry the requested size")
	}
	if !strings.Contains(out, "<title>Circular dot scatter</title>") {
		t.Error("SVG has no title element")
	}

	// Four grid rings plus ten dots per item.
	if got, want := strings.Count(out, "<circle"), 4+len(sc.Dots); got != want {
		t.Errorf("circle count = %d, want %d", got, want)
	}
	for _, label := range []string{">red<", ">blue<", ">green<"} {
		if !strings.Contains(out, label) {
			t.Errorf("legend label %s missing", label)
		}
	}
}

func TestSVG_EscapesText(t *testing.T) {
	sc := chart.NewScene()
	sc.SetRadialBounds(0, 1)
	sc.AddText(chart.Text{Text: "<b>&", R: 0.5, Color: chart.MustParseColor("black")})

	var buf bytes.Buffer
	if err := SVG(&buf, sc, Options{}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "<b>&") {
		t.Error("text was not escaped")
	}
}

func TestSVG_RotatedLabels(t *testing.T) {
	sc := drawScene(t, "circular_barchart", false)
	sc.AddText(chart.Text{Theta: 1, R: 40, Text: "tilted", Rotation: 30, Color: chart.MustParseColor("black")})

	var buf bytes.Buffer
	if err := SVG(&buf, sc, Options{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "rotate(-30.00)") {
		t.Error("rotated label has no rotate transform")
	}
	if strings.Contains(buf.String(), ">red<") {
		t.Error("legend drawn while hidden")
	}
}

func TestPNG(t *testing.T) {
	for _, name := range []string{"circular_barchart", "scatter", "basic_radar_chart", "category_spider_chart"} {
		t.Run(name, func(t *testing.T) {
			sc := drawScene(t, name, true)

			var buf bytes.Buffer
			if err := PNG(&buf, sc, Options{Width: 320, Height: 240}); err != nil {
				t.Fatalf("PNG() error = %v", err)
			}

			img, err := png.Decode(&buf)
			if err != nil {
				t.Fatalf("png.Decode() error = %v", err)
			}
			b := img.Bounds()
			if b.Dx() != 320 || b.Dy() != 240 {
				t.Errorf("size = %dx%d, want 320x240", b.Dx(), b.Dy())
			}

			painted := false
			for y := b.Min.Y; y < b.Max.Y && !painted; y += 4 {
				for x := b.Min.X; x < b.Max.X; x += 4 {
					r, g, bl, _ := img.At(x, y).RGBA()
					if r != 0xffff || g != 0xffff || bl != 0xffff {
						painted = true
						break
					}
				}
			}
			if !painted {
				t.Error("image is blank")
			}
		})
	}
}

func TestWrite_NilScene(t *testing.T) {
	for _, f := range []Format{FormatSVG, FormatPNG} {
		if err := Write(&bytes.Buffer{}, nil, f, Options{}); !errors.Is(err, ErrNoScene) {
			t.Errorf("Write(nil, %s) error = %v, want %v", f, err, ErrNoScene)
		}
	}
	if err := Write(&bytes.Buffer{}, chart.NewScene(), Format("bmp"), Options{}); err == nil {
		t.Error("Write(bmp) should fail")
	}
}

func TestLayout(t *testing.T) {
	sc := chart.NewScene()
	l := newLayout(sc, 800, 600)
	if l.cx != 400 || l.cy != 300 {
		t.Errorf("center = (%v, %v), want (400, 300)", l.cx, l.cy)
	}

	sc.Title = "t"
	sc.SetLegend(true, []chart.LegendEntry{{Label: "a"}})
	l = newLayout(sc, 800, 600)
	if l.cx >= 400 {
		t.Errorf("legend should shift the plot left, cx = %v", l.cx)
	}
	if l.cy <= 300 {
		t.Errorf("title should shift the plot down, cy = %v", l.cy)
	}

	x, y := l.at(chart.Point{X: 0, Y: 1})
	if x != l.cx || y != l.cy-l.r {
		t.Errorf("at(0, 1) = (%v, %v), want top of the plot", x, y)
	}
}
