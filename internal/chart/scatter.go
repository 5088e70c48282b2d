package chart

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DotLevels is the number of dot positions drawn at every angle of the
// scatter chart.
const DotLevels = 10

// Scatter defaults. Values are bucketed over DefaultValueRange while dots are
// placed on DefaultRadiusLevels, which sits inside the default radial bounds.
var (
	DefaultValueRange   = [2]float64{-50, 100}
	DefaultRadiusLevels = [2]float64{-20, 90}
)

// FilledDots returns how many of the DotLevels dots are filled for v when
// [lo, hi] is split into DotLevels equal buckets. The result is clamped to
// [0, DotLevels]; NaN fills nothing.
func FilledDots(v, lo, hi float64) int {
	if math.IsNaN(v) || hi <= lo {
		return 0
	}
	bucket := (hi - lo) / DotLevels
	n := math.Floor((v - lo) / bucket)
	switch {
	case n < 0:
		return 0
	case n > DotLevels:
		return DotLevels
	}
	return int(n)
}

type scatterChart struct {
	palette    []string
	lo, hi     float64
	radii      []float64
	dotSize    float64
	emptyColor string
	edgeColor  string
}

func newScatterChart(p Params) (Renderer, error) {
	sc := &scatterChart{
		palette:    Tab10,
		lo:         DefaultValueRange[0],
		hi:         DefaultValueRange[1],
		dotSize:    5.6,
		emptyColor: "white",
		edgeColor:  "lightgray",
	}
	if len(p.Palette) > 0 {
		sc.palette = p.Palette
	}
	if len(p.ValueRange) > 0 {
		if len(p.ValueRange) != 2 || p.ValueRange[0] >= p.ValueRange[1] {
			return nil, fmt.Errorf("value_range must be [min, max] with min < max, got %v", p.ValueRange)
		}
		sc.lo, sc.hi = p.ValueRange[0], p.ValueRange[1]
	}

	levels := DefaultRadiusLevels[:]
	if len(p.RadiusLevels) > 0 {
		if len(p.RadiusLevels) != 2 || p.RadiusLevels[0] >= p.RadiusLevels[1] {
			return nil, fmt.Errorf("radius_levels must be [inner, outer] with inner < outer, got %v", p.RadiusLevels)
		}
		levels = p.RadiusLevels
	}
	sc.radii = floats.Span(make([]float64, DotLevels), levels[0], levels[1])

	if p.DotSize > 0 {
		sc.dotSize = p.DotSize
	}
	if p.EmptyColor != "" {
		sc.emptyColor = p.EmptyColor
	}
	if p.EdgeColor != "" {
		sc.edgeColor = p.EdgeColor
	}
	for _, c := range append([]string{sc.emptyColor, sc.edgeColor}, sc.palette...) {
		if _, err := ParseColor(c); err != nil {
			return nil, err
		}
	}
	return sc, nil
}

func (c *scatterChart) GroupColors(groups []string, cm ColorMap) (GroupColors, error) {
	return ResolveColors(groups, cm, c.palette)
}

func (c *scatterChart) Render(s Series, sc *Scene, opts Options) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.Len() == 0 {
		return ErrNoData
	}

	colors, err := c.GroupColors(s.Groups, opts.Colors)
	if err != nil {
		return err
	}
	empty := MustParseColor(c.emptyColor)
	edge := MustParseColor(c.edgeColor)

	sc.SetRadialBounds(-50, 100)
	angles := EvenAngles(s.Len())
	for i, v := range s.Values {
		filled := FilledDots(v, c.lo, c.hi)
		for level, r := range c.radii {
			d := Dot{
				Theta:     angles[i],
				R:         r,
				Size:      c.dotSize,
				Fill:      empty,
				Edge:      edge,
				EdgeWidth: 0.5,
			}
			if level < filled {
				d.Fill = colors.Of(s.Groups[i])
				d.Filled = true
				d.Group = s.Groups[i]
			}
			sc.AddDot(d)
		}
	}

	sc.SetLegend(opts.ShowLegend, colors.Legend())
	return nil
}
