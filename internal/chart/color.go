package chart

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ColorMap maps a group label to a color string ("#rrggbb", "#rgb",
// "#rrggbbaa" or a CSS color name).
type ColorMap map[string]string

// Clone returns a shallow copy of m. A nil map clones to an empty map.
func (m ColorMap) Clone() ColorMap {
	out := make(ColorMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Palettes used when a template does not declare its own.
var (
	// BarPalette is the stock palette of the circular bar chart.
	BarPalette = []string{"#a8e6cf", "#dcedc1", "#ffd3b6", "#ffdca6", "#f2aeae", "#dbdcff"}

	// Tab10 is the ten-color categorical palette used by the scatter and radar
	// charts and by the session color chooser.
	Tab10 = []string{
		"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
		"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
	}

	// SpiderPalette is the stock palette of the grouped spider chart.
	SpiderPalette = []string{"#665191", "#a05195", "#d45087", "#f95d6a", "#ff7c43", "#ffa600"}
)

// ParseColor parses a hex color or a CSS color name.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.NRGBA{}, fmt.Errorf("invalid color: empty")
	}

	if !strings.HasPrefix(s, "#") {
		c, ok := colornames.Map[strings.ToLower(s)]
		if !ok {
			return color.NRGBA{}, fmt.Errorf("invalid color: %q", s)
		}
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}

	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color: %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color: %q", s)
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// MustParseColor is like ParseColor but panics on error. Only for constants.
func MustParseColor(s string) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex formats c as "#rrggbb", appending the alpha byte when it is not opaque.
func Hex(c color.NRGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// GroupColors is the resolved color of every distinct group, in first-seen order.
type GroupColors struct {
	Order  []string
	Colors map[string]color.NRGBA
}

// Of returns the color of group g.
func (gc GroupColors) Of(g string) color.NRGBA {
	return gc.Colors[g]
}

// Legend returns one legend entry per group in first-seen order.
func (gc GroupColors) Legend() []LegendEntry {
	entries := make([]LegendEntry, len(gc.Order))
	for i, g := range gc.Order {
		entries[i] = LegendEntry{Label: g, Color: gc.Colors[g]}
	}
	return entries
}

// ResolveColors assigns a color to every distinct group of groups.
// Explicit entries of cm win; the rest are taken from palette by the group's
// position in first-seen order. Invalid explicit colors are an error.
func ResolveColors(groups []string, cm ColorMap, palette []string) (GroupColors, error) {
	order := Distinct(groups)
	gc := GroupColors{Order: order, Colors: make(map[string]color.NRGBA, len(order))}

	for i, g := range order {
		spec, ok := cm[g]
		if !ok {
			if len(palette) == 0 {
				return GroupColors{}, fmt.Errorf("no palette to color group %q", g)
			}
			spec = palette[i%len(palette)]
		}
		c, err := ParseColor(spec)
		if err != nil {
			return GroupColors{}, fmt.Errorf("group %q: %w", g, err)
		}
		gc.Colors[g] = c
	}
	return gc, nil
}

// DefaultColors assigns palette colors to the distinct groups in first-seen
// order, ignoring any existing choice.
func DefaultColors(groups []string, palette []string) ColorMap {
	cm := make(ColorMap)
	if len(palette) == 0 {
		return cm
	}
	for i, g := range Distinct(groups) {
		cm[g] = palette[i%len(palette)]
	}
	return cm
}

// WithAlpha scales the opacity of c by alpha in [0, 1].
func WithAlpha(c color.NRGBA, alpha float64) color.NRGBA {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	c.A = uint8(alpha*float64(c.A) + 0.5)
	return c
}
