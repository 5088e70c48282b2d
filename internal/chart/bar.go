package chart

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// BarLayout is the angular partition of a circular bar chart.
type BarLayout struct {
	// Order lists the series row indices after a stable sort by group.
	Order []int
	// Angles holds the angle of every slot, padding included.
	Angles []float64
	// Slots holds the slot of each row of Order.
	Slots []int
	// Width is the angular width of a slot.
	Width float64
	// Groups lists the distinct groups in sorted order with their sizes.
	Groups     []string
	GroupSizes []int
}

// LayoutBars sorts rows by group and allocates len(groups) + pad*distinct
// evenly spaced slots around the circle. Each group's block starts with pad
// unused slots.
func LayoutBars(groups []string, pad int) BarLayout {
	order := make([]int, len(groups))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return groups[order[a]] < groups[order[b]]
	})

	var layout BarLayout
	layout.Order = order
	for _, idx := range order {
		g := groups[idx]
		n := len(layout.Groups)
		if n > 0 && layout.Groups[n-1] == g {
			layout.GroupSizes[n-1]++
			continue
		}
		layout.Groups = append(layout.Groups, g)
		layout.GroupSizes = append(layout.GroupSizes, 1)
	}

	total := len(groups) + pad*len(layout.Groups)
	if total == 0 {
		return layout
	}
	layout.Angles = EvenAngles(total)
	layout.Width = 2 * math.Pi / float64(total)

	layout.Slots = make([]int, 0, len(groups))
	offset := 0
	for _, size := range layout.GroupSizes {
		for i := 0; i < size; i++ {
			layout.Slots = append(layout.Slots, offset+pad+i)
		}
		offset += size + pad
	}
	return layout
}

// EvenAngles returns n angles evenly spaced over [0, 2π), starting at 0.
func EvenAngles(n int) []float64 {
	angles := make([]float64, n)
	for i := range angles {
		angles[i] = 2 * math.Pi * float64(i) / float64(n)
	}
	return angles
}

// LabelRotation returns the rotation in degrees and the anchor of a label
// placed at angle once the chart is rotated by offset. Labels on the left
// half are flipped so they never read upside down.
func LabelRotation(angle, offset float64) (float64, Align) {
	rotation := (angle + offset) * 180 / math.Pi
	if angle <= math.Pi {
		return rotation + 180, AlignRight
	}
	return rotation, AlignLeft
}

type barChart struct {
	palette     []string
	background  string
	pad         int
	labels      bool
	labelRadius float64
}

func newBarChart(p Params) (Renderer, error) {
	bc := &barChart{
		palette:     BarPalette,
		background:  "#fff0f0",
		pad:         1,
		labels:      p.Labels,
		labelRadius: 40,
	}
	if len(p.Palette) > 0 {
		bc.palette = p.Palette
	}
	if p.Background != "" {
		bc.background = p.Background
	}
	if p.Pad < 0 {
		return nil, fmt.Errorf("pad must be non-negative, got %d", p.Pad)
	}
	if p.Pad > 0 {
		bc.pad = p.Pad
	}
	if p.LabelRadius != 0 {
		bc.labelRadius = p.LabelRadius
	}
	for _, c := range append([]string{bc.background}, bc.palette...) {
		if _, err := ParseColor(c); err != nil {
			return nil, err
		}
	}
	return bc, nil
}

// GroupColors cycles the palette over the groups in sorted order, the order
// their blocks are laid out in.
func (bc *barChart) GroupColors(groups []string, cm ColorMap) (GroupColors, error) {
	sorted := slices.Clone(groups)
	slices.Sort(sorted)
	return ResolveColors(sorted, cm, bc.palette)
}

func (bc *barChart) Render(s Series, sc *Scene, opts Options) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.Len() == 0 {
		return ErrNoData
	}

	layout := LayoutBars(s.Groups, bc.pad)
	colors, err := bc.GroupColors(s.Groups, opts.Colors)
	if err != nil {
		return err
	}
	bg := MustParseColor(bc.background)

	sc.ThetaOffset = math.Pi / 2
	sc.SetRadialBounds(-50, 100)
	sc.AddDisk(Disk{Radius: 1, Fill: bg})

	for i, idx := range layout.Order {
		sc.AddBar(Bar{
			Theta:     layout.Angles[layout.Slots[i]],
			Width:     layout.Width,
			Height:    s.Values[idx],
			Fill:      colors.Of(s.Groups[idx]),
			Edge:      bg,
			EdgeWidth: 2,
		})
	}

	if bc.labels {
		for i, idx := range layout.Order {
			angle := layout.Angles[layout.Slots[i]]
			rotation, align := LabelRotation(angle, sc.ThetaOffset)
			sc.AddText(Text{
				Theta:    angle,
				R:        bc.labelRadius,
				Text:     s.Items[idx],
				Rotation: rotation,
				Align:    align,
				Size:     5.5,
				Color:    MustParseColor("#2b2a2a"),
			})
		}
	}

	sc.SetLegend(opts.ShowLegend, colors.Legend())
	return nil
}
