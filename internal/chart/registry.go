package chart

import (
	"fmt"
	"sync"
)

// Options are the per-call rendering choices of the caller.
type Options struct {
	ShowLegend bool
	Colors     ColorMap
	YMin       float64
	YMax       float64
}

// Renderer draws a series onto a cleared scene.
type Renderer interface {
	Render(s Series, sc *Scene, opts Options) error
}

// Colorer is implemented by renderers that color groups from their own
// palette. GroupColors must agree with what Render draws.
type Colorer interface {
	GroupColors(groups []string, cm ColorMap) (GroupColors, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(s Series, sc *Scene, opts Options) error

// Render calls f.
func (f RendererFunc) Render(s Series, sc *Scene, opts Options) error {
	return f(s, sc, opts)
}

// Factory builds a renderer tuned by a template's parameters.
type Factory func(p Params) (Renderer, error)

var (
	renderers  = make(map[string]Factory)
	priority   []string
	registryMu sync.RWMutex
)

// RegisterRenderer adds a recognized renderer name. Names registered earlier
// win when a template declares more than one.
// Panics if the name is already registered.
func RegisterRenderer(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := renderers[name]; exists {
		panic(fmt.Sprintf("renderer already registered: %s", name))
	}
	renderers[name] = f
	priority = append(priority, name)
}

// RendererNames returns the recognized renderer names in priority order.
func RendererNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]string, len(priority))
	copy(out, priority)
	return out
}

// lookupRenderer returns the first recognized name that declared contains.
func lookupRenderer(declared []string) (string, Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	set := make(map[string]bool, len(declared))
	for _, d := range declared {
		set[d] = true
	}
	for _, name := range priority {
		if set[name] {
			return name, renderers[name], true
		}
	}
	return "", nil, false
}

func init() {
	RegisterRenderer("circular_scatter_plot_subjects", newScatterChart)
	RegisterRenderer("plot_circular_barchart", newBarChart)
	RegisterRenderer("category_spider_chart", newSpiderChart)
	RegisterRenderer("smooth_radar_chart", newSmoothRadar)
}
