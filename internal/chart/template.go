package chart

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// TemplateExt is the file extension of template descriptors.
const TemplateExt = ".yaml"

//go:embed templates/*.yaml
var stockFiles embed.FS

// StockTemplates returns the templates shipped with the binary.
func StockTemplates() fs.FS {
	sub, err := fs.Sub(stockFiles, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Params tune a renderer. Zero values select the renderer's defaults.
type Params struct {
	Palette    []string `yaml:"palette"`
	Background string   `yaml:"background"`

	// Bar chart
	Pad         int     `yaml:"pad"`
	Labels      bool    `yaml:"labels"`
	LabelRadius float64 `yaml:"label_radius"`

	// Scatter chart
	ValueRange   []float64 `yaml:"value_range"`
	RadiusLevels []float64 `yaml:"radius_levels"`
	DotSize      float64   `yaml:"dot_size"`
	EmptyColor   string    `yaml:"empty_color"`
	EdgeColor    string    `yaml:"edge_color"`

	// Radar charts
	Samples    int     `yaml:"samples"`
	Alpha      float64 `yaml:"alpha"`
	Hole       float64 `yaml:"hole"`
	CenterText string  `yaml:"center_text"`
}

// Descriptor is the decoded content of a template file.
type Descriptor struct {
	Title     string   `yaml:"title"`
	Renderers []string `yaml:"renderers"`
	Params    Params   `yaml:"params"`
}

// Template is a resolved chart template.
type Template struct {
	Name     string
	Title    string
	Kind     string
	Renderer Renderer
}

// Registry discovers templates in a directory and resolves them by name.
// Descriptors are read on every Resolve; nothing is cached.
type Registry struct {
	fsys fs.FS
}

// NewRegistry returns a registry reading descriptors from fsys.
func NewRegistry(fsys fs.FS) *Registry {
	return &Registry{fsys: fsys}
}

// NewDirRegistry returns a registry over dir. An empty dir, or one that does
// not exist, falls back to the stock templates.
func NewDirRegistry(dir string) *Registry {
	if dir == "" {
		return NewRegistry(StockTemplates())
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		slog.Warn("template directory unavailable, using stock templates", "dir", dir)
		return NewRegistry(StockTemplates())
	}
	return NewRegistry(os.DirFS(dir))
}

// List returns the template names (file names without extension) in
// directory listing order.
func (r *Registry) List() ([]string, error) {
	entries, err := fs.ReadDir(r.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), TemplateExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), TemplateExt))
	}
	return names, nil
}

// Resolve loads the named template and binds it to the first recognized
// renderer it declares.
func (r *Registry) Resolve(name string) (*Template, error) {
	file := name + TemplateExt
	if name == "" || strings.Contains(name, "/") || !fs.ValidPath(file) || path.Base(file) != file {
		return nil, &TemplateError{Name: name, Kind: TemplateNotFound}
	}

	data, err := fs.ReadFile(r.fsys, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &TemplateError{Name: name, Kind: TemplateNotFound}
		}
		return nil, &TemplateError{Name: name, Kind: TemplateInvalid, Err: err}
	}

	desc, err := DecodeDescriptor(bytes.NewReader(data))
	if err != nil {
		return nil, &TemplateError{Name: name, Kind: TemplateInvalid, Err: err}
	}

	kind, factory, ok := lookupRenderer(desc.Renderers)
	if !ok {
		return nil, &TemplateError{
			Name: name,
			Kind: NoRendererFound,
			Err:  fmt.Errorf("declared %v, recognized %v", desc.Renderers, RendererNames()),
		}
	}

	renderer, err := factory(desc.Params)
	if err != nil {
		return nil, &TemplateError{Name: name, Kind: TemplateInvalid, Err: err}
	}

	title := desc.Title
	if title == "" {
		title = name
	}
	return &Template{Name: name, Title: title, Kind: kind, Renderer: renderer}, nil
}

// DecodeDescriptor strictly decodes a template descriptor. Unknown fields
// are rejected.
func DecodeDescriptor(r io.Reader) (Descriptor, error) {
	var desc Descriptor
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&desc); err != nil {
		if errors.Is(err, io.EOF) {
			return Descriptor{}, errors.New("empty descriptor")
		}
		return Descriptor{}, err
	}
	return desc, nil
}

// GroupColors resolves the color each group of groups is drawn in, without
// drawing. Renderers that are not a Colorer use Tab10.
func (t *Template) GroupColors(groups []string, cm ColorMap) (GroupColors, error) {
	if c, ok := t.Renderer.(Colorer); ok {
		return c.GroupColors(groups, cm)
	}
	return ResolveColors(groups, cm, Tab10)
}

// Draw clears sc, renders s onto it and applies the radial bounds of opts.
// On failure, including a panicking renderer, sc is left cleared.
func (t *Template) Draw(s Series, sc *Scene, opts Options) (err error) {
	sc.Clear()

	if opts.YMin >= opts.YMax {
		return &RenderError{Template: t.Name, Err: fmt.Errorf("y-min (%g) must be below y-max (%g)", opts.YMin, opts.YMax)}
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			sc.Clear()
			err = &RenderError{Template: t.Name, Err: err}
		}
	}()

	if err := t.Renderer.Render(s, sc, opts); err != nil {
		return err
	}

	sc.SetRadialBounds(opts.YMin, opts.YMax)
	return nil
}
