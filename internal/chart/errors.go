package chart

import (
	"errors"
	"fmt"
)

// TemplateErrorKind classifies template resolution failures.
type TemplateErrorKind int

const (
	TemplateNotFound TemplateErrorKind = iota
	TemplateInvalid
	NoRendererFound
)

func (k TemplateErrorKind) String() string {
	switch k {
	case TemplateNotFound:
		return "template not found"
	case TemplateInvalid:
		return "invalid template"
	case NoRendererFound:
		return "no renderer found"
	default:
		return "template error"
	}
}

// TemplateError is returned when a template cannot be resolved to a renderer.
type TemplateError struct {
	Name string
	Kind TemplateErrorKind
	Err  error
}

func (e *TemplateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Name, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Name)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// ErrNoData is returned by renderers given an empty series.
var ErrNoData = errors.New("nothing to plot")

// RenderError wraps any failure raised while drawing a template.
type RenderError struct {
	Template string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed: %s: %v", e.Template, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
