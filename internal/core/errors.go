package core

import (
	"errors"
	"fmt"
)

// LoadErrorKind classifies why a source could not be turned into a Table.
type LoadErrorKind int

const (
	LoadUnreadable LoadErrorKind = iota
	LoadEmpty
	LoadMalformed
	LoadEncoding
	LoadTooLarge
)

func (k LoadErrorKind) String() string {
	switch k {
	case LoadUnreadable:
		return "source unreadable"
	case LoadEmpty:
		return "empty file"
	case LoadMalformed:
		return "invalid csv"
	case LoadEncoding:
		return "encoding error"
	case LoadTooLarge:
		return "file too large"
	default:
		return "load error"
	}
}

// LoadError is returned by the loaders. Line is 1-based and zero when the
// failure is not tied to a line.
type LoadError struct {
	Kind   LoadErrorKind
	Source string
	Line   int
	Err    error
}

func (e *LoadError) Error() string {
	msg := e.Kind.String()
	if e.Source != "" {
		msg += ": " + e.Source
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(": line %d", e.Line)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ProjectionErrorKind classifies column projection failures.
type ProjectionErrorKind int

const (
	UnknownColumn ProjectionErrorKind = iota
	ValueParse
)

// ProjectionError is returned when a column selection cannot be turned into
// a series. Row is the 1-based data row for ValueParse failures.
type ProjectionError struct {
	Kind   ProjectionErrorKind
	Column string
	Row    int
	Value  string
}

func (e *ProjectionError) Error() string {
	if e.Kind == UnknownColumn {
		return fmt.Sprintf("column not found: %q", e.Column)
	}
	return fmt.Sprintf("invalid number in column %q, row %d: %q", e.Column, e.Row, e.Value)
}

// ErrNoTable is returned by session operations that need loaded data.
var ErrNoTable = errors.New("no data loaded")

// ErrSessionNotFound is returned when a session id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// ErrNoQuerySource is returned by LoadQuery when no database is configured.
var ErrNoQuerySource = errors.New("no database configured")

// ErrInvalidBounds is wrapped by CheckBounds failures.
var ErrInvalidBounds = errors.New("invalid axis bounds")
