package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Table is a rectangular block of text cells with a header row.
// Every row has exactly len(Columns) cells.
type Table struct {
	Columns   []string
	Rows      [][]string
	Delimiter rune
	Source    string
}

// NewTable builds a table from a header and rows produced outside the
// loaders. Header names are normalized like loaded headers.
func NewTable(columns []string, rows [][]string, source string) (*Table, error) {
	t := &Table{
		Columns: normalizeHeader(columns),
		Rows:    rows,
		Source:  source,
	}
	if err := t.Validate(); err != nil {
		return nil, &LoadError{Kind: LoadMalformed, Source: source, Err: err}
	}
	return t, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of the cells of the named column.
func (t *Table) Column(name string) ([]string, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, true
}

// Distinct returns the distinct values of the named column in first-seen order.
func (t *Table) Distinct(name string) []string {
	cells, ok := t.Column(name)
	if !ok {
		return nil
	}
	seen := make(map[string]bool, len(cells))
	var out []string
	for _, c := range cells {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// Preview returns at most n rows from the top of the table.
func (t *Table) Preview(n int) [][]string {
	if t == nil || n <= 0 {
		return nil
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}

// Validate checks the rectangular invariant and column uniqueness.
func (t *Table) Validate() error {
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if seen[c] {
			return fmt.Errorf("duplicate column %q", c)
		}
		seen[c] = true
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i+1, len(row), len(t.Columns))
		}
	}
	return nil
}

// normalizeHeader makes header names usable as column identities: blank
// names become "Unnamed: <i>" and repeats get ".1", ".2", ... suffixes.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		base := name
		for n := 1; used[name]; n++ {
			name = base + "." + strconv.Itoa(n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}
