package core

import "github.com/JonMunkholm/radial/internal/chart"

// Selection names the columns mapped to a chart's items, values and groups.
type Selection struct {
	Items  string `json:"items"`
	Values string `json:"values"`
	Groups string `json:"groups"`
}

// Project extracts the selected columns of t as a series, preserving row
// order. Values are parsed with ParseValue; the first unparseable cell fails
// the whole projection.
func Project(t *Table, itemsCol, valuesCol, groupsCol string) (chart.Series, error) {
	if t == nil {
		return chart.Series{}, ErrNoTable
	}

	idx := make([]int, 3)
	for i, name := range []string{itemsCol, valuesCol, groupsCol} {
		idx[i] = t.ColumnIndex(name)
		if idx[i] < 0 {
			return chart.Series{}, &ProjectionError{Kind: UnknownColumn, Column: name}
		}
	}

	n := len(t.Rows)
	s := chart.Series{
		Items:  make([]string, n),
		Values: make([]float64, n),
		Groups: make([]string, n),
	}
	for r, row := range t.Rows {
		v, err := ParseValue(row[idx[1]])
		if err != nil {
			return chart.Series{}, &ProjectionError{
				Kind:   ValueParse,
				Column: valuesCol,
				Row:    r + 1,
				Value:  row[idx[1]],
			}
		}
		s.Items[r] = row[idx[0]]
		s.Values[r] = v
		s.Groups[r] = row[idx[2]]
	}
	return s, nil
}

// ProjectSelection is Project with the columns of sel.
func ProjectSelection(t *Table, sel Selection) (chart.Series, error) {
	return Project(t, sel.Items, sel.Values, sel.Groups)
}
