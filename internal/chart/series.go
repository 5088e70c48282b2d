package chart

import "fmt"

// Series is the normalized input of every renderer: three parallel sequences
// of equal length.
type Series struct {
	Items  []string
	Values []float64
	Groups []string
}

// Len returns the number of rows in the series.
func (s Series) Len() int {
	return len(s.Items)
}

// Validate checks that the three sequences have the same length.
func (s Series) Validate() error {
	if len(s.Items) != len(s.Values) || len(s.Items) != len(s.Groups) {
		return fmt.Errorf("mismatched series lengths: items=%d values=%d groups=%d",
			len(s.Items), len(s.Values), len(s.Groups))
	}
	return nil
}

// Distinct returns the distinct values of s in first-seen order.
func Distinct(s []string) []string {
	seen := make(map[string]bool, len(s))
	out := make([]string, 0, len(s))
	for _, v := range s {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
