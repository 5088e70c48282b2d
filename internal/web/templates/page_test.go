package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestErrorAlert(t *testing.T) {
	var buf bytes.Buffer
	if err := ErrorAlert("Bad <data>", "Fix it", "FILE002").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	if strings.Contains(out, "<data>") {
		t.Error("message was not escaped")
	}
	for _, want := range []string{"Bad &lt;data&gt;", "Fix it", "FILE002", `role="alert"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestIndex(t *testing.T) {
	tests := []struct {
		name    string
		params  IndexParams
		want    []string
		notWant []string
	}{
		{
			name:    "empty studio",
			params:  IndexParams{Templates: []string{"scatter"}, MaxUploadMB: 100},
			want:    []string{`action="/load"`, "up to 100 MB"},
			notWant: []string{`id="chart"`, `action="/clear"`, `name="query"`},
		},
		{
			name: "loaded data with chart",
			params: IndexParams{
				Templates:    []string{"circular_barchart", "scatter"},
				Form:         ChartForm{Template: "scatter", Items: "subject", Values: "score", Groups: "team", Legend: true, YMin: -50, YMax: 90},
				Hidden:       "template=scatter",
				Source:       "results.csv",
				Rows:         2,
				Columns:      []string{"subject", "score", "team"},
				Preview:      [][]string{{"speed", "10", "red"}},
				Groups:       []GroupColor{{Name: "red", Color: "#d62728"}},
				SVGURL:       "/chart.svg?template=scatter",
				PNGURL:       "/chart.png?template=scatter",
				CanChart:     true,
				QueryEnabled: true,
			},
			want: []string{
				`<option value="scatter" selected>scatter</option>`,
				`src="/chart.svg?template=scatter"`,
				`value="#d62728"`,
				`name="legend" value="1" checked`,
				`value="-50"`,
				`<td>speed</td>`,
				`name="query"`,
				`action="/clear"`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Index(tt.params).Render(context.Background(), &buf); err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q", w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output unexpectedly contains %q", w)
				}
			}
		})
	}
}

func TestPreviewTableHTML_Escapes(t *testing.T) {
	out := PreviewTableHTML([]string{"<a>"}, [][]string{{"x&y"}})
	if !strings.Contains(out, "<th>&lt;a&gt;</th>") || !strings.Contains(out, "<td>x&amp;y</td>") {
		t.Errorf("PreviewTableHTML() = %s", out)
	}
}
