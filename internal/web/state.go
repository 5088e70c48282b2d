package web

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/radial/internal/chart"
	"github.com/JonMunkholm/radial/internal/core"
)

// chartState is the chart a page or image request asks for. It travels in
// the query string so charts are bookmarkable and forms can post-redirect-get.
type chartState struct {
	Template string
	Sel      core.Selection
	Legend   bool
	YMin     float64
	YMax     float64
}

// parseChartState reads the chart choices from v. Missing choices fall back to
// the session's last chart, then to the service defaults.
func (s *Server) parseChartState(v url.Values, sess *core.Session) (chartState, error) {
	d := s.service.Defaults()
	st := chartState{Template: d.Template, Legend: d.ShowLegend, YMin: d.YMin, YMax: d.YMax}

	if sess != nil {
		if sc, tpl, sel := sess.Chart(); sc != nil {
			st.Template, st.Sel = tpl, sel
		}
	}

	if t := strings.TrimSpace(v.Get("template")); t != "" {
		st.Template = t
		// A submitted chart form always carries the template; an unchecked
		// legend box is simply absent.
		st.Legend = v.Get("legend") != ""
	}
	if c := v.Get("items"); c != "" {
		st.Sel.Items = c
	}
	if c := v.Get("values"); c != "" {
		st.Sel.Values = c
	}
	if c := v.Get("groups"); c != "" {
		st.Sel.Groups = c
	}

	var err error
	if st.YMin, err = parseBound(v, "ymin", st.YMin); err != nil {
		return st, err
	}
	if st.YMax, err = parseBound(v, "ymax", st.YMax); err != nil {
		return st, err
	}
	return st, nil
}

func parseBound(v url.Values, key string, def float64) (float64, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", core.ErrInvalidBounds, key, raw)
	}
	return f, nil
}

// complete reports whether every column of the selection is chosen.
func (st chartState) complete() bool {
	return st.Sel.Items != "" && st.Sel.Values != "" && st.Sel.Groups != ""
}

// options returns the renderer options for the state.
func (st chartState) options() chart.Options {
	return chart.Options{ShowLegend: st.Legend, YMin: st.YMin, YMax: st.YMax}
}

// values encodes the state as query parameters.
func (st chartState) values() url.Values {
	v := url.Values{}
	v.Set("template", st.Template)
	v.Set("items", st.Sel.Items)
	v.Set("values", st.Sel.Values)
	v.Set("groups", st.Sel.Groups)
	if st.Legend {
		v.Set("legend", "1")
	}
	v.Set("ymin", strconv.FormatFloat(st.YMin, 'g', -1, 64))
	v.Set("ymax", strconv.FormatFloat(st.YMax, 'g', -1, 64))
	return v
}

// redirectTarget returns the studio URL for a posted "state" field, dropping
// anything that is not chart state.
func redirectTarget(state string) string {
	v, err := url.ParseQuery(state)
	if err != nil {
		return "/"
	}
	keep := url.Values{}
	for _, k := range []string{"template", "items", "values", "groups", "legend", "ymin", "ymax"} {
		if x := v.Get(k); x != "" {
			keep.Set(k, x)
		}
	}
	if len(keep) == 0 {
		return "/"
	}
	return "/?" + keep.Encode()
}
