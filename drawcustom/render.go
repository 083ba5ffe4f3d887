package drawcustom

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// UnknownState replaces lookups of entities the StateReader does not know.
const UnknownState = "unknown"

// StateReader returns the current state of an entity.
type StateReader interface {
	State(entityID string) (string, bool)
}

// StateMap is a StateReader over a fixed set of states.
type StateMap map[string]string

func (m StateMap) State(entityID string) (string, bool) {
	v, ok := m[entityID]
	return v, ok
}

var stateExpr = regexp.MustCompile(`\{\{\s*states\(\s*['"]([^'"]+)['"]\s*\)\s*(?:\|\s*(\w+)\s*)?\}\}`)

// Render returns a copy of r with state lookups in text values, icon names
// and progress values replaced. r is not modified.
func (r *Request) Render(states StateReader) (*Request, error) {
	out := *r
	out.Payload = make([]Element, len(r.Payload))
	for i, e := range r.Payload {
		switch {
		case e.Text != nil:
			t := *e.Text
			t.Value = expand(t.Value, states)
			e.Text = &t
		case e.Icon != nil:
			ic := *e.Icon
			ic.Value = iconName(expand(ic.Value, states))
			e.Icon = &ic
		case e.ProgressBar != nil:
			p := *e.ProgressBar
			if p.Progress.Template != "" {
				v, err := expandInt(p.Progress.Template, states)
				if err != nil {
					return nil, &ElementError{Index: i, Type: e.Type, Line: e.Line, Err: err}
				}
				p.Progress = Int{Value: v}
			}
			e.ProgressBar = &p
		}
		out.Payload[i] = e
	}
	return &out, nil
}

func expand(s string, states StateReader) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	return stateExpr.ReplaceAllStringFunc(s, func(m string) string {
		id := stateExpr.FindStringSubmatch(m)[1]
		if v, ok := states.State(id); ok {
			return v
		}
		return UnknownState
	})
}

// expandInt renders a numeric template. With the "int" filter, a state
// that is not a number yields 0.
func expandInt(tmpl string, states StateReader) (int, error) {
	v := strings.TrimSpace(expand(tmpl, states))
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		for _, m := range stateExpr.FindAllStringSubmatch(tmpl, -1) {
			if m[2] == "int" {
				return 0, nil
			}
		}
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, v)
	}
	return int(f), nil
}
