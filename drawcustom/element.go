// Package drawcustom parses and validates drawcustom payloads: declarative
// YAML lists of elements (text, progress bars, icons and more) composed onto
// an E-Paper tag.
//
// A payload is checked against the tag type it targets: coordinates are
// compared with the tag's canvas and named colors are resolved against its
// color table. Text values may embed {{ states('sensor.x') }} lookups, which
// Render substitutes from a StateReader.
package drawcustom

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Type names an element kind.
type Type string

// Element types with typed fields.
const (
	TypeText        Type = "text"
	TypeProgressBar Type = "progress_bar"
	TypeIcon        Type = "icon"
)

// opaqueTypes are recognized but carried through untouched.
var opaqueTypes = map[Type]bool{
	"multiline":         true,
	"line":              true,
	"rectangle":         true,
	"rectangle_pattern": true,
	"polygon":           true,
	"circle":            true,
	"ellipse":           true,
	"arc":               true,
	"icon_sequence":     true,
	"dlimg":             true,
	"qrcode":            true,
	"plot":              true,
	"diagram":           true,
	"debug_grid":        true,
}

// Known reports whether t is a recognized element type.
func (t Type) Known() bool {
	switch t {
	case TypeText, TypeProgressBar, TypeIcon:
		return true
	}
	return opaqueTypes[t]
}

// Element is one entry of a payload. Exactly one of Text, ProgressBar and
// Icon is set for those types; any other recognized type keeps its YAML in
// Raw.
type Element struct {
	Type    Type
	Visible bool
	Line    int

	Text        *Text
	ProgressBar *ProgressBar
	Icon        *Icon
	Raw         *yaml.Node

	missing []string
}

// Text draws a string at (X, Y).
type Text struct {
	Value  string
	X, Y   int
	Size   int
	Color  string
	Anchor string
}

// ProgressBar draws a bar filling the box from (XStart, YStart) to
// (XEnd, YEnd) by Progress percent.
type ProgressBar struct {
	XStart, YStart int
	XEnd, YEnd     int
	Progress       Int
	Fill           string
	Background     string
	Outline        string
	Width          int
	Direction      string
	ShowPercentage bool
}

// Icon draws a Material Design icon, e.g. "mdi:battery-70".
type Icon struct {
	Value string
	X, Y  int
	Size  int
	Color string
}

// Defaults for optional fields.
const (
	DefaultTextSize   = 20
	DefaultTextColor  = "black"
	DefaultAnchor     = "lt"
	DefaultFill       = "red"
	DefaultBackground = "white"
	DefaultOutline    = "black"
	DefaultDirection  = "right"
)

// Int is an integer that may instead hold a template to be resolved by
// Render, e.g. "{{ states('sensor.battery') | int }}".
type Int struct {
	Value    int
	Template string
}

// UnmarshalYAML accepts a number, a quoted number or a "{{ ... }}"
// template. Anything else is ErrInvalidValue.
func (i *Int) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number", node.Line)
	}
	switch node.ShortTag() {
	case "!!int":
		return node.Decode(&i.Value)
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return err
		}
		i.Value = int(f)
		return nil
	case "!!str":
		if strings.Contains(node.Value, "{{") {
			i.Template = node.Value
			return nil
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(node.Value), 64); err == nil {
			i.Value = int(f)
			return nil
		}
	}
	return fmt.Errorf("line %d: %w: %q is not a number", node.Line, ErrInvalidValue, node.Value)
}

// MarshalYAML writes the template if set, the value otherwise.
func (i Int) MarshalYAML() (interface{}, error) {
	if i.Template != "" {
		return i.Template, nil
	}
	return i.Value, nil
}

type header struct {
	Type    Type  `yaml:"type"`
	Visible *bool `yaml:"visible"`
}

type textFields struct {
	Value  *string `yaml:"value"`
	X      *int    `yaml:"x"`
	Y      *int    `yaml:"y"`
	Size   *int    `yaml:"size"`
	Color  *string `yaml:"color"`
	Anchor *string `yaml:"anchor"`
}

type progressFields struct {
	XStart         *int    `yaml:"x_start"`
	YStart         *int    `yaml:"y_start"`
	XEnd           *int    `yaml:"x_end"`
	YEnd           *int    `yaml:"y_end"`
	Progress       *Int    `yaml:"progress"`
	Fill           *string `yaml:"fill"`
	Background     *string `yaml:"background"`
	Outline        *string `yaml:"outline"`
	Width          *int    `yaml:"width"`
	Direction      *string `yaml:"direction"`
	ShowPercentage bool    `yaml:"show_percentage"`
}

type iconFields struct {
	Value *string `yaml:"value"`
	X     *int    `yaml:"x"`
	Y     *int    `yaml:"y"`
	Size  *int    `yaml:"size"`
	Color *string `yaml:"color"`
	Fill  *string `yaml:"fill"`
}

// UnmarshalYAML decodes an element, recording missing required fields for
// Validate rather than failing.
func (e *Element) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("drawcustom: line %d: element must be a mapping", node.Line)
	}
	var h header
	if err := node.Decode(&h); err != nil {
		return err
	}
	*e = Element{Type: h.Type, Visible: true, Line: node.Line}
	if h.Visible != nil {
		e.Visible = *h.Visible
	}

	switch h.Type {
	case TypeText:
		var f textFields
		if err := node.Decode(&f); err != nil {
			return err
		}
		e.Text = &Text{
			Value:  str(f.Value, "", &e.missing, "value"),
			X:      num(f.X, 0, &e.missing, "x"),
			Y:      num(f.Y, 0, &e.missing, "y"),
			Size:   num(f.Size, DefaultTextSize, nil, ""),
			Color:  str(f.Color, DefaultTextColor, nil, ""),
			Anchor: str(f.Anchor, DefaultAnchor, nil, ""),
		}
	case TypeProgressBar:
		var f progressFields
		if err := node.Decode(&f); err != nil {
			return err
		}
		p := &ProgressBar{
			XStart:         num(f.XStart, 0, &e.missing, "x_start"),
			YStart:         num(f.YStart, 0, &e.missing, "y_start"),
			XEnd:           num(f.XEnd, 0, &e.missing, "x_end"),
			YEnd:           num(f.YEnd, 0, &e.missing, "y_end"),
			Fill:           str(f.Fill, DefaultFill, nil, ""),
			Background:     str(f.Background, DefaultBackground, nil, ""),
			Outline:        str(f.Outline, DefaultOutline, nil, ""),
			Width:          num(f.Width, 1, nil, ""),
			Direction:      str(f.Direction, DefaultDirection, nil, ""),
			ShowPercentage: f.ShowPercentage,
		}
		if f.Progress != nil {
			p.Progress = *f.Progress
		} else {
			e.missing = append(e.missing, "progress")
		}
		e.ProgressBar = p
	case TypeIcon:
		var f iconFields
		if err := node.Decode(&f); err != nil {
			return err
		}
		color := f.Color
		if color == nil {
			color = f.Fill
		}
		e.Icon = &Icon{
			Value: str(f.Value, "", &e.missing, "value"),
			X:     num(f.X, 0, &e.missing, "x"),
			Y:     num(f.Y, 0, &e.missing, "y"),
			Size:  num(f.Size, 0, &e.missing, "size"),
			Color: str(color, DefaultTextColor, nil, ""),
		}
		e.Icon.Value = iconName(e.Icon.Value)
	default:
		raw := *node
		e.Raw = &raw
	}
	return nil
}

// MarshalYAML writes the element back in payload form.
func (e Element) MarshalYAML() (interface{}, error) {
	out := map[string]interface{}{"type": string(e.Type)}
	if !e.Visible {
		out["visible"] = false
	}
	switch {
	case e.Text != nil:
		t := e.Text
		out["value"], out["x"], out["y"] = t.Value, t.X, t.Y
		out["size"], out["color"], out["anchor"] = t.Size, t.Color, t.Anchor
	case e.ProgressBar != nil:
		p := e.ProgressBar
		out["x_start"], out["y_start"], out["x_end"], out["y_end"] = p.XStart, p.YStart, p.XEnd, p.YEnd
		out["progress"] = p.Progress
		out["fill"], out["background"], out["outline"] = p.Fill, p.Background, p.Outline
		out["width"], out["direction"], out["show_percentage"] = p.Width, p.Direction, p.ShowPercentage
	case e.Icon != nil:
		i := e.Icon
		out["value"], out["x"], out["y"], out["size"], out["color"] = i.Value, i.X, i.Y, i.Size, i.Color
	case e.Raw != nil:
		return e.Raw, nil
	}
	return out, nil
}

func str(p *string, def string, missing *[]string, name string) string {
	if p == nil {
		if missing != nil {
			*missing = append(*missing, name)
		}
		return def
	}
	return *p
}

func num(p *int, def int, missing *[]string, name string) int {
	if p == nil {
		if missing != nil {
			*missing = append(*missing, name)
		}
		return def
	}
	return *p
}

// iconName adds the "mdi:" prefix to bare icon names.
func iconName(v string) string {
	if v == "" || strings.Contains(v, ":") || strings.Contains(v, "{{") {
		return v
	}
	return "mdi:" + v
}
