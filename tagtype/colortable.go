package tagtype

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
)

// NamedColor is one entry of a tag color table.
type NamedColor struct {
	Name string
	RGB  [3]uint8
}

// Color returns the entry as an opaque color.RGBA.
func (n NamedColor) Color() color.RGBA {
	return color.RGBA{R: n.RGB[0], G: n.RGB[1], B: n.RGB[2], A: 0xFF}
}

// ColorTable maps color names to RGB values. Order is significant: the
// position of an entry is the pixel index written to the framebuffer.
//
// In JSON it is an object, e.g. {"white":[255,255,255],"black":[0,0,0]}, and
// key order is preserved in both directions.
type ColorTable []NamedColor

// DefaultColorTable is used when a definition omits "colortable".
func DefaultColorTable() ColorTable {
	return ColorTable{
		{Name: "white", RGB: [3]uint8{255, 255, 255}},
		{Name: "black", RGB: [3]uint8{0, 0, 0}},
		{Name: "red", RGB: [3]uint8{255, 0, 0}},
	}
}

// Lookup returns the entry named name.
func (t ColorTable) Lookup(name string) (NamedColor, bool) {
	for _, c := range t {
		if c.Name == name {
			return c, true
		}
	}
	return NamedColor{}, false
}

// Index returns the position of name in the table, or -1.
func (t ColorTable) Index(name string) int {
	for i, c := range t {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Names returns the color names in table order.
func (t ColorTable) Names() []string {
	names := make([]string, len(t))
	for i, c := range t {
		names[i] = c.Name
	}
	return names
}

// MarshalJSON writes the table as an object in table order.
func (t ColorTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":[%d,%d,%d]", c.RGB[0], c.RGB[1], c.RGB[2])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of name -> [r,g,b] keeping key order.
func (t *ColorTable) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("tagtype: colortable must be an object")
	}
	out := ColorTable{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("tagtype: colortable key %v is not a string", tok)
		}
		var rgb []int
		if err := dec.Decode(&rgb); err != nil {
			return fmt.Errorf("tagtype: colortable %q: %w", name, err)
		}
		if len(rgb) < 3 {
			return fmt.Errorf("tagtype: colortable %q needs 3 components", name)
		}
		var c NamedColor
		c.Name = name
		for i := 0; i < 3; i++ {
			if rgb[i] < 0 || rgb[i] > 255 {
				return fmt.Errorf("tagtype: colortable %q component %d out of range", name, rgb[i])
			}
			c.RGB[i] = uint8(rgb[i])
		}
		out = append(out, c)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*t = out
	return nil
}
