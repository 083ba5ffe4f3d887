// Package tagtype describes E-Paper tag hardware types and keeps a cached,
// persisted registry of their definitions.
//
// A definition carries everything needed to produce an image for a tag:
// display dimensions, bits per pixel, the color table, buffer rotation, LUT
// selection, compatible content ids and compression support. Definitions are
// published as one JSON file per hardware type in the OpenEPaperLink
// repository; the Manager fetches, caches and stores them, and falls back to a
// built-in table when nothing else is available.
package tagtype

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Defaults applied to fields missing from a definition.
const (
	DefaultVersion  = 1
	DefaultWidth    = 296
	DefaultHeight   = 128
	DefaultBPP      = 2
	DefaultShortLUT = 2
)

// TagType is a specific tag hardware type and its capabilities.
type TagType struct {
	TypeID          int
	Version         int
	Name            string
	Width           int
	Height          int
	RotateBuffer    int // quarter turns: 0 none, 1 90°, 2 180°, 3 270°
	BPP             int
	ColorTable      ColorTable
	ShortLUT        int
	Options         []string
	ContentIDs      []int
	Template        json.RawMessage
	UseTemplate     json.RawMessage
	ZlibCompression json.RawMessage
}

// definition is the wire form. Pointers distinguish missing keys from zero
// values; aliases cover the spellings older stored payloads used.
type definition struct {
	Version         *int            `json:"version"`
	Name            *string         `json:"name"`
	Width           *int            `json:"width"`
	Height          *int            `json:"height"`
	RotateBuffer    *int            `json:"rotatebuffer"`
	BPP             *int            `json:"bpp"`
	ColorTable      ColorTable      `json:"colortable"`
	ShortLUT        *int            `json:"shortlut"`
	ShortLUTAlias   *int            `json:"short_lut"`
	Options         []string        `json:"options"`
	ContentIDs      []int           `json:"contentids"`
	ContentIDsAlias []int           `json:"content_ids"`
	Template        json.RawMessage `json:"template"`
	UseTemplate     json.RawMessage `json:"usetemplate"`
	ZlibCompression json.RawMessage `json:"zlib_compression"`
}

// stored is the canonical form written by MarshalJSON.
type stored struct {
	Version         int             `json:"version"`
	Name            string          `json:"name"`
	Width           int             `json:"width"`
	Height          int             `json:"height"`
	RotateBuffer    int             `json:"rotatebuffer"`
	BPP             int             `json:"bpp"`
	ColorTable      ColorTable      `json:"colortable"`
	ShortLUT        int             `json:"shortlut"`
	Options         []string        `json:"options"`
	ContentIDs      []int           `json:"contentids"`
	Template        json.RawMessage `json:"template"`
	UseTemplate     json.RawMessage `json:"usetemplate"`
	ZlibCompression json.RawMessage `json:"zlib_compression"`
}

var errNotObject = errors.New("tagtype: definition must be a JSON object")

// New builds a TagType from a raw JSON definition, applying defaults for
// every missing key.
func New(id int, data []byte) (*TagType, error) {
	var d definition
	if err := decodeObject(data, &d); err != nil {
		return nil, err
	}
	return d.build(id), nil
}

// ValidDefinition reports whether data is a JSON object holding all of
// version, name, width and height.
func ValidDefinition(data []byte) bool {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return false
	}
	for _, k := range []string{"version", "name", "width", "height"} {
		if _, ok := m[k]; !ok {
			return false
		}
	}
	return true
}

func decodeObject(data []byte, d *definition) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errNotObject
	}
	if err := json.Unmarshal(trimmed, d); err != nil {
		return fmt.Errorf("tagtype: decode definition: %w", err)
	}
	return nil
}

func (d *definition) build(id int) *TagType {
	t := &TagType{
		TypeID:       id,
		Version:      intOr(d.Version, DefaultVersion),
		Name:         unknownName(id),
		Width:        intOr(d.Width, DefaultWidth),
		Height:       intOr(d.Height, DefaultHeight),
		RotateBuffer: intOr(d.RotateBuffer, 0),
		BPP:          intOr(d.BPP, DefaultBPP),
		ColorTable:   d.ColorTable,
		ShortLUT:     intOr(d.ShortLUT, intOr(d.ShortLUTAlias, DefaultShortLUT)),
		Options:      d.Options,
		ContentIDs:   d.ContentIDs,
		Template:     d.Template,
	}
	if d.Name != nil {
		t.Name = *d.Name
	}
	if t.ColorTable == nil {
		t.ColorTable = DefaultColorTable()
	}
	if t.Options == nil {
		t.Options = []string{}
	}
	if t.ContentIDs == nil {
		t.ContentIDs = d.ContentIDsAlias
	}
	if t.ContentIDs == nil {
		t.ContentIDs = []int{}
	}
	if isNull(t.Template) {
		t.Template = json.RawMessage("{}")
	}
	if !isNull(d.UseTemplate) {
		t.UseTemplate = d.UseTemplate
	}
	if !isNull(d.ZlibCompression) {
		t.ZlibCompression = d.ZlibCompression
	}
	return t
}

// MarshalJSON writes the canonical stored form. TypeID is not part of it;
// stores key definitions by id.
func (t *TagType) MarshalJSON() ([]byte, error) {
	s := stored{
		Version:         t.Version,
		Name:            t.Name,
		Width:           t.Width,
		Height:          t.Height,
		RotateBuffer:    t.RotateBuffer,
		BPP:             t.BPP,
		ColorTable:      t.ColorTable,
		ShortLUT:        t.ShortLUT,
		Options:         t.Options,
		ContentIDs:      t.ContentIDs,
		Template:        t.Template,
		UseTemplate:     nullIfEmpty(t.UseTemplate),
		ZlibCompression: nullIfEmpty(t.ZlibCompression),
	}
	if s.Options == nil {
		s.Options = []string{}
	}
	if s.ContentIDs == nil {
		s.ContentIDs = []int{}
	}
	if len(s.Template) == 0 {
		s.Template = json.RawMessage("{}")
	}
	return json.Marshal(s)
}

// UnmarshalJSON reads a stored definition. TypeID is left untouched.
func (t *TagType) UnmarshalJSON(data []byte) error {
	var d definition
	if err := decodeObject(data, &d); err != nil {
		return err
	}
	*t = *d.build(t.TypeID)
	return nil
}

// HasColor reports whether the color table has an entry named name.
func (t *TagType) HasColor(name string) bool {
	_, ok := t.ColorTable.Lookup(name)
	return ok
}

// HasFramebuffer reports whether the tag has a pixel display at all.
// Segmented and config-mode types report 0x0.
func (t *TagType) HasFramebuffer() bool {
	return t.Width > 0 && t.Height > 0
}

// SupportsCompression reports whether the definition declares zlib support.
func (t *TagType) SupportsCompression() bool {
	return !isNull(t.ZlibCompression)
}

// BufferSize returns the dimensions of the encoded buffer, which are
// swapped relative to the display for odd rotations.
func (t *TagType) BufferSize() (w, h int) {
	if t.RotateBuffer%2 == 1 {
		return t.Height, t.Width
	}
	return t.Width, t.Height
}

func (t *TagType) String() string {
	return fmt.Sprintf("%s (%d, %dx%d)", t.Name, t.TypeID, t.Width, t.Height)
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func nullIfEmpty(raw json.RawMessage) json.RawMessage {
	if isNull(raw) {
		return nil
	}
	return raw
}
