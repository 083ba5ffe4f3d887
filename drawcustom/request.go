package drawcustom

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownType  = errors.New("drawcustom: unknown element type")
	ErrMissingField = errors.New("drawcustom: missing required field")
	ErrOutOfRange   = errors.New("drawcustom: value out of range")
	ErrUnknownColor = errors.New("drawcustom: unknown color")
	ErrInvalidValue = errors.New("drawcustom: invalid value")
	ErrNoPayload    = errors.New("drawcustom: no payload")
)

// ElementError reports a problem with one payload element.
type ElementError struct {
	Index int
	Type  Type
	Line  int
	Err   error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("payload[%d] (%s, line %d): %v", e.Index, e.Type, e.Line, e.Err)
}

func (e *ElementError) Unwrap() error {
	return e.Err
}

// Request is a drawcustom call: canvas settings plus the elements to draw.
type Request struct {
	Background string
	Rotate     int
	Dither     bool
	TTL        int
	DryRun     bool
	Payload    []Element
}

type requestFields struct {
	Background *string   `yaml:"background"`
	Rotate     int       `yaml:"rotate"`
	Dither     bool      `yaml:"dither"`
	TTL        int       `yaml:"ttl"`
	DryRun     bool      `yaml:"dry-run"`
	Payload    []Element `yaml:"payload"`
}

// Parse decodes a request. data may be a full request mapping, a bare list
// of elements, or a service call whose request sits under "data".
func Parse(data []byte) (*Request, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("drawcustom: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrNoPayload
	}
	root := doc.Content[0]

	r := &Request{Background: DefaultBackground}
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&r.Payload); err != nil {
			return nil, fmt.Errorf("drawcustom: %w", err)
		}
	case yaml.MappingNode:
		if lookup(root, "payload") == nil {
			if inner := lookup(root, "data"); inner != nil && inner.Kind == yaml.MappingNode {
				root = inner
			}
		}
		if lookup(root, "payload") == nil {
			return nil, ErrNoPayload
		}
		var f requestFields
		if err := root.Decode(&f); err != nil {
			return nil, fmt.Errorf("drawcustom: %w", err)
		}
		if f.Background != nil {
			r.Background = *f.Background
		}
		r.Rotate, r.Dither, r.TTL, r.DryRun, r.Payload = f.Rotate, f.Dither, f.TTL, f.DryRun, f.Payload
	default:
		return nil, fmt.Errorf("drawcustom: line %d: expected a mapping or a list", root.Line)
	}
	return r, nil
}

// Marshal encodes r as a request mapping.
func (r *Request) Marshal() ([]byte, error) {
	f := requestFields{
		Background: &r.Background,
		Rotate:     r.Rotate,
		Dither:     r.Dither,
		TTL:        r.TTL,
		DryRun:     r.DryRun,
		Payload:    r.Payload,
	}
	return yaml.Marshal(f)
}

func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
