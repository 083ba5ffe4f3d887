package drawcustom

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/flavioheleno/opendisplay/tagtype"
)

// Warnings are problems that do not prevent drawing.
type Warnings []string

var directions = map[string]bool{"right": true, "left": true, "up": true, "down": true}

// Validate checks r against tt. Every problem found is reported; the error
// joins one *ElementError per faulty element field.
func (r *Request) Validate(tt *tagtype.TagType) (Warnings, error) {
	var (
		errs  []error
		warns Warnings
	)
	if r.Rotate%90 != 0 {
		errs = append(errs, fmt.Errorf("%w: rotate %d is not a multiple of 90", ErrInvalidValue, r.Rotate))
	}
	if err := checkColor(tt, r.Background); err != nil {
		errs = append(errs, fmt.Errorf("background: %w", err))
	}

	canvas := r.Canvas(tt)
	for i := range r.Payload {
		e := &r.Payload[i]
		for _, err := range e.validate(tt) {
			errs = append(errs, &ElementError{Index: i, Type: e.Type, Line: e.Line, Err: err})
		}
		if !e.Visible {
			continue
		}
		if b, ok := e.bounds(); ok && !b.Overlaps(canvas) {
			warns = append(warns, fmt.Sprintf("payload[%d] (%s, line %d) lies outside the %dx%d canvas",
				i, e.Type, e.Line, canvas.Dx(), canvas.Dy()))
		}
	}
	return warns, errors.Join(errs...)
}

// Canvas returns the drawing area for tt, with width and height swapped for
// quarter-turn rotations.
func (r *Request) Canvas(tt *tagtype.TagType) image.Rectangle {
	w, h := tt.Width, tt.Height
	if (r.Rotate/90)%2 != 0 {
		w, h = h, w
	}
	return image.Rect(0, 0, w, h)
}

func (e *Element) validate(tt *tagtype.TagType) []error {
	if e.Type == "" {
		return []error{fmt.Errorf("%w: type", ErrMissingField)}
	}
	if !e.Type.Known() {
		return []error{fmt.Errorf("%w: %q", ErrUnknownType, e.Type)}
	}

	var errs []error
	for _, name := range e.missing {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMissingField, name))
	}
	color := func(field, value string) {
		if err := checkColor(tt, value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
	}

	switch {
	case e.Text != nil:
		if e.Text.Size <= 0 {
			errs = append(errs, fmt.Errorf("%w: size %d", ErrOutOfRange, e.Text.Size))
		}
		color("color", e.Text.Color)
	case e.ProgressBar != nil:
		p := e.ProgressBar
		if p.Progress.Template == "" && (p.Progress.Value < 0 || p.Progress.Value > 100) {
			errs = append(errs, fmt.Errorf("%w: progress %d not in 0-100", ErrOutOfRange, p.Progress.Value))
		}
		if p.XEnd < p.XStart || p.YEnd < p.YStart {
			errs = append(errs, fmt.Errorf("%w: box (%d,%d)-(%d,%d) is inverted",
				ErrInvalidValue, p.XStart, p.YStart, p.XEnd, p.YEnd))
		}
		if !directions[p.Direction] {
			errs = append(errs, fmt.Errorf("%w: direction %q", ErrInvalidValue, p.Direction))
		}
		if p.Width < 0 {
			errs = append(errs, fmt.Errorf("%w: width %d", ErrOutOfRange, p.Width))
		}
		color("fill", p.Fill)
		color("background", p.Background)
		color("outline", p.Outline)
	case e.Icon != nil:
		if e.Icon.Size <= 0 && !e.isMissing("size") {
			errs = append(errs, fmt.Errorf("%w: size %d", ErrOutOfRange, e.Icon.Size))
		}
		color("color", e.Icon.Color)
	}
	return errs
}

func (e *Element) isMissing(name string) bool {
	for _, m := range e.missing {
		if m == name {
			return true
		}
	}
	return false
}

// bounds approximates the area an element covers. Text is taken as a square
// of its size around the anchor point since glyph metrics are unknown here.
func (e *Element) bounds() (image.Rectangle, bool) {
	switch {
	case e.Text != nil:
		t := e.Text
		return image.Rect(t.X-t.Size, t.Y-t.Size, t.X+t.Size, t.Y+t.Size), true
	case e.ProgressBar != nil:
		p := e.ProgressBar
		return image.Rect(p.XStart, p.YStart, p.XEnd+1, p.YEnd+1), true
	case e.Icon != nil:
		i := e.Icon
		return image.Rect(i.X, i.Y, i.X+i.Size, i.Y+i.Size), true
	}
	return image.Rectangle{}, false
}

func checkColor(tt *tagtype.TagType, name string) error {
	if strings.Contains(name, "{{") {
		return nil
	}
	_, err := ResolveColor(name, tt)
	return err
}
