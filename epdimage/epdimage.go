package epdimage

import (
	"image"
	"image/color"
)

// DepthFor returns the smallest supported depth that holds bpp bits.
// Tags report 1, 2, 3 or 4 bits per pixel; 3 is stored as 4.
func DepthFor(bpp int) int {
	switch {
	case bpp <= 1:
		return 1
	case bpp == 2:
		return 2
	case bpp <= 4:
		return 4
	default:
		return 8
	}
}

// Packed is a palette-indexed image whose pixels are packed horizontally,
// most significant bits first, Depth bits per pixel.
type Packed struct {
	Pix     []byte          // Pixel data, rows padded to whole bytes
	Stride  int             // Bytes per row
	Rect    image.Rectangle // Image bounds
	Depth   int             // Bits per pixel: 1, 2, 4 or 8
	Palette color.Palette   // Index to color mapping
}

// NewPacked creates a Packed image with the given bounds, depth and palette.
// It panics if depth is unsupported or the palette does not fit the depth.
func NewPacked(r image.Rectangle, depth int, palette color.Palette) *Packed {
	switch depth {
	case 1, 2, 4, 8:
	default:
		panic("epdimage: depth must be 1, 2, 4 or 8")
	}
	if len(palette) == 0 {
		panic("epdimage: empty palette")
	}
	if len(palette) > 1<<depth {
		panic("epdimage: palette does not fit depth")
	}
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return &Packed{Rect: r, Depth: depth, Palette: palette}
	}
	stride := (w*depth + 7) / 8
	return &Packed{
		Pix:     make([]byte, stride*h),
		Stride:  stride,
		Rect:    r,
		Depth:   depth,
		Palette: palette,
	}
}

// ColorModel returns the palette.
func (p *Packed) ColorModel() color.Model {
	return p.Palette
}

// Bounds returns the image bounds.
func (p *Packed) Bounds() image.Rectangle {
	return p.Rect
}

// At returns the palette color of the pixel at (x, y).
func (p *Packed) At(x, y int) color.Color {
	idx := int(p.ColorIndexAt(x, y))
	if idx >= len(p.Palette) {
		return p.Palette[0]
	}
	return p.Palette[idx]
}

// Opaque reports whether the image is fully opaque. Framebuffers always are.
func (p *Packed) Opaque() bool {
	return true
}

// ColorIndexAt returns the palette index of the pixel at (x, y).
func (p *Packed) ColorIndexAt(x, y int) uint8 {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return 0
	}
	offset, shift := p.pixOffset(x, y)
	return (p.Pix[offset] >> shift) & p.mask()
}

// Set sets the pixel at (x, y) to the palette entry closest to c.
func (p *Packed) Set(x, y int, c color.Color) {
	p.SetColorIndex(x, y, uint8(p.Palette.Index(c)))
}

// SetColorIndex sets the palette index of the pixel at (x, y).
// This is faster than Set as it skips the color search.
func (p *Packed) SetColorIndex(x, y int, index uint8) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	offset, shift := p.pixOffset(x, y)
	m := p.mask()
	p.Pix[offset] = (p.Pix[offset] &^ (m << shift)) | ((index & m) << shift)
}

// Fill sets every pixel to index.
func (p *Packed) Fill(index uint8) {
	var b byte
	for i := 0; i < 8; i += p.Depth {
		b = b<<p.Depth | (index & p.mask())
	}
	for i := range p.Pix {
		p.Pix[i] = b
	}
}

func (p *Packed) mask() byte {
	return byte(1<<p.Depth - 1)
}

// pixOffset returns the byte offset and bit shift for the pixel at (x, y).
// The leftmost pixel of a byte occupies its most significant bits.
func (p *Packed) pixOffset(x, y int) (offset int, shift uint) {
	bit := (x - p.Rect.Min.X) * p.Depth
	offset = (y-p.Rect.Min.Y)*p.Stride + bit/8
	shift = uint(8 - p.Depth - bit%8)
	return
}

// Rotate returns a copy of p rotated clockwise by quarterTurns * 90°.
// The result's bounds start at the origin.
func Rotate(p *Packed, quarterTurns int) *Packed {
	turns := ((quarterTurns % 4) + 4) % 4
	w, h := p.Rect.Dx(), p.Rect.Dy()
	dw, dh := w, h
	if turns%2 == 1 {
		dw, dh = h, w
	}
	out := NewPacked(image.Rect(0, 0, dw, dh), p.Depth, p.Palette)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := p.ColorIndexAt(p.Rect.Min.X+x, p.Rect.Min.Y+y)
			var dx, dy int
			switch turns {
			case 0:
				dx, dy = x, y
			case 1:
				dx, dy = h-1-y, x
			case 2:
				dx, dy = w-1-x, h-1-y
			case 3:
				dx, dy = y, w-1-x
			}
			out.SetColorIndex(dx, dy, idx)
		}
	}
	return out
}

// PlanePalette is the palette of images returned by Plane: a clear bit is
// black, a set bit is white.
var PlanePalette = color.Palette{color.Gray{Y: 0}, color.Gray{Y: 0xFF}}

// Plane returns a 1bpp image of the same bounds with a bit set wherever
// set(index) holds for the source pixel.
func Plane(p *Packed, set func(index uint8) bool) *Packed {
	out := NewPacked(p.Rect, 1, PlanePalette)
	for y := p.Rect.Min.Y; y < p.Rect.Max.Y; y++ {
		for x := p.Rect.Min.X; x < p.Rect.Max.X; x++ {
			if set(p.ColorIndexAt(x, y)) {
				out.SetColorIndex(x, y, 1)
			}
		}
	}
	return out
}
