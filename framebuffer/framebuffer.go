// Package framebuffer encodes images into the native buffer format of a tag
// type: quantized to the tag's color table, rotated by its buffer rotation,
// packed at its bits per pixel and optionally zlib-compressed.
package framebuffer

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/flavioheleno/opendisplay/epdimage"
	"github.com/flavioheleno/opendisplay/tagtype"
)

var (
	// ErrNoFramebuffer is returned for tag types without a pixel display.
	ErrNoFramebuffer = errors.New("framebuffer: tag type has no pixel display")
	// ErrFrameSize is returned when frame data does not match the tag type.
	ErrFrameSize = errors.New("framebuffer: frame size does not match tag type")
)

// Options controls Encode.
type Options struct {
	// Dither enables Floyd-Steinberg error diffusion instead of nearest
	// color mapping.
	Dither bool
	// Compress overrides whether the data is zlib-compressed. When nil, data
	// is compressed if the tag type declares zlib support.
	Compress *bool
}

// Frame is an encoded framebuffer.
type Frame struct {
	Width      int // Buffer width, after rotation
	Height     int // Buffer height, after rotation
	Depth      int
	Compressed bool
	Data       []byte
}

// Palette returns the tag's color table as a palette in table order,
// truncated to what its bits per pixel can address.
func Palette(tt *tagtype.TagType) color.Palette {
	table := tt.ColorTable
	if len(table) == 0 {
		table = tagtype.DefaultColorTable()
	}
	limit := 1 << epdimage.DepthFor(tt.BPP)
	if len(table) > limit {
		table = table[:limit]
	}
	pal := make(color.Palette, len(table))
	for i, c := range table {
		pal[i] = c.Color()
	}
	return pal
}

// Canvas returns a blank image in display orientation for tt, filled with
// the "white" entry (or the first entry if the table has no white).
func Canvas(tt *tagtype.TagType) (*epdimage.Packed, error) {
	if !tt.HasFramebuffer() {
		return nil, ErrNoFramebuffer
	}
	img := epdimage.NewPacked(image.Rect(0, 0, tt.Width, tt.Height), epdimage.DepthFor(tt.BPP), Palette(tt))
	if i := tt.ColorTable.Index("white"); i > 0 && i < len(img.Palette) {
		img.Fill(uint8(i))
	}
	return img, nil
}

// Quantize draws src onto a canvas for tt. Transparent areas of src show the
// canvas background.
func Quantize(src image.Image, tt *tagtype.TagType, dither bool) (*epdimage.Packed, error) {
	canvas, err := Canvas(tt)
	if err != nil {
		return nil, err
	}
	b := canvas.Bounds()
	flat := image.NewRGBA(b)
	draw.Draw(flat, b, canvas, image.Point{}, draw.Src)
	draw.Draw(flat, b, src, src.Bounds().Min, draw.Over)
	if dither {
		draw.FloydSteinberg.Draw(canvas, b, flat, image.Point{})
	} else {
		draw.Draw(canvas, b, flat, image.Point{}, draw.Src)
	}
	return canvas, nil
}

// Encode converts src into tt's native buffer.
func Encode(src image.Image, tt *tagtype.TagType, opts Options) (*Frame, error) {
	canvas, err := Quantize(src, tt, opts.Dither)
	if err != nil {
		return nil, err
	}
	return Pack(canvas, tt, opts)
}

// Pack rotates an already quantized image by tt's buffer rotation and
// serializes it.
func Pack(img *epdimage.Packed, tt *tagtype.TagType, opts Options) (*Frame, error) {
	if img.Rect.Dx() != tt.Width || img.Rect.Dy() != tt.Height {
		return nil, fmt.Errorf("%w: image is %dx%d, tag is %dx%d",
			ErrFrameSize, img.Rect.Dx(), img.Rect.Dy(), tt.Width, tt.Height)
	}
	rotated := epdimage.Rotate(img, tt.RotateBuffer)
	f := &Frame{
		Width:  rotated.Rect.Dx(),
		Height: rotated.Rect.Dy(),
		Depth:  rotated.Depth,
		Data:   rotated.Pix,
	}

	compress := tt.SupportsCompression()
	if opts.Compress != nil {
		compress = *opts.Compress
	}
	if compress {
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(f.Data); err != nil {
			return nil, fmt.Errorf("framebuffer: compress: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("framebuffer: compress: %w", err)
		}
		f.Data = buf.Bytes()
		f.Compressed = true
	}
	return f, nil
}

// Decode reverses Encode, returning the image in display orientation.
func Decode(f *Frame, tt *tagtype.TagType) (*epdimage.Packed, error) {
	if !tt.HasFramebuffer() {
		return nil, ErrNoFramebuffer
	}
	data := f.Data
	if f.Compressed {
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("framebuffer: decompress: %w", err)
		}
		data, err = io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("framebuffer: decompress: %w", err)
		}
	}

	w, h := tt.BufferSize()
	buf := epdimage.NewPacked(image.Rect(0, 0, w, h), epdimage.DepthFor(tt.BPP), Palette(tt))
	if len(data) != len(buf.Pix) {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(data), len(buf.Pix))
	}
	copy(buf.Pix, data)
	return epdimage.Rotate(buf, -tt.RotateBuffer), nil
}
