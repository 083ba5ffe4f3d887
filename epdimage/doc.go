// Package epdimage provides a packed, palette-indexed image format for
// E-Paper framebuffers.
//
// E-Paper controllers store pixels as indices into a small color table,
// packed horizontally and most significant bit first. A Packed image has a
// depth of 1, 2, 4 or 8 bits per pixel; each row is padded to a whole byte.
//
// Memory layout example for a 4-pixel row at depth 2:
//
//	Pixels:  0  1  2  3
//	Indices: 1  0  2  3
//	Byte:    0b01_00_10_11 = 0x4B
//
// This package provides:
//
// - Packed: an image.PalettedImage that is also a draw.Image
// - DepthFor: maps a tag's bits per pixel to a supported depth
// - Rotate: quarter-turn clockwise rotation
// - Plane: extraction of a 1bpp bitmap selected by color index
//
// Example usage:
//
//	pal := color.Palette{color.White, color.Black, color.RGBA{255, 0, 0, 255}}
//	img := epdimage.NewPacked(image.Rect(0, 0, 296, 128), 2, pal)
//
//	// Fill with white, then set one pixel to red by index
//	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
//	img.SetColorIndex(10, 20, 2)
//
//	// Dither any image onto the palette
//	draw.FloydSteinberg.Draw(img, img.Bounds(), photo, image.Point{})
package epdimage
