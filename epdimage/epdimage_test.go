package epdimage

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

var bwr = color.Palette{
	color.RGBA{0xFF, 0xFF, 0xFF, 0xFF},
	color.RGBA{0x00, 0x00, 0x00, 0xFF},
	color.RGBA{0xFF, 0x00, 0x00, 0xFF},
}

func TestDepthFor(t *testing.T) {
	tests := []struct {
		bpp  int
		want int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{4, 4},
		{5, 8},
		{8, 8},
	}

	for _, tt := range tests {
		if got := DepthFor(tt.bpp); got != tt.want {
			t.Errorf("DepthFor(%d) = %d, want %d", tt.bpp, got, tt.want)
		}
	}
}

func TestNewPacked(t *testing.T) {
	tests := []struct {
		name       string
		rect       image.Rectangle
		depth      int
		palette    color.Palette
		wantPanic  bool
		wantStride int
		wantPixLen int
	}{
		{"296x128 depth 2", image.Rect(0, 0, 296, 128), 2, bwr, false, 74, 9472},
		{"296x128 depth 1", image.Rect(0, 0, 296, 128), 1, bwr[:2], false, 37, 4736},
		{"odd width pads row", image.Rect(0, 0, 5, 2), 1, bwr[:2], false, 1, 2},
		{"depth 4", image.Rect(0, 0, 3, 1), 4, bwr, false, 2, 2},
		{"offset rect", image.Rect(10, 20, 18, 22), 2, bwr, false, 2, 4},
		{"depth 3 panics", image.Rect(0, 0, 8, 1), 3, bwr, true, 0, 0},
		{"palette too large panics", image.Rect(0, 0, 8, 1), 1, bwr, true, 0, 0},
		{"empty palette panics", image.Rect(0, 0, 8, 1), 1, nil, true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if (r != nil) != tt.wantPanic {
					t.Errorf("panic = %v, want panic = %v", r != nil, tt.wantPanic)
				}
			}()

			img := NewPacked(tt.rect, tt.depth, tt.palette)
			if tt.wantPanic {
				return
			}
			if img.Rect != tt.rect {
				t.Errorf("Rect = %v, want %v", img.Rect, tt.rect)
			}
			if img.Stride != tt.wantStride {
				t.Errorf("Stride = %d, want %d", img.Stride, tt.wantStride)
			}
			if len(img.Pix) != tt.wantPixLen {
				t.Errorf("len(Pix) = %d, want %d", len(img.Pix), tt.wantPixLen)
			}
		})
	}
}

func TestPackedBitPacking(t *testing.T) {
	img := NewPacked(image.Rect(0, 0, 4, 1), 2, bwr)

	img.SetColorIndex(0, 0, 1)
	img.SetColorIndex(1, 0, 0)
	img.SetColorIndex(2, 0, 2)
	img.SetColorIndex(3, 0, 3)

	// 01 00 10 11
	if img.Pix[0] != 0x4B {
		t.Errorf("Pix[0] = 0x%02X, want 0x4B", img.Pix[0])
	}

	mono := NewPacked(image.Rect(0, 0, 10, 1), 1, bwr[:2])
	mono.SetColorIndex(0, 0, 1)
	mono.SetColorIndex(9, 0, 1)
	if mono.Pix[0] != 0x80 || mono.Pix[1] != 0x40 {
		t.Errorf("Pix = % X, want 80 40", mono.Pix)
	}
}

func TestPackedSetGet(t *testing.T) {
	for _, depth := range []int{1, 2, 4, 8} {
		n := 1 << depth
		if n > 16 {
			n = 16
		}
		palette := make(color.Palette, n)
		for i := range palette {
			palette[i] = color.Gray{Y: uint8(i * 255 / (n - 1))}
		}
		img := NewPacked(image.Rect(0, 0, 7, 3), depth, palette)

		for y := 0; y < 3; y++ {
			for x := 0; x < 7; x++ {
				img.SetColorIndex(x, y, uint8((x+y)%n))
			}
		}
		for y := 0; y < 3; y++ {
			for x := 0; x < 7; x++ {
				if got, want := img.ColorIndexAt(x, y), uint8((x+y)%n); got != want {
					t.Errorf("depth %d: ColorIndexAt(%d, %d) = %d, want %d", depth, x, y, got, want)
				}
			}
		}
	}
}

func TestPackedSetUsesNearestColor(t *testing.T) {
	img := NewPacked(image.Rect(0, 0, 2, 1), 2, bwr)

	img.Set(0, 0, color.RGBA{0xE0, 0x10, 0x10, 0xFF})
	if got := img.ColorIndexAt(0, 0); got != 2 {
		t.Errorf("reddish pixel index = %d, want 2", got)
	}

	img.Set(1, 0, color.Gray{Y: 0x20})
	if got := img.ColorIndexAt(1, 0); got != 1 {
		t.Errorf("dark pixel index = %d, want 1", got)
	}

	if img.At(0, 0) != bwr[2] {
		t.Errorf("At(0, 0) = %v, want %v", img.At(0, 0), bwr[2])
	}
}

func TestPackedOutOfBounds(t *testing.T) {
	img := NewPacked(image.Rect(0, 0, 4, 4), 2, bwr)

	img.SetColorIndex(-1, 0, 2)
	img.SetColorIndex(0, -1, 2)
	img.SetColorIndex(4, 0, 2)

	for i, b := range img.Pix {
		if b != 0 {
			t.Errorf("Pix[%d] = 0x%02X after out-of-bounds writes, want 0", i, b)
		}
	}
	if got := img.ColorIndexAt(4, 4); got != 0 {
		t.Errorf("ColorIndexAt(4, 4) = %d, want 0", got)
	}
}

func TestPackedOffsetRect(t *testing.T) {
	img := NewPacked(image.Rect(100, 50, 104, 52), 2, bwr)
	img.SetColorIndex(100, 50, 2)

	if got := img.ColorIndexAt(100, 50); got != 2 {
		t.Errorf("ColorIndexAt(100, 50) = %d, want 2", got)
	}
	if img.Pix[0]>>6 != 2 {
		t.Errorf("Pix[0]>>6 = %d, want 2", img.Pix[0]>>6)
	}
}

func TestPackedPixOffset(t *testing.T) {
	img := NewPacked(image.Rect(0, 0, 8, 2), 2, bwr)

	tests := []struct {
		x, y   int
		offset int
		shift  uint
	}{
		{0, 0, 0, 6},
		{1, 0, 0, 4},
		{3, 0, 0, 0},
		{4, 0, 1, 6},
		{0, 1, 2, 6},
		{7, 1, 3, 0},
	}

	for _, tt := range tests {
		offset, shift := img.pixOffset(tt.x, tt.y)
		if offset != tt.offset || shift != tt.shift {
			t.Errorf("pixOffset(%d, %d) = (%d, %d), want (%d, %d)",
				tt.x, tt.y, offset, shift, tt.offset, tt.shift)
		}
	}
}

func TestPackedFill(t *testing.T) {
	img := NewPacked(image.Rect(0, 0, 8, 1), 2, bwr)
	img.Fill(2)
	if img.Pix[0] != 0xAA || img.Pix[1] != 0xAA {
		t.Errorf("Pix = % X, want AA AA", img.Pix)
	}
}

func TestPackedAsDrawTarget(t *testing.T) {
	img := NewPacked(image.Rect(0, 0, 4, 4), 2, bwr)
	draw.Draw(img, image.Rect(0, 0, 2, 4), image.NewUniform(color.RGBA{0xFF, 0, 0, 0xFF}), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(2, 0, 4, 4), image.NewUniform(color.Black), image.Point{}, draw.Src)

	for y := 0; y < 4; y++ {
		if got := img.ColorIndexAt(0, y); got != 2 {
			t.Errorf("ColorIndexAt(0, %d) = %d, want 2", y, got)
		}
		if got := img.ColorIndexAt(3, y); got != 1 {
			t.Errorf("ColorIndexAt(3, %d) = %d, want 1", y, got)
		}
	}
}

func TestRotate(t *testing.T) {
	// 3x2 source:
	//   0 1 2
	//   2 1 0
	src := NewPacked(image.Rect(0, 0, 3, 2), 2, bwr)
	vals := [2][3]uint8{{0, 1, 2}, {2, 1, 0}}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			src.SetColorIndex(x, y, vals[y][x])
		}
	}

	tests := []struct {
		turns int
		want  [][]uint8
	}{
		{0, [][]uint8{{0, 1, 2}, {2, 1, 0}}},
		{1, [][]uint8{{2, 0}, {1, 1}, {0, 2}}},
		{2, [][]uint8{{0, 1, 2}, {2, 1, 0}}},
		{3, [][]uint8{{2, 0}, {1, 1}, {0, 2}}},
		{-1, [][]uint8{{2, 0}, {1, 1}, {0, 2}}},
	}

	for _, tt := range tests {
		got := Rotate(src, tt.turns)
		if got.Rect.Dy() != len(tt.want) || got.Rect.Dx() != len(tt.want[0]) {
			t.Fatalf("Rotate(%d) bounds = %v", tt.turns, got.Rect)
		}
		for y, row := range tt.want {
			for x, want := range row {
				if v := got.ColorIndexAt(x, y); v != want {
					t.Errorf("Rotate(%d) at (%d, %d) = %d, want %d", tt.turns, x, y, v, want)
				}
			}
		}
	}
}

func TestPlane(t *testing.T) {
	img := NewPacked(image.Rect(0, 0, 8, 1), 2, bwr)
	for x := 0; x < 8; x++ {
		img.SetColorIndex(x, 0, uint8(x%3))
	}

	red := Plane(img, func(i uint8) bool { return i == 2 })
	// indices 0 1 2 0 1 2 0 1 -> 0 0 1 0 0 1 0 0
	if red.Depth != 1 || red.Pix[0] != 0x24 {
		t.Errorf("red plane = % X (depth %d), want 24 (depth 1)", red.Pix, red.Depth)
	}
}
