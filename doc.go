// Package opendisplay drives OpenDisplay / OpenEPaperLink E-Paper panels
// attached directly over SPI.
//
// A panel is described by its tag type (see the tagtype package): the
// dimensions, bits per pixel, color table and buffer rotation published by
// the OpenEPaperLink project. The driver implements the display.Drawer
// interface from periph.io for UC8151-style controllers, which take a
// black/white plane and, on color tags, an accent plane.
//
// # Hardware Connection
//
//	Panel Pin   → System Pin
//	GND         → GND
//	VCC         → 3.3V
//	CLK         → SPI Clock (SCLK)
//	DIN         → SPI Data (MOSI)
//	CS          → SPI Chip Select
//	DC          → GPIO (any available pin)
//	RST         → Optional: GPIO for hardware reset
//	BUSY        → Optional: GPIO, low while the panel refreshes
//
// # Basic Usage
//
//	package main
//
//	import (
//		"image"
//		"image/color"
//
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"periph.io/x/host/v3"
//
//		"github.com/flavioheleno/opendisplay"
//		"github.com/flavioheleno/opendisplay/tagtype"
//	)
//
//	func main() {
//		host.Init()
//
//		spiBus, _ := spireg.Open("")
//		dcPin := gpioreg.ByName("GPIO25")
//
//		// 2.9" black/white/red tag
//		tt := tagtype.Fallback()[1]
//
//		dev, _ := opendisplay.NewSPI(spiBus, dcPin, tt, &opendisplay.Opts{
//			RST:  gpioreg.ByName("GPIO17"),
//			Busy: gpioreg.ByName("GPIO24"),
//		})
//		defer dev.Halt()
//
//		dev.Draw(dev.Bounds(), image.NewUniform(color.Black), image.Point{})
//	}
//
// # Drawing Modes
//
// Draw composes any image.Image onto the current frame, mapping colors to
// the nearest color table entry (or dithering with Opts.Dither) and
// refreshes the panel. A frame identical to the one on the panel is not sent
// again: E-Paper refreshes take seconds and flash the screen.
//
// Write takes a raw frame in the tag's native layout, as produced by
// framebuffer.Encode with compression disabled:
//
//	f, _ := framebuffer.Encode(img, tt, framebuffer.Options{Compress: &off})
//	dev.Write(f.Data)
//
// # Colors
//
// Pixel values are positions in the tag's color table. The black/white plane
// has a bit set for every pixel that is not black; the accent plane has a bit
// set for every pixel that is neither white nor black.
//
// # Sleep
//
// Halt puts the controller into deep sleep. The image stays on the panel
// without power. The device must be re-created to draw again.
package opendisplay
