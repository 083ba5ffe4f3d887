package opendisplay

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/flavioheleno/opendisplay/epdimage"
	"github.com/flavioheleno/opendisplay/framebuffer"
	"github.com/flavioheleno/opendisplay/tagtype"
)

// Controller commands.
const (
	cmdPanelSetting  = 0x00
	cmdPowerOn       = 0x04
	cmdDeepSleep     = 0x07
	cmdDataBW        = 0x10
	cmdRefresh       = 0x12
	cmdDataAccent    = 0x13
	cmdResolution    = 0x61
	deepSleepCheck   = 0xA5
	panelSettingBW   = 0x1F
	panelSettingBWR  = 0x0F
	resetDelay       = 10 * time.Millisecond
	busyPollInterval = 10 * time.Millisecond
)

// DefaultBusyTimeout bounds how long the driver waits for a refresh.
const DefaultBusyTimeout = 20 * time.Second

var (
	errHalted = errors.New("opendisplay: halted")
	// ErrBusyTimeout is returned when the panel stays busy past BusyTimeout.
	ErrBusyTimeout = errors.New("opendisplay: timed out waiting for busy pin")
)

// Opts is the configuration for the panel.
type Opts struct {
	RST  gpio.PinOut // Reset pin (optional)
	Busy gpio.PinIn  // Busy pin, low while busy (optional)

	// BusyTimeout defaults to DefaultBusyTimeout.
	BusyTimeout time.Duration

	// Dither makes Draw use Floyd-Steinberg error diffusion.
	Dither bool
}

// Dev is the device handle for an E-Paper panel laid out like tt.
type Dev struct {
	c    conn.Conn
	dc   gpio.PinOut
	rst  gpio.PinOut
	busy gpio.PinIn

	busyTimeout time.Duration
	dither      bool

	tt      *tagtype.TagType
	rect    image.Rectangle
	table   tagtype.ColorTable // Entries addressable at the tag's depth
	palette color.Palette
	accent  bool

	next *epdimage.Packed // Frame being composed
	last []byte           // Pixels of the last refreshed frame

	halted bool
}

// NewSPI creates a new panel connected via SPI, sized and colored after tt.
//
// The SPI port is configured for 4MHz, Mode0, 8-bit transfers. The dc
// (Data/Command) GPIO pin must be provided.
func NewSPI(p spi.Port, dc gpio.PinOut, tt *tagtype.TagType, opts *Opts) (*Dev, error) {
	if tt == nil {
		return nil, errors.New("opendisplay: tag type is required")
	}
	if !tt.HasFramebuffer() {
		return nil, fmt.Errorf("opendisplay: %s: %w", tt, framebuffer.ErrNoFramebuffer)
	}
	if opts == nil {
		opts = &Opts{}
	}

	c, err := p.Connect(4*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, err
	}

	d := &Dev{
		c:           c,
		dc:          dc,
		rst:         opts.RST,
		busy:        opts.Busy,
		busyTimeout: opts.BusyTimeout,
		dither:      opts.Dither,
		tt:          tt,
		rect:        image.Rect(0, 0, tt.Width, tt.Height),
		palette:     framebuffer.Palette(tt),
	}
	if d.busyTimeout <= 0 {
		d.busyTimeout = DefaultBusyTimeout
	}
	d.table = tt.ColorTable
	if len(d.table) == 0 {
		d.table = tagtype.DefaultColorTable()
	}
	d.table = d.table[:len(d.palette)]
	for _, nc := range d.table {
		if nc.Name != "white" && nc.Name != "black" {
			d.accent = true
		}
	}
	if d.busy != nil {
		if err := d.busy.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("opendisplay: failed to configure busy pin: %w", err)
		}
	}

	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

// init resets the controller, powers it on and programs the resolution.
func (d *Dev) init() error {
	if d.rst != nil {
		if err := d.rst.Out(gpio.Low); err != nil {
			return fmt.Errorf("opendisplay: failed to pull RST low: %w", err)
		}
		time.Sleep(resetDelay)
		if err := d.rst.Out(gpio.High); err != nil {
			return fmt.Errorf("opendisplay: failed to pull RST high: %w", err)
		}
		time.Sleep(resetDelay)
	}

	if err := d.command(cmdPowerOn); err != nil {
		return err
	}
	if err := d.waitBusy(); err != nil {
		return err
	}

	setting := byte(panelSettingBW)
	if d.accent {
		setting = panelSettingBWR
	}
	if err := d.command(cmdPanelSetting, setting); err != nil {
		return err
	}

	// The controller addresses RAM in buffer orientation.
	w, h := d.tt.BufferSize()
	return d.command(cmdResolution, byte(w>>8), byte(w), byte(h>>8), byte(h))
}

// command sends cmd followed by its data bytes.
func (d *Dev) command(cmd byte, data ...byte) error {
	if err := d.sendCommands([]byte{cmd}); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return d.sendData(data)
}

// sendCommands sends a slice of command bytes.
func (d *Dev) sendCommands(cmds []byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	return d.c.Tx(cmds, nil)
}

// sendData sends a slice of data bytes.
func (d *Dev) sendData(data []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	return d.c.Tx(data, nil)
}

// waitBusy blocks until the busy pin is released. Without a busy pin it
// returns immediately.
func (d *Dev) waitBusy() error {
	if d.busy == nil {
		return nil
	}
	deadline := time.Now().Add(d.busyTimeout)
	for d.busy.Read() == gpio.Low {
		if time.Now().After(deadline) {
			return ErrBusyTimeout
		}
		time.Sleep(busyPollInterval)
	}
	return nil
}

// ColorModel returns the tag's palette.
func (d *Dev) ColorModel() color.Model {
	return d.palette
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// TagType returns the tag type the panel was configured with.
func (d *Dev) TagType() *tagtype.TagType {
	return d.tt
}

// Draw composes src onto the frame and refreshes the panel. A frame equal
// to the one last shown is not refreshed again.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return errHalted
	}
	if d.next == nil {
		canvas, err := framebuffer.Canvas(d.tt)
		if err != nil {
			return err
		}
		d.next = canvas
	}

	dst = dst.Intersect(d.rect)
	if dst.Empty() {
		return nil
	}

	// Fast path: a full frame already in the tag's layout
	if p, ok := src.(*epdimage.Packed); ok {
		zeroPoint := image.Point{}
		if dst == d.rect && sp == zeroPoint && p.Rect == d.rect && p.Depth == d.next.Depth && len(p.Palette) == len(d.palette) {
			copy(d.next.Pix, p.Pix)
			return d.show()
		}
	}

	if d.dither {
		draw.FloydSteinberg.Draw(d.next, dst, src, sp)
	} else {
		draw.Draw(d.next, dst, src, sp, draw.Src)
	}
	return d.show()
}

// Write refreshes the panel with a raw frame in the tag's native layout, as
// produced by framebuffer.Encode without compression.
func (d *Dev) Write(pixels []byte) (int, error) {
	if d.halted {
		return 0, errHalted
	}
	img, err := framebuffer.Decode(&framebuffer.Frame{Data: pixels}, d.tt)
	if err != nil {
		return 0, err
	}
	d.next = img
	if err := d.show(); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Clear fills the panel with white.
func (d *Dev) Clear() error {
	if d.halted {
		return errHalted
	}
	canvas, err := framebuffer.Canvas(d.tt)
	if err != nil {
		return err
	}
	d.next = canvas
	return d.show()
}

// show sends d.next unless it is already on the panel.
func (d *Dev) show() error {
	if d.last != nil && bytes.Equal(d.last, d.next.Pix) {
		return nil
	}
	if err := d.refresh(epdimage.Rotate(d.next, d.tt.RotateBuffer)); err != nil {
		return err
	}
	d.last = append(d.last[:0], d.next.Pix...)
	return nil
}

// refresh splits buf into planes, uploads them and triggers a refresh.
// In the black/white plane a set bit is white; in the accent plane a set
// bit is the tag's accent color.
func (d *Dev) refresh(buf *epdimage.Packed) error {
	table := d.table
	black := table.Index("black")
	bw := epdimage.Plane(buf, func(i uint8) bool { return int(i) != black })
	if err := d.command(cmdDataBW, bw.Pix...); err != nil {
		return err
	}
	if d.accent {
		red := epdimage.Plane(buf, func(i uint8) bool {
			if int(i) >= len(table) {
				return false
			}
			name := table[i].Name
			return name != "white" && name != "black"
		})
		if err := d.command(cmdDataAccent, red.Pix...); err != nil {
			return err
		}
	}
	if err := d.command(cmdRefresh); err != nil {
		return err
	}
	return d.waitBusy()
}

// Halt puts the panel into deep sleep. The image stays visible; the device
// must be re-created to draw again.
func (d *Dev) Halt() error {
	if d.halted {
		return nil
	}
	d.halted = true
	return d.command(cmdDeepSleep, deepSleepCheck)
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	name := ""
	if d.tt != nil {
		name = " " + d.tt.Name
	}
	return fmt.Sprintf("opendisplay.Dev{%dx%d%s}", d.rect.Dx(), d.rect.Dy(), name)
}
