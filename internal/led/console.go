package led

import (
	"fmt"
	"image"
	"image/color"

	"periph.io/x/extra/devices/screen"
)

// Console renders frames as ANSI color cells on stdout. It is the
// development and simulation backend: `medialed simulate` uses it so the
// whole pipeline can run on a machine with no LED hardware at all. The
// production factory never constructs it.
type Console struct {
	drawer *screen.Dev
	img    *image.NRGBA
	pixels int
}

// NewConsole creates a console preview device with the given strip length.
func NewConsole(pixels int) (*Console, error) {
	if pixels <= 0 {
		return nil, fmt.Errorf("console device needs at least one pixel, got %d", pixels)
	}
	return &Console{
		drawer: screen.New(pixels),
		img:    image.NewNRGBA(image.Rect(0, 0, pixels, 1)),
		pixels: pixels,
	}, nil
}

// Fill buffers the same color into every pixel.
func (d *Console) Fill(c RGB) error {
	for i := 0; i < d.pixels; i++ {
		d.img.SetNRGBA(i, 0, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xFF})
	}
	return nil
}

// SetPixel buffers one pixel; out-of-range indexes are ignored.
func (d *Console) SetPixel(i int, c RGB) error {
	if i < 0 || i >= d.pixels {
		return nil
	}
	d.img.SetNRGBA(i, 0, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xFF})
	return nil
}

// Show prints the current frame as one line of ANSI cells.
func (d *Console) Show() error {
	return d.drawer.Draw(d.drawer.Bounds(), d.img, image.Point{})
}

// Clear blanks the preview line.
func (d *Console) Clear() error {
	if err := d.Fill(Black); err != nil {
		return err
	}
	return d.Show()
}

// Close blanks the preview; there is no hardware to release.
func (d *Console) Close() error {
	return d.Clear()
}

// NumPixels reports the configured strip length.
func (d *Console) NumPixels() int { return d.pixels }

// Name identifies this backend.
func (d *Console) Name() string { return "console" }
