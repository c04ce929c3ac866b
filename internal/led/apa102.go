package led

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/apa102"
)

// APA102 drives APA102/DotStar strips over SPI via periph.io. The strip is
// clocked, so no realtime timing is needed; Show streams the RGB frame
// buffer straight to the device.
type APA102 struct {
	port   spi.PortCloser
	dev    *apa102.Dev
	frame  []byte // 3 bytes per pixel, RGB
	pixels int
	closer sync.Once
}

func newAPA102(pixels int, port string, brightness float64) (Device, error) {
	p, err := spireg.Open(port)
	if err != nil {
		return nil, fmt.Errorf("open spi port %q: %w", port, err)
	}

	opts := apa102.DefaultOpts
	opts.NumPixels = pixels
	opts.Intensity = brightnessByte(brightness)

	dev, err := apa102.New(p, &opts)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("apa102 setup: %w", err)
	}

	return &APA102{
		port:   p,
		dev:    dev,
		frame:  make([]byte, pixels*3),
		pixels: pixels,
	}, nil
}

// Fill buffers the same color into every pixel.
func (a *APA102) Fill(c RGB) error {
	for i := 0; i < a.pixels; i++ {
		a.frame[i*3] = c.R
		a.frame[i*3+1] = c.G
		a.frame[i*3+2] = c.B
	}
	return nil
}

// SetPixel buffers one pixel; out-of-range indexes are ignored.
func (a *APA102) SetPixel(i int, c RGB) error {
	if i < 0 || i >= a.pixels {
		return nil
	}
	a.frame[i*3] = c.R
	a.frame[i*3+1] = c.G
	a.frame[i*3+2] = c.B
	return nil
}

// Show streams the frame buffer to the strip.
func (a *APA102) Show() error {
	if _, err := a.dev.Write(a.frame); err != nil {
		return fmt.Errorf("apa102 write: %w", err)
	}
	return nil
}

// Clear blanks the strip.
func (a *APA102) Clear() error {
	if err := a.Fill(Black); err != nil {
		return err
	}
	return a.Show()
}

// Close blanks the strip, halts the device, and releases the SPI port.
// Idempotent.
func (a *APA102) Close() error {
	var err error
	a.closer.Do(func() {
		_ = a.Clear()
		if haltErr := a.dev.Halt(); haltErr != nil {
			err = haltErr
		}
		if closeErr := a.port.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	})
	return err
}

// NumPixels reports the configured strip length.
func (a *APA102) NumPixels() int { return a.pixels }

// Name identifies this backend.
func (a *APA102) Name() string { return "apa102" }
