package led

import (
	"fmt"
	"sync"

	blinkt "github.com/alexellis/blinkt_go/sysfs"
)

// blinktPixels is fixed by the Pimoroni Blinkt board wiring.
const blinktPixels = 8

// Blinkt drives the Pimoroni Blinkt 8-pixel board through bit-banged GPIO
// via blinkt_go. The wiring is fixed, so no pin configuration applies.
type Blinkt struct {
	bl     blinkt.Blinkt
	closer sync.Once
}

func newBlinkt(brightness float64) (dev Device, err error) {
	// blinkt_go panics rather than returning errors when the GPIO
	// character device is missing; convert that into a construction
	// failure so the factory can degrade to a null device.
	defer func() {
		if r := recover(); r != nil {
			dev = nil
			err = fmt.Errorf("blinkt setup: %v", r)
		}
	}()

	b := &Blinkt{bl: blinkt.NewBlinkt(brightness)}
	b.bl.Setup()
	return b, nil
}

// Fill buffers the same color into every pixel.
func (b *Blinkt) Fill(c RGB) error {
	for i := 0; i < blinktPixels; i++ {
		b.bl.SetPixel(i, int(c.R), int(c.G), int(c.B))
	}
	return nil
}

// SetPixel buffers one pixel; out-of-range indexes are ignored.
func (b *Blinkt) SetPixel(i int, c RGB) error {
	if i < 0 || i >= blinktPixels {
		return nil
	}
	b.bl.SetPixel(i, int(c.R), int(c.G), int(c.B))
	return nil
}

// Show flushes the buffered pixels to the board.
func (b *Blinkt) Show() error {
	b.bl.Show()
	return nil
}

// Clear blanks the board.
func (b *Blinkt) Clear() error {
	b.bl.Clear()
	b.bl.Show()
	return nil
}

// Close blanks the board. The GPIO lines need no explicit release.
func (b *Blinkt) Close() error {
	b.closer.Do(func() {
		b.bl.Clear()
		b.bl.Show()
	})
	return nil
}

// NumPixels reports the fixed board size.
func (b *Blinkt) NumPixels() int { return blinktPixels }

// Name identifies this backend.
func (b *Blinkt) Name() string { return "blinkt" }
