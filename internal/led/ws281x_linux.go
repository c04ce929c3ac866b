//go:build linux

package led

import (
	"fmt"
	"sync"

	ws2811 "github.com/rpi-ws281x/rpi-ws281x-go"
)

// WS281x drives WS281x/NeoPixel strips through the PWM/DMA engine via
// rpi-ws281x-go. Pixel writes go to an internal frame buffer; Show packs
// the buffer into the driver's LED array and renders.
type WS281x struct {
	dev    *ws2811.WS2811
	frame  []RGB
	closer sync.Once
}

func newWS281x(pixels int, pin string, brightness float64) (Device, error) {
	gpioPin, err := ResolvePinNumber(pin)
	if err != nil {
		return nil, fmt.Errorf("resolve ws281x pin: %w", err)
	}

	opt := ws2811.DefaultOptions
	opt.Channels[0].GpioPin = gpioPin
	opt.Channels[0].LedCount = pixels
	opt.Channels[0].Brightness = int(brightnessByte(brightness))

	dev, err := ws2811.MakeWS2811(&opt)
	if err != nil {
		return nil, fmt.Errorf("ws281x setup: %w", err)
	}
	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("ws281x init: %w", err)
	}

	return &WS281x{
		dev:   dev,
		frame: make([]RGB, pixels),
	}, nil
}

// Fill buffers the same color into every pixel.
func (w *WS281x) Fill(c RGB) error {
	for i := range w.frame {
		w.frame[i] = c
	}
	return nil
}

// SetPixel buffers one pixel; out-of-range indexes are ignored.
func (w *WS281x) SetPixel(i int, c RGB) error {
	if i < 0 || i >= len(w.frame) {
		return nil
	}
	w.frame[i] = c
	return nil
}

// Show packs the frame buffer into the DMA LED array and renders.
func (w *WS281x) Show() error {
	leds := w.dev.Leds(0)
	for i, c := range w.frame {
		if i >= len(leds) {
			break
		}
		leds[i] = uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
	}
	if err := w.dev.Render(); err != nil {
		return fmt.Errorf("ws281x render: %w", err)
	}
	if err := w.dev.Wait(); err != nil {
		return fmt.Errorf("ws281x wait: %w", err)
	}
	return nil
}

// Clear blanks the strip.
func (w *WS281x) Clear() error {
	if err := w.Fill(Black); err != nil {
		return err
	}
	return w.Show()
}

// Close blanks the strip, then releases the PWM/DMA engine. Idempotent.
func (w *WS281x) Close() error {
	w.closer.Do(func() {
		_ = w.Clear()
		w.dev.Fini()
	})
	return nil
}

// NumPixels reports the configured strip length.
func (w *WS281x) NumPixels() int { return len(w.frame) }

// Name identifies this backend.
func (w *WS281x) Name() string { return "ws281x" }
