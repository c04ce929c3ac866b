// Package animation renders the playback rainbow: a hue sweep advancing
// 100 degrees per second of wall-clock time, spread across however many
// pixels the target device reports.
package animation

import (
	"math"
	"time"

	"github.com/lumispeak/medialed/internal/led"
)

// baseHue returns the rainbow's origin hue in degrees for a point in time.
// It advances 100 degrees per second in 1-degree steps, wrapping at 360.
func baseHue(now time.Time) int {
	return int((now.UnixMilli()/10)%360+360) % 360
}

// FramePixels computes one full rainbow frame for a strip of num pixels.
// Pixel 0 carries the base hue; successive pixels are offset so one full
// revolution of the color wheel spans the whole strip.
func FramePixels(num int, now time.Time) []led.RGB {
	if num < 1 {
		num = 1
	}
	spacing := 360.0 / float64(num)
	base := float64(baseHue(now))

	pixels := make([]led.RGB, num)
	for x := range pixels {
		h := math.Mod(base+float64(x)*spacing, 360) / 360.0
		r, g, b := hsvToRGB(h, 1.0, 1.0)
		pixels[x] = led.RGB{
			R: uint8(r * 255),
			G: uint8(g * 255),
			B: uint8(b * 255),
		}
	}
	return pixels
}

// hsvToRGB converts HSV (all components 0..1) to RGB in 0..1 using the
// standard sextant decomposition.
func hsvToRGB(h, s, v float64) (float64, float64, float64) {
	h = h - math.Floor(h) // 0..1
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)
	switch i % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}
