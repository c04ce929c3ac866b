// Package led provides the LED device abstraction: concrete drivers for
// distinct wiring technologies, an inert null device, and a composite that
// fans operations out across every active backend.
package led

// RGB is one pixel color, 8 bits per channel.
type RGB struct {
	R, G, B uint8
}

// Black is the all-off color.
var Black = RGB{}

// Device is the uniform capability contract every LED backend implements.
// A device reporting NumPixels() == 0 cannot render; operations on it must
// silently succeed so callers never need to special-case absent hardware.
type Device interface {
	// Fill sets the same color on every pixel. Concrete drivers only
	// buffer; the composite flushes after fanning out.
	Fill(c RGB) error
	// SetPixel buffers one pixel. Out-of-range indexes are silently ignored.
	SetPixel(i int, c RGB) error
	// Show flushes buffered pixel state to the hardware.
	Show() error
	// Clear blanks the device: fill black, then flush.
	Clear() error
	// Close blanks the device and releases the hardware. Idempotent.
	Close() error
	// NumPixels reports the addressable pixel count, 0 if unusable.
	NumPixels() int
	// Name identifies the backend technology for logs and diagnostics.
	Name() string
}
