package led

import (
	"log/slog"
	"sync"

	"github.com/lumispeak/medialed/internal/metrics"
)

// Composite presents multiple heterogeneous LED backends as one logical
// display. Every operation fans out to each active member independently:
// one failing driver never blocks or corrupts the others. A single mutex
// serializes all mutating operations, so the animation goroutine, the API
// clear handler, and the shutdown path can never interleave writes to the
// same underlying driver.
type Composite struct {
	mu      sync.Mutex
	members []Device
	logger  *slog.Logger
	closed  bool
}

// NewComposite builds a composite over the given devices. Devices that
// report zero pixels (null devices, empty strips) are excluded from the
// fan-out; they can render nothing and their operations are no-ops anyway.
func NewComposite(logger *slog.Logger, devices ...Device) *Composite {
	if logger == nil {
		logger = slog.Default()
	}

	active := make([]Device, 0, len(devices))
	for _, d := range devices {
		if d == nil {
			continue
		}
		if d.NumPixels() <= 0 {
			logger.Debug("Excluding backend from fan-out", "driver", d.Name(), "pixels", d.NumPixels())
			continue
		}
		active = append(active, d)
	}

	return &Composite{members: active, logger: logger}
}

// Members returns the active devices, in fan-out order.
func (c *Composite) Members() []Device {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Device, len(c.members))
	copy(out, c.members)
	return out
}

// NumPixels reports the maximum pixel count across members, so shorter
// strips simply ignore out-of-range writes instead of truncating longer
// ones. Returns 0 when no backend is active.
func (c *Composite) NumPixels() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.numPixelsLocked()
}

func (c *Composite) numPixelsLocked() int {
	maxPixels := 0
	for _, m := range c.members {
		if n := m.NumPixels(); n > maxPixels {
			maxPixels = n
		}
	}
	return maxPixels
}

// Name identifies the composite in logs.
func (c *Composite) Name() string { return "composite" }

// Fill applies the same color to every pixel of every member, then flushes.
func (c *Composite) Fill(color RGB) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, m := range c.members {
		if err := m.Fill(color); err != nil {
			c.driverError(m, "fill", err)
		}
	}
	c.showLocked()
	return nil
}

// SetPixel writes one pixel on every member. Members with fewer pixels
// ignore the index; no failure escapes to the caller.
func (c *Composite) SetPixel(i int, color RGB) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, m := range c.members {
		if err := m.SetPixel(i, color); err != nil {
			c.driverError(m, "set_pixel", err)
		}
	}
	return nil
}

// Show flushes pending pixel state on every member.
func (c *Composite) Show() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showLocked()
	return nil
}

func (c *Composite) showLocked() {
	for _, m := range c.members {
		if err := m.Show(); err != nil {
			c.driverError(m, "show", err)
		}
	}
}

// Clear blanks every member: fill black, then flush.
func (c *Composite) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
	return nil
}

func (c *Composite) clearLocked() {
	for _, m := range c.members {
		if err := m.Fill(Black); err != nil {
			c.driverError(m, "clear", err)
		}
	}
	c.showLocked()
}

// Close is the final authoritative cleanup. Every member is blanked FIRST,
// so the display goes dark even if a release fails, THEN each member is
// released, with failures isolated per driver. Redundant calls are no-ops.
func (c *Composite) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	c.clearLocked()

	for _, m := range c.members {
		if err := m.Close(); err != nil {
			c.driverError(m, "close", err)
		}
	}

	c.logger.Info("Composite device closed", "drivers", len(c.members))
	return nil
}

func (c *Composite) driverError(m Device, op string, err error) {
	metrics.DriverErrors.WithLabelValues(m.Name(), op).Inc()
	c.logger.Debug("LED driver operation failed", "driver", m.Name(), "op", op, "error", err)
}
