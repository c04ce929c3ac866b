package led

import (
	"log/slog"
	"sync"

	"periph.io/x/host/v3"
)

// Config selects which backends to build and how. Pixel counts of 0 leave
// a backend effectively disabled even if its flag is set.
type Config struct {
	// Brightness applies to every backend, 0.0 to 1.0.
	Brightness float64

	WS281xEnabled bool
	WS281xPixels  int
	WS281xPin     string

	APA102Enabled bool
	APA102Pixels  int
	APA102Port    string

	BlinktEnabled bool
}

var hostInit sync.Once

// Build resolves the configured backends once at startup and wraps them in
// a composite. A backend whose constructor fails is downgraded to a null
// device with a warning; construction never returns an error to the caller.
// The worst possible outcome is a composite with zero active members, which
// renders nothing but stays fully operable.
func Build(cfg Config, logger *slog.Logger) *Composite {
	if logger == nil {
		logger = slog.Default()
	}

	hostInit.Do(func() {
		if _, err := host.Init(); err != nil {
			logger.Warn("GPIO host init failed, pin resolution degraded", "error", err)
		}
	})

	brightness := clampBrightness(cfg.Brightness)
	var devices []Device

	if cfg.WS281xEnabled {
		devices = append(devices, buildBackend(logger, "ws281x", cfg.WS281xPixels, func() (Device, error) {
			return newWS281x(cfg.WS281xPixels, cfg.WS281xPin, brightness)
		}))
	}

	if cfg.APA102Enabled {
		devices = append(devices, buildBackend(logger, "apa102", cfg.APA102Pixels, func() (Device, error) {
			return newAPA102(cfg.APA102Pixels, cfg.APA102Port, brightness)
		}))
	}

	if cfg.BlinktEnabled {
		devices = append(devices, buildBackend(logger, "blinkt", blinktPixels, func() (Device, error) {
			return newBlinkt(brightness)
		}))
	}

	composite := NewComposite(logger, devices...)
	logger.Info("LED backends resolved",
		"configured", len(devices),
		"active", len(composite.Members()),
		"pixels", composite.NumPixels())
	return composite
}

// buildBackend runs one constructor, downgrading any failure to a null
// device so a missing or miswired backend never takes the daemon down.
func buildBackend(logger *slog.Logger, name string, pixels int, construct func() (Device, error)) Device {
	if pixels <= 0 {
		logger.Warn("LED backend enabled but pixel count is 0, skipping", "driver", name)
		return NewNull(name, logger)
	}

	dev, err := construct()
	if err != nil {
		logger.Warn("LED backend unavailable, using null device", "driver", name, "error", err)
		return NewNull(name, logger)
	}

	logger.Info("LED backend ready", "driver", name, "pixels", dev.NumPixels())
	return dev
}

func clampBrightness(b float64) float64 {
	if b < 0 {
		return 0
	}
	if b > 1 {
		return 1
	}
	return b
}

// brightnessByte maps a 0.0..1.0 brightness to the 0..255 range drivers use.
func brightnessByte(b float64) uint8 {
	return uint8(clampBrightness(b) * 255)
}
