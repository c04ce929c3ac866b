package led

import "log/slog"

// Null is the inert stand-in for a backend that could not be constructed.
// It keeps the name of the driver it replaced so status output can say
// which technology is missing. Every operation is a no-op returning nil.
type Null struct {
	name   string
	logger *slog.Logger
}

// NewNull creates a null device labeled with the replaced driver's name.
func NewNull(name string, logger *slog.Logger) *Null {
	if logger == nil {
		logger = slog.Default()
	}
	return &Null{name: name, logger: logger}
}

// Fill does nothing.
func (n *Null) Fill(RGB) error { return nil }

// SetPixel does nothing.
func (n *Null) SetPixel(int, RGB) error { return nil }

// Show does nothing.
func (n *Null) Show() error { return nil }

// Clear does nothing.
func (n *Null) Clear() error { return nil }

// Close does nothing.
func (n *Null) Close() error {
	n.logger.Debug("LED backend not available (null device)", "driver", n.name)
	return nil
}

// NumPixels reports 0: this device cannot render.
func (n *Null) NumPixels() int { return 0 }

// Name returns the name of the driver this device replaced.
func (n *Null) Name() string { return n.name }
