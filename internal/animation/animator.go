package animation

import (
	"context"
	"log/slog"
	"time"

	"github.com/lumispeak/medialed/internal/led"
	"github.com/lumispeak/medialed/internal/metrics"
)

// DefaultFPS is the frame rate used when configuration supplies none.
const DefaultFPS = 60

// Animator runs the periodic rainbow render loop against one device,
// normally the composite. One Animator belongs to one animation session;
// it is not reused across sessions.
type Animator struct {
	dev    led.Device
	fps    int
	logger *slog.Logger
}

// New creates an animator for the given device. Frame rates below 1 fall
// back to DefaultFPS.
func New(dev led.Device, fps int, logger *slog.Logger) *Animator {
	if fps < 1 {
		fps = DefaultFPS
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Animator{dev: dev, fps: fps, logger: logger}
}

// Run renders frames until the context is cancelled. On exit, for any
// reason, the device is cleared so the display never freezes on a stale
// frame. Run blocks; callers launch it in its own goroutine.
func (a *Animator) Run(ctx context.Context) {
	interval := time.Second / time.Duration(a.fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	defer func() {
		if err := a.dev.Clear(); err != nil {
			a.logger.Debug("Final clear failed", "error", err)
		}
	}()

	a.logger.Debug("Animation loop started", "fps", a.fps, "pixels", a.dev.NumPixels())

	for {
		select {
		case <-ctx.Done():
			a.logger.Debug("Animation loop stopped")
			return
		case <-ticker.C:
			a.renderFrame(time.Now())
		}
	}
}

// renderFrame computes and writes one frame. A failed pixel write aborts
// the remaining pixels of this frame only; the flush still runs and the
// loop continues with the next tick.
func (a *Animator) renderFrame(now time.Time) {
	start := time.Now()

	num := a.dev.NumPixels()
	if num < 1 {
		num = 1
	}

	for x, c := range FramePixels(num, now) {
		if err := a.dev.SetPixel(x, c); err != nil {
			a.logger.Debug("Pixel write failed, abandoning frame remainder", "pixel", x, "error", err)
			break
		}
	}

	if err := a.dev.Show(); err != nil {
		a.logger.Debug("Frame flush failed", "error", err)
	}

	metrics.FramesRendered.Inc()
	metrics.FrameDuration.Observe(time.Since(start).Seconds())
}
