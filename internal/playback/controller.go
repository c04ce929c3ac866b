// Package playback maps playback notifications to the animation lifecycle:
// start the rainbow on play/resume, stop and clear on pause/stop, with a
// single idempotent teardown shared by every shutdown path.
package playback

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lumispeak/medialed/internal/animation"
	"github.com/lumispeak/medialed/internal/events"
	"github.com/lumispeak/medialed/internal/led"
	"github.com/lumispeak/medialed/internal/metrics"
)

// DefaultStopTimeout bounds how long stopAnimation waits for the render
// loop to acknowledge cancellation before proceeding without it.
const DefaultStopTimeout = time.Second

// session is one ephemeral animation run. Exactly one may exist at a time.
type session struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Controller is the playback state machine. States are Idle and Animating;
// play/resume signals and a "playing" player state move it to Animating,
// pause/stop signals and "paused"/"stopped" states move it back to Idle.
// Duplicate signals in either direction are no-ops, which makes the
// controller safe against bus event duplication and reordering.
type Controller struct {
	dev    led.Device
	bus    *events.Bus
	fps    int
	logger *slog.Logger

	mu          sync.Mutex
	current     *session
	stopTimeout time.Duration

	shutdownOnce sync.Once
	unsubs       []func()
}

// Option configures a Controller.
type Option func(*Controller)

// WithStopTimeout overrides how long a stop waits for the animation
// goroutine to exit before abandoning it.
func WithStopTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.stopTimeout = d
	}
}

// NewController creates a controller driving the given device, normally
// the composite built at startup.
func NewController(dev led.Device, bus *events.Bus, fps int, logger *slog.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		dev:         dev,
		bus:         bus,
		fps:         fps,
		logger:      logger,
		stopTimeout: DefaultStopTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start subscribes the controller to playback events on the in-process bus.
func (c *Controller) Start() {
	c.unsubs = append(c.unsubs,
		c.bus.Subscribe(func(e events.PlaybackCommandEvent) {
			c.handleCommand(e)
		}),
		c.bus.Subscribe(func(e events.PlayerStateEvent) {
			c.HandlePlayerState(e.State)
		}),
	)
	c.logger.Info("Playback controller started", "fps", c.fps, "pixels", c.dev.NumPixels())
}

// Animating reports whether an animation session is currently active.
func (c *Controller) Animating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

func (c *Controller) handleCommand(e events.PlaybackCommandEvent) {
	switch e.Action {
	case events.ActionStart:
		c.StartAnimation()
	case events.ActionStop:
		c.StopAnimation()
	default:
		c.logger.Debug("Ignoring unknown playback action", "action", e.Action, "source", e.Source)
	}
}

// HandlePlayerState interprets a raw player state string. The comparison
// is case-insensitive; anything that is not playing/paused/stopped is
// ignored because player implementations emit transient states (such as
// buffering) that should not touch the LEDs.
func (c *Controller) HandlePlayerState(state string) {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case "playing":
		c.StartAnimation()
	case "paused", "stopped":
		c.StopAnimation()
	default:
		c.logger.Debug("Ignoring player state", "state", state)
	}
}

// StartAnimation launches the rainbow loop. A no-op when already animating:
// no duplicate goroutine, no side effects at all.
func (c *Controller) StartAnimation() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{cancel: cancel, done: make(chan struct{})}
	c.current = s

	animator := animation.New(c.dev, c.fps, c.logger)
	go func() {
		defer close(s.done)
		animator.Run(ctx)
	}()

	metrics.AnimationRunning.Set(1)
	c.logger.Info("Animation started", "pixels", c.dev.NumPixels())
	c.publishState(true)
}

// StopAnimation cancels the running session and clears the display. A
// no-op when idle. The wait for the render goroutine is bounded: an
// abandoned goroutine self-terminates on its next tick and the final clear
// overwrites anything it managed to draw, so proceeding is safe.
func (c *Controller) StopAnimation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Controller) stopLocked() {
	s := c.current
	if s == nil {
		return
	}

	s.cancel()
	select {
	case <-s.done:
	case <-time.After(c.stopTimeout):
		c.logger.Warn("Animation goroutine did not stop in time, abandoning", "timeout", c.stopTimeout)
	}
	c.current = nil

	if err := c.dev.Clear(); err != nil {
		c.logger.Debug("Clear after stop failed", "error", err)
	}

	metrics.AnimationRunning.Set(0)
	c.logger.Info("Animation stopped")
	c.publishState(false)
}

// Shutdown is the single teardown used by the signal handler, the normal
// exit path, and any explicit call: stop the animation, then close the
// device. Only the first invocation does anything.
func (c *Controller) Shutdown() {
	c.shutdownOnce.Do(func() {
		for _, unsub := range c.unsubs {
			unsub()
		}
		c.unsubs = nil

		c.mu.Lock()
		c.stopLocked()
		c.mu.Unlock()

		if err := c.dev.Close(); err != nil {
			c.logger.Warn("Device close failed", "error", err)
		}
		c.logger.Info("Playback controller shut down")
	})
}

func (c *Controller) publishState(running bool) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(events.AnimationStateEvent{
		Running:   running,
		Pixels:    c.dev.NumPixels(),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
