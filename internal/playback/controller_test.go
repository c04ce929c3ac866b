package playback

import (
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lumispeak/medialed/internal/events"
	"github.com/lumispeak/medialed/internal/led"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// countingDevice tracks clears and closes for lifecycle assertions.
type countingDevice struct {
	mu     sync.Mutex
	pixels int
	clears int
	closes int
	shows  atomic.Int64
}

func newCountingDevice(pixels int) *countingDevice {
	return &countingDevice{pixels: pixels}
}

func (d *countingDevice) Fill(led.RGB) error          { return nil }
func (d *countingDevice) SetPixel(int, led.RGB) error { return nil }

func (d *countingDevice) Show() error {
	d.shows.Add(1)
	return nil
}

func (d *countingDevice) Clear() error {
	d.mu.Lock()
	d.clears++
	d.mu.Unlock()
	return nil
}

func (d *countingDevice) Close() error {
	d.mu.Lock()
	d.closes++
	d.mu.Unlock()
	return nil
}

func (d *countingDevice) NumPixels() int { return d.pixels }
func (d *countingDevice) Name() string   { return "counting" }

func (d *countingDevice) counts() (clears, closes int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clears, d.closes
}

func newTestController(t *testing.T, dev led.Device) *Controller {
	t.Helper()
	c := NewController(dev, events.New(), 120, testLogger())
	t.Cleanup(c.Shutdown)
	return c
}

func TestStartStopTransitions(t *testing.T) {
	dev := newCountingDevice(8)
	c := newTestController(t, dev)

	if c.Animating() {
		t.Fatal("controller should start Idle")
	}

	c.StartAnimation()
	if !c.Animating() {
		t.Fatal("controller should be Animating after start")
	}

	c.StopAnimation()
	if c.Animating() {
		t.Fatal("controller should be Idle after stop")
	}

	clears, _ := dev.counts()
	if clears == 0 {
		t.Error("stop must clear the device")
	}
}

func TestStartIsIdempotent(t *testing.T) {
	dev := newCountingDevice(8)
	c := newTestController(t, dev)

	c.StartAnimation()
	first := c.current
	c.StartAnimation()
	c.StartAnimation()

	if c.current != first {
		t.Error("duplicate start must not replace the running session")
	}

	c.StopAnimation()
}

func TestStopIsIdempotent(t *testing.T) {
	dev := newCountingDevice(8)
	c := newTestController(t, dev)

	c.StartAnimation()
	c.StopAnimation()
	clearsAfterFirst, _ := dev.counts()

	// Duplicate stops must produce zero side effects.
	c.StopAnimation()
	c.StopAnimation()
	clearsAfterDup, _ := dev.counts()

	if clearsAfterDup != clearsAfterFirst {
		t.Errorf("duplicate stop cleared again: %d -> %d", clearsAfterFirst, clearsAfterDup)
	}
}

func TestStopBeforeStartIsNoop(t *testing.T) {
	dev := newCountingDevice(8)
	c := newTestController(t, dev)

	c.StopAnimation()

	clears, closes := dev.counts()
	if clears != 0 || closes != 0 {
		t.Errorf("stop while Idle touched the device: clears=%d closes=%d", clears, closes)
	}
}

func TestPlayerStateCaseInsensitive(t *testing.T) {
	dev := newCountingDevice(8)
	c := newTestController(t, dev)

	c.HandlePlayerState("PLAYING")
	if !c.Animating() {
		t.Fatal("mixed-case playing must start the animation")
	}

	c.HandlePlayerState("PAUSED")
	if c.Animating() {
		t.Fatal("mixed-case paused must stop the animation")
	}

	clears, _ := dev.counts()
	if clears == 0 {
		t.Error("paused must clear the device")
	}
}

func TestPlayerStateUnknownIgnored(t *testing.T) {
	dev := newCountingDevice(8)
	c := newTestController(t, dev)

	c.HandlePlayerState("buffering")
	c.HandlePlayerState("")
	c.HandlePlayerState("PlayerState.UNKNOWN")

	if c.Animating() {
		t.Error("unknown states must not start the animation")
	}
	clears, _ := dev.counts()
	if clears != 0 {
		t.Error("unknown states must not clear the device")
	}
}

func TestBusEventsDriveController(t *testing.T) {
	dev := newCountingDevice(8)
	bus := events.New()
	c := NewController(dev, bus, 120, testLogger())
	t.Cleanup(c.Shutdown)
	c.Start()

	stateCh := make(chan events.AnimationStateEvent, 4)
	unsub := bus.Subscribe(func(e events.AnimationStateEvent) {
		stateCh <- e
	})
	defer unsub()

	bus.Publish(events.PlaybackCommandEvent{Action: events.ActionStart, Source: "media.player.play"})

	select {
	case e := <-stateCh:
		if !e.Running {
			t.Errorf("expected running=true, got %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no animation state published after start command")
	}

	bus.Publish(events.PlayerStateEvent{State: "Stopped", Source: "media.player.state"})

	select {
	case e := <-stateCh:
		if e.Running {
			t.Errorf("expected running=false, got %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no animation state published after stop state")
	}
}

func TestShutdownRunsOnce(t *testing.T) {
	dev := newCountingDevice(8)
	c := NewController(dev, events.New(), 120, testLogger())

	c.StartAnimation()

	// Signal path, then explicit call: the teardown must run exactly once.
	c.Shutdown()
	clears1, closes1 := dev.counts()
	if closes1 != 1 {
		t.Fatalf("device closed %d times after first shutdown, want 1", closes1)
	}

	c.Shutdown()
	clears2, closes2 := dev.counts()
	if closes2 != closes1 || clears2 != clears1 {
		t.Errorf("second shutdown had side effects: clears %d->%d closes %d->%d",
			clears1, clears2, closes1, closes2)
	}

	if c.Animating() {
		t.Error("controller must be Idle after shutdown")
	}
}

func TestStartAfterStopDoesNotLeak(t *testing.T) {
	dev := newCountingDevice(8)
	c := newTestController(t, dev)

	// Rapid start/stop cycles: each start must wait for the previous
	// session to settle under the controller lock, never stacking tasks.
	for i := 0; i < 10; i++ {
		c.StartAnimation()
		c.StopAnimation()
	}

	if c.Animating() {
		t.Error("controller should end Idle")
	}
	if c.current != nil {
		t.Error("no session may survive a stop")
	}
}

func TestStopProceedsAfterTimeout(t *testing.T) {
	dev := newCountingDevice(8)
	c := NewController(dev, events.New(), 120, testLogger(), WithStopTimeout(10*time.Millisecond))
	t.Cleanup(c.Shutdown)

	// Simulate a wedged session whose goroutine never acknowledges.
	c.mu.Lock()
	c.current = &session{cancel: func() {}, done: make(chan struct{})}
	c.mu.Unlock()

	start := time.Now()
	c.StopAnimation()
	elapsed := time.Since(start)

	if elapsed > time.Second {
		t.Errorf("stop blocked for %v despite bounded wait", elapsed)
	}
	if c.Animating() {
		t.Error("controller must flip to Idle even when the task is abandoned")
	}
	clears, _ := dev.counts()
	if clears == 0 {
		t.Error("the final clear must still run after an abandoned task")
	}
}
