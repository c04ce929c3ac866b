package led

import (
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// mockDevice records every operation so tests can assert ordering and
// isolation. Individual operations can be made to fail.
type mockDevice struct {
	mu     sync.Mutex
	name   string
	pixels int
	frame  map[int]RGB
	calls  []string

	failShow  bool
	failClose bool
	failSet   bool
}

func newMockDevice(name string, pixels int) *mockDevice {
	return &mockDevice{name: name, pixels: pixels, frame: make(map[int]RGB)}
}

func (m *mockDevice) record(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, op)
}

func (m *mockDevice) Fill(c RGB) error {
	m.record("fill")
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < m.pixels; i++ {
		m.frame[i] = c
	}
	return nil
}

func (m *mockDevice) SetPixel(i int, c RGB) error {
	m.record("set")
	if m.failSet {
		return errors.New("set failed")
	}
	if i < 0 || i >= m.pixels {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frame[i] = c
	return nil
}

func (m *mockDevice) Show() error {
	m.record("show")
	if m.failShow {
		return errors.New("show failed")
	}
	return nil
}

func (m *mockDevice) Clear() error {
	if err := m.Fill(Black); err != nil {
		return err
	}
	return m.Show()
}

func (m *mockDevice) Close() error {
	m.record("close")
	if m.failClose {
		return errors.New("close failed")
	}
	return nil
}

func (m *mockDevice) NumPixels() int { return m.pixels }
func (m *mockDevice) Name() string   { return m.name }

func (m *mockDevice) callsCopy() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func TestCompositeNumPixelsIsMax(t *testing.T) {
	a := newMockDevice("a", 0)
	b := newMockDevice("b", 5)
	c := newMockDevice("c", 3)

	comp := NewComposite(testLogger(), a, b, c)

	if got := comp.NumPixels(); got != 5 {
		t.Errorf("NumPixels() = %d, want 5", got)
	}

	// The zero-pixel device is excluded from fan-out entirely.
	if got := len(comp.Members()); got != 2 {
		t.Errorf("active members = %d, want 2", got)
	}
}

func TestCompositeEmpty(t *testing.T) {
	comp := NewComposite(testLogger())

	if got := comp.NumPixels(); got != 0 {
		t.Errorf("NumPixels() = %d, want 0", got)
	}

	// All operations on an empty composite succeed silently.
	if err := comp.Fill(RGB{R: 255}); err != nil {
		t.Errorf("Fill on empty composite: %v", err)
	}
	if err := comp.SetPixel(3, RGB{G: 255}); err != nil {
		t.Errorf("SetPixel on empty composite: %v", err)
	}
	if err := comp.Close(); err != nil {
		t.Errorf("Close on empty composite: %v", err)
	}
}

func TestCompositeSetPixelOutOfRange(t *testing.T) {
	short := newMockDevice("short", 5)
	long := newMockDevice("long", 20)

	comp := NewComposite(testLogger(), short, long)

	color := RGB{R: 1, G: 2, B: 3}
	if err := comp.SetPixel(10, color); err != nil {
		t.Fatalf("SetPixel(10) returned error: %v", err)
	}

	if _, ok := short.frame[10]; ok {
		t.Error("short device should have ignored pixel 10")
	}
	if got := long.frame[10]; got != color {
		t.Errorf("long device pixel 10 = %v, want %v", got, color)
	}
}

func TestCompositeFillIsolatesFailures(t *testing.T) {
	bad := newMockDevice("bad", 4)
	bad.failShow = true
	good := newMockDevice("good", 4)

	comp := NewComposite(testLogger(), bad, good)

	color := RGB{R: 9, G: 9, B: 9}
	if err := comp.Fill(color); err != nil {
		t.Fatalf("Fill returned error despite isolation: %v", err)
	}

	// The good device is still filled and shown.
	if got := good.frame[0]; got != color {
		t.Errorf("good device pixel 0 = %v, want %v", got, color)
	}
	calls := good.callsCopy()
	if len(calls) == 0 || calls[len(calls)-1] != "show" {
		t.Errorf("good device calls = %v, want trailing show", calls)
	}
}

func TestCompositeCloseBlanksBeforeRelease(t *testing.T) {
	failing := newMockDevice("failing", 4)
	failing.failClose = true
	healthy := newMockDevice("healthy", 4)

	comp := NewComposite(testLogger(), failing, healthy)

	if err := comp.Close(); err != nil {
		t.Fatalf("Close returned error despite isolation: %v", err)
	}

	for _, dev := range []*mockDevice{failing, healthy} {
		calls := dev.callsCopy()
		fillIdx, closeIdx := -1, -1
		for i, c := range calls {
			if c == "fill" && fillIdx == -1 {
				fillIdx = i
			}
			if c == "close" {
				closeIdx = i
			}
		}
		if fillIdx == -1 {
			t.Errorf("%s: never blanked before close, calls=%v", dev.name, calls)
		}
		if closeIdx == -1 {
			t.Errorf("%s: close never attempted, calls=%v", dev.name, calls)
		}
		if fillIdx > closeIdx {
			t.Errorf("%s: blank must precede release, calls=%v", dev.name, calls)
		}
		if got := dev.frame[0]; got != Black {
			t.Errorf("%s: pixel 0 = %v, want black", dev.name, got)
		}
	}
}

func TestCompositeCloseIdempotent(t *testing.T) {
	dev := newMockDevice("dev", 4)
	comp := NewComposite(testLogger(), dev)

	if err := comp.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	closeCount := 0
	for _, c := range dev.callsCopy() {
		if c == "close" {
			closeCount++
		}
	}
	if closeCount != 1 {
		t.Fatalf("close called %d times after first Close, want 1", closeCount)
	}

	if err := comp.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	closeCount = 0
	for _, c := range dev.callsCopy() {
		if c == "close" {
			closeCount++
		}
	}
	if closeCount != 1 {
		t.Errorf("close called %d times after second Close, want 1 (second must be a no-op)", closeCount)
	}
}

func TestCompositeConcurrentAccess(_ *testing.T) {
	dev := newMockDevice("dev", 16)
	comp := NewComposite(testLogger(), dev)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = comp.SetPixel(i%16, RGB{R: uint8(i)})
				_ = comp.Show()
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = comp.Clear()
	}()
	wg.Wait()

	_ = comp.Close()
}

func TestNullDeviceNeverErrors(t *testing.T) {
	null := NewNull("ws281x", testLogger())

	if got := null.NumPixels(); got != 0 {
		t.Errorf("NumPixels() = %d, want 0", got)
	}
	if got := null.Name(); got != "ws281x" {
		t.Errorf("Name() = %q, want ws281x", got)
	}
	if err := null.Fill(RGB{R: 255}); err != nil {
		t.Errorf("Fill: %v", err)
	}
	if err := null.SetPixel(100, RGB{}); err != nil {
		t.Errorf("SetPixel: %v", err)
	}
	if err := null.Show(); err != nil {
		t.Errorf("Show: %v", err)
	}
	if err := null.Clear(); err != nil {
		t.Errorf("Clear: %v", err)
	}
	if err := null.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
