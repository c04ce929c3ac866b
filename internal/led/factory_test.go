package led

import (
	"strings"
	"testing"
)

func TestBuildDowngradesUnavailableBackends(t *testing.T) {
	// None of these backends exist on a test machine; every constructor
	// must fail and be replaced by a null device, never an error.
	comp := Build(Config{
		Brightness:    0.3,
		WS281xEnabled: true,
		WS281xPixels:  28,
		WS281xPin:     "18",
		APA102Enabled: true,
		APA102Pixels:  60,
	}, testLogger())

	if comp == nil {
		t.Fatal("Build returned nil composite")
	}
	if got := comp.NumPixels(); got != 0 {
		t.Errorf("NumPixels() = %d, want 0 with no hardware present", got)
	}

	// The degraded composite stays fully operable.
	if err := comp.Fill(RGB{R: 255}); err != nil {
		t.Errorf("Fill: %v", err)
	}
	if err := comp.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestBuildSkipsZeroPixelBackends(t *testing.T) {
	comp := Build(Config{
		Brightness:    0.3,
		WS281xEnabled: true,
		WS281xPixels:  0, // enabled flag set, but no pixels configured
	}, testLogger())

	if got := len(comp.Members()); got != 0 {
		t.Errorf("active members = %d, want 0", got)
	}
}

func TestBuildNothingEnabled(t *testing.T) {
	comp := Build(Config{Brightness: 0.3}, testLogger())

	if got := comp.NumPixels(); got != 0 {
		t.Errorf("NumPixels() = %d, want 0", got)
	}
}

func TestClampBrightness(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.3, 0.3},
		{1, 1},
		{2.5, 1},
	}
	for _, tt := range tests {
		if got := clampBrightness(tt.in); got != tt.want {
			t.Errorf("clampBrightness(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBrightnessByte(t *testing.T) {
	if got := brightnessByte(1.0); got != 255 {
		t.Errorf("brightnessByte(1.0) = %d, want 255", got)
	}
	if got := brightnessByte(0); got != 0 {
		t.Errorf("brightnessByte(0) = %d, want 0", got)
	}
	if got := brightnessByte(0.3); got != 76 {
		t.Errorf("brightnessByte(0.3) = %d, want 76", got)
	}
}

func TestResolvePinNumberNumeric(t *testing.T) {
	n, err := ResolvePinNumber("18")
	if err != nil {
		t.Fatalf("ResolvePinNumber(18): %v", err)
	}
	if n != 18 {
		t.Errorf("ResolvePinNumber(18) = %d, want 18", n)
	}

	if _, err := ResolvePinNumber("-3"); err == nil {
		t.Error("ResolvePinNumber(-3) should fail")
	}
}

func TestResolvePinUnknownName(t *testing.T) {
	_, err := ResolvePin("NOT_A_REAL_PIN")
	if err == nil {
		t.Fatal("ResolvePin should fail for unknown names")
	}
	if !strings.Contains(err.Error(), "NOT_A_REAL_PIN") {
		t.Errorf("error should name the pin, got: %v", err)
	}

	if _, err := ResolvePin(""); err == nil {
		t.Error("ResolvePin should fail for empty descriptor")
	}
}
