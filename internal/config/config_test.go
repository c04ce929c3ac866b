package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// daemonOptions mirrors the shape of the daemon's real options struct:
// a Config path field plus tagged fields covering every supported kind.
type daemonOptions struct {
	Config string `help:"Config file path"`

	Port          string   `toml:"server.port" env:"SERVER_PORT"`
	BusURL        string   `toml:"bus.url" env:"BUS_URL"`
	LEDBrightness float64  `toml:"led.brightness" env:"LED_BRIGHTNESS"`
	LEDFPS        int      `toml:"led.fps" env:"LED_FPS"`
	WS281xEnabled bool     `toml:"led.ws281x.enabled" env:"WS281X_ENABLED"`
	Subjects      []string `toml:"bus.subjects" env:"BUS_SUBJECTS"`
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigFromTOML(t *testing.T) {
	path := writeConfigFile(t, `
[server]
port = ":9000"

[bus]
url = "nats://10.0.0.5:4222"
subjects = ["media.player.play", "media.player.stop"]

[led]
brightness = 0.75
fps = 30

[led.ws281x]
enabled = true
`)

	opts := &daemonOptions{Config: path}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if opts.Port != ":9000" {
		t.Errorf("Port = %q, want :9000", opts.Port)
	}
	if opts.BusURL != "nats://10.0.0.5:4222" {
		t.Errorf("BusURL = %q, want nats://10.0.0.5:4222", opts.BusURL)
	}
	if opts.LEDBrightness != 0.75 {
		t.Errorf("LEDBrightness = %v, want 0.75", opts.LEDBrightness)
	}
	if opts.LEDFPS != 30 {
		t.Errorf("LEDFPS = %d, want 30", opts.LEDFPS)
	}
	if !opts.WS281xEnabled {
		t.Error("WS281xEnabled should be true")
	}
	wantSubjects := []string{"media.player.play", "media.player.stop"}
	if !reflect.DeepEqual(opts.Subjects, wantSubjects) {
		t.Errorf("Subjects = %v, want %v", opts.Subjects, wantSubjects)
	}
}

func TestLoadConfigIntegerBrightness(t *testing.T) {
	// TOML `brightness = 1` decodes as int64; the float field must still
	// pick it up.
	path := writeConfigFile(t, "[led]\nbrightness = 1\n")

	opts := &daemonOptions{Config: path}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if opts.LEDBrightness != 1.0 {
		t.Errorf("LEDBrightness = %v, want 1.0", opts.LEDBrightness)
	}
}

func TestLoadConfigFromEnvVars(t *testing.T) {
	t.Setenv("MEDIALED_SERVER_PORT", ":7777")
	t.Setenv("MEDIALED_LED_BRIGHTNESS", "0.5")
	t.Setenv("MEDIALED_LED_FPS", "24")
	t.Setenv("MEDIALED_WS281X_ENABLED", "true")
	t.Setenv("MEDIALED_BUS_SUBJECTS", "a,b,c")

	opts := &daemonOptions{}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if opts.Port != ":7777" {
		t.Errorf("Port = %q, want :7777", opts.Port)
	}
	if opts.LEDBrightness != 0.5 {
		t.Errorf("LEDBrightness = %v, want 0.5", opts.LEDBrightness)
	}
	if opts.LEDFPS != 24 {
		t.Errorf("LEDFPS = %d, want 24", opts.LEDFPS)
	}
	if !opts.WS281xEnabled {
		t.Error("WS281xEnabled should be true")
	}
	if !reflect.DeepEqual(opts.Subjects, []string{"a", "b", "c"}) {
		t.Errorf("Subjects = %v, want [a b c]", opts.Subjects)
	}
}

func TestLoadConfigEnvOverridesTOML(t *testing.T) {
	path := writeConfigFile(t, `
[server]
port = ":9000"

[led]
fps = 30
`)

	t.Setenv("MEDIALED_SERVER_PORT", ":8000")

	opts := &daemonOptions{Config: path}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if opts.Port != ":8000" {
		t.Errorf("Port = %q, env must beat the file", opts.Port)
	}
	if opts.LEDFPS != 30 {
		t.Errorf("LEDFPS = %d, file value must survive without an env override", opts.LEDFPS)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	opts := &daemonOptions{Config: "does_not_exist.toml", LEDFPS: 60}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}
	if opts.LEDFPS != 60 {
		t.Errorf("LEDFPS = %d, defaults must survive a missing file", opts.LEDFPS)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := writeConfigFile(t, "[led\nbroken = ")

	opts := &daemonOptions{Config: path}
	if err := LoadConfig(opts, nil); err == nil {
		t.Fatal("LoadConfig must fail on unparseable TOML")
	}
}

func TestGetNestedValue(t *testing.T) {
	tree := map[string]any{
		"led": map[string]any{
			"ws281x": map[string]any{
				"pixels": int64(28),
			},
			"brightness": 0.3,
		},
		"port": ":8090",
	}

	tests := []struct {
		path string
		want any
	}{
		{"port", ":8090"},
		{"led.brightness", 0.3},
		{"led.ws281x.pixels", int64(28)},
		{"missing", nil},
		{"led.missing", nil},
		{"port.not.a.table", nil},
	}
	for _, tt := range tests {
		if got := getNestedValue(tree, tt.path); got != tt.want {
			t.Errorf("getNestedValue(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestSetFieldValue(t *testing.T) {
	var target struct {
		S string
		B bool
		I int
		F float64
		L []string
	}
	v := reflect.ValueOf(&target).Elem()

	setFieldValue(v.FieldByName("S"), "hello")
	setFieldValue(v.FieldByName("B"), true)
	setFieldValue(v.FieldByName("I"), int64(42))
	setFieldValue(v.FieldByName("F"), 0.8)
	setFieldValue(v.FieldByName("L"), []any{"x", "y"})

	if target.S != "hello" || !target.B || target.I != 42 || target.F != 0.8 {
		t.Errorf("scalar fields = %+v", target)
	}
	if !reflect.DeepEqual(target.L, []string{"x", "y"}) {
		t.Errorf("L = %v, want [x y]", target.L)
	}

	// Mismatched types leave the field untouched.
	setFieldValue(v.FieldByName("I"), "not a number")
	if target.I != 42 {
		t.Errorf("I = %d after type mismatch, want 42", target.I)
	}
}

func TestSetFieldValueFromString(t *testing.T) {
	var target struct {
		S string
		B bool
		I int
		F float64
		L []string
	}
	v := reflect.ValueOf(&target).Elem()

	setFieldValueFromString(v.FieldByName("S"), "hello")
	setFieldValueFromString(v.FieldByName("B"), "true")
	setFieldValueFromString(v.FieldByName("I"), "123")
	setFieldValueFromString(v.FieldByName("F"), "0.25")
	setFieldValueFromString(v.FieldByName("L"), " a , b , c ")

	if target.S != "hello" || !target.B || target.I != 123 || target.F != 0.25 {
		t.Errorf("scalar fields = %+v", target)
	}
	if !reflect.DeepEqual(target.L, []string{"a", "b", "c"}) {
		t.Errorf("L = %v, want trimmed [a b c]", target.L)
	}

	// Unparseable values are skipped.
	setFieldValueFromString(v.FieldByName("I"), "many")
	if target.I != 123 {
		t.Errorf("I = %d after bad parse, want 123", target.I)
	}
}

func TestLoadLoggingModuleLevels(t *testing.T) {
	path := writeConfigFile(t, `
[logging]
level = "info"
format = "json"
led = "debug"
playback = "debug"
bus = "warn"
api = "error"
`)

	cfg := LoadLoggingConfig(path)

	if cfg.Level != "info" || cfg.Format != "json" {
		t.Errorf("Level/Format = %q/%q, want info/json", cfg.Level, cfg.Format)
	}
	want := map[string]string{
		"led":      "debug",
		"playback": "debug",
		"bus":      "warn",
		"api":      "error",
	}
	if !reflect.DeepEqual(cfg.Modules, want) {
		t.Errorf("Modules = %v, want %v", cfg.Modules, want)
	}
}

func TestLoadLoggingConfigFallsBack(t *testing.T) {
	cfg := LoadLoggingConfig("")
	if cfg.Level != "info" || cfg.Format != "text" {
		t.Errorf("empty path should yield defaults, got %+v", cfg)
	}

	cfg = LoadLoggingConfig("does_not_exist.toml")
	if cfg.Level != "info" {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}

	path := writeConfigFile(t, "[logging\nbroken")
	cfg = LoadLoggingConfig(path)
	if cfg.Level != "info" || cfg.Format != "text" {
		t.Errorf("broken file should yield defaults, got %+v", cfg)
	}
}
