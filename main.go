package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/lumispeak/medialed/cmd"
	"github.com/lumispeak/medialed/internal/api"
	"github.com/lumispeak/medialed/internal/bus"
	"github.com/lumispeak/medialed/internal/config"
	"github.com/lumispeak/medialed/internal/events"
	"github.com/lumispeak/medialed/internal/led"
	"github.com/lumispeak/medialed/internal/logging"
	"github.com/lumispeak/medialed/internal/metrics"
	"github.com/lumispeak/medialed/internal/playback"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Message bus settings
	BusTransport string `help:"Bus transport (nats, websocket, none)" default:"nats" toml:"bus.transport" env:"BUS_TRANSPORT"`
	BusURL       string `help:"Message bus URL" default:"nats://127.0.0.1:4222" toml:"bus.url" env:"BUS_URL"`

	// LED settings
	LEDBrightness float64 `help:"LED brightness fraction (0.0 to 1.0)" default:"0.3" toml:"led.brightness" env:"LED_BRIGHTNESS"`
	LEDFPS        int     `help:"Animation frame rate" default:"60" toml:"led.fps" env:"LED_FPS"`

	WS281xEnabled bool   `help:"Enable the ws281x backend" default:"false" toml:"led.ws281x.enabled" env:"WS281X_ENABLED"`
	WS281xPixels  int    `help:"ws281x pixel count" default:"0" toml:"led.ws281x.pixels" env:"WS281X_PIXELS"`
	WS281xPin     string `help:"ws281x data pin" default:"18" toml:"led.ws281x.pin" env:"WS281X_PIN"`

	APA102Enabled bool   `help:"Enable the apa102 backend" default:"false" toml:"led.apa102.enabled" env:"APA102_ENABLED"`
	APA102Pixels  int    `help:"apa102 pixel count" default:"0" toml:"led.apa102.pixels" env:"APA102_PIXELS"`
	APA102Port    string `help:"apa102 SPI port name (empty for default)" default:"" toml:"led.apa102.port" env:"APA102_PORT"`

	BlinktEnabled bool `help:"Enable the blinkt backend" default:"false" toml:"led.blinkt.enabled" env:"BLINKT_ENABLED"`

	// Logging settings
	LoggingLevel    string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat   string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingLED      string `help:"LED driver logging level" default:"info" toml:"logging.led" env:"LOGGING_LED"`
	LoggingPlayback string `help:"Playback controller logging level" default:"info" toml:"logging.playback" env:"LOGGING_PLAYBACK"`
	LoggingBus      string `help:"Bus adapter logging level" default:"info" toml:"logging.bus" env:"LOGGING_BUS"`
	LoggingAPI      string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
}

func main() {
	// Create Huma CLI
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, nil); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		// Initialize logging system
		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"led":      opts.LoggingLED,
				"playback": opts.LoggingPlayback,
				"bus":      opts.LoggingBus,
				"api":      opts.LoggingAPI,
			},
		})

		logger := logging.GetLogger("main")

		// Build the LED backends. Failed or disabled drivers degrade to
		// inert placeholders, so this never blocks startup.
		composite := led.Build(led.Config{
			Brightness:    opts.LEDBrightness,
			WS281xEnabled: opts.WS281xEnabled,
			WS281xPixels:  opts.WS281xPixels,
			WS281xPin:     opts.WS281xPin,
			APA102Enabled: opts.APA102Enabled,
			APA102Pixels:  opts.APA102Pixels,
			APA102Port:    opts.APA102Port,
			BlinktEnabled: opts.BlinktEnabled,
		}, logging.GetLogger("led"))

		if composite.NumPixels() == 0 {
			logger.Warn("No usable LED backends, animation will be a no-op")
		}

		eventBus := events.New()

		controller := playback.NewController(composite, eventBus, opts.LEDFPS, logging.GetLogger("playback"))
		controller.Start()

		// Bus adapter; selected by transport, optional by design so the
		// daemon can run API-only.
		var adapter interface {
			Start() error
			Stop()
		}
		busLogger := logging.GetLogger("bus")
		switch opts.BusTransport {
		case "nats":
			adapter = bus.NewNATSAdapter(opts.BusURL, eventBus, busLogger)
		case "websocket":
			adapter = bus.NewWSAdapter(opts.BusURL, eventBus, busLogger)
		case "none":
			logger.Info("Bus transport disabled")
		default:
			logger.Warn("Unknown bus transport, disabling", "transport", opts.BusTransport)
		}

		// Watch the config file and apply logging level changes on the
		// fly. Everything else (ports, backends, transport) needs a
		// restart to take effect.
		watcher := config.NewConfigWatcher(
			opts.Config,
			func(path string) (*Options, error) {
				fresh := &Options{Config: path}
				if loadErr := config.LoadConfig(fresh, nil); loadErr != nil {
					return nil, loadErr
				}
				return fresh, nil
			},
			logger,
		)
		watcher.OnReload(func(fresh *Options) {
			logging.SetLevels(fresh.LoggingLevel, map[string]string{
				"led":      fresh.LoggingLED,
				"playback": fresh.LoggingPlayback,
				"bus":      fresh.LoggingBus,
				"api":      fresh.LoggingAPI,
			})
			logger.Info("Applied logging levels from updated config")
		})

		server := api.NewServer(&api.Options{
			Controller:        controller,
			Device:            composite,
			FPS:               opts.LEDFPS,
			Brightness:        opts.LEDBrightness,
			PrometheusHandler: metrics.Handler(),
		})

		hooks.OnStart(func() {
			if adapter != nil {
				if startErr := adapter.Start(); startErr != nil {
					logger.Warn("Failed to connect to message bus, continuing without it",
						"url", opts.BusURL, "error", startErr)
					adapter = nil
				}
			}

			// Non-fatal: the daemon runs fine without live reload.
			if watchErr := watcher.Start(); watchErr != nil {
				logger.Warn("Config watcher unavailable", "error", watchErr)
			}

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			if stopErr := watcher.Stop(); stopErr != nil {
				logger.Warn("Error stopping config watcher", "error", stopErr)
			}
			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}

			if adapter != nil {
				adapter.Stop()
			}

			// Stops any running animation, blanks every backend, then
			// releases the drivers.
			controller.Shutdown()
		})
	})

	cli.Root().AddCommand(cmd.CreateSimulateCmd())
	cli.Root().AddCommand(cmd.CreateSelftestCmd())
	cli.Root().AddCommand(cmd.CreateUpdateCmd())

	// Run the CLI
	cli.Run()
}
