package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumispeak/medialed/internal/animation"
	"github.com/lumispeak/medialed/internal/config"
	"github.com/lumispeak/medialed/internal/led"
	"github.com/lumispeak/medialed/internal/logging"
)

// CreateSelftestCmd creates the selftest command.
func CreateSelftestCmd() *cobra.Command {
	var cfg led.Config
	var consolePixels int
	var configFile string

	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Drive the configured LED backends directly",
		Long: `Builds the configured backends, reports which ones came up, and runs a short ` +
			`color sweep followed by a rainbow burst and a blank. No message bus involved; ` +
			`this is for verifying wiring and driver setup on the target device.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			logging.Initialize(config.LoadLoggingConfig(configFile))
			logger := logging.GetLogger("selftest")

			devices := led.Build(cfg, logger).Members()
			if consolePixels > 0 {
				console, err := led.NewConsole(consolePixels)
				if err != nil {
					return fmt.Errorf("console preview: %w", err)
				}
				devices = append(devices, console)
			}

			composite := led.NewComposite(logger, devices...)
			defer composite.Close()

			members := composite.Members()
			fmt.Fprintf(os.Stdout, "Backends: %d, pixels: %d\n", len(members), composite.NumPixels())
			for _, m := range members {
				fmt.Fprintf(os.Stdout, "  %-10s %d pixels\n", m.Name(), m.NumPixels())
			}

			if composite.NumPixels() == 0 {
				return fmt.Errorf("no usable backends; enable at least one driver or pass --console-pixels")
			}

			sweep := []struct {
				name  string
				color led.RGB
			}{
				{"red", led.RGB{R: 255}},
				{"green", led.RGB{G: 255}},
				{"blue", led.RGB{B: 255}},
			}

			for _, step := range sweep {
				fmt.Fprintf(os.Stdout, "Fill %s\n", step.name)
				if err := composite.Fill(step.color); err != nil {
					return err
				}
				time.Sleep(400 * time.Millisecond)
			}

			fmt.Fprintln(os.Stdout, "Rainbow burst")
			deadline := time.Now().Add(2 * time.Second)
			for time.Now().Before(deadline) {
				frame := animation.FramePixels(composite.NumPixels(), time.Now())
				for i, c := range frame {
					if err := composite.SetPixel(i, c); err != nil {
						return err
					}
				}
				if err := composite.Show(); err != nil {
					return err
				}
				time.Sleep(33 * time.Millisecond)
			}

			fmt.Fprintln(os.Stdout, "Blank")
			return composite.Clear()
		},
	}

	cmd.Flags().Float64Var(&cfg.Brightness, "brightness", 0.3, "Brightness fraction (0.0 to 1.0)")
	cmd.Flags().BoolVar(&cfg.WS281xEnabled, "ws281x", false, "Enable the ws281x backend")
	cmd.Flags().IntVar(&cfg.WS281xPixels, "ws281x-pixels", 0, "ws281x pixel count")
	cmd.Flags().StringVar(&cfg.WS281xPin, "ws281x-pin", "18", "ws281x data pin")
	cmd.Flags().BoolVar(&cfg.APA102Enabled, "apa102", false, "Enable the apa102 backend")
	cmd.Flags().IntVar(&cfg.APA102Pixels, "apa102-pixels", 0, "apa102 pixel count")
	cmd.Flags().StringVar(&cfg.APA102Port, "apa102-port", "", "apa102 SPI port name (empty for default)")
	cmd.Flags().BoolVar(&cfg.BlinktEnabled, "blinkt", false, "Enable the blinkt backend")
	cmd.Flags().IntVar(&consolePixels, "console-pixels", 0, "Add an ANSI console preview with this many pixels")
	cmd.Flags().StringVar(&configFile, "config", "config.toml", "Path to configuration file (logging levels only)")

	return cmd
}
