package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/lumispeak/medialed/internal/bus"
	"github.com/lumispeak/medialed/internal/events"
	"github.com/lumispeak/medialed/internal/led"
	"github.com/lumispeak/medialed/internal/logging"
	"github.com/lumispeak/medialed/internal/playback"
)

// CreateSimulateCmd creates the simulate command.
func CreateSimulateCmd() *cobra.Command {
	var pixels int
	var fps int
	var port int
	var stepInterval time.Duration
	var logLevel string

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the full pipeline against a console preview",
		Long: `Starts an embedded NATS server, renders to an ANSI console preview instead of ` +
			`hardware, and publishes a scripted play/pause/resume/stop sequence so the whole ` +
			`playback-to-animation pipeline can be exercised on a dev machine.`,
		Run: func(_ *cobra.Command, _ []string) {
			logging.Initialize(logging.Config{
				Level:  logLevel,
				Format: "text",
			})
			logger := logging.GetLogger("simulate")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := bus.NewServer(bus.ServerOptions{Port: port, Logger: logger})
			if err := server.Start(); err != nil {
				logger.Error("Failed to start embedded NATS server", "error", err)
				os.Exit(1)
			}
			defer server.Stop()

			console, err := led.NewConsole(pixels)
			if err != nil {
				logger.Error("Failed to create console preview", "error", err)
				os.Exit(1)
			}
			composite := led.NewComposite(logger, console)

			eventBus := events.New()
			controller := playback.NewController(composite, eventBus, fps, logger)
			controller.Start()
			defer controller.Shutdown()

			adapter := bus.NewNATSAdapter(server.ClientURL(), eventBus, logger)
			if err := adapter.Start(); err != nil {
				logger.Error("Failed to connect adapter", "error", err)
				os.Exit(1)
			}
			defer adapter.Stop()

			conn, err := nats.Connect(server.ClientURL())
			if err != nil {
				logger.Error("Failed to connect publisher", "error", err)
				os.Exit(1)
			}
			defer conn.Close()

			script := []struct {
				subject string
				payload []byte
			}{
				{bus.SubjectPlayerPlay, nil},
				{bus.SubjectPlayerPause, nil},
				{bus.SubjectPlayerResume, nil},
				{bus.SubjectPlayerStop, nil},
			}

			logger.Info("Simulation running", "pixels", pixels, "fps", fps, "url", server.ClientURL())

			for _, step := range script {
				logger.Info("Publishing", "subject", step.subject)
				if err := conn.Publish(step.subject, step.payload); err != nil {
					logger.Error("Publish failed", "subject", step.subject, "error", err)
					return
				}

				select {
				case <-ctx.Done():
					logger.Info("Interrupted")
					return
				case <-time.After(stepInterval):
				}
			}

			logger.Info("Simulation complete")
		},
	}

	cmd.Flags().IntVar(&pixels, "pixels", 28, "Number of pixels in the console preview")
	cmd.Flags().IntVar(&fps, "fps", 30, "Animation frame rate")
	cmd.Flags().IntVar(&port, "port", 14322, "Embedded NATS server port")
	cmd.Flags().DurationVar(&stepInterval, "interval", 3*time.Second, "Delay between scripted playback signals")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")

	return cmd
}
