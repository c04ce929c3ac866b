package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/lumispeak/medialed/internal/led"
	"github.com/lumispeak/medialed/internal/logging"
	"github.com/lumispeak/medialed/internal/playback"
	"github.com/lumispeak/medialed/internal/version"
)

// Options carries the daemon state the API exposes.
type Options struct {
	Controller        *playback.Controller
	Device            *led.Composite
	FPS               int
	Brightness        float64
	PrometheusHandler http.Handler // Optional Prometheus metrics handler
}

// Server is the Huma v2 status and control surface.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	httpServer *http.Server
	options    *Options
	logger     *slog.Logger
}

// NewServer creates a new API server with Huma v2 using Go 1.22+ native routing
func NewServer(opts *Options) *Server {
	mux := http.NewServeMux()

	// Create Huma API with Go standard library adapter
	config := huma.DefaultConfig("MediaLED API", "1.0.0")
	config.Info.Description = "Status and control API for the playback-driven LED daemon"
	// Empty servers list will make OpenAPI use relative paths, working with any host
	config.Servers = []*huma.Server{}

	api := humago.New(mux, config)

	server := &Server{
		api:     api,
		mux:     mux,
		options: opts,
		logger:  logging.GetLogger("api"),
	}

	api.UseMiddleware(HTTPLoggingMiddleware)

	// Register Prometheus metrics endpoint before other routes
	if opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", opts.PrometheusHandler)
	}

	server.registerRoutes()

	return server
}

// GetMux returns the underlying HTTP ServeMux for additional setup
func (s *Server) GetMux() *http.ServeMux {
	return s.mux
}

// GetAPI returns the Huma API instance
func (s *Server) GetAPI() huma.API {
	return s.api
}

// Start starts the HTTP server on the specified address.
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting MediaLED API server", "addr", addr)
	s.logger.Info("OpenAPI documentation available", "url", "http://"+addr+"/docs")

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}

	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	s.logger.Info("Stopping API server")

	// Force immediate shutdown - don't wait for connections
	if s.httpServer != nil {
		return s.httpServer.Close()
	}

	return nil
}

// registerRoutes sets up all API endpoints
func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Check API health status",
		Tags:        []string{"health"},
	}, func(ctx context.Context, input *struct{}) (*HealthResponse, error) {
		return &HealthResponse{
			Body: HealthData{
				Status:  "ok",
				Message: "API is healthy",
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"system"},
	}, func(ctx context.Context, input *struct{}) (*VersionResponse, error) {
		versionInfo := version.Get()
		return &VersionResponse{
			Body: VersionData{
				Version:   versionInfo.Version,
				GitCommit: versionInfo.GitCommit,
				BuildDate: versionInfo.BuildDate,
				BuildID:   versionInfo.BuildID,
				GoVersion: versionInfo.GoVersion,
				Compiler:  versionInfo.Compiler,
				Platform:  versionInfo.Platform,
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/api/status",
		Summary:     "Status",
		Description: "Get animation state and the active LED backends",
		Tags:        []string{"leds"},
	}, func(ctx context.Context, input *struct{}) (*StatusResponse, error) {
		return &StatusResponse{Body: s.statusSnapshot()}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "clear-leds",
		Method:      http.MethodPost,
		Path:        "/api/clear",
		Summary:     "Clear",
		Description: "Blank all LED backends",
		Tags:        []string{"leds"},
		Errors:      []int{500},
	}, func(ctx context.Context, input *struct{}) (*ClearResponse, error) {
		if err := s.options.Device.Clear(); err != nil {
			return nil, huma.Error500InternalServerError("failed to clear LEDs", err)
		}
		return &ClearResponse{
			Body: ClearData{
				Status:  "ok",
				Message: "All backends blanked",
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-logs",
		Method:      http.MethodGet,
		Path:        "/api/logs",
		Summary:     "Logs",
		Description: "Get recent log entries from the in-memory ring buffer",
		Tags:        []string{"logs"},
	}, func(ctx context.Context, input *struct{}) (*LogsResponse, error) {
		var entries []logging.LogEntry
		if buffer := logging.GetBuffer(); buffer != nil {
			entries = buffer.ReadAll()
		}
		return &LogsResponse{
			Body: LogsData{
				Entries: entries,
				Count:   len(entries),
			},
		}, nil
	})
}

// statusSnapshot assembles the current daemon state.
func (s *Server) statusSnapshot() StatusData {
	data := StatusData{
		FPS:        s.options.FPS,
		Brightness: s.options.Brightness,
		Version:    version.String(),
	}

	if s.options.Controller != nil {
		data.Animating = s.options.Controller.Animating()
	}

	if s.options.Device != nil {
		data.Pixels = s.options.Device.NumPixels()
		for _, member := range s.options.Device.Members() {
			data.Drivers = append(data.Drivers, DriverStatus{
				Name:   member.Name(),
				Pixels: member.NumPixels(),
			})
		}
	}

	return data
}
