package api

import (
	"github.com/lumispeak/medialed/internal/logging"
)

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"1.0.0" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc123" doc:"Git commit hash"`
	BuildDate string `json:"build_date" example:"2024-01-01" doc:"Build date"`
	BuildID   string `json:"build_id" example:"build-123" doc:"Build identifier"`
	GoVersion string `json:"go_version" example:"go1.24.0" doc:"Go version used to build"`
	Compiler  string `json:"compiler" example:"gc" doc:"Go compiler"`
	Platform  string `json:"platform" example:"linux/arm64" doc:"Target platform"`
}

type VersionResponse struct {
	Body VersionData
}

// Status models
type DriverStatus struct {
	Name   string `json:"name" example:"ws281x" doc:"Driver name"`
	Pixels int    `json:"pixels" example:"28" doc:"Pixel count of this backend"`
}

type StatusData struct {
	Animating  bool           `json:"animating" example:"true" doc:"Whether the playback animation is running"`
	Pixels     int            `json:"pixels" example:"28" doc:"Composite pixel count (max over backends)"`
	FPS        int            `json:"fps" example:"60" doc:"Animation frame rate"`
	Brightness float64        `json:"brightness" example:"0.3" doc:"Configured brightness fraction"`
	Drivers    []DriverStatus `json:"drivers" doc:"Active LED backends"`
	Version    string         `json:"version" example:"1.0.0" doc:"Application version"`
}

type StatusResponse struct {
	Body StatusData
}

// Clear models
type ClearData struct {
	Status  string `json:"status" example:"ok" doc:"Clear outcome"`
	Message string `json:"message" example:"All backends blanked" doc:"Status message"`
}

type ClearResponse struct {
	Body ClearData
}

// Log models
type LogsData struct {
	Entries []logging.LogEntry `json:"entries" doc:"Recent log entries, oldest first"`
	Count   int                `json:"count" example:"42" doc:"Number of entries returned"`
}

type LogsResponse struct {
	Body LogsData
}
