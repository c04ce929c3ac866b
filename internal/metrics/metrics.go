// Package metrics exposes Prometheus instruments for the LED daemon.
// Everything lives in the medialed namespace and is served on /metrics
// through the handler returned by Handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "medialed"

var (
	// FramesRendered counts animation frames written to the composite device.
	FramesRendered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "frames_rendered_total",
		Help:      "Animation frames rendered and flushed to the LED backends.",
	})

	// FrameDuration observes how long one render+flush pass takes.
	FrameDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "frame_duration_seconds",
		Help:      "Time spent computing and writing a single animation frame.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	// DriverErrors counts per-driver operation failures swallowed by the
	// composite fan-out.
	DriverErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "driver_errors_total",
		Help:      "LED driver operation failures, isolated per driver.",
	}, []string{"driver", "op"})

	// AnimationRunning is 1 while a rainbow animation session is active.
	AnimationRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "animation_running",
		Help:      "Whether the playback animation is currently running.",
	})

	// BusEvents counts inbound playback notifications by subject.
	BusEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bus_events_total",
		Help:      "Playback notifications received from the message bus.",
	}, []string{"subject"})
)

// Handler returns the HTTP handler serving the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
