// Package bus connects the LED daemon to an external message bus and
// translates playback notifications into internal events.
//
// # Architecture
//
//   - NATSAdapter: NATS client subscribing to playback subjects
//   - WSAdapter: WebSocket client for JSON type/data message buses
//   - Server: Embedded NATS server (simulate subcommand and tests)
//
// Both adapters normalize what they hear into the same two internal events:
// a playback command (start/stop) or a raw player state string. The playback
// controller consumes those without knowing which transport produced them.
//
// # Subject Hierarchy
//
//	media.player.play     # start animation
//	media.player.resume   # start animation
//	media.player.pause    # stop animation
//	media.player.stop     # stop animation
//	media.player.state    # {"state": "..."} payload, mapped by the controller
//	audio.service.*       # legacy command set, same mapping
//	media.led.animation   # outbound: animation start/stop announcements
//
// The package uses fire-and-forget messaging (core NATS, no JetStream) and
// degrades gracefully when the bus is unavailable.
//
// # Debugging with nats CLI
//
// Monitor everything the daemon reacts to:
//
//	nats sub "media.player.>"
//
// Start the animation manually:
//
//	nats pub "media.player.play" ""
//
// Or via a state change:
//
//	nats pub "media.player.state" '{"state":"playing"}'
//
// Watch the daemon's own announcements:
//
//	nats sub "media.led.animation"
package bus
