package events

// Event type constants for kelindar/event.
const (
	TypePlaybackCommand uint32 = iota + 1
	TypePlayerState
	TypeAnimationState
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// Action is a normalized playback signal. Every inbound bus event maps to
// exactly one of these before it reaches the playback controller.
type Action string

const (
	// ActionStart requests the playback animation to start.
	ActionStart Action = "start"
	// ActionStop requests the playback animation to stop.
	ActionStop Action = "stop"
)

// PlaybackCommandEvent is an already-normalized playback command.
// Transport adapters translate play/resume/pause/stop subjects (primary and
// legacy sets alike) into this event.
type PlaybackCommandEvent struct {
	Action    Action `json:"action" example:"start" doc:"Normalized playback signal: start or stop"`
	Source    string `json:"source" example:"media.player.play" doc:"Subject or message type that produced this command"`
	Timestamp string `json:"timestamp" example:"2026-08-29T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for PlaybackCommandEvent.
func (e PlaybackCommandEvent) Type() uint32 { return TypePlaybackCommand }

// PlayerStateEvent carries a raw player state string from a state-change
// notification. The playback controller interprets the string; unknown
// states are ignored.
type PlayerStateEvent struct {
	State     string `json:"state" example:"playing" doc:"Raw player state payload, compared case-insensitively"`
	Source    string `json:"source" example:"media.player.state" doc:"Subject or message type that produced this state"`
	Timestamp string `json:"timestamp" example:"2026-08-29T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for PlayerStateEvent.
func (e PlayerStateEvent) Type() uint32 { return TypePlayerState }

// AnimationStateEvent is published by the playback controller whenever the
// animation session starts or stops. Consumed by the API status snapshot
// and republished outward by the bus adapter.
type AnimationStateEvent struct {
	Running   bool   `json:"running" example:"true" doc:"Whether the rainbow animation is running"`
	Pixels    int    `json:"pixels" example:"28" doc:"Composite pixel count at the time of the transition"`
	Timestamp string `json:"timestamp" example:"2026-08-29T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for AnimationStateEvent.
func (e AnimationStateEvent) Type() uint32 { return TypeAnimationState }
