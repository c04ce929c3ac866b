package bus

import (
	"encoding/json"

	"github.com/lumispeak/medialed/internal/events"
)

// Subject prefixes for the external message bus.
const (
	SubjectPlayerPrefix = "media.player"
	SubjectLegacyPrefix = "audio.service"
	SubjectLEDPrefix    = "media.led"
)

// Inbound command and state subjects.
const (
	SubjectPlayerPlay   = SubjectPlayerPrefix + ".play"
	SubjectPlayerResume = SubjectPlayerPrefix + ".resume"
	SubjectPlayerPause  = SubjectPlayerPrefix + ".pause"
	SubjectPlayerStop   = SubjectPlayerPrefix + ".stop"
	SubjectPlayerState  = SubjectPlayerPrefix + ".state"

	SubjectLegacyPlay   = SubjectLegacyPrefix + ".play"
	SubjectLegacyResume = SubjectLegacyPrefix + ".resume"
	SubjectLegacyPause  = SubjectLegacyPrefix + ".pause"
	SubjectLegacyStop   = SubjectLegacyPrefix + ".stop"
)

// SubjectAnimationState is the outbound subject announcing animation
// start/stop transitions.
const SubjectAnimationState = SubjectLEDPrefix + ".animation"

// ActionForSubject maps an inbound command subject to a normalized playback
// action. Play and resume both start the animation; pause and stop both end
// it. Returns false for subjects that carry no command (including the state
// subject, which has its own payload).
func ActionForSubject(subject string) (events.Action, bool) {
	switch subject {
	case SubjectPlayerPlay, SubjectPlayerResume, SubjectLegacyPlay, SubjectLegacyResume:
		return events.ActionStart, true
	case SubjectPlayerPause, SubjectPlayerStop, SubjectLegacyPause, SubjectLegacyStop:
		return events.ActionStop, true
	}
	return "", false
}

// StateMessage is the payload of a player state-change notification.
type StateMessage struct {
	State string `json:"state"`
}

// Marshal serializes the message to JSON.
func (m StateMessage) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// AnimationMessage is published on SubjectAnimationState when the animation
// session starts or stops.
type AnimationMessage struct {
	Running   bool   `json:"running"`
	Pixels    int    `json:"pixels"`
	Timestamp string `json:"timestamp"`
}

// Marshal serializes the message to JSON.
func (m AnimationMessage) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// UnmarshalState deserializes a StateMessage from JSON.
func UnmarshalState(data []byte) (StateMessage, error) {
	var m StateMessage
	err := json.Unmarshal(data, &m)
	return m, err
}

// UnmarshalAnimation deserializes an AnimationMessage from JSON.
func UnmarshalAnimation(data []byte) (AnimationMessage, error) {
	var m AnimationMessage
	err := json.Unmarshal(data, &m)
	return m, err
}
