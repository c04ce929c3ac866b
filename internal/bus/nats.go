package bus

import (
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/lumispeak/medialed/internal/events"
	"github.com/lumispeak/medialed/internal/metrics"
)

// NATSAdapter subscribes to playback subjects on an external NATS bus and
// forwards normalized events to the internal event bus. It also republishes
// animation transitions outward so other bus participants can observe them.
// Gracefully degrades when NATS is unavailable.
type NATSAdapter struct {
	url      string
	eventBus *events.Bus
	conn     *nats.Conn
	subs     []*nats.Subscription
	unsub    func()
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewNATSAdapter creates a NATS-to-event-bus adapter.
func NewNATSAdapter(url string, eventBus *events.Bus, logger *slog.Logger) *NATSAdapter {
	if logger == nil {
		logger = slog.Default()
	}

	return &NATSAdapter{
		url:      url,
		eventBus: eventBus,
		logger:   logger.With("component", "nats-adapter"),
	}
}

// Start connects to NATS and subscribes to the playback subjects.
func (a *NATSAdapter) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	conn, err := nats.Connect(a.url,
		nats.Name("medialed"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				a.logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			a.logger.Info("NATS reconnected")
		}),
	)
	if err != nil {
		return err
	}

	a.conn = conn
	a.logger.Info("Connected to NATS", "url", a.url)

	// media.player.* carries both commands and the state subject.
	playerSub, err := conn.Subscribe(SubjectPlayerPrefix+".*", a.handlePlayer)
	if err != nil {
		conn.Close()
		a.conn = nil
		return err
	}
	a.subs = append(a.subs, playerSub)

	legacySub, err := conn.Subscribe(SubjectLegacyPrefix+".*", a.handleCommand)
	if err != nil {
		a.cleanupLocked()
		return err
	}
	a.subs = append(a.subs, legacySub)

	// Republish animation transitions outward.
	a.unsub = a.eventBus.Subscribe(func(e events.AnimationStateEvent) {
		a.publishAnimation(e)
	})

	a.logger.Info("Subscribed to playback subjects")
	return nil
}

// handlePlayer dispatches media.player.* messages: the state subject carries
// a payload, everything else is a bare command.
func (a *NATSAdapter) handlePlayer(msg *nats.Msg) {
	if msg.Subject == SubjectPlayerState {
		a.handleState(msg)
		return
	}
	a.handleCommand(msg)
}

// handleCommand translates a command subject into a normalized playback event.
func (a *NATSAdapter) handleCommand(msg *nats.Msg) {
	action, ok := ActionForSubject(msg.Subject)
	if !ok {
		a.logger.Debug("Ignoring unrecognized subject", "subject", msg.Subject)
		return
	}

	metrics.BusEvents.WithLabelValues(msg.Subject).Inc()
	a.eventBus.Publish(events.PlaybackCommandEvent{
		Action:    action,
		Source:    msg.Subject,
		Timestamp: time.Now().Format(time.RFC3339),
	})
	a.logger.Debug("Published playback command", "subject", msg.Subject, "action", action)
}

// handleState forwards a raw player state string for the controller to map.
func (a *NATSAdapter) handleState(msg *nats.Msg) {
	m, err := UnmarshalState(msg.Data)
	if err != nil {
		a.logger.Warn("Failed to unmarshal state payload", "error", err, "subject", msg.Subject)
		return
	}

	metrics.BusEvents.WithLabelValues(msg.Subject).Inc()
	a.eventBus.Publish(events.PlayerStateEvent{
		State:     m.State,
		Source:    msg.Subject,
		Timestamp: time.Now().Format(time.RFC3339),
	})
	a.logger.Debug("Published player state", "state", m.State)
}

// publishAnimation announces an animation transition on the external bus.
// No-op if not connected (graceful degradation).
func (a *NATSAdapter) publishAnimation(e events.AnimationStateEvent) {
	a.mu.Lock()
	conn := a.conn
	a.mu.Unlock()

	if conn == nil || !conn.IsConnected() {
		return
	}

	data, err := AnimationMessage{
		Running:   e.Running,
		Pixels:    e.Pixels,
		Timestamp: e.Timestamp,
	}.Marshal()
	if err != nil {
		a.logger.Warn("Failed to marshal animation state", "error", err)
		return
	}

	if err := conn.Publish(SubjectAnimationState, data); err != nil {
		a.logger.Warn("Failed to publish animation state", "error", err)
	}
}

// cleanupLocked unsubscribes and closes the connection (must hold lock).
func (a *NATSAdapter) cleanupLocked() {
	if a.unsub != nil {
		a.unsub()
		a.unsub = nil
	}

	for _, sub := range a.subs {
		_ = sub.Unsubscribe()
	}
	a.subs = nil

	if a.conn != nil {
		a.conn.Close()
		a.conn = nil
	}
}

// Stop closes the adapter connection.
func (a *NATSAdapter) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cleanupLocked()
	a.logger.Debug("NATS adapter stopped")
}

// IsConnected returns true if the adapter is connected to NATS.
func (a *NATSAdapter) IsConnected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.conn != nil && a.conn.IsConnected()
}
