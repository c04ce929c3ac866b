package bus

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lumispeak/medialed/internal/events"
	"github.com/lumispeak/medialed/internal/metrics"
)

// wsEnvelope is the wire format of message buses that speak JSON over a
// WebSocket: a message type string plus a free-form data object.
type wsEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	wsBackoffInitial = time.Second
	wsBackoffMax     = 30 * time.Second
)

// WSAdapter is a WebSocket client that translates bus messages into internal
// playback events. The message type field carries the same subjects as the
// NATS transport. The read loop reconnects with capped backoff until stopped.
type WSAdapter struct {
	url      string
	eventBus *events.Bus
	logger   *slog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	cancel context.CancelFunc
	unsub  func()
	done   chan struct{}
}

// NewWSAdapter creates a WebSocket-to-event-bus adapter.
func NewWSAdapter(url string, eventBus *events.Bus, logger *slog.Logger) *WSAdapter {
	if logger == nil {
		logger = slog.Default()
	}

	return &WSAdapter{
		url:      url,
		eventBus: eventBus,
		logger:   logger.With("component", "ws-adapter"),
	}
}

// Start launches the connect/read loop. Always returns nil: the adapter keeps
// retrying in the background, so an unreachable bus does not stop the daemon.
func (a *WSAdapter) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.done = make(chan struct{})

	a.unsub = a.eventBus.Subscribe(func(e events.AnimationStateEvent) {
		a.publishAnimation(e)
	})

	go a.run(ctx)
	return nil
}

// run reconnects with backoff and pumps messages until the context ends.
func (a *WSAdapter) run(ctx context.Context) {
	defer close(a.done)

	backoff := wsBackoffInitial
	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, a.url, nil)
		if err != nil {
			a.logger.Warn("WebSocket connect failed", "url", a.url, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, wsBackoffMax)
			continue
		}

		a.mu.Lock()
		a.conn = conn
		a.mu.Unlock()
		a.logger.Info("WebSocket connected", "url", a.url)
		backoff = wsBackoffInitial

		a.readLoop(ctx, conn)

		a.mu.Lock()
		a.conn = nil
		a.mu.Unlock()
		_ = conn.Close()
	}
}

// readLoop consumes envelopes until the connection drops or the context ends.
func (a *WSAdapter) readLoop(ctx context.Context, conn *websocket.Conn) {
	// Unblock ReadMessage when the adapter is stopped.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				a.logger.Warn("WebSocket read failed, reconnecting", "error", err)
			}
			return
		}

		var env wsEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			a.logger.Warn("Failed to unmarshal bus message", "error", err)
			continue
		}

		a.handle(env)
	}
}

// handle translates one envelope into an internal event.
func (a *WSAdapter) handle(env wsEnvelope) {
	if env.Type == SubjectPlayerState {
		m, err := UnmarshalState(env.Data)
		if err != nil {
			a.logger.Warn("Failed to unmarshal state payload", "error", err)
			return
		}
		metrics.BusEvents.WithLabelValues(env.Type).Inc()
		a.eventBus.Publish(events.PlayerStateEvent{
			State:     m.State,
			Source:    env.Type,
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	action, ok := ActionForSubject(env.Type)
	if !ok {
		a.logger.Debug("Ignoring unrecognized message type", "type", env.Type)
		return
	}

	metrics.BusEvents.WithLabelValues(env.Type).Inc()
	a.eventBus.Publish(events.PlaybackCommandEvent{
		Action:    action,
		Source:    env.Type,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// publishAnimation sends an animation transition envelope if connected.
func (a *WSAdapter) publishAnimation(e events.AnimationStateEvent) {
	data, err := AnimationMessage{
		Running:   e.Running,
		Pixels:    e.Pixels,
		Timestamp: e.Timestamp,
	}.Marshal()
	if err != nil {
		a.logger.Warn("Failed to marshal animation state", "error", err)
		return
	}

	payload, err := json.Marshal(wsEnvelope{Type: SubjectAnimationState, Data: data})
	if err != nil {
		a.logger.Warn("Failed to marshal envelope", "error", err)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.conn == nil {
		return
	}
	if err := a.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		a.logger.Warn("Failed to publish animation state", "error", err)
	}
}

// Stop ends the read loop and closes the connection.
func (a *WSAdapter) Stop() {
	a.mu.Lock()
	cancel := a.cancel
	done := a.done
	a.cancel = nil
	if a.unsub != nil {
		a.unsub()
		a.unsub = nil
	}
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	a.logger.Debug("WebSocket adapter stopped")
}

// IsConnected reports whether a connection is currently established.
func (a *WSAdapter) IsConnected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.conn != nil
}
