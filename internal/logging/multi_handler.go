package logging

import (
	"context"
	"log/slog"
)

// MultiHandler duplicates every record to a set of child handlers, so one
// logger can feed stdout, journald, and the ring buffer at the same time.
// A child that rejects a level is simply skipped for that record.
type MultiHandler struct {
	children []slog.Handler
}

// NewMultiHandler wraps the given handlers. Order determines write order
// but has no other effect.
func NewMultiHandler(children ...slog.Handler) *MultiHandler {
	return &MultiHandler{children: children}
}

// Enabled reports true if any child would accept the level.
func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, child := range m.children {
		if child.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle forwards the record to every accepting child. Child errors are
// swallowed; one failing sink must not silence the others.
func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, child := range m.children {
		if child.Enabled(ctx, r.Level) {
			_ = child.Handle(ctx, r.Clone())
		}
	}
	return nil
}

// WithAttrs returns a MultiHandler whose children all carry the attrs.
func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	children := make([]slog.Handler, len(m.children))
	for i, child := range m.children {
		children[i] = child.WithAttrs(attrs)
	}
	return &MultiHandler{children: children}
}

// WithGroup returns a MultiHandler whose children all open the group.
func (m *MultiHandler) WithGroup(name string) slog.Handler {
	children := make([]slog.Handler, len(m.children))
	for i, child := range m.children {
		children[i] = child.WithGroup(name)
	}
	return &MultiHandler{children: children}
}
