package api

import (
	"context"
	"net/http"
	"time"

	"breaktime/internal/core/session"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	eventBuffer  = 16
	writeTimeout = 5 * time.Second
)

// Events streams authority events over a WebSocket, starting with a snapshot.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"127.0.0.1:*", "localhost:*"},
	})
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to accept WebSocket")
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "stream ended"); closeErr != nil {
			h.logger.Debug().Err(closeErr).Msg("Failed to close websocket")
		}
	}()

	events := h.authority.Subscribe(eventBuffer)
	defer h.authority.Unsubscribe(events)

	// Observers only listen; CloseRead cancels ctx when the peer goes away.
	ctx := ws.CloseRead(r.Context())

	h.logger.Debug().Str("remote", r.RemoteAddr).Msg("Event stream attached")

	if err := h.writeEvent(ctx, ws, h.snapshot()); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := h.writeEvent(ctx, ws, event); err != nil {
				h.logger.Debug().Err(err).Msg("Event stream write failed")
				return
			}
		}
	}
}

func (h *Handler) snapshot() session.Event {
	event := session.Event{
		Type:  session.EventSnapshot,
		State: session.StateIdle,
		At:    h.authority.Now(),
	}
	if record := h.authority.Status(); record != nil {
		event.State = session.StateActive
		event.Record = record
	}
	return event
}

func (h *Handler) writeEvent(ctx context.Context, ws *websocket.Conn, event session.Event) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, ws, event)
}
