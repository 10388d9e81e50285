// Package api exposes the session authority over HTTP so that separate
// processes (the CLI, scripts, a second window) can drive and observe it.
package api

import (
	"encoding/json"
	"net/http"

	"breaktime/internal/core/model"
	"breaktime/internal/core/session"

	"github.com/rs/zerolog"
)

// Authority is the session surface the API serves.
type Authority interface {
	Start(config model.SessionConfig) error
	Stop()
	Status() *model.SessionRecord
	PeekConfigForOverlay() (model.OverlayConfig, bool)
	Subscribe(buffer int) <-chan session.Event
	Unsubscribe(events <-chan session.Event)
	Now() int64
}

// Overlay opens and closes the break overlay window.
type Overlay interface {
	Present(config model.OverlayConfig)
	CloseWindow()
}

// Handler serves the session and overlay endpoints.
type Handler struct {
	authority Authority
	overlay   Overlay
	logger    zerolog.Logger
}

// NewHandler creates a Handler. overlay may be nil on headless hosts.
func NewHandler(authority Authority, overlay Overlay, logger zerolog.Logger) *Handler {
	return &Handler{
		authority: authority,
		overlay:   overlay,
		logger:    logger.With().Str("component", "api").Logger(),
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
