package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"breaktime/internal/core/model"
	"breaktime/internal/metrics"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 64 << 10

// RegisterRoutes registers the session and overlay routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Post("/session", h.StartSession)
		r.Delete("/session", h.StopSession)
		r.Get("/session", h.GetSession)
		r.Get("/session/config", h.GetOverlayConfig)
		r.Post("/overlay", h.OpenOverlay)
		r.Delete("/overlay", h.CloseOverlay)
		r.Get("/events", h.Events)
	})
}

// StartSession replaces the current session with the posted config.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var config model.SessionConfig
	if err := decodeBody(w, r, &config); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.authority.Start(config); err != nil {
		if errors.Is(err, model.ErrInvalidConfig) {
			Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error().Err(err).Msg("Failed to start session")
		Error(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	JSON(w, http.StatusOK, h.authority.Status())
}

// StopSession cancels the current session. Stopping an idle authority succeeds.
func (h *Handler) StopSession(w http.ResponseWriter, r *http.Request) {
	h.authority.Stop()
	w.WriteHeader(http.StatusNoContent)
}

// GetSession returns the running session record, or null.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, h.authority.Status())
}

// GetOverlayConfig returns the overlay parameters of the last expired session, or null.
func (h *Handler) GetOverlayConfig(w http.ResponseWriter, r *http.Request) {
	config, ok := h.authority.PeekConfigForOverlay()
	if !ok {
		JSON(w, http.StatusOK, nil)
		return
	}
	JSON(w, http.StatusOK, config)
}

// OpenOverlay shows the overlay window with the posted config.
func (h *Handler) OpenOverlay(w http.ResponseWriter, r *http.Request) {
	if h.overlay == nil {
		Error(w, http.StatusServiceUnavailable, "no overlay surface attached")
		return
	}

	var config model.OverlayConfig
	if err := decodeBody(w, r, &config); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if config.OverlayDwellSeconds < 0 {
		Error(w, http.StatusBadRequest, "overlay_dwell_seconds must be >= 0")
		return
	}

	h.overlay.Present(config)
	metrics.OverlaysShown.WithLabelValues("api").Inc()
	w.WriteHeader(http.StatusNoContent)
}

// CloseOverlay hides the overlay window without touching the session.
func (h *Handler) CloseOverlay(w http.ResponseWriter, r *http.Request) {
	if h.overlay == nil {
		Error(w, http.StatusServiceUnavailable, "no overlay surface attached")
		return
	}
	h.overlay.CloseWindow()
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}
