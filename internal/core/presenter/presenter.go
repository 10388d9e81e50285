// Package presenter drives the break overlay: it shows the surface when a session
// expires, counts down the dwell time, and releases that session when the overlay closes.
package presenter

import (
	"sync"
	"time"

	"breaktime/internal/core/clock"
	"breaktime/internal/core/model"
	"breaktime/internal/metrics"

	"github.com/rs/zerolog"
)

// Surface is the window layer that renders the overlay.
type Surface interface {
	Show(config model.OverlayConfig)
	// SetRemaining updates the auto-close countdown. Negative means no auto-close.
	SetRemaining(seconds int64)
	Hide()
}

// Acknowledger releases the expired session an overlay was shown for.
type Acknowledger interface {
	Acknowledge(sessionID uint64)
}

// Close reasons reported to metrics and logs.
const (
	ReasonDismissed = "dismissed"
	ReasonDwell     = "dwell"
	ReasonWindow    = "window"
)

// Config contains runtime options for Presenter.
type Config struct {
	// AutoClose enables closing after the dwell time. With it off, or dwell 0, only dismissal closes.
	AutoClose bool
	Clock     clock.Clock
}

// Presenter shows at most one overlay at a time.
type Presenter struct {
	mu         sync.Mutex
	surface    Surface
	acks       Acknowledger
	options    Config
	logger     zerolog.Logger
	visible    bool
	current    model.OverlayConfig
	sessionID  uint64
	generation uint64
	timer      clock.Timer
	onClosed   func(reason string)
}

// New creates a hidden Presenter.
func New(surface Surface, acks Acknowledger, options Config, logger zerolog.Logger) *Presenter {
	if options.Clock == nil {
		options.Clock = clock.System
	}
	return &Presenter{
		surface: surface,
		acks:    acks,
		options: options,
		logger:  logger.With().Str("component", "overlay-presenter").Logger(),
	}
}

// SetOnClosed registers a handler that runs after the overlay is hidden.
func (presenter *Presenter) SetOnClosed(handler func(reason string)) {
	presenter.mu.Lock()
	defer presenter.mu.Unlock()
	presenter.onClosed = handler
}

// Present shows the overlay without tying it to a session, as a manual preview.
func (presenter *Presenter) Present(config model.OverlayConfig) {
	presenter.PresentSession(0, config)
}

// PresentSession shows the overlay for an expired session, replacing any overlay already on screen.
func (presenter *Presenter) PresentSession(sessionID uint64, config model.OverlayConfig) {
	presenter.mu.Lock()
	presenter.disarmLocked()
	presenter.generation++
	generation := presenter.generation
	presenter.visible = true
	presenter.current = config
	presenter.sessionID = sessionID
	autoClose := presenter.options.AutoClose && config.OverlayDwellSeconds > 0
	if autoClose {
		presenter.armLocked(generation, config.OverlayDwellSeconds)
	}
	presenter.mu.Unlock()

	presenter.logger.Info().
		Uint64("session_id", sessionID).
		Str("message", config.Message).
		Int64("dwell_seconds", config.OverlayDwellSeconds).
		Bool("auto_close", autoClose).
		Msg("Showing break overlay")

	presenter.surface.Show(config)
	if autoClose {
		presenter.surface.SetRemaining(config.OverlayDwellSeconds)
	} else {
		presenter.surface.SetRemaining(-1)
	}
}

// Dismiss releases the session the overlay was shown for and hides it. It is a no-op while hidden.
func (presenter *Presenter) Dismiss() {
	presenter.mu.Lock()
	generation := presenter.generation
	presenter.mu.Unlock()
	presenter.close(generation, ReasonDismissed, true)
}

// CloseWindow hides the overlay without releasing its session.
func (presenter *Presenter) CloseWindow() {
	presenter.mu.Lock()
	generation := presenter.generation
	presenter.mu.Unlock()
	presenter.close(generation, ReasonWindow, false)
}

// Visible reports whether the overlay is on screen and what it shows.
func (presenter *Presenter) Visible() (model.OverlayConfig, bool) {
	presenter.mu.Lock()
	defer presenter.mu.Unlock()
	return presenter.current, presenter.visible
}

func (presenter *Presenter) armLocked(generation uint64, remaining int64) {
	presenter.timer = presenter.options.Clock.AfterFunc(time.Second, func() {
		presenter.countdown(generation, remaining-1)
	})
}

func (presenter *Presenter) disarmLocked() {
	if presenter.timer != nil {
		presenter.timer.Stop()
		presenter.timer = nil
	}
}

func (presenter *Presenter) countdown(generation uint64, remaining int64) {
	presenter.mu.Lock()
	if !presenter.visible || presenter.generation != generation {
		presenter.mu.Unlock()
		return
	}
	if remaining > 0 {
		presenter.armLocked(generation, remaining)
		presenter.mu.Unlock()
		presenter.surface.SetRemaining(remaining)
		return
	}
	presenter.timer = nil
	presenter.mu.Unlock()

	presenter.close(generation, ReasonDwell, true)
}

func (presenter *Presenter) close(generation uint64, reason string, acknowledge bool) {
	presenter.mu.Lock()
	if !presenter.visible || presenter.generation != generation {
		presenter.mu.Unlock()
		return
	}
	sessionID := presenter.sessionID
	presenter.visible = false
	presenter.current = model.OverlayConfig{}
	presenter.sessionID = 0
	presenter.disarmLocked()
	onClosed := presenter.onClosed
	presenter.mu.Unlock()

	if acknowledge && sessionID != 0 && presenter.acks != nil {
		presenter.acks.Acknowledge(sessionID)
	}
	presenter.surface.Hide()
	metrics.OverlaysClosed.WithLabelValues(reason).Inc()
	presenter.logger.Info().Str("reason", reason).Msg("Break overlay closed")

	if onClosed != nil {
		onClosed(reason)
	}
}
