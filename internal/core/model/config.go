package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidConfig reports a negative or unrepresentable duration or dwell time.
var ErrInvalidConfig = errors.New("invalid session config")

// MaxSessionMinutes is the longest session whose length still fits in a time.Duration.
const MaxSessionMinutes = (math.MaxInt64 / int64(time.Second)) / 60

// SessionConfig is the caller-supplied description of one break-timer run.
type SessionConfig struct {
	DurationMinutes     int64  `json:"duration_minutes"`
	Message             string `json:"message"`
	OverlayDwellSeconds int64  `json:"overlay_dwell_seconds"`
}

// Validate rejects configs the authority must never store.
func (config SessionConfig) Validate() error {
	if config.DurationMinutes < 0 {
		return fmt.Errorf("%w: duration_minutes must be >= 0, got %d", ErrInvalidConfig, config.DurationMinutes)
	}
	if config.DurationMinutes > MaxSessionMinutes {
		return fmt.Errorf("%w: duration_minutes must be <= %d, got %d", ErrInvalidConfig, MaxSessionMinutes, config.DurationMinutes)
	}
	if config.OverlayDwellSeconds < 0 {
		return fmt.Errorf("%w: overlay_dwell_seconds must be >= 0, got %d", ErrInvalidConfig, config.OverlayDwellSeconds)
	}
	return nil
}

// OverlayConfig is the payload handed to the overlay when a session expires.
type OverlayConfig struct {
	Message             string `json:"message"`
	OverlayDwellSeconds int64  `json:"overlay_dwell_seconds"`
}
