package session

import "breaktime/internal/core/model"

// State represents whether a session is running.
type State string

const (
	StateIdle   State = "idle"
	StateActive State = "active"
)

// EventType defines the type of authority event.
type EventType string

const (
	EventStarted EventType = "started"
	EventStopped EventType = "stopped"
	// EventSnapshot describes the current state to a newly attached observer.
	EventSnapshot EventType = "snapshot"
	// EventExpired carries the overlay-config payload of the session that ran to completion.
	EventExpired EventType = "overlay-config"
)

// Event represents an authority update for observers.
type Event struct {
	Type    EventType            `json:"type"`
	State   State                `json:"state"`
	Record  *model.SessionRecord `json:"record,omitempty"`
	Overlay *model.OverlayConfig `json:"overlay,omitempty"`
	At      int64                `json:"at"`
}
