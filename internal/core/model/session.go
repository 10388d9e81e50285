package model

// SessionRecord is the canonical state of the running session.
// It is never mutated after creation; remaining time is derived from StartTime.
type SessionRecord struct {
	StartTime           int64  `json:"start_time_epoch_seconds"`
	DurationMinutes     int64  `json:"duration_minutes"`
	Message             string `json:"message"`
	OverlayDwellSeconds int64  `json:"overlay_dwell_seconds"`
}

// NewSessionRecord stamps config with the given start time.
func NewSessionRecord(config SessionConfig, startTime int64) SessionRecord {
	return SessionRecord{
		StartTime:           startTime,
		DurationMinutes:     config.DurationMinutes,
		Message:             config.Message,
		OverlayDwellSeconds: config.OverlayDwellSeconds,
	}
}

// TotalSeconds is the configured session length in seconds.
func (record SessionRecord) TotalSeconds() int64 {
	return record.DurationMinutes * 60
}

// EndTime is the epoch second at which the session expires.
func (record SessionRecord) EndTime() int64 {
	return record.StartTime + record.TotalSeconds()
}

// RemainingSeconds returns the time left at now, clamped to zero.
func (record SessionRecord) RemainingSeconds(now int64) int64 {
	remaining := record.TotalSeconds() - (now - record.StartTime)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Expired reports whether no time remains at now.
func (record SessionRecord) Expired(now int64) bool {
	return record.RemainingSeconds(now) == 0
}

// Config returns the caller-supplied part of the record.
func (record SessionRecord) Config() SessionConfig {
	return SessionConfig{
		DurationMinutes:     record.DurationMinutes,
		Message:             record.Message,
		OverlayDwellSeconds: record.OverlayDwellSeconds,
	}
}

// Overlay returns the overlay payload for this record.
func (record SessionRecord) Overlay() OverlayConfig {
	return OverlayConfig{
		Message:             record.Message,
		OverlayDwellSeconds: record.OverlayDwellSeconds,
	}
}
