package model

// Form bounds used by the control surface.
const (
	MaxDurationMinutes     = 480
	MaxOverlayDwellSeconds = 300
)

// Settings holds the control surface form defaults.
type Settings struct {
	DurationMinutes     int64
	Message             string
	OverlayDwellSeconds int64
}

// DefaultSettings returns the defaults shown on first launch.
func DefaultSettings() Settings {
	return Settings{
		DurationMinutes:     25,
		Message:             "Time to take a break!",
		OverlayDwellSeconds: 10,
	}
}

// SessionConfig converts form values to a session config, clamping to the form bounds.
func (settings Settings) SessionConfig() SessionConfig {
	return SessionConfig{
		DurationMinutes:     clamp(settings.DurationMinutes, 0, MaxDurationMinutes),
		Message:             settings.Message,
		OverlayDwellSeconds: clamp(settings.OverlayDwellSeconds, 0, MaxOverlayDwellSeconds),
	}
}

func clamp(value, min, max int64) int64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
