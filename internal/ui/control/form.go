package control

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"breaktime/internal/core/model"
)

var errFieldRange = errors.New("out of range")

// parseForm reads the three form fields. Empty numeric fields mean zero.
func parseForm(duration, message, dwell string) (model.Settings, error) {
	minutes, err := parseBoundedInt(duration, model.MaxDurationMinutes)
	if err != nil {
		return model.Settings{}, fmt.Errorf("duration: %w", err)
	}
	seconds, err := parseBoundedInt(dwell, model.MaxOverlayDwellSeconds)
	if err != nil {
		return model.Settings{}, fmt.Errorf("overlay time: %w", err)
	}
	return model.Settings{
		DurationMinutes:     minutes,
		Message:             message,
		OverlayDwellSeconds: seconds,
	}, nil
}

func parseBoundedInt(value string, max int64) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", value)
	}
	if parsed < 0 || parsed > max {
		return 0, fmt.Errorf("%w: must be between 0 and %d", errFieldRange, max)
	}
	return parsed, nil
}

func formatRemaining(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	seconds = seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
