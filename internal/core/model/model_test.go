package model

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  SessionConfig
		wantErr bool
	}{
		{"zero values", SessionConfig{}, false},
		{"typical", SessionConfig{DurationMinutes: 25, Message: "stretch", OverlayDwellSeconds: 10}, false},
		{"negative duration", SessionConfig{DurationMinutes: -1}, true},
		{"negative dwell", SessionConfig{DurationMinutes: 5, OverlayDwellSeconds: -3}, true},
		{"longest representable", SessionConfig{DurationMinutes: MaxSessionMinutes}, false},
		{"duration overflows timer", SessionConfig{DurationMinutes: 200_000_000}, true},
		{"duration overflows seconds", SessionConfig{DurationMinutes: math.MaxInt64 / 60}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidConfig), "expected ErrInvalidConfig, got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRemainingSecondsIsDerivedFromStartTime(t *testing.T) {
	record := NewSessionRecord(SessionConfig{DurationMinutes: 1, Message: "x"}, 1000)

	assert.Equal(t, int64(60), record.RemainingSeconds(1000))
	assert.Equal(t, int64(50), record.RemainingSeconds(1010))
	assert.Equal(t, int64(0), record.RemainingSeconds(1060))
	assert.Equal(t, int64(0), record.RemainingSeconds(5000))
	assert.Equal(t, int64(1060), record.EndTime())
	assert.False(t, record.Expired(1059))
	assert.True(t, record.Expired(1060))
}

func TestZeroDurationIsExpiredImmediately(t *testing.T) {
	record := NewSessionRecord(SessionConfig{DurationMinutes: 0, OverlayDwellSeconds: 5}, 42)
	assert.True(t, record.Expired(42))
	assert.Equal(t, OverlayConfig{OverlayDwellSeconds: 5}, record.Overlay())
}

func TestSettingsClampToFormBounds(t *testing.T) {
	config := Settings{DurationMinutes: 1000, Message: "m", OverlayDwellSeconds: -4}.SessionConfig()
	assert.Equal(t, SessionConfig{DurationMinutes: MaxDurationMinutes, Message: "m", OverlayDwellSeconds: 0}, config)
}

func TestLongestSessionFitsInDuration(t *testing.T) {
	record := NewSessionRecord(SessionConfig{DurationMinutes: MaxSessionMinutes}, 1_700_000_000)

	remaining := record.RemainingSeconds(record.StartTime)
	assert.Positive(t, remaining)
	assert.Positive(t, time.Duration(remaining)*time.Second)
	assert.Greater(t, record.EndTime(), record.StartTime)
}
