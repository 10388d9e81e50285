package control

import (
	"errors"
	"testing"

	"breaktime/internal/core/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseForm(t *testing.T) {
	tests := []struct {
		name     string
		duration string
		dwell    string
		want     model.Settings
		wantErr  bool
	}{
		{"typical", "25", "10", model.Settings{DurationMinutes: 25, Message: "m", OverlayDwellSeconds: 10}, false},
		{"blank means zero", " ", "", model.Settings{Message: "m"}, false},
		{"upper bounds", "480", "300", model.Settings{DurationMinutes: 480, Message: "m", OverlayDwellSeconds: 300}, false},
		{"duration too long", "481", "0", model.Settings{}, true},
		{"negative dwell", "5", "-1", model.Settings{}, true},
		{"not a number", "ten", "0", model.Settings{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseForm(tt.duration, "m", tt.dwell)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormRangeErrorIsTyped(t *testing.T) {
	_, err := parseForm("1000", "", "0")
	assert.True(t, errors.Is(err, errFieldRange))
}

func TestFormatRemaining(t *testing.T) {
	assert.Equal(t, "00:00", formatRemaining(-3))
	assert.Equal(t, "01:30", formatRemaining(90))
	assert.Equal(t, "25:00", formatRemaining(1500))
	assert.Equal(t, "8:00:00", formatRemaining(480*60))
}
