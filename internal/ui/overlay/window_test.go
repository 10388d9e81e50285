package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCountdown(t *testing.T) {
	assert.Equal(t, "", formatCountdown(-1))
	assert.Equal(t, "Closing in 0s", formatCountdown(0))
	assert.Equal(t, "Closing in 45s", formatCountdown(45))
	assert.Equal(t, "Closing in 2:05", formatCountdown(125))
}

func TestOpacityFromFraction(t *testing.T) {
	assert.Equal(t, uint8(0), OpacityFromFraction(-0.2))
	assert.Equal(t, uint8(217), OpacityFromFraction(0.85))
	assert.Equal(t, uint8(255), OpacityFromFraction(1.4))
}
