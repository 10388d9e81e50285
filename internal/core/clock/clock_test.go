package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualAdvanceFiresDueTimersInOrder(t *testing.T) {
	manual := NewManual(1000)
	var fired []string

	manual.AfterFunc(10*time.Second, func() { fired = append(fired, "ten") })
	manual.AfterFunc(5*time.Second, func() { fired = append(fired, "five") })
	manual.AfterFunc(time.Minute, func() { fired = append(fired, "minute") })

	manual.Advance(10 * time.Second)

	assert.Equal(t, []string{"five", "ten"}, fired)
	assert.Equal(t, int64(1010), manual.Now())
	assert.Equal(t, 1, manual.Pending())
}

func TestManualTimerSeesItsDeadlineAsNow(t *testing.T) {
	manual := NewManual(0)
	var seen int64
	manual.AfterFunc(5*time.Second, func() { seen = manual.Now() })

	manual.Advance(time.Minute)

	assert.Equal(t, int64(5), seen)
	assert.Equal(t, int64(60), manual.Now())
}

func TestManualStopCancelsTimer(t *testing.T) {
	manual := NewManual(0)
	called := false
	timer := manual.AfterFunc(time.Second, func() { called = true })

	require.True(t, timer.Stop())
	require.False(t, timer.Stop())

	manual.Advance(time.Hour)
	assert.False(t, called)
}

func TestManualZeroDelayFiresOnNextMove(t *testing.T) {
	manual := NewManual(50)
	called := 0
	manual.AfterFunc(0, func() { called++ })

	manual.Advance(0)
	manual.Advance(0)

	assert.Equal(t, 1, called)
}

func TestSystemClockNow(t *testing.T) {
	before := time.Now().Unix()
	now := System.Now()
	assert.GreaterOrEqual(t, now, before)
}
