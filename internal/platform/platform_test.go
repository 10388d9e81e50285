package platform

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecondInstanceIsRejected(t *testing.T) {
	first, err := AcquireSingleInstance("breaktime-test", "127.0.0.1:0")
	require.NoError(t, err)
	defer first.Release()

	_, err = AcquireSingleInstance("breaktime-test", first.Address())
	assert.True(t, errors.Is(err, ErrAlreadyRunning))
}

func TestHandedListenerIsNotReleasedByGuard(t *testing.T) {
	guard, err := AcquireSingleInstance("breaktime-test", "127.0.0.1:0")
	require.NoError(t, err)

	listener := guard.Listener()
	require.NoError(t, guard.Release())

	conn, err := net.Dial("tcp", guard.Address())
	require.NoError(t, err)
	conn.Close()
	require.NoError(t, listener.Close())
}

func TestPortFromNameIsStable(t *testing.T) {
	port := portFromName("BreakTime")
	assert.Equal(t, port, portFromName("BreakTime"))
	assert.GreaterOrEqual(t, port, 20000)
	assert.LessOrEqual(t, port, 39999)
}

func TestSlugName(t *testing.T) {
	assert.Equal(t, "break-time", slugName(" Break Time "))
	assert.Equal(t, "breaktime", slugName(""))
}

func TestActivatedListenerOutsideSystemd(t *testing.T) {
	t.Setenv("LISTEN_PID", "")
	t.Setenv("LISTEN_FDS", "")

	listener, err := ActivatedListener()
	require.NoError(t, err)
	assert.Nil(t, listener)
}
