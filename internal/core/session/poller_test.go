package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"breaktime/internal/core/clock"
	"breaktime/internal/core/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedSource struct {
	mu     sync.Mutex
	record *model.SessionRecord
	err    error
	calls  atomic.Int64
}

func (source *scriptedSource) Status(context.Context) (*model.SessionRecord, error) {
	source.calls.Add(1)
	source.mu.Lock()
	defer source.mu.Unlock()
	if source.err != nil {
		return nil, source.err
	}
	if source.record == nil {
		return nil, nil
	}
	record := *source.record
	return &record, nil
}

func (source *scriptedSource) set(record *model.SessionRecord, err error) {
	source.mu.Lock()
	defer source.mu.Unlock()
	source.record = record
	source.err = err
}

func TestPollOnceRecomputesRemainingFromStartTime(t *testing.T) {
	manual := clock.NewManual(epoch)
	record := model.NewSessionRecord(model.SessionConfig{DurationMinutes: 2}, epoch)
	source := &scriptedSource{record: &record}
	poller := NewPoller(source, PollerConfig{Interval: time.Second, Clock: manual}, nil, zerolog.Nop())

	snapshot := poller.PollOnce(context.Background())
	assert.True(t, snapshot.Active)
	assert.Equal(t, int64(120), snapshot.Remaining)

	manual.Advance(45 * time.Second)
	snapshot = poller.PollOnce(context.Background())
	assert.Equal(t, int64(75), snapshot.Remaining)
	assert.NoError(t, snapshot.Err)
}

func TestPollFailureKeepsSessionUnchanged(t *testing.T) {
	manual := clock.NewManual(epoch)
	record := model.NewSessionRecord(model.SessionConfig{DurationMinutes: 1, Message: "hold"}, epoch)
	source := &scriptedSource{record: &record}
	poller := NewPoller(source, PollerConfig{Clock: manual}, nil, zerolog.Nop())

	require.True(t, poller.PollOnce(context.Background()).Active)

	source.set(nil, errors.New("connection refused"))
	manual.Advance(10 * time.Second)
	snapshot := poller.PollOnce(context.Background())
	require.Error(t, snapshot.Err)
	assert.True(t, snapshot.Active)
	require.NotNil(t, snapshot.Record)
	assert.Equal(t, "hold", snapshot.Record.Message)
	assert.Equal(t, int64(50), snapshot.Remaining)

	source.set(nil, nil)
	snapshot = poller.PollOnce(context.Background())
	assert.NoError(t, snapshot.Err)
	assert.False(t, snapshot.Active)
	assert.Nil(t, snapshot.Record)
}

func TestLocalSourceReadsAuthority(t *testing.T) {
	authority, _, _ := newTestAuthority(t)
	source := LocalSource{Authority: authority}

	record, err := source.Status(context.Background())
	require.NoError(t, err)
	assert.Nil(t, record)

	require.NoError(t, authority.Start(model.SessionConfig{DurationMinutes: 3}))
	record, err = source.Status(context.Background())
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, int64(3), record.DurationMinutes)
}

func TestPollerStopAndRestartDoesNotLeakPreviousLoop(t *testing.T) {
	record := model.NewSessionRecord(model.SessionConfig{DurationMinutes: 10}, time.Now().Unix())
	source := &scriptedSource{record: &record}
	var updates atomic.Int64
	poller := NewPoller(source, PollerConfig{Interval: 10 * time.Millisecond}, func(Snapshot) {
		updates.Add(1)
	}, zerolog.Nop())

	poller.Start()
	poller.Start()
	require.Eventually(t, func() bool { return updates.Load() >= 3 }, time.Second, 5*time.Millisecond)

	poller.Stop()
	poller.Stop()
	assert.False(t, poller.Running())

	// Allow an in-flight tick to drain, then confirm polling has ceased.
	time.Sleep(30 * time.Millisecond)
	stoppedAt := source.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stoppedAt, source.calls.Load())

	poller.Start()
	defer poller.Stop()
	require.Eventually(t, func() bool { return source.calls.Load() >= stoppedAt+3 }, time.Second, 5*time.Millisecond)
	assert.True(t, poller.Last().Active)
}

func TestPollerCanStopFromCallback(t *testing.T) {
	source := &scriptedSource{}
	done := make(chan struct{})
	var poller *Poller
	poller = NewPoller(source, PollerConfig{Interval: 5 * time.Millisecond}, func(snapshot Snapshot) {
		if !snapshot.Active {
			poller.Stop()
			close(done)
		}
	}, zerolog.Nop())

	poller.Start()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback never observed idle session")
	}
	assert.False(t, poller.Running())
}
