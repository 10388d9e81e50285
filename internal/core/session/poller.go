package session

import (
	"context"
	"sync"
	"time"

	"breaktime/internal/core/clock"
	"breaktime/internal/core/model"
	"breaktime/internal/metrics"

	"github.com/rs/zerolog"
)

// StatusSource reports the running session. Remote sources may fail transiently.
type StatusSource interface {
	Status(ctx context.Context) (*model.SessionRecord, error)
}

// LocalSource adapts an in-process Authority to StatusSource.
type LocalSource struct {
	Authority *Authority
}

// Status never fails for an in-process authority.
func (source LocalSource) Status(context.Context) (*model.SessionRecord, error) {
	return source.Authority.Status(), nil
}

// Snapshot is what an observer renders after one poll.
type Snapshot struct {
	Active    bool
	Record    *model.SessionRecord
	Remaining int64
	// Err is set when the poll failed; Active and Record then repeat the last good poll.
	Err error
}

// PollerConfig contains runtime options for Poller.
type PollerConfig struct {
	Interval time.Duration
	Clock    clock.Clock
}

// Poller queries a StatusSource on a fixed interval and recomputes remaining time
// from the record's start timestamp on every tick.
type Poller struct {
	mu         sync.Mutex
	source     StatusSource
	options    PollerConfig
	onUpdate   func(Snapshot)
	logger     zerolog.Logger
	stopCh     chan struct{}
	running    bool
	generation uint64
	last       Snapshot
}

// NewPoller creates a stopped Poller.
func NewPoller(source StatusSource, options PollerConfig, onUpdate func(Snapshot), logger zerolog.Logger) *Poller {
	if options.Interval <= 0 {
		options.Interval = time.Second
	}
	if options.Clock == nil {
		options.Clock = clock.System
	}
	return &Poller{
		source:   source,
		options:  options,
		onUpdate: onUpdate,
		logger:   logger.With().Str("component", "session-poller").Logger(),
	}
}

// Start launches the polling loop. It is a no-op while running.
func (poller *Poller) Start() {
	poller.mu.Lock()
	if poller.running {
		poller.mu.Unlock()
		return
	}
	poller.running = true
	poller.generation++
	generation := poller.generation
	stopCh := make(chan struct{})
	poller.stopCh = stopCh
	poller.mu.Unlock()

	go poller.run(generation, stopCh)
}

// Stop terminates the polling loop. It may be called from the update callback.
func (poller *Poller) Stop() {
	poller.mu.Lock()
	defer poller.mu.Unlock()
	if !poller.running {
		return
	}
	close(poller.stopCh)
	poller.running = false
	poller.generation++
}

// Running reports whether the loop is active.
func (poller *Poller) Running() bool {
	poller.mu.Lock()
	defer poller.mu.Unlock()
	return poller.running
}

// Last returns the most recent snapshot.
func (poller *Poller) Last() Snapshot {
	poller.mu.Lock()
	defer poller.mu.Unlock()
	return poller.last
}

// PollOnce performs a single query. A failed query keeps the previous session state.
func (poller *Poller) PollOnce(ctx context.Context) Snapshot {
	ctx, cancel := context.WithTimeout(ctx, poller.options.Interval)
	defer cancel()

	record, err := poller.source.Status(ctx)

	poller.mu.Lock()
	defer poller.mu.Unlock()
	if err != nil {
		metrics.PollFailures.Inc()
		poller.logger.Warn().Err(err).Msg("Session status poll failed, retrying next tick")
		snapshot := poller.last
		snapshot.Err = err
		if snapshot.Record != nil {
			snapshot.Remaining = snapshot.Record.RemainingSeconds(poller.options.Clock.Now())
		}
		poller.last = snapshot
		return snapshot
	}

	snapshot := Snapshot{}
	if record != nil {
		snapshot.Active = true
		snapshot.Record = record
		snapshot.Remaining = record.RemainingSeconds(poller.options.Clock.Now())
	}
	poller.last = snapshot
	return snapshot
}

func (poller *Poller) run(generation uint64, stopCh chan struct{}) {
	ticker := time.NewTicker(poller.options.Interval)
	defer ticker.Stop()

	poller.tick(generation)
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			poller.tick(generation)
		}
	}
}

func (poller *Poller) tick(generation uint64) {
	snapshot := poller.PollOnce(context.Background())

	poller.mu.Lock()
	current := poller.running && poller.generation == generation
	poller.mu.Unlock()
	if current && poller.onUpdate != nil {
		poller.onUpdate(snapshot)
	}
}
