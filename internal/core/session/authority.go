package session

import (
	"sync"

	"breaktime/internal/core/clock"
	"breaktime/internal/core/model"
	"breaktime/internal/metrics"

	"github.com/rs/zerolog"
)

// Presenter receives the overlay parameters of a session that ran to completion.
// PresentSession must not block and must not call back into the Authority synchronously.
type Presenter interface {
	PresentSession(sessionID uint64, config model.OverlayConfig)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(sessionID uint64, config model.OverlayConfig)

// PresentSession calls fn.
func (fn PresenterFunc) PresentSession(sessionID uint64, config model.OverlayConfig) {
	fn(sessionID, config)
}

// Authority is the single owner of the session record.
// Start, Stop and every expiry observation run inside one critical section.
type Authority struct {
	mu        sync.Mutex
	clock     clock.Clock
	logger    zerolog.Logger
	record    *model.SessionRecord
	sessionID uint64
	notifier  expiryNotifier
	presenter Presenter
	events    []chan Event
	closed    bool
}

// New creates an idle Authority.
func New(clk clock.Clock, logger zerolog.Logger) *Authority {
	if clk == nil {
		clk = clock.System
	}
	return &Authority{
		clock:  clk,
		logger: logger.With().Str("component", "session-authority").Logger(),
	}
}

// SetPresenter injects the expiry handler.
func (authority *Authority) SetPresenter(presenter Presenter) {
	authority.mu.Lock()
	defer authority.mu.Unlock()
	authority.presenter = presenter
}

// Subscribe registers a new observer channel. Slow observers miss events rather than block the authority.
func (authority *Authority) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	authority.mu.Lock()
	defer authority.mu.Unlock()
	if authority.closed {
		close(ch)
		return ch
	}
	authority.events = append(authority.events, ch)
	return ch
}

// Unsubscribe removes and closes an observer channel.
func (authority *Authority) Unsubscribe(events <-chan Event) {
	authority.mu.Lock()
	defer authority.mu.Unlock()
	for index, ch := range authority.events {
		if ch == events {
			authority.events = append(authority.events[:index], authority.events[index+1:]...)
			close(ch)
			return
		}
	}
}

// Start replaces any existing record with a new one stamped with the current time.
func (authority *Authority) Start(config model.SessionConfig) error {
	if err := config.Validate(); err != nil {
		metrics.SessionsRejected.Inc()
		return err
	}

	authority.mu.Lock()
	// A replaced record that already ran out still owes its overlay.
	expiredID, expired := authority.observeLocked()
	now := authority.clock.Now()
	replaced := authority.record != nil
	record := model.NewSessionRecord(config, now)
	authority.sessionID++
	authority.record = &record
	authority.notifier.armLocked(authority.clock, authority.sessionID, record.RemainingSeconds(now), authority.fire)
	authority.emitLocked(Event{
		Type:   EventStarted,
		State:  StateActive,
		Record: &record,
		At:     now,
	})
	authority.mu.Unlock()

	if expired {
		authority.deliver(expiredID)
	}
	metrics.SessionsStarted.Inc()
	metrics.SessionActive.Set(1)
	authority.logger.Info().
		Int64("duration_minutes", record.DurationMinutes).
		Int64("dwell_seconds", record.OverlayDwellSeconds).
		Int64("start_time", record.StartTime).
		Bool("replaced", replaced).
		Msg("Session started")
	return nil
}

// Stop clears the record and cancels any pending expiry. It is a no-op when idle.
func (authority *Authority) Stop() {
	authority.mu.Lock()
	hadRecord := authority.record != nil
	hadPending := authority.notifier.pending != nil
	authority.record = nil
	authority.notifier.disarmLocked()
	authority.notifier.clearLocked()
	if hadRecord {
		authority.emitLocked(Event{
			Type:  EventStopped,
			State: StateIdle,
			At:    authority.clock.Now(),
		})
	}
	authority.mu.Unlock()

	if !hadRecord && !hadPending {
		return
	}
	if hadRecord {
		metrics.SessionsStopped.Inc()
	}
	metrics.SessionActive.Set(0)
	authority.logger.Info().Bool("cancelled", hadRecord).Msg("Session stopped")
}

// Acknowledge releases the overlay trigger of an expired session once its overlay has closed.
// Unlike Stop it never touches a session started after sessionID.
func (authority *Authority) Acknowledge(sessionID uint64) {
	authority.mu.Lock()
	pending := authority.notifier.pending
	if pending == nil || pending.sessionID != sessionID {
		authority.mu.Unlock()
		return
	}
	authority.notifier.clearLocked()
	active := authority.record != nil
	authority.mu.Unlock()

	authority.logger.Info().
		Uint64("session_id", sessionID).
		Bool("newer_session_active", active).
		Msg("Overlay acknowledged")
}

// Query returns the running session, or false once it has expired or been stopped.
// Observing expiry clears the record and fires the overlay trigger.
func (authority *Authority) Query() (model.SessionRecord, bool) {
	authority.mu.Lock()
	triggerID, expired := authority.observeLocked()
	record := authority.record
	authority.mu.Unlock()

	if expired {
		authority.deliver(triggerID)
	}
	if record == nil {
		return model.SessionRecord{}, false
	}
	return *record, true
}

// Status returns a copy of the running session or nil.
func (authority *Authority) Status() *model.SessionRecord {
	record, ok := authority.Query()
	if !ok {
		return nil
	}
	return &record
}

// Remaining returns the seconds left in the running session.
func (authority *Authority) Remaining() (int64, bool) {
	record, ok := authority.Query()
	if !ok {
		return 0, false
	}
	return record.RemainingSeconds(authority.clock.Now()), true
}

// PeekConfigForOverlay returns the overlay parameters of the session that most recently expired
// until Stop or Acknowledge releases them. A newer session started afterwards never shows through.
func (authority *Authority) PeekConfigForOverlay() (model.OverlayConfig, bool) {
	authority.mu.Lock()
	triggerID, expired := authority.observeLocked()
	pending := authority.notifier.pending
	authority.mu.Unlock()

	if expired {
		authority.deliver(triggerID)
	}
	if pending == nil {
		return model.OverlayConfig{}, false
	}
	return pending.overlay, true
}

// Now exposes the authority clock to observers that render countdowns.
func (authority *Authority) Now() int64 {
	return authority.clock.Now()
}

// Close cancels any pending expiry and closes all observers.
func (authority *Authority) Close() {
	authority.mu.Lock()
	if authority.closed {
		authority.mu.Unlock()
		return
	}
	authority.closed = true
	authority.notifier.disarmLocked()
	events := authority.events
	authority.events = nil
	authority.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// observeLocked lazily expires the record when no time remains.
func (authority *Authority) observeLocked() (uint64, bool) {
	if authority.record == nil {
		return 0, false
	}
	now := authority.clock.Now()
	if !authority.record.Expired(now) {
		return 0, false
	}
	return authority.expireLocked(now), true
}

func (authority *Authority) expireLocked(now int64) uint64 {
	record := *authority.record
	authority.record = nil
	authority.notifier.disarmLocked()
	authority.notifier.scheduleLocked(authority.sessionID, record.Overlay())

	authority.logger.Info().
		Int64("start_time", record.StartTime).
		Int64("end_time", record.EndTime()).
		Int64("observed_at", now).
		Msg("Session expired")
	return authority.sessionID
}

func (authority *Authority) emitLocked(event Event) {
	for _, ch := range authority.events {
		select {
		case ch <- event:
		default:
		}
	}
}
