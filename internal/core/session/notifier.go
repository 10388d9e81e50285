package session

import (
	"time"

	"breaktime/internal/core/clock"
	"breaktime/internal/core/model"
	"breaktime/internal/metrics"
)

// expiryNotifier holds the one-shot timer armed for the running session and the
// trigger produced when that session expires. It is guarded by the Authority mutex.
type expiryNotifier struct {
	timer    clock.Timer
	armedFor uint64
	pending  *pendingTrigger
}

type pendingTrigger struct {
	sessionID uint64
	overlay   model.OverlayConfig
	delivered bool
}

func (notifier *expiryNotifier) armLocked(clk clock.Clock, sessionID uint64, remainingSeconds int64, fire func(uint64)) {
	notifier.disarmLocked()
	notifier.armedFor = sessionID
	notifier.timer = clk.AfterFunc(time.Duration(remainingSeconds)*time.Second, func() {
		fire(sessionID)
	})
}

func (notifier *expiryNotifier) disarmLocked() {
	if notifier.timer != nil {
		notifier.timer.Stop()
		notifier.timer = nil
	}
	notifier.armedFor = 0
}

func (notifier *expiryNotifier) scheduleLocked(sessionID uint64, overlay model.OverlayConfig) {
	notifier.pending = &pendingTrigger{sessionID: sessionID, overlay: overlay}
}

func (notifier *expiryNotifier) clearLocked() {
	notifier.pending = nil
}

// claimLocked hands out the trigger for sessionID at most once.
func (notifier *expiryNotifier) claimLocked(sessionID uint64) (model.OverlayConfig, bool) {
	pending := notifier.pending
	if pending == nil || pending.sessionID != sessionID || pending.delivered {
		return model.OverlayConfig{}, false
	}
	pending.delivered = true
	return pending.overlay, true
}

// fire runs on the timer goroutine. A timer armed for a superseded or stopped session is ignored.
func (authority *Authority) fire(sessionID uint64) {
	authority.mu.Lock()
	if authority.record == nil || authority.sessionID != sessionID || authority.notifier.armedFor != sessionID {
		authority.mu.Unlock()
		authority.logger.Debug().Uint64("session_id", sessionID).Msg("Ignoring stale expiry timer")
		return
	}

	now := authority.clock.Now()
	if remaining := authority.record.RemainingSeconds(now); remaining > 0 {
		// Timer ran ahead of the second-granularity clock.
		authority.notifier.armLocked(authority.clock, sessionID, remaining, authority.fire)
		authority.mu.Unlock()
		return
	}
	authority.expireLocked(now)
	authority.mu.Unlock()

	authority.deliver(sessionID)
}

// deliver invokes the presenter for sessionID unless the trigger was already
// delivered or a later Stop cancelled it. A later Start does not cancel it.
func (authority *Authority) deliver(sessionID uint64) {
	authority.mu.Lock()
	overlay, ok := authority.notifier.claimLocked(sessionID)
	if !ok {
		authority.mu.Unlock()
		return
	}
	presenter := authority.presenter
	state := StateIdle
	if authority.record != nil {
		state = StateActive
	}
	authority.emitLocked(Event{
		Type:    EventExpired,
		State:   state,
		Overlay: &overlay,
		At:      authority.clock.Now(),
	})
	authority.mu.Unlock()

	metrics.SessionsExpired.Inc()
	if state == StateIdle {
		metrics.SessionActive.Set(0)
	}
	if presenter == nil {
		authority.logger.Warn().Msg("Session expired with no overlay presenter attached")
		return
	}
	metrics.OverlaysShown.WithLabelValues("expiry").Inc()
	presenter.PresentSession(sessionID, overlay)
}
