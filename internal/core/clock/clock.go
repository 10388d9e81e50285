package clock

import (
	"sort"
	"sync"
	"time"
)

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock supplies wall-clock time in epoch seconds and one-shot scheduling.
type Clock interface {
	Now() int64
	AfterFunc(delay time.Duration, fn func()) Timer
}

// System is the Clock backed by the operating system.
var System Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() int64 {
	return time.Now().Unix()
}

func (systemClock) AfterFunc(delay time.Duration, fn func()) Timer {
	return time.AfterFunc(delay, fn)
}

// Manual is a Clock that only moves when Advance or Set is called.
// Scheduled callbacks run synchronously on the goroutine that moves the clock.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
	nextID int
}

// NewManual returns a Manual clock positioned at the given epoch second.
func NewManual(epochSeconds int64) *Manual {
	return &Manual{now: time.Unix(epochSeconds, 0)}
}

// Now returns the current manual time in epoch seconds.
func (manual *Manual) Now() int64 {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	return manual.now.Unix()
}

// AfterFunc schedules fn to run once the clock has advanced by delay.
func (manual *Manual) AfterFunc(delay time.Duration, fn func()) Timer {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	manual.nextID++
	timer := &manualTimer{
		owner:    manual,
		id:       manual.nextID,
		deadline: manual.now.Add(delay),
		fn:       fn,
	}
	manual.timers = append(manual.timers, timer)
	return timer
}

// Advance moves the clock forward and fires every timer that became due.
func (manual *Manual) Advance(delta time.Duration) {
	manual.mu.Lock()
	target := manual.now.Add(delta)
	manual.mu.Unlock()
	manual.Set(target.Unix())
}

// Set moves the clock to the given epoch second and fires due timers in deadline order.
func (manual *Manual) Set(epochSeconds int64) {
	target := time.Unix(epochSeconds, 0)
	for {
		manual.mu.Lock()
		due := manual.nextDueLocked(target)
		if due == nil {
			if target.After(manual.now) {
				manual.now = target
			}
			manual.mu.Unlock()
			return
		}
		if due.deadline.After(manual.now) {
			manual.now = due.deadline
		}
		manual.removeLocked(due.id)
		manual.mu.Unlock()

		due.fn()
	}
}

// Pending reports how many timers are armed.
func (manual *Manual) Pending() int {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	return len(manual.timers)
}

func (manual *Manual) nextDueLocked(target time.Time) *manualTimer {
	sort.SliceStable(manual.timers, func(i, j int) bool {
		return manual.timers[i].deadline.Before(manual.timers[j].deadline)
	})
	if len(manual.timers) == 0 || manual.timers[0].deadline.After(target) {
		return nil
	}
	return manual.timers[0]
}

func (manual *Manual) removeLocked(id int) bool {
	for index, timer := range manual.timers {
		if timer.id == id {
			manual.timers = append(manual.timers[:index], manual.timers[index+1:]...)
			return true
		}
	}
	return false
}

type manualTimer struct {
	owner    *Manual
	id       int
	deadline time.Time
	fn       func()
}

func (timer *manualTimer) Stop() bool {
	timer.owner.mu.Lock()
	defer timer.owner.mu.Unlock()
	return timer.owner.removeLocked(timer.id)
}
