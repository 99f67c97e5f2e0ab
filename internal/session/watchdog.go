package session

import (
	"sync"
	"time"
)

// watchdog runs the recurring idle check for one armed session. It is not a
// deadline on total duration: each tick compares now against the time of the
// last inbound event and only a silence gap beyond the idle threshold fails
// the session.
type watchdog struct {
	tick time.Duration
	stop chan struct{}
	once sync.Once
}

func newWatchdog(tick time.Duration) *watchdog {
	return &watchdog{tick: tick, stop: make(chan struct{})}
}

// run polls until disarmed or until check reports the session no longer
// needs watching. check returns false to end the loop.
func (w *watchdog) run(check func() bool) {
	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			if !check() {
				return
			}
		}
	}
}

// disarm cancels the recurring check outright. Safe to call more than once.
func (w *watchdog) disarm() {
	w.once.Do(func() { close(w.stop) })
}

// armWatchdogLocked replaces any previous watchdog with a fresh one bound to
// the current epoch. The previous one is disarmed first so no timer survives
// a restart.
func (s *Session) armWatchdogLocked() {
	s.disarmWatchdogLocked()

	w := newWatchdog(s.cfg.WatchdogTick)
	s.watchdog = w
	epoch := s.epoch
	go w.run(func() bool { return s.checkIdle(epoch) })
}

// disarmWatchdogLocked cancels the active watchdog, if any.
func (s *Session) disarmWatchdogLocked() {
	if s.watchdog != nil {
		s.watchdog.disarm()
		s.watchdog = nil
	}
}

// checkIdle is one watchdog tick. It returns false when the loop should end:
// the session moved on (new epoch or terminal phase) or just timed out here.
func (s *Session) checkIdle(epoch int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch || !s.phase.active() {
		return false
	}
	if s.now().Sub(s.lastProgress) >= s.cfg.IdleTimeout {
		s.finalizeLocked(TimedOut)
		return false
	}
	return true
}
