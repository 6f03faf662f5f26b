package game

import (
	"sync"
	"time"
)

// Scheduler runs delayed one-shot callbacks. Every timer is keyed by a tag
// (the chat ID of the game that owns it) and a name, so a phase transition
// can drop everything still pending for its chat with a single CancelAll.
type Scheduler struct {
	mu      sync.Mutex
	timers  map[int64]map[string]*time.Timer
	stopped bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		timers: make(map[int64]map[string]*time.Timer),
	}
}

// After schedules fn to run once after delay. Scheduling the same tag/name
// pair again replaces the pending timer.
func (s *Scheduler) After(delay time.Duration, tag int64, name string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	if byName, ok := s.timers[tag]; ok {
		if t, ok := byName[name]; ok {
			t.Stop()
		}
	} else {
		s.timers[tag] = make(map[string]*time.Timer)
	}

	s.timers[tag][name] = time.AfterFunc(delay, func() {
		s.forget(tag, name)
		fn()
	})
}

// Cancel stops a single pending timer. It reports whether a timer with
// that tag and name was still pending.
func (s *Scheduler) Cancel(tag int64, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	byName, ok := s.timers[tag]
	if !ok {
		return false
	}

	t, ok := byName[name]
	if !ok {
		return false
	}

	delete(byName, name)
	if len(byName) == 0 {
		delete(s.timers, tag)
	}

	return t.Stop()
}

// CancelAll stops every pending timer carrying the tag.
func (s *Scheduler) CancelAll(tag int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.timers[tag] {
		t.Stop()
	}
	delete(s.timers, tag)
}

// Stop cancels all pending timers and rejects further scheduling. Used at
// shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for tag, byName := range s.timers {
		for _, t := range byName {
			t.Stop()
		}
		delete(s.timers, tag)
	}
}

// forget drops the bookkeeping entry for a timer that has fired.
func (s *Scheduler) forget(tag int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if byName, ok := s.timers[tag]; ok {
		delete(byName, name)
		if len(byName) == 0 {
			delete(s.timers, tag)
		}
	}
}
