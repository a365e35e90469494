package wizard

import (
	"time"

	"github.com/turanweb/turan/internal/clock"
)

// Slot names a class of pending transition. A slot holds at most one timer.
type Slot string

const (
	SlotAdvance   Slot = "advance"
	SlotPhase     Slot = "phase"
	SlotChat      Slot = "chat"
	SlotHighlight Slot = "highlight"
	SlotTheme     Slot = "theme"
	SlotReady     Slot = "ready"
)

type pending struct {
	timer clock.Timer
	gen   uint64
}

// scheduler owns a session's timers. All methods must be called with the
// session lock held; exec re-acquires it before a callback runs.
type scheduler struct {
	clock   clock.Clock
	exec    func(func() bool)
	pending map[Slot]pending
	gen     uint64
}

func newScheduler(c clock.Clock, exec func(func() bool)) *scheduler {
	return &scheduler{
		clock:   c,
		exec:    exec,
		pending: make(map[Slot]pending),
	}
}

// schedule arms fn to run after d, replacing whatever the slot held.
func (s *scheduler) schedule(slot Slot, d time.Duration, fn func()) {
	s.cancel(slot)

	s.gen++
	gen := s.gen
	t := s.clock.AfterFunc(d, func() {
		s.exec(func() bool {
			p, ok := s.pending[slot]
			if !ok || p.gen != gen {
				return false
			}
			delete(s.pending, slot)
			fn()
			return true
		})
	})
	s.pending[slot] = pending{timer: t, gen: gen}
}

func (s *scheduler) cancel(slots ...Slot) {
	for _, slot := range slots {
		if p, ok := s.pending[slot]; ok {
			p.timer.Stop()
			delete(s.pending, slot)
		}
	}
}

func (s *scheduler) cancelAll() {
	for slot, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, slot)
	}
}

func (s *scheduler) isPending(slot Slot) bool {
	_, ok := s.pending[slot]
	return ok
}

func (s *scheduler) size() int {
	return len(s.pending)
}
