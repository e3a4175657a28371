package ebiteninput

import (
	"sort"
	"time"
)

type tickTimer struct {
	due     time.Duration
	seq     int
	fn      func()
	stopped bool
}

// TickScheduler runs gesture timers and frame callbacks from Game.Update.
// All methods must be called on the update goroutine.
type TickScheduler struct {
	now    time.Duration
	seq    int
	timers []*tickTimer
	frames []func()
}

// NewTickScheduler returns a scheduler at time zero.
func NewTickScheduler() *TickScheduler {
	return &TickScheduler{}
}

// Now returns the time reached by the last Tick.
func (s *TickScheduler) Now() time.Duration {
	return s.now
}

// AfterFunc schedules fn after d.
func (s *TickScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	s.seq++
	t := &tickTimer{due: s.now + d, seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)
	return func() bool {
		if t.stopped {
			return false
		}
		t.stopped = true
		return true
	}
}

// NextFrame queues fn for the next Tick.
func (s *TickScheduler) NextFrame(fn func()) {
	s.frames = append(s.frames, fn)
}

// Tick advances time by dt, runs queued frame callbacks and fires due timers in order.
func (s *TickScheduler) Tick(dt time.Duration) {
	s.now += dt
	frames := s.frames
	s.frames = nil
	for _, fn := range frames {
		fn()
	}

	due := make([]*tickTimer, 0, len(s.timers))
	kept := s.timers[:0]
	for _, t := range s.timers {
		switch {
		case t.stopped:
		case t.due <= s.now:
			due = append(due, t)
		default:
			kept = append(kept, t)
		}
	}
	s.timers = kept
	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		if t.stopped {
			continue
		}
		t.stopped = true
		t.fn()
	}
}

// Pending returns the number of live timers.
func (s *TickScheduler) Pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}
