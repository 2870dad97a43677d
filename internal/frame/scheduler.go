// Package frame runs the scene's periodic tasks and input events on a
// single loop goroutine.
//
// Every registers a task that repeats until its handle is cancelled. Post
// queues a one-shot event (a tap, a tilt sample, a resize) to run on the
// loop between tasks, so handlers never race with the physics step or the
// render sync. Tick runs one loop iteration against a caller-supplied clock
// for headless runs and tests.
package frame

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/san-kum/seaglass/internal/dynamo"
	"go.uber.org/zap"
)

type task struct {
	name      string
	interval  time.Duration
	next      time.Time
	fn        func(now time.Time)
	cancelled atomic.Bool
}

// Handle cancels one periodic task. Cancel is idempotent and may be called
// from inside the task itself.
type Handle struct {
	s *Scheduler
	t *task
}

func (h Handle) Cancel() {
	if h.t == nil || h.t.cancelled.Swap(true) {
		return
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	for i, t := range h.s.tasks {
		if t == h.t {
			h.s.tasks = append(h.s.tasks[:i], h.s.tasks[i+1:]...)
			break
		}
	}
	h.s.log.Debug("task cancelled", zap.String("task", h.t.name))
}

type Scheduler struct {
	log    *zap.Logger
	mu     sync.Mutex
	tasks  []*task
	posted []func()
	wake   chan struct{}
	closed bool
}

func New(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{log: log.Named("frame"), wake: make(chan struct{}, 1)}
}

// Every runs fn every interval, first at the next loop iteration. Missed
// deadlines are skipped, never replayed in a burst.
func (s *Scheduler) Every(name string, interval time.Duration, fn func(now time.Time)) Handle {
	t := &task{name: name, interval: interval, fn: fn}
	s.mu.Lock()
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()
	s.poke()
	s.log.Debug("task scheduled", zap.String("task", name), zap.Duration("interval", interval))
	return Handle{s: s, t: t}
}

// Post queues fn for the loop. It fails with dynamo.ErrDisposed once the
// loop has stopped.
func (s *Scheduler) Post(fn func()) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return dynamo.ErrDisposed
	}
	s.posted = append(s.posted, fn)
	s.mu.Unlock()
	s.poke()
	return nil
}

func (s *Scheduler) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Tasks reports the number of live periodic tasks.
func (s *Scheduler) Tasks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Tick drains posted events, runs every task due at now and returns the
// time until the next task is due.
func (s *Scheduler) Tick(now time.Time) time.Duration {
	s.mu.Lock()
	posted := s.posted
	s.posted = nil
	s.mu.Unlock()
	for _, fn := range posted {
		fn()
	}

	s.mu.Lock()
	var due []*task
	for _, t := range s.tasks {
		if t.next.IsZero() || !now.Before(t.next) {
			due = append(due, t)
			t.next = t.next.Add(t.interval)
			if t.next.IsZero() || !now.Before(t.next) {
				t.next = now.Add(t.interval)
			}
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		if !t.cancelled.Load() {
			t.fn(now)
		}
	}
	return s.untilNext(now)
}

func (s *Scheduler) untilNext(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.posted) > 0 {
		return 0
	}
	if len(s.tasks) == 0 {
		return time.Hour
	}
	wait := s.tasks[0].next.Sub(now)
	for _, t := range s.tasks[1:] {
		if d := t.next.Sub(now); d < wait {
			wait = d
		}
	}
	return max(wait, 0)
}

// Run drives the loop on the wall clock until ctx is done. Events posted
// after Run returns are rejected.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("loop started")
	timer := time.NewTimer(0)
	defer timer.Stop()
	defer func() {
		s.mu.Lock()
		s.closed = true
		s.posted = nil
		s.mu.Unlock()
		s.log.Info("loop stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		case <-s.wake:
		}
		if ctx.Err() != nil {
			return nil
		}
		timer.Reset(s.Tick(time.Now()))
	}
}
