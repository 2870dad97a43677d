package frame

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/san-kum/seaglass/internal/dynamo"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestTickCadence(t *testing.T) {
	s := New(zaptest.NewLogger(t))
	var fast, slow int
	s.Every("fast", 10*time.Millisecond, func(time.Time) { fast++ })
	s.Every("slow", 25*time.Millisecond, func(time.Time) { slow++ })

	for ms := 0; ms < 100; ms++ {
		s.Tick(t0.Add(time.Duration(ms) * time.Millisecond))
	}
	if fast != 10 {
		t.Errorf("expected 10 fast runs, got %d", fast)
	}
	if slow != 4 {
		t.Errorf("expected 4 slow runs, got %d", slow)
	}
}

func TestTickSkipsMissedFrames(t *testing.T) {
	s := New(nil)
	var runs int
	s.Every("step", 10*time.Millisecond, func(time.Time) { runs++ })
	s.Tick(t0)
	wait := s.Tick(t0.Add(time.Second))
	if runs != 2 {
		t.Errorf("a stalled loop should run once on resume, got %d runs", runs)
	}
	if wait != 10*time.Millisecond {
		t.Errorf("expected next deadline in 10ms, got %s", wait)
	}
}

func TestPostRunsBeforeTasks(t *testing.T) {
	s := New(nil)
	var order []string
	s.Every("task", time.Millisecond, func(time.Time) { order = append(order, "task") })
	if err := s.Post(func() { order = append(order, "event") }); err != nil {
		t.Fatal(err)
	}
	s.Tick(t0)
	if len(order) != 2 || order[0] != "event" || order[1] != "task" {
		t.Errorf("unexpected order %v", order)
	}
}

func TestCancelInsideTask(t *testing.T) {
	s := New(nil)
	var runs int
	var h Handle
	h = s.Every("once", time.Millisecond, func(time.Time) {
		runs++
		h.Cancel()
	})
	for i := 0; i < 5; i++ {
		s.Tick(t0.Add(time.Duration(i) * time.Millisecond))
	}
	if runs != 1 {
		t.Errorf("expected 1 run, got %d", runs)
	}
	if s.Tasks() != 0 {
		t.Errorf("expected no tasks, got %d", s.Tasks())
	}
	h.Cancel()
}

func TestUntilNextWithoutTasks(t *testing.T) {
	s := New(nil)
	if d := s.Tick(t0); d != time.Hour {
		t.Errorf("idle loop should sleep long, got %s", d)
	}
}

func TestRunAndTeardown(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := New(zaptest.NewLogger(t))
	var steps, frames atomic.Int64
	var scope Scope
	scope.Add(s.Every("step", time.Millisecond, func(time.Time) { steps.Add(1) }).Cancel)
	scope.Add(s.Every("frame", 2*time.Millisecond, func(time.Time) { frames.Add(1) }).Cancel)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	tapped := make(chan struct{})
	if err := s.Post(func() { close(tapped) }); err != nil {
		t.Fatal(err)
	}
	select {
	case <-tapped:
	case <-time.After(time.Second):
		t.Fatal("posted event never ran")
	}

	deadline := time.After(2 * time.Second)
	for steps.Load() < 5 || frames.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("loop too slow: steps=%d frames=%d", steps.Load(), frames.Load())
		case <-time.After(time.Millisecond):
		}
	}

	scope.Close()
	if s.Tasks() != 0 {
		t.Errorf("scope should cancel every task, %d left", s.Tasks())
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("run returned %v", err)
	}
	if err := s.Post(func() {}); !errors.Is(err, dynamo.ErrDisposed) {
		t.Errorf("expected ErrDisposed after stop, got %v", err)
	}
}

func TestScopeOrder(t *testing.T) {
	var s Scope
	var order []int
	for i := 1; i <= 3; i++ {
		s.Add(func() { order = append(order, i) })
	}
	s.Close()
	s.Close()
	if len(order) != 3 || order[0] != 3 || order[2] != 1 {
		t.Errorf("expected reverse order, got %v", order)
	}

	late := false
	s.Add(func() { late = true })
	if !late || !s.Closed() {
		t.Error("add on a closed scope should run immediately")
	}
}
