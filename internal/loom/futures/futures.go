// Package futures turns a user future into a polling loop of
// park/unpark, as the fuzz_future entry point in the loom package
// expects, plus the single-slot Task notifier used by the atomic-task
// testable scenario.
package futures

import (
	"github.com/kolkov/loomgo/internal/loom/rt/engine"
	"github.com/kolkov/loomgo/internal/loom/rt/thread"
)

// Task is the single-slot notifier: one thread calls Register to park
// itself awaiting a wakeup, another calls Notify to wake it. It uses the
// per-thread Notified latch instead of its own waiter queue, matching the
// single-registration contract the atomic-task scenario exercises.
type Task struct {
	waiter    thread.Tid
	hasWaiter bool
}

// NewTask returns a Task with no registered waiter.
func NewTask() *Task {
	return &Task{}
}

// Register records the active thread as the one to wake on the next
// Notify, then branches.
func (t *Task) Register() {
	e := engine.Current()
	t.waiter = e.Exec.ActiveTid()
	t.hasWaiter = true
	e.Branch()
}

// Notify sets the registered waiter's Notified latch and unparks it, if
// one is registered, then branches.
func (t *Task) Notify() {
	e := engine.Current()
	if t.hasWaiter {
		e.Exec.Thread(t.waiter).Notified = true
		e.Exec.UnparkThread(t.waiter)
		t.hasWaiter = false
	}
	e.Branch()
}

// Future is anything pollable to completion: Poll returns a value and
// whether it is ready.
type Future[T any] interface {
	Poll() (T, bool)
}

// PollFunc adapts a plain function to Future.
type PollFunc[T any] func() (T, bool)

// Poll calls the wrapped function.
func (f PollFunc[T]) Poll() (T, bool) {
	return f()
}

// Drive implements fuzz_future: repeatedly calls Poll; on
// NotReady it parks the active thread unless Notified is already set (in
// which case it consumes the latch and retries without blocking); on
// Ready it returns the value.
func Drive[T any](f Future[T]) T {
	e := engine.Current()
	for {
		value, ready := f.Poll()
		if ready {
			return value
		}

		active := e.Exec.Active()
		if active.Notified {
			active.Notified = false
			e.Branch()
			continue
		}

		active.Run = thread.Blocked
		e.Branch()
	}
}
