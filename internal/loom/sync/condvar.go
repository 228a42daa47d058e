package sync

import (
	"github.com/kolkov/loomgo/internal/loom/rt/engine"
	"github.com/kolkov/loomgo/internal/loom/rt/thread"
)

// Condvar is the shaded condition variable: a FIFO of waiting thread ids,
// always paired with a Mutex guarding the condition it waits on.
type Condvar struct {
	waiters []thread.Tid
}

// NewCondvar returns an empty Condvar.
func NewCondvar() *Condvar {
	return &Condvar{}
}

// Wait enqueues the active thread, releases guard, and parks until a
// notify pops this thread back out of the waiter queue, then re-acquires
// guard before returning.
func (c *Condvar) Wait(guard *Mutex) {
	e := engine.Current()
	tid := e.Exec.ActiveTid()

	c.waiters = append(c.waiters, tid)
	guard.Unlock()

	for c.waiting(tid) {
		e.Exec.Active().Run = thread.Blocked
		e.Branch()
	}
	guard.Lock()
}

func (c *Condvar) waiting(tid thread.Tid) bool {
	for _, w := range c.waiters {
		if w == tid {
			return true
		}
	}
	return false
}

// NotifyOne pops the longest-waiting thread, if any, and unparks it.
func (c *Condvar) NotifyOne() {
	e := engine.Current()
	if len(c.waiters) > 0 {
		tid := c.waiters[0]
		c.waiters = c.waiters[1:]
		e.Exec.UnparkThread(tid)
	}
	e.Branch()
}
