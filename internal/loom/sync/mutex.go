// Package sync holds the shaded synchronization primitives: thin clients
// of the core (engine, execution) that give user closures a familiar
// mutex/condvar/oneshot/thread-join surface, each operation itself a
// branch point on the suspension-point list.
//
// Mutex, Condvar and Semaphore hold no Synchronize record of their own —
// ownership/permit transfer is carried entirely by
// execution.UnparkThread's unconditional causality join: ownership
// transfer is a happens-before edge, carried by unpark. Oneshot is the
// exception: it carries a synchronize.Record written by Send and read by
// Recv.
package sync

import (
	"github.com/kolkov/loomgo/internal/loom/rt/engine"
	"github.com/kolkov/loomgo/internal/loom/rt/failure"
	"github.com/kolkov/loomgo/internal/loom/rt/thread"
)

// Mutex is the shaded mutual-exclusion primitive: an owner slot plus a
// FIFO of blocked waiters.
type Mutex struct {
	held    bool
	owner   thread.Tid
	waiters []thread.Tid
}

// NewMutex returns an unlocked Mutex.
func NewMutex() *Mutex {
	return &Mutex{}
}

// Lock branches, asserts non-reentrancy, and either takes the mutex
// immediately (if free) or enqueues the active thread and parks it until
// it is granted ownership.
func (m *Mutex) Lock() {
	e := engine.Current()
	e.Branch()

	tid := e.Exec.ActiveTid()
	if m.held && m.owner == tid {
		failure.Raise(failure.ReentrantMutex, "thread %d re-locked a mutex it already holds", tid)
	}

	if !m.held {
		m.held = true
		m.owner = tid
		return
	}

	m.waiters = append(m.waiters, tid)
	for {
		e.Exec.Active().Run = thread.Blocked
		e.Branch()
		if m.held && m.owner == tid {
			return
		}
	}
}

// Unlock releases the mutex. If a waiter is queued, ownership transfers
// directly to it (popped FIFO) and it is unparked; otherwise the mutex
// becomes free. Either way, Unlock branches afterward.
func (m *Mutex) Unlock() {
	e := engine.Current()
	tid := e.Exec.ActiveTid()
	if !m.held || m.owner != tid {
		panic("loom: Unlock called by a thread that does not hold the mutex")
	}

	m.held = false
	if len(m.waiters) > 0 {
		next := m.waiters[0]
		m.waiters = m.waiters[1:]
		m.held = true
		m.owner = next
		e.Exec.UnparkThread(next)
	}
	e.Branch()
}
