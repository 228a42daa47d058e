// Package engine wires Execution, the coroutine Pool, and the
// per-thread Coroutine handles together into the single mutable world
// one execution runs in, and exposes it to the shaded primitive
// packages (sync/atomic, sync/causal, sync) through a package-level
// "current execution" pointer.
//
// Global mutable state (the pointer to the current Execution) must be
// scoped strictly to one search; the Engine is installed by Begin for
// the whole of one execution's run loop and cleared by End when that
// loop returns. Go has no public goroutine-local storage, but the
// single-executor invariant makes a plain package variable safe here: by
// the time a second coroutine observes Current(), the first has already
// handed control back through a channel operation that publishes every
// write it made.
package engine

import (
	"github.com/kolkov/loomgo/internal/loom/rt/arena"
	"github.com/kolkov/loomgo/internal/loom/rt/coro"
	"github.com/kolkov/loomgo/internal/loom/rt/execution"
	"github.com/kolkov/loomgo/internal/loom/rt/failure"
	"github.com/kolkov/loomgo/internal/loom/rt/path"
	"github.com/kolkov/loomgo/internal/loom/rt/thread"
	"github.com/kolkov/loomgo/internal/loom/vv"
)

// Engine is the per-execution world: the Execution's bookkeeping plus a
// live Coroutine per known thread.
type Engine struct {
	Exec  *execution.Execution
	pool  *coro.Pool
	coros map[thread.Tid]*coro.Coroutine
}

var current *Engine

// Current returns the Engine for the execution presently running. It
// panics if called outside of one — a programmer error (a shaded
// primitive used outside loom.Fuzz/FuzzFuture), not a search failure.
func Current() *Engine {
	if current == nil {
		panic("loom: shaded primitive used outside an active loom execution")
	}
	return current
}

// New creates a fresh Engine sharing Path p and recycling coroutines from
// pool and thread clocks from clockArena across executions.
func New(p *path.Path, maxThreads int, pool *coro.Pool, clockArena *arena.Arena[vv.VV]) *Engine {
	return &Engine{
		Exec:  execution.New(p, maxThreads, clockArena),
		pool:  pool,
		coros: make(map[thread.Tid]*coro.Coroutine),
	}
}

// Begin installs e as the current execution for the scope of the
// caller's run loop.
func Begin(e *Engine) {
	current = e
}

// End clears the current execution.
func End() {
	current = nil
}

// SpawnMain starts the main thread (tid 0, already present in Exec)
// running fn.
func (e *Engine) SpawnMain(fn func()) {
	e.spawn(0, fn)
}

// SpawnThread creates a new child thread of the active thread and starts
// it running fn; it is not ticked until the scheduler forces its first
// resume.
func (e *Engine) SpawnThread(fn func()) thread.Tid {
	tid, err := e.Exec.CreateThread()
	if err != nil {
		failure.Raise(failure.TooManyThreads, "%s", err.Error())
	}
	e.spawn(tid, fn)
	return tid
}

func (e *Engine) spawn(tid thread.Tid, fn func()) {
	c := e.pool.Get()
	e.coros[tid] = c
	c.Start(func() {
		fn()
		e.Exec.Thread(tid).Run = thread.Terminated
	})
}

// ResumeActive resumes the presently active thread's coroutine until it
// next suspends or terminates.
func (e *Engine) ResumeActive() {
	e.coros[e.Exec.ActiveTid()].Resume()
}

// Branch is the single suspension point every branching operation
// (atomic op, mutex/condvar op, oneshot send/recv, park, yield_now)
// funnels through: it asserts the active thread isn't critical, then
// yields control back to the scheduler loop so it can choose what runs
// next. SpawnThread and UnparkThread do not branch themselves.
func (e *Engine) Branch() {
	e.Exec.AssertNotCritical()
	e.coros[e.Exec.ActiveTid()].Suspend()
}

// Yield demotes the active thread to Yield (a one-shot de-prioritization
// beneath any other Runnable thread at the very next Schedule call) and
// branches. Busy-wait spin loops (e.g. the message-passing pattern's
// `for !flag.load(Acquire) {}`) must call this on every failed check, or
// the DFS's deterministic lowest-id-first tie-break would always
// re-select the spinning thread and never the one that could make the
// flag true.
func (e *Engine) Yield() {
	e.Exec.Active().Run = thread.Yield
	e.Branch()
}

// Release returns every Coroutine this Engine used back to the shared
// pool, so the next execution's threads can reuse their goroutines.
func (e *Engine) Release() {
	for _, c := range e.coros {
		e.pool.Put(c)
	}
}
