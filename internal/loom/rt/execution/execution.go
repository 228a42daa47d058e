// Package execution implements the per-execution world: the thread
// table, which thread is presently active, the process-wide SeqCst
// fence clock, the queue of freshly spawned threads awaiting their
// forced first tick, and the Path those threads branch through.
//
// It composes internal/loom/rt/thread (per-thread state) and
// internal/loom/rt/path (the DFS frontier) behind a struct-with-methods,
// doc-comment-per-exported-symbol style.
package execution

import (
	"fmt"

	"github.com/kolkov/loomgo/internal/loom/rt/arena"
	"github.com/kolkov/loomgo/internal/loom/rt/failure"
	"github.com/kolkov/loomgo/internal/loom/rt/path"
	"github.com/kolkov/loomgo/internal/loom/rt/thread"
	"github.com/kolkov/loomgo/internal/loom/vv"
)

// ErrTooManyThreads is returned by CreateThread once MaxThreads has been
// reached, keeping the per-execution VV width bounded.
var ErrTooManyThreads = fmt.Errorf("execution: max_threads exceeded")

// ErrDeadlock is returned by Schedule when at least one thread is Blocked
// and none is Runnable.
var ErrDeadlock = fmt.Errorf("execution: deadlock, no runnable thread and at least one blocked")

// Execution is the mutable world one run of the user closure plays out
// in. A fresh Execution is created for every iteration of the search;
// only the Path (and the scheduler's stack cache) survive across
// executions.
type Execution struct {
	threads    []*thread.State
	active     thread.Tid
	seqCst     *vv.VV
	spawned    []thread.Tid
	path       *path.Path
	maxThreads int
	trace      []thread.Tid // scheduled-thread history, for failure reporting
	log        func(format string, args ...any)
	clocks     *arena.Arena[vv.VV]
}

// New creates the world for a fresh execution: just the main thread
// (tid 0), Runnable, sharing the given Path and bump-allocating every
// thread clock it needs from clockArena. The scheduler driver
// owns clockArena and Resets it once per execution.
func New(p *path.Path, maxThreads int, clockArena *arena.Arena[vv.VV]) *Execution {
	e := &Execution{
		active:     0,
		path:       p,
		maxThreads: maxThreads,
		clocks:     clockArena,
	}
	e.seqCst = e.AllocClock()
	e.threads = []*thread.State{thread.NewMain(e.AllocClock)}
	return e
}

// AllocClock hands out a fresh, zeroed vector clock from this execution's
// arena. Every thread clock (main, spawned) is allocated this way; a
// client package that needs a scratch VV scoped to one execution (e.g. a
// new atomic write's Synchronize record) may use it too.
func (e *Execution) AllocClock() *vv.VV {
	v, err := e.clocks.Alloc()
	if err != nil {
		failure.Raise(failure.ArenaOverflow, "%s", err.Error())
	}
	v.Reset()
	return v
}

// SetLogger installs a trace-line sink used when Builder.Log is enabled;
// nil (the default) disables tracing.
func (e *Execution) SetLogger(fn func(format string, args ...any)) {
	e.log = fn
}

func (e *Execution) logf(format string, args ...any) {
	if e.log != nil {
		e.log(format, args...)
	}
}

// Active returns the currently active thread's state.
func (e *Execution) Active() *thread.State {
	return e.threads[e.active]
}

// ActiveTid returns the currently active thread's id.
func (e *Execution) ActiveTid() thread.Tid {
	return e.active
}

// Thread returns the state for thread t.
func (e *Execution) Thread(t thread.Tid) *thread.State {
	return e.threads[t]
}

// NumThreads reports how many threads this execution knows about so far
// (including ones queued in Spawned but not yet ticked).
func (e *Execution) NumThreads() int {
	return len(e.threads)
}

// Path exposes the underlying Path, e.g. so the scheduler driver can
// Rewind it at the start of a tick or read Depth() for trace output.
func (e *Execution) Path() *path.Path {
	return e.path
}

// Trace returns the sequence of thread ids scheduled so far, used in
// failure reports.
func (e *Execution) Trace() []thread.Tid {
	return e.trace
}

// CreateThread allocates a new thread as a child of the active thread and
// enqueues it for a forced first tick.
func (e *Execution) CreateThread() (thread.Tid, error) {
	if len(e.threads) >= e.maxThreads {
		return 0, ErrTooManyThreads
	}
	tid := thread.Tid(len(e.threads))
	child := thread.Spawn(tid, e.Active(), e.AllocClock)
	e.threads = append(e.threads, child)
	e.spawned = append(e.spawned, tid)
	return tid, nil
}

// UnparkThread carries causality from the active thread to t and, if t
// was Blocked or Yield, makes it Runnable again. Unparking an already-
// runnable or the active thread itself is a no-op on schedulability but
// the causality join always happens.
func (e *Execution) UnparkThread(t thread.Tid) {
	target := e.threads[t]
	target.Causality.Join(e.Active().Causality)
	if t == e.active {
		return
	}
	if target.Run == thread.Blocked || target.Run == thread.Yield {
		target.Run = thread.Runnable
	}
}

// SeqCst fuses the active thread's clock with the process-wide SeqCst
// fence clock in both directions.
func (e *Execution) SeqCst() {
	active := e.Active().Causality
	active.Join(e.seqCst)
	e.seqCst.Join(active)
}

// SeqCstClock exposes the fence clock for Synchronize.SyncRead/SyncWrite
// callers that need to pass it through.
func (e *Execution) SeqCstClock() *vv.VV {
	return e.seqCst
}

// SetCritical marks the active thread as inside a section that must not
// hit a branch point.
func (e *Execution) SetCritical() {
	e.Active().Critical = true
}

// UnsetCritical clears the active thread's critical flag.
func (e *Execution) UnsetCritical() {
	e.Active().Critical = false
}

// AssertNotCritical panics if the active thread is presently critical;
// every branch point must call this before consulting Path.
func (e *Execution) AssertNotCritical() {
	if e.Active().Critical {
		failure.Raise(failure.CriticalSection, "thread %d branched while critical", e.active)
	}
}

// Schedule implements scheduling rule: drain Spawned first
// (a forced, non-branching tick), else ask Path.BranchThread, else report
// done/deadlock. It returns done=true when every thread has terminated.
func (e *Execution) Schedule() (done bool, err error) {
	if len(e.spawned) > 0 {
		tid := e.spawned[0]
		e.spawned = e.spawned[1:]
		e.active = tid
		e.trace = append(e.trace, tid)
		e.logf("loom: forced first tick thread %d", tid)
		return false, nil
	}

	anyRunnable := false
	for _, t := range e.threads {
		if t.Run == thread.Runnable {
			anyRunnable = true
			break
		}
	}

	marks := make([]path.ThreadMark, len(e.threads))
	for i, t := range e.threads {
		switch t.Run {
		case thread.Runnable:
			marks[i] = path.Pending
		case thread.Yield:
			if anyRunnable {
				marks[i] = path.Skip
			} else {
				marks[i] = path.Pending
			}
		case thread.Terminated:
			marks[i] = path.Terminated
		case thread.Blocked:
			marks[i] = path.Skip
		}
	}

	tid, ok, berr := e.path.BranchThread(marks)
	if berr != nil {
		return false, berr
	}

	// Yield is a one-shot de-prioritization: clear it regardless of which
	// thread was picked.
	for _, t := range e.threads {
		if t.Run == thread.Yield {
			t.Run = thread.Runnable
		}
	}

	if !ok {
		allTerminated := true
		anyBlocked := false
		for _, t := range e.threads {
			if t.Run != thread.Terminated {
				allTerminated = false
			}
			if t.Run == thread.Blocked {
				anyBlocked = true
			}
		}
		if allTerminated {
			return true, nil
		}
		if anyBlocked {
			return false, ErrDeadlock
		}
		return false, fmt.Errorf("execution: no runnable thread and none terminated nor blocked")
	}

	e.active = thread.Tid(tid)
	e.trace = append(e.trace, e.active)
	e.logf("loom: scheduled thread %d", tid)
	return false, nil
}
