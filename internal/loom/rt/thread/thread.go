// Package thread holds the per-thread bookkeeping the scheduler consults on
// every branch point: a thread's run state, whether it is presently inside
// a critical section, its happens-before clock, and the futures-bridge
// notified latch.
//
// This is a small, per-thread struct carrying id + clock, but tracks
// schedulability instead of a cached epoch, since loomgo drives one
// coroutine at a time rather than racing real goroutines against each
// other.
package thread

import "github.com/kolkov/loomgo/internal/loom/vv"

// Tid is a dense, small thread identifier. 0 is always the main thread;
// ids are handed out in spawn order and never reused within an execution.
type Tid uint16

// Run is the schedulability state of a thread at a given instant.
type Run int

const (
	// Runnable means the thread can be picked at the next branch_thread.
	Runnable Run = iota
	// Blocked means the thread is parked (mutex/condvar/oneshot wait) and
	// cannot run until some other thread unparks it.
	Blocked
	// Yield means the thread called yield_now: it is runnable but should
	// be scheduled only after every other Runnable thread has had a turn
	// at this branch point.
	Yield
	// Terminated means the thread's closure has returned.
	Terminated
)

// String renders a Run state for trace/log output.
func (r Run) String() string {
	switch r {
	case Runnable:
		return "runnable"
	case Blocked:
		return "blocked"
	case Yield:
		return "yield"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// State is the per-thread record the Execution tracks for the duration of
// one simulated run.
type State struct {
	// Tid is this thread's identifier.
	Tid Tid

	// Run is the current schedulability state.
	Run Run

	// Critical is true while this thread is inside a section that must
	// not hit a branch point (e.g. a CausalCell access). Branching while
	// Critical is true is an engine-detected bug.
	Critical bool

	// Causality is this thread's happens-before clock.
	Causality *vv.VV

	// Notified is a one-shot latch used by the futures bridge: a future
	// producer sets it via notify so the polling loop knows to re-poll
	// instead of parking again.
	Notified bool
}

// NewMain allocates thread 0, the root of every execution. alloc supplies
// a fresh, zeroed clock — the Execution passes its arena-backed
// AllocClock so every thread's clock comes from the same per-execution
// bump slab.
func NewMain(alloc func() *vv.VV) *State {
	return &State{
		Tid:       0,
		Run:       Runnable,
		Causality: alloc(),
	}
}

// Spawn allocates a new thread as a child of the given spawner. The new
// thread's clock starts as a copy of the spawner's clock with the new
// thread's own slot incremented by one — spawning is itself a
// synchronization edge from parent to child.
func Spawn(tid Tid, spawner *State, alloc func() *vv.VV) *State {
	clock := alloc()
	clock.CopyFrom(spawner.Causality)
	clock.Increment(uint16(tid))
	return &State{
		Tid:       tid,
		Run:       Runnable,
		Causality: clock,
	}
}

// Runnable reports whether this thread can be scheduled right now.
func (s *State) Runnable() bool {
	return s.Run == Runnable || s.Run == Yield
}
