// Package failure defines the fatal-condition error type the core
// raises: every kind of failure the engine can detect stops the search,
// carrying enough of the execution's state (the scheduled-thread trace,
// the branch depth) to let a user reproduce it.
//
// It lives below both the core packages (execution, path, atomic,
// causal) and the public loom package so that any of them can raise a
// Failure without an import cycle; loom re-exports the type as
// loom.Failure.
package failure

import "fmt"

// Kind identifies which of fatal conditions occurred.
type Kind int

const (
	// Race is a CausalCell precondition violation: unsynchronized
	// concurrent access to shared data.
	Race Kind = iota
	// Deadlock is Execution.Schedule finding a Blocked thread and no
	// Runnable one.
	Deadlock
	// Assertion is a user-level assertion failure bubbling out of the
	// closure (an ordinary Go panic raised by user code).
	Assertion
	// ReentrantMutex is a thread re-locking a Mutex it already holds.
	ReentrantMutex
	// CriticalSection is a branch point reached while the active thread
	// is inside a critical section — an engine bug or primitive misuse.
	CriticalSection
	// PathDepth is the branch-depth bound being exceeded.
	PathDepth
	// ArenaOverflow is the per-execution allocation bound being
	// exceeded.
	ArenaOverflow
	// TooManyThreads is Builder.MaxThreads being exceeded by a spawn.
	TooManyThreads
)

// String names the Kind for trace/report output.
func (k Kind) String() string {
	switch k {
	case Race:
		return "data race"
	case Deadlock:
		return "deadlock"
	case Assertion:
		return "assertion failed"
	case ReentrantMutex:
		return "reentrant mutex lock"
	case CriticalSection:
		return "branch inside critical section"
	case PathDepth:
		return "path depth exceeded"
	case ArenaOverflow:
		return "arena overflow"
	case TooManyThreads:
		return "max_threads exceeded"
	default:
		return "unknown failure"
	}
}

// Failure is the error type carrying a fatal condition. Trace and
// BranchDepth are filled in by the scheduler driver when it recovers the
// panic that raised this Failure, not by the raiser itself (the raiser
// rarely has a clean view of the whole execution).
type Failure struct {
	Kind        Kind
	Message     string
	Trace       []uint16 // scheduled thread ids, in order, for this execution
	BranchDepth int
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("loom: %s: %s (trace=%v, depth=%d)", f.Kind, f.Message, f.Trace, f.BranchDepth)
}

// New constructs a Failure without trace information filled in yet.
func New(kind Kind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Raise panics with a freshly constructed Failure; used by core packages
// at the point a fatal condition is detected so it unwinds the active
// coroutine immediately.
func Raise(kind Kind, format string, args ...any) {
	panic(New(kind, format, args...))
}
