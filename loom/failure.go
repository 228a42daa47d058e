package loom

import "github.com/kolkov/loomgo/internal/loom/rt/failure"

// Failure is the error type Fuzz/FuzzFuture/FuzzParallel return when the
// search stops on a fatal condition. It is a type alias, not a
// wrapper, so errors.As(err, &f) with f a *loom.Failure and direct field
// access both work against whatever the core packages raised.
type Failure = failure.Failure

// Kind identifies which fatal condition occurred.
type Kind = failure.Kind

// Seven named kinds, plus TooManyThreadsFailure: an eighth condition
// (Builder.MaxThreads exceeded by a spawn) this implementation also
// treats as fatal and stops the search for, the same way the others do.
// See DESIGN.md for the reconciliation note.
const (
	RaceFailure            = failure.Race
	DeadlockFailure        = failure.Deadlock
	AssertionFailure       = failure.Assertion
	ReentrantMutexFailure  = failure.ReentrantMutex
	CriticalSectionFailure = failure.CriticalSection
	PathDepthFailure       = failure.PathDepth
	ArenaOverflowFailure   = failure.ArenaOverflow
	TooManyThreadsFailure  = failure.TooManyThreads
)
