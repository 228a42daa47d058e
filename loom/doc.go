// Package loom implements a deterministic, exhaustive-within-bounds
// permutation fuzzer for concurrent programs built from a shaded set of
// synchronization primitives (atomics, mutex, condvar, oneshot channel,
// thread spawn/join, a futures bridge).
//
// Instead of racing real goroutines against the scheduler and hoping a
// bug shows up, a loomgo closure runs under a cooperative scheduler that
// drives every thread one at a time and systematically re-runs the
// closure once per reachable interleaving of its shaded operations,
// depth-first, until the search space is exhausted or a failure is
// found.
//
// # Quick start
//
//	package main
//
//	import (
//		"fmt"
//
//		"github.com/kolkov/loomgo/loom"
//		"github.com/kolkov/loomgo/internal/loom/sync"
//		"github.com/kolkov/loomgo/internal/loom/sync/atomic"
//	)
//
//	func main() {
//		err := loom.NewBuilder().Fuzz(func() {
//			x := atomic.NewCell(0)
//			flag := atomic.NewCell(false)
//
//			h := sync.Spawn(func() int {
//				x.Store(42, atomic.Relaxed)
//				flag.Store(true, atomic.Release)
//				return 0
//			})
//
//			for !flag.Load(atomic.Acquire) {
//				sync.YieldNow()
//			}
//			if got := x.Load(atomic.Relaxed); got != 42 {
//				panic(fmt.Sprintf("x = %d, want 42", got))
//			}
//			h.Join()
//		})
//		if err != nil {
//			panic(err)
//		}
//	}
//
// # How it works
//
// Every shaded operation (an atomic load/store, a mutex lock, a thread
// join, yield_now) is a branch point: a place where the
// scheduler could have legally chosen a different thread to run, or a
// different historical write for an atomic load to observe. A thread
// spawn is not itself a branch point: the new thread gets a forced first
// tick at the spawner's next branch point. Builder.Fuzz
// plays the closure out once, recording every branch point's decision
// into a Path; once the closure returns, the Path rewinds the deepest
// unexplored alternative and replays the closure from scratch, repeating
// until no alternative remains. A data race (an unsynchronized CausalCell
// access), a deadlock, a reentrant mutex lock, or a user assertion
// failure stops the search immediately and is returned as a *loom.Failure
// carrying the scheduled-thread trace that reproduces it.
//
// # Links
//
// Project repository:
// https://github.com/kolkov/loomgo
package loom
