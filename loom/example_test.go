package loom_test

import (
	"fmt"

	"github.com/kolkov/loomgo/internal/loom/rt/failure"
	"github.com/kolkov/loomgo/internal/loom/sync"
	"github.com/kolkov/loomgo/internal/loom/sync/atomic"
	"github.com/kolkov/loomgo/loom"
)

// Example demonstrates the message-passing scenario: a
// release-store of a flag after a relaxed write, paired with an
// acquire-spin on the flag, makes the relaxed write visible on every
// enumerated interleaving.
func Example() {
	err := loom.NewBuilder().MaxThreads(4).Fuzz(func() {
		x := atomic.NewCell(0)
		flag := atomic.NewCell(false)

		writer := sync.Spawn(func() int {
			x.Store(42, atomic.Relaxed)
			flag.Store(true, atomic.Release)
			return 0
		})

		for !flag.Load(atomic.Acquire) {
			sync.YieldNow()
		}
		if got := x.Load(atomic.Relaxed); got != 42 {
			failure.Raise(failure.Assertion, "x.Load() = %d, want 42", got)
		}
		writer.Join()
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("no failure across every enumerated interleaving")

	// Output:
	// no failure across every enumerated interleaving
}

// Example_mutex demonstrates the mutex basic scenario: two
// threads each increment a cell under one mutex, and the final value is
// 2 on every enumerated interleaving.
func Example_mutex() {
	err := loom.NewBuilder().MaxThreads(4).Fuzz(func() {
		mu := sync.NewMutex()
		n := 0

		inc := func() int {
			mu.Lock()
			n++
			mu.Unlock()
			return 0
		}
		h1 := sync.Spawn(inc)
		h2 := sync.Spawn(inc)
		h1.Join()
		h2.Join()

		if n != 2 {
			failure.Raise(failure.Assertion, "n = %d, want 2", n)
		}
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("no failure across every enumerated interleaving")

	// Output:
	// no failure across every enumerated interleaving
}
