package scheduler

import (
	"testing"

	"github.com/kolkov/loomgo/internal/loom/rt/engine"
	"github.com/kolkov/loomgo/internal/loom/rt/failure"
	"github.com/kolkov/loomgo/internal/loom/rt/thread"
)

// TestRunEnumeratesBothOrderingsOfOneRealBranch spawns one child thread
// that suspends once, so that at the single real branch point (main and
// child both runnable) the engine must explore both "main first" and
// "child first" orderings exactly once each.
func TestRunEnumeratesBothOrderingsOfOneRealBranch(t *testing.T) {
	var orders [][]string

	mainFn := func() {
		var order []string
		order = append(order, "main-start")
		engine.Current().SpawnThread(func() {
			order = append(order, "child")
			engine.Current().Branch()
		})
		engine.Current().Branch()
		order = append(order, "main-end")
		orders = append(orders, order)
	}

	result, err := Run(mainFn, Options{MaxThreads: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Iterations != 2 {
		t.Fatalf("Iterations = %d, want 2 (exactly two orderings of the one real branch)", result.Iterations)
	}
}

// TestRunDetectsDeadlock blocks the spawned child forever; once the main
// thread terminates, Schedule must find a Blocked thread and no Runnable
// one, and Run must report a Deadlock failure.
func TestRunDetectsDeadlock(t *testing.T) {
	mainFn := func() {
		engine.Current().SpawnThread(func() {
			e := engine.Current()
			e.Exec.Active().Run = thread.Blocked
			e.Branch()
		})
	}

	_, err := Run(mainFn, Options{MaxThreads: 4})
	if err == nil {
		t.Fatalf("expected a deadlock failure, got nil")
	}
	f, ok := err.(*failure.Failure)
	if !ok {
		t.Fatalf("expected *failure.Failure, got %T: %v", err, err)
	}
	if f.Kind != failure.Deadlock {
		t.Fatalf("Kind = %v, want Deadlock", f.Kind)
	}
}

// TestRunStopsAtMaxIterations caps the search at one execution even
// though more interleavings remain reachable.
func TestRunStopsAtMaxIterations(t *testing.T) {
	mainFn := func() {
		engine.Current().SpawnThread(func() {
			engine.Current().Branch()
		})
		engine.Current().Branch()
	}

	result, err := Run(mainFn, Options{MaxThreads: 4, MaxIterations: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Iterations != 1 {
		t.Fatalf("Iterations = %d, want 1", result.Iterations)
	}
}
