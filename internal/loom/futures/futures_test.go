package futures_test

import (
	"testing"

	"github.com/kolkov/loomgo/internal/loom/futures"
	"github.com/kolkov/loomgo/internal/loom/rt/failure"
	"github.com/kolkov/loomgo/internal/loom/rt/scheduler"
	"github.com/kolkov/loomgo/internal/loom/sync"
	"github.com/kolkov/loomgo/internal/loom/sync/atomic"
)

// atomicTaskFuture polls the atomic-task counter: ready once num reaches
// 1, registering for a wakeup on every NotReady poll so a concurrent
// Notify is never missed.
type atomicTaskFuture struct {
	task *futures.Task
	num  *atomic.Cell[int]
}

func (f *atomicTaskFuture) Poll() (int, bool) {
	if n := f.num.Load(atomic.Acquire); n == 1 {
		return n, true
	}
	f.task.Register()
	return 0, false
}

// TestAtomicTaskAlwaysObservesOneBeforeReady is the atomic-task
// (single-slot notifier) scenario: the reader polls through the
// park/unpark bridge until ready, the writer fetch_adds then notifies;
// every enumerated interleaving must deliver num == 1 on Ready and the
// engine must never deadlock.
func TestAtomicTaskAlwaysObservesOneBeforeReady(t *testing.T) {
	result, err := scheduler.Run(func() {
		num := atomic.NewCell(0)
		task := futures.NewTask()

		writer := sync.Spawn(func() int {
			num.RMW(func(v int) int { return v + 1 }, atomic.Relaxed)
			task.Notify()
			return 0
		})

		got := futures.Drive[int](&atomicTaskFuture{task: task, num: num})
		if got != 1 {
			failure.Raise(failure.Assertion, "Drive() = %d, want 1", got)
		}
		writer.Join()
	}, scheduler.Options{MaxThreads: 4})

	if err != nil {
		t.Fatalf("unexpected failure (possible deadlock or assertion): %v", err)
	}
	if result.Iterations == 0 {
		t.Fatalf("expected at least one enumerated interleaving")
	}
}
