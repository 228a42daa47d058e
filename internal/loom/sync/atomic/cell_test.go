package atomic

import (
	"testing"

	"github.com/kolkov/loomgo/internal/loom/rt/arena"
	"github.com/kolkov/loomgo/internal/loom/rt/coro"
	"github.com/kolkov/loomgo/internal/loom/rt/engine"
	"github.com/kolkov/loomgo/internal/loom/rt/path"
	"github.com/kolkov/loomgo/internal/loom/vv"
)

// withEngine runs fn with a fresh single-thread Engine installed as
// engine.Current(), mirroring how scheduler.runOnce wires things up, but
// skipping the coroutine machinery since these tests never suspend.
func withEngine(t *testing.T, fn func()) {
	t.Helper()
	p := path.New()
	pool := coro.NewPool()
	defer pool.Close()
	clocks := arena.New[vv.VV](32)
	e := engine.New(p, 8, pool, clocks)
	engine.Begin(e)
	defer engine.End()
	e.SpawnMain(fn)
	for {
		done, err := e.Exec.Schedule()
		if err != nil {
			t.Fatalf("schedule: %v", err)
		}
		if done {
			return
		}
		e.ResumeActive()
	}
}

func TestLoadObservesMostRecentStoreByDefault(t *testing.T) {
	cell := NewCell(0)
	withEngine(t, func() {
		cell.Store(1, Release)
		cell.Store(2, Release)
		got := cell.Load(Acquire)
		if got != 2 {
			t.Fatalf("Load = %d, want 2 (single-threaded: only the newest write is ever admissible)", got)
		}
	})
}

func TestRMWAlwaysReadsNewestAndReturnsOld(t *testing.T) {
	cell := NewCell(10)
	withEngine(t, func() {
		old := cell.RMW(func(v int) int { return v + 5 }, AcqRel)
		if old != 10 {
			t.Fatalf("RMW old = %d, want 10", old)
		}
		if got := cell.Load(Acquire); got != 15 {
			t.Fatalf("Load after RMW = %d, want 15", got)
		}
	})
}

func TestCompareExchangeSucceedsAndFails(t *testing.T) {
	cell := NewCell(1)
	withEngine(t, func() {
		actual, ok := cell.CompareExchange(1, 2, AcqRel, Acquire)
		if !ok || actual != 1 {
			t.Fatalf("CompareExchange = (%d, %v), want (1, true)", actual, ok)
		}
		actual, ok = cell.CompareExchange(1, 3, AcqRel, Acquire)
		if ok || actual != 2 {
			t.Fatalf("CompareExchange = (%d, %v), want (2, false)", actual, ok)
		}
	})
}

func TestCompareAndSwapReturnsObservedValueRegardless(t *testing.T) {
	cell := NewCell(true)
	withEngine(t, func() {
		prev := cell.CompareAndSwap(true, false, SeqCst)
		if prev != true {
			t.Fatalf("CompareAndSwap prev = %v, want true", prev)
		}
		prev = cell.CompareAndSwap(true, false, SeqCst)
		if prev != false {
			t.Fatalf("CompareAndSwap prev = %v, want false (cell already holds false)", prev)
		}
	})
}

func TestSwapReturnsPriorValue(t *testing.T) {
	cell := NewCell("a")
	withEngine(t, func() {
		prev := cell.Swap("b", Relaxed)
		if prev != "a" {
			t.Fatalf("Swap prev = %q, want %q", prev, "a")
		}
		if got := cell.Load(Relaxed); got != "b" {
			t.Fatalf("Load after Swap = %q, want %q", got, "b")
		}
	})
}

func TestStoreWithAcquireOrderPanics(t *testing.T) {
	cell := NewCell(0)
	defer func() {
		if recover() == nil {
			t.Fatalf("Store(_, Acquire) did not panic")
		}
	}()
	withEngine(t, func() {
		cell.Store(1, Acquire)
	})
}

func TestLoadWithReleaseOrderPanics(t *testing.T) {
	cell := NewCell(0)
	defer func() {
		if recover() == nil {
			t.Fatalf("Load(Release) did not panic")
		}
	}()
	withEngine(t, func() {
		cell.Load(Release)
	})
}

// TestAdmissibleStopsAtOwnNewestWrite hand-verifies the cell's
// write-selection algorithm directly against the unexported history,
// independent of Path's branch choice: a single thread that wrote the
// newest value has necessarily already first_seen it at or before its
// own current clock, so the candidate list must stop there immediately
// and never offer an older, already-superseded value back to its own
// writer.
func TestAdmissibleStopsAtOwnNewestWrite(t *testing.T) {
	cell := NewCell(0)
	withEngine(t, func() {
		cell.Store(1, Relaxed) // write index 1
		cell.Store(2, Relaxed) // write index 2

		active := engine.Current().Exec.Active()
		candidates := cell.admissible(active.Causality, false)

		if len(candidates) != 1 || candidates[0] != len(cell.writes)-1 {
			t.Fatalf("candidates = %v, want [%d] (the lone thread already first_seen its own newest write)", candidates, len(cell.writes)-1)
		}
	})
}
