package execution

import (
	"testing"

	"github.com/kolkov/loomgo/internal/loom/rt/arena"
	"github.com/kolkov/loomgo/internal/loom/rt/path"
	"github.com/kolkov/loomgo/internal/loom/rt/thread"
	"github.com/kolkov/loomgo/internal/loom/vv"
)

func TestCreateThreadIsForcedOnFirstTick(t *testing.T) {
	e := New(path.New(), 4, arena.New[vv.VV](4))

	tid, err := e.CreateThread()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tid != 1 {
		t.Fatalf("CreateThread tid = %d, want 1", tid)
	}

	done, err := e.Schedule()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done {
		t.Fatalf("Schedule reported done on forced tick")
	}
	if e.ActiveTid() != 1 {
		t.Fatalf("forced tick did not activate spawned thread: active = %d", e.ActiveTid())
	}
}

func TestScheduleDoneWhenAllTerminated(t *testing.T) {
	e := New(path.New(), 4, arena.New[vv.VV](4))
	e.Active().Run = thread.Terminated

	done, err := e.Schedule()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !done {
		t.Fatalf("expected done=true when sole thread terminated")
	}
}

func TestScheduleDeadlocksWhenBlockedAndNoneRunnable(t *testing.T) {
	e := New(path.New(), 4, arena.New[vv.VV](4))
	e.Active().Run = thread.Blocked

	_, err := e.Schedule()
	if err != ErrDeadlock {
		t.Fatalf("expected ErrDeadlock, got %v", err)
	}
}

func TestUnparkJoinsCausalityAndUnblocks(t *testing.T) {
	e := New(path.New(), 4, arena.New[vv.VV](4))
	tid, _ := e.CreateThread()
	_, _ = e.Schedule() // forced tick activates the child.
	e.Thread(tid).Run = thread.Blocked

	// Switch back to main being active, then unpark the child.
	e.active = 0
	e.Active().Causality.Increment(0)
	e.UnparkThread(tid)

	if e.Thread(tid).Run != thread.Runnable {
		t.Fatalf("expected unparked thread to become Runnable")
	}
	if got := e.Thread(tid).Causality.Get(0); got != 1 {
		t.Fatalf("unpark did not carry causality: Get(0) = %d, want 1", got)
	}
}

func TestSeqCstFusesActiveAndFence(t *testing.T) {
	e := New(path.New(), 4, arena.New[vv.VV](4))
	e.Active().Causality.Set(0, 3)

	e.SeqCst()

	if got := e.SeqCstClock().Get(0); got != 3 {
		t.Fatalf("fence did not observe active clock: Get(0) = %d, want 3", got)
	}
}

func TestCreateThreadRejectsOverMaxThreads(t *testing.T) {
	e := New(path.New(), 1, arena.New[vv.VV](4))

	if _, err := e.CreateThread(); err != ErrTooManyThreads {
		t.Fatalf("expected ErrTooManyThreads, got %v", err)
	}
}

func TestAssertNotCriticalPanics(t *testing.T) {
	e := New(path.New(), 4, arena.New[vv.VV](4))
	e.SetCritical()

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic when branching inside critical section")
		}
	}()
	e.AssertNotCritical()
}
