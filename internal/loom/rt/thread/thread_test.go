package thread

import (
	"testing"

	"github.com/kolkov/loomgo/internal/loom/vv"
)

func TestNewMainIsRunnableAtZero(t *testing.T) {
	main := NewMain(vv.New)

	if main.Tid != 0 {
		t.Errorf("Tid = %d, want 0", main.Tid)
	}
	if main.Run != Runnable {
		t.Errorf("Run = %s, want runnable", main.Run)
	}
	if got := main.Causality.Get(0); got != 0 {
		t.Errorf("Causality.Get(0) = %d, want 0", got)
	}
}

func TestSpawnClonesAndBumpsChildSlot(t *testing.T) {
	main := NewMain(vv.New)
	main.Causality.Increment(0)
	main.Causality.Increment(0) // main is at clock 2.

	child := Spawn(1, main, vv.New)

	if got := child.Causality.Get(0); got != 2 {
		t.Errorf("child sees parent clock = %d, want 2", got)
	}
	if got := child.Causality.Get(1); got != 1 {
		t.Errorf("child's own slot = %d, want 1", got)
	}
	// Parent's clock must be untouched by the clone.
	if got := main.Causality.Get(1); got != 0 {
		t.Errorf("parent clock mutated: Get(1) = %d, want 0", got)
	}
}

func TestRunnablePredicate(t *testing.T) {
	tests := []struct {
		run  Run
		want bool
	}{
		{Runnable, true},
		{Yield, true},
		{Blocked, false},
		{Terminated, false},
	}
	for _, tt := range tests {
		s := &State{Run: tt.run}
		if got := s.Runnable(); got != tt.want {
			t.Errorf("Runnable() with Run=%s = %v, want %v", tt.run, got, tt.want)
		}
	}
}
