package loom

import "testing"

func TestNewBuilderDefaults(t *testing.T) {
	b := NewBuilder()
	if b.maxThreads != DefaultMaxThreads {
		t.Fatalf("maxThreads = %d, want %d", b.maxThreads, DefaultMaxThreads)
	}
	if b.checkpointFile != "" {
		t.Fatalf("checkpointFile = %q, want empty", b.checkpointFile)
	}
	if b.log {
		t.Fatalf("log = true, want false")
	}
}

func TestBuilderChainableSetters(t *testing.T) {
	b := NewBuilder().
		MaxThreads(8).
		MaxMemory(1 << 20).
		MaxIterations(100).
		Checkpoint("state.gob", 10).
		WithRuntime(Generator).
		Log(true)

	if b.maxThreads != 8 {
		t.Fatalf("maxThreads = %d, want 8", b.maxThreads)
	}
	if b.maxIterations != 100 {
		t.Fatalf("maxIterations = %d, want 100", b.maxIterations)
	}
	if b.checkpointFile != "state.gob" || b.checkpointEvery != 10 {
		t.Fatalf("checkpoint = (%q, %d), want (state.gob, 10)", b.checkpointFile, b.checkpointEvery)
	}
	if b.runtime != Generator {
		t.Fatalf("runtime = %v, want Generator", b.runtime)
	}
	if !b.log {
		t.Fatalf("log = false, want true")
	}
}

func TestSchedulerOptionsConvertsMaxMemoryToObjectBound(t *testing.T) {
	b := NewBuilder().MaxMemory(approxClockBytes * 10)
	opts := b.schedulerOptions()
	if opts.MaxArenaObjects != 10 {
		t.Fatalf("MaxArenaObjects = %d, want 10", opts.MaxArenaObjects)
	}
}

func TestSchedulerOptionsLeavesArenaUnboundedByDefault(t *testing.T) {
	b := NewBuilder()
	opts := b.schedulerOptions()
	if opts.MaxArenaObjects != 0 {
		t.Fatalf("MaxArenaObjects = %d, want 0 (arena.DefaultMaxObjects)", opts.MaxArenaObjects)
	}
}
