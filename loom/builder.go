package loom

import (
	"fmt"
	"os"

	"github.com/kolkov/loomgo/internal/loom/rt/scheduler"
)

// Runtime names a coroutine backend. All three are semantically
// equivalent; loomgo only ever implements Thread (a goroutine plus an
// unbuffered channel, internal/loom/rt/coro — see DESIGN.md), so
// Generator and Fringe are accepted for API compatibility but behave
// identically to Thread.
type Runtime int

const (
	Thread Runtime = iota
	Generator
	Fringe
)

func (r Runtime) String() string {
	switch r {
	case Thread:
		return "thread"
	case Generator:
		return "generator"
	case Fringe:
		return "fringe"
	default:
		return "unknown"
	}
}

// approxClockBytes estimates a vector clock's footprint so MaxMemory
// (given in bytes) can be converted into the arena object bound the rt
// layer actually enforces (internal/loom/rt/arena.Arena counts objects,
// not bytes — see DESIGN.md for why a byte-accurate arena was not built).
const approxClockBytes = 4096*4 + 8

// DefaultMaxThreads is Builder's default max_threads.
const DefaultMaxThreads = 4

// Builder configures one search: a plain struct with chainable setters.
// NewBuilder supplies the defaults; a zero Builder has max_threads 0, so
// any spawn in its closure fails with TooManyThreadsFailure.
type Builder struct {
	maxThreads      int
	maxIterations   int
	maxMemoryBytes  int
	checkpointFile  string
	checkpointEvery int
	runtime         Runtime
	log             bool
}

// NewBuilder returns a Builder with defaults: max_threads 4, no
// checkpoint, the Thread runtime, logging off.
func NewBuilder() *Builder {
	return &Builder{maxThreads: DefaultMaxThreads}
}

// MaxThreads overrides the default thread-count bound.
func (b *Builder) MaxThreads(n int) *Builder {
	b.maxThreads = n
	return b
}

// MaxMemory bounds the per-execution arena in bytes; it is converted to an approximate object-count bound.
func (b *Builder) MaxMemory(bytes int) *Builder {
	b.maxMemoryBytes = bytes
	return b
}

// MaxIterations caps how many interleavings a single Fuzz/FuzzFuture call
// explores, and (via FuzzParallel) the total budget partitioned across
// shards. 0, the default, means unbounded: the Path's own exhaustion is
// the only stop condition.
func (b *Builder) MaxIterations(n int) *Builder {
	b.maxIterations = n
	return b
}

// Checkpoint sets the file the Path frontier is persisted to and read
// from: every interval completed executions, Fuzz/FuzzFuture overwrite
// the file with the current frontier, so a crashed or interrupted run
// resumes instead of restarting the search from scratch.
func (b *Builder) Checkpoint(file string, interval int) *Builder {
	b.checkpointFile = file
	b.checkpointEvery = interval
	return b
}

// WithRuntime selects a coroutine backend; see
// Runtime's doc comment for why this is cosmetic today.
func (b *Builder) WithRuntime(r Runtime) *Builder {
	b.runtime = r
	return b
}

// Log enables the STDOUT trace of scheduled thread ids.
func (b *Builder) Log(enabled bool) *Builder {
	b.log = enabled
	return b
}

func (b *Builder) logger() func(format string, args ...any) {
	if !b.log {
		return nil
	}
	return func(format string, args ...any) {
		fmt.Fprintf(os.Stdout, format+"\n", args...)
	}
}

func (b *Builder) schedulerOptions() scheduler.Options {
	opts := scheduler.Options{
		MaxThreads:    b.maxThreads,
		MaxIterations: b.maxIterations,
		Log:           b.logger(),
	}
	if b.maxMemoryBytes > 0 {
		opts.MaxArenaObjects = b.maxMemoryBytes / approxClockBytes
		if opts.MaxArenaObjects < 1 {
			opts.MaxArenaObjects = 1
		}
	}
	return opts
}
