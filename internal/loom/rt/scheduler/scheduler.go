// Package scheduler implements the driver: run the user closure to
// completion once per execution, then ask the Path to advance the DFS
// frontier, repeating until every reachable interleaving has been
// enumerated.
package scheduler

import (
	"context"

	"github.com/kolkov/loomgo/internal/loom/rt/arena"
	"github.com/kolkov/loomgo/internal/loom/rt/coro"
	"github.com/kolkov/loomgo/internal/loom/rt/engine"
	"github.com/kolkov/loomgo/internal/loom/rt/execution"
	"github.com/kolkov/loomgo/internal/loom/rt/failure"
	"github.com/kolkov/loomgo/internal/loom/rt/path"
	"github.com/kolkov/loomgo/internal/loom/vv"
)

// Result summarizes a completed search for the harness to report.
type Result struct {
	Iterations int
}

// Options configures one call to Run.
type Options struct {
	MaxThreads    int
	MaxIterations int // 0 means unbounded (path exhaustion is the only stop condition)
	Log           func(format string, args ...any)

	// ReverseTieBreak explores each branch point's candidates
	// highest-thread-id-first instead of lowest-first. Used by
	// Builder.FuzzParallel (loom package) to diversify the coverage two
	// shards produce over the same closure within a shared iteration
	// budget; has no effect on correctness of enumeration.
	ReverseTieBreak bool

	// Context, if non-nil, is checked once per iteration; Run returns
	// early (with whatever it has found so far, no error) once it is
	// Done. Used by Builder.FuzzParallel to stop idle shards the moment
	// any shard in the group reports a Failure.
	Context context.Context

	// MaxArenaObjects overrides the per-execution clock arena's overflow
	// bound; 0 keeps arena.DefaultMaxObjects.
	MaxArenaObjects int

	// Resume, if non-nil, seeds the Path's frontier before the first
	// execution instead of starting from scratch — the loom package's
	// checkpoint restore.
	Resume *path.Snapshot

	// OnIteration, if non-nil, is called after every completed execution
	// with the iteration count and the Path's current frontier, before
	// Step() advances it. The loom package uses this to persist a
	// checkpoint every checkpoint_interval iterations.
	OnIteration func(iteration int, snap path.Snapshot)
}

// Run drives body (the user closure) through every interleaving the
// branching rules make reachable, stopping at the first failure or once
// the Path is exhausted or MaxIterations is reached.
func Run(body func(), opts Options) (Result, error) {
	p := path.New()
	if opts.ReverseTieBreak {
		p.Reverse()
	}
	if opts.Resume != nil {
		p.Restore(*opts.Resume)
	}
	pool := coro.NewPool()
	defer pool.Close()
	clocks := arena.NewWithLimit[vv.VV](opts.MaxThreads*4, opts.MaxArenaObjects)

	result := Result{}
	for {
		if opts.MaxIterations > 0 && result.Iterations >= opts.MaxIterations {
			return result, nil
		}
		if opts.Context != nil {
			select {
			case <-opts.Context.Done():
				return result, nil
			default:
			}
		}

		p.Rewind()
		clocks.Reset()
		e := engine.New(p, opts.MaxThreads, pool, clocks)
		if opts.Log != nil {
			e.Exec.SetLogger(opts.Log)
		}

		if err := runOnce(e, body); err != nil {
			return result, annotate(err, e.Exec)
		}
		result.Iterations++
		e.Release()

		if opts.Log != nil {
			opts.Log("loom: execution %d complete (%d branch points)", result.Iterations, p.Depth())
		}
		if opts.OnIteration != nil {
			opts.OnIteration(result.Iterations, p.Snapshot())
		}

		if !p.Step() {
			return result, nil
		}
	}
}

// runOnce plays out a single execution: spawn the main coroutine, then
// alternately ask the Execution to schedule the next thread and resume
// it, until the execution reports done. A *failure.Failure panicking out
// of a coroutine is recovered here and returned as an error; any other
// panic (an unexpected engine bug) is allowed to propagate.
func runOnce(e *engine.Engine, body func()) (err error) {
	engine.Begin(e)
	defer engine.End()

	defer func() {
		if r := recover(); r != nil {
			if f, ok := r.(*failure.Failure); ok {
				err = f
				return
			}
			panic(r)
		}
	}()

	e.SpawnMain(body)

	for {
		done, serr := e.Exec.Schedule()
		if serr != nil {
			return toFailure(serr)
		}
		if done {
			return nil
		}
		e.ResumeActive()
	}
}

func toFailure(err error) error {
	switch err {
	case execution.ErrDeadlock:
		return failure.New(failure.Deadlock, "%s", err.Error())
	case execution.ErrTooManyThreads:
		return failure.New(failure.TooManyThreads, "%s", err.Error())
	case path.ErrDepthExceeded:
		return failure.New(failure.PathDepth, "%s", err.Error())
	default:
		return failure.New(failure.Deadlock, "%s", err.Error())
	}
}

// annotate fills in the execution's scheduled-thread trace and branch
// depth on a Failure, so the caller can print a reproducing trace.
func annotate(err error, exec *execution.Execution) error {
	f, ok := err.(*failure.Failure)
	if !ok {
		return err
	}
	trace := make([]uint16, len(exec.Trace()))
	for i, t := range exec.Trace() {
		trace[i] = uint16(t)
	}
	f.Trace = trace
	f.BranchDepth = exec.Path().Depth()
	return f
}
