package loom

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/kolkov/loomgo/internal/loom/futures"
	"github.com/kolkov/loomgo/internal/loom/rt/path"
	"github.com/kolkov/loomgo/internal/loom/rt/scheduler"
)

// Fuzz runs an exhaustive-within-bounds search over closure, resuming
// from Builder.Checkpoint's file if one exists and persisting to it
// every checkpoint_interval iterations.
func (b *Builder) Fuzz(closure func()) error {
	opts := b.schedulerOptions()

	if b.checkpointFile != "" {
		snap, err := loadCheckpoint(b.checkpointFile)
		if err != nil {
			return err
		}
		opts.Resume = &snap
		opts.OnIteration = b.checkpointHook()
	}

	_, err := scheduler.Run(closure, opts)
	return err
}

// FuzzFuture drives the future producer returns to completion on every
// enumerated interleaving: it repeatedly polls the produced future; if
// NotReady, it parks unless a notified flag is already set; if Ready, it
// is done. It is a package-level generic function, not a Builder method,
// because Go methods cannot carry their own type parameters.
func FuzzFuture[T any](b *Builder, producer func() futures.Future[T]) error {
	return b.Fuzz(func() {
		futures.Drive[T](producer())
	})
}

// checkpointHook returns an OnIteration callback that overwrites the
// checkpoint file every checkpointEvery iterations, or nil if no
// checkpoint interval was configured.
func (b *Builder) checkpointHook() func(int, path.Snapshot) {
	if b.checkpointFile == "" || b.checkpointEvery <= 0 {
		return nil
	}
	return func(iteration int, snap path.Snapshot) {
		if iteration%b.checkpointEvery != 0 {
			return
		}
		if err := saveCheckpoint(b.checkpointFile, snap); err != nil && b.log {
			fmt.Println(err)
		}
	}
}

// FuzzParallel shards the search across GOMAXPROCS workers, each owning
// an independent Execution/Path/arena (safe because no core state leaks
// across executions), joined with golang.org/x/sync/errgroup. Two
// workers alternate tie-break direction (see
// scheduler.Options.ReverseTieBreak) so they do not simply retrace each
// other's coverage; beyond that, shards are not guaranteed to partition
// the interleaving space disjointly — see DESIGN.md for why this is a
// deliberate scope limit. The moment any worker returns a Failure, the
// group's derived context is cancelled, and every other worker stops at
// its next iteration boundary.
func (b *Builder) FuzzParallel(closure func()) error {
	shards := runtime.GOMAXPROCS(0)
	if shards < 1 {
		shards = 1
	}

	perShard := 0
	if b.maxIterations > 0 {
		perShard = (b.maxIterations + shards - 1) / shards
	}

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < shards; i++ {
		i := i
		g.Go(func() error {
			opts := b.schedulerOptions()
			opts.MaxIterations = perShard
			opts.Context = ctx
			opts.ReverseTieBreak = i%2 == 1
			_, err := scheduler.Run(closure, opts)
			return err
		})
	}
	return g.Wait()
}
