// Package atomic implements the Atomic Cell: the per-cell write history
// a load/store/rmw/compare_exchange operates on, and the
// write-selection algorithm that decides which historical write a
// relaxed-or-stronger load is permitted to return.
//
// A cell tracks, per memory location, enough history to answer "what may
// a concurrent reader observe here" — but unlike a shadow-memory
// implementation that collapses this down to a single epoch/vector-clock
// pair (because it is only ever reasoning about one real execution),
// loomgo keeps the *entire* write history per cell, because the
// scheduler must be able to hand a reader an older write on one branch
// and the newest write on another.
package atomic

import (
	"github.com/kolkov/loomgo/internal/loom/rt/engine"
	"github.com/kolkov/loomgo/internal/loom/rt/failure"
	"github.com/kolkov/loomgo/internal/loom/rt/thread"
	"github.com/kolkov/loomgo/internal/loom/rt/synchronize"
	"github.com/kolkov/loomgo/internal/loom/vv"
)

// Order re-exports synchronize.Order so callers only need to import this
// package for the full atomic-operation surface.
type Order = synchronize.Order

const (
	Relaxed = synchronize.Relaxed
	Acquire = synchronize.Acquire
	Release = synchronize.Release
	AcqRel  = synchronize.AcqRel
	SeqCst  = synchronize.SeqCst
)

type write[T any] struct {
	value     T
	sync      *synchronize.Record
	firstSeen map[thread.Tid]uint32
	seqCst    bool
}

// Cell is a generic atomic memory cell, used directly by user closures
// for any comparable value type. The shaded Mutex and Oneshot in
// internal/loom/sync keep their state in plain fields, not in a Cell.
type Cell[T comparable] struct {
	writes []write[T]
}

// NewCell creates a cell with an un-synchronizing initial write, as if
// it had always held initial since before any thread could observe it.
func NewCell[T comparable](initial T) *Cell[T] {
	return &Cell[T]{writes: []write[T]{{
		value:     initial,
		sync:      synchronize.New(),
		firstSeen: make(map[thread.Tid]uint32),
	}}}
}

// branch performs the implicit branch() every atomic operation begins
// with and returns the active thread's state
// and the engine, for the op to use.
func branch() (*engine.Engine, *thread.State) {
	e := engine.Current()
	e.Branch()
	return e, e.Exec.Active()
}

// newWrite builds a write record, seeding first_seen with the writer's
// own pre-increment clock value so the write is immediately pinned into
// the causal graph at its writer's position.
func newWrite[T any](value T, sync *synchronize.Record, writer *thread.State, seqCst bool) write[T] {
	return write[T]{
		value:     value,
		sync:      sync,
		seqCst:    seqCst,
		firstSeen: map[thread.Tid]uint32{writer.Tid: writer.Causality.Get(uint16(writer.Tid))},
	}
}

// admissible implements write-selection algorithm: walk the
// history from newest to oldest, collecting candidates, stopping after
// including the first write some thread has already first_seen at a
// version the reader's clock now dominates, or, for a SeqCst load, the first write that is itself SeqCst.
func (c *Cell[T]) admissible(reader *vv.VV, seqCstLoad bool) []int {
	candidates := make([]int, 0, 1)
	for i := len(c.writes) - 1; i >= 0; i-- {
		candidates = append(candidates, i)
		w := &c.writes[i]
		if subsumed(w.firstSeen, reader) || (seqCstLoad && w.seqCst) {
			break
		}
	}
	return candidates
}

// subsumed reports whether the reader's clock already dominates firstSeen
// at some thread's slot, i.e. the reader has already causally moved past
// whichever thread first observed this write.
func subsumed(firstSeen map[thread.Tid]uint32, reader *vv.VV) bool {
	for tid, version := range firstSeen {
		if version <= reader.Get(uint16(tid)) {
			return true
		}
	}
	return false
}

// touch records that reader has now observed w, if it had not already.
func (w *write[T]) touch(reader *thread.State) {
	if _, seen := w.firstSeen[reader.Tid]; !seen {
		w.firstSeen[reader.Tid] = reader.Causality.Get(uint16(reader.Tid))
	}
}

// Load performs a branch-observable read, letting the Path choose which
// admissible historical write to return.
func (c *Cell[T]) Load(order Order) T {
	e, active := branch()

	candidates := c.admissible(active.Causality, order == SeqCst)
	offset, err := e.Exec.Path().BranchWrite(candidates)
	if err != nil {
		failure.Raise(failure.PathDepth, "%s", err)
	}

	w := &c.writes[offset]
	w.touch(active)
	w.sync.SyncRead(active.Causality, order, e.Exec.SeqCstClock())
	active.Causality.Increment(uint16(active.Tid))
	return w.value
}

// Store appends a new write, releasing the writer's happens-before per
// order on top of the chain the previous newest write had accumulated.
func (c *Cell[T]) Store(value T, order Order) {
	e, active := branch()

	prior := &c.writes[len(c.writes)-1]
	rec := prior.sync.Clone()
	rec.SyncWrite(active.Causality, order, e.Exec.SeqCstClock())

	c.writes = append(c.writes, newWrite(value, rec, active, order == SeqCst))
	active.Causality.Increment(uint16(active.Tid))
}

// RMW performs a read-modify-write against the newest write only (an
// RMW never branches on which write it reads), synchronizing the read
// with order against the old write and the write with order against the
// new one. It returns the pre-modification value.
func (c *Cell[T]) RMW(f func(T) T, order Order) T {
	e, active := branch()

	idx := len(c.writes) - 1
	old := &c.writes[idx]
	old.sync.SyncRead(active.Causality, order, e.Exec.SeqCstClock())

	newValue := f(old.value)
	rec := old.sync.Clone()
	rec.SyncWrite(active.Causality, order, e.Exec.SeqCstClock())

	c.writes = append(c.writes, newWrite(newValue, rec, active, order == SeqCst))
	active.Causality.Increment(uint16(active.Tid))
	return old.value
}

// Swap is rmw(|_| v, order).
func (c *Cell[T]) Swap(value T, order Order) T {
	return c.RMW(func(T) T { return value }, order)
}

// CompareExchange compares against the newest write only. On a match it
// appends a new write releasing succ; on a mismatch it synchronizes the
// read with fail and returns the actual current value.
func (c *Cell[T]) CompareExchange(current, newValue T, succ, fail Order) (actual T, ok bool) {
	e, active := branch()

	idx := len(c.writes) - 1
	w := &c.writes[idx]

	if w.value != current {
		w.sync.SyncRead(active.Causality, fail, e.Exec.SeqCstClock())
		active.Causality.Increment(uint16(active.Tid))
		return w.value, false
	}

	w.sync.SyncRead(active.Causality, succ, e.Exec.SeqCstClock())
	rec := w.sync.Clone()
	rec.SyncWrite(active.Causality, succ, e.Exec.SeqCstClock())
	c.writes = append(c.writes, newWrite(newValue, rec, active, succ == SeqCst))
	active.Causality.Increment(uint16(active.Tid))
	return current, true
}

// CompareAndSwap is compare_exchange with fail derived from order via
// Order.Weaken, returning whatever value was observed as
// current regardless of success.
func (c *Cell[T]) CompareAndSwap(current, newValue T, order Order) T {
	actual, _ := c.CompareExchange(current, newValue, order, order.Weaken())
	return actual
}
