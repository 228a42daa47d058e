// Package causal implements CausalCell, the data-race detector for
// non-atomic shared data: a cell that panics the moment two accesses are
// not ordered by the current execution's vector clocks.
//
// A shadow-memory race check instruments a real program and maintains a
// shadow epoch per byte to detect races after the fact across genuinely
// concurrent goroutines. loomgo instead runs one coroutine at a time by
// construction, so a race can only mean "the previous accessor's clock
// was not dominated by mine" — the same read/write-same-epoch check,
// minus the epoch packing, since here there is only ever one prior
// access to compare against rather than an unbounded read-set.
package causal

import (
	"github.com/kolkov/loomgo/internal/loom/rt/engine"
	"github.com/kolkov/loomgo/internal/loom/rt/failure"
	"github.com/kolkov/loomgo/internal/loom/vv"
)

// Cell wraps a value of type T, enforcing that every access happens-after
// the last one under the active execution's causality.
type Cell[T any] struct {
	value      T
	lastAccess *vv.VV
}

// New wraps initial in a Cell with an empty last-access clock, as if it
// had always existed before any thread could touch it.
func New[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial, lastAccess: vv.New()}
}

// check implements precondition: last_access <= active's
// causality. A violation is a caught data race, not a Go
// panic escaping uncontrolled — it still panics, but with a *failure.Failure
// the scheduler driver specifically recovers.
func (c *Cell[T]) check(active *vv.VV) {
	if !c.lastAccess.LessOrEqual(active) {
		failure.Raise(failure.Race, "unsynchronized access to shared data: last_access=%v, active=%v", c.lastAccess, active)
	}
}

// With gives f a read-only view of the contained value. The access runs
// under set_critical/unset_critical so no branch point can occur inside f.
func (c *Cell[T]) With(f func(T)) {
	e := engine.Current()
	active := e.Exec.Active()

	e.Exec.SetCritical()
	defer e.Exec.UnsetCritical()

	c.check(active.Causality)
	f(c.value)
}

// WithMut gives f a mutable view of the contained value, then joins
// last_access with the active thread's causality.
func (c *Cell[T]) WithMut(f func(*T)) {
	e := engine.Current()
	active := e.Exec.Active()

	e.Exec.SetCritical()
	defer e.Exec.UnsetCritical()

	c.check(active.Causality)
	f(&c.value)
	c.lastAccess.Join(active.Causality)
}
