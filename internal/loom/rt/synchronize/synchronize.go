// Package synchronize implements the per-atomic-write happens-before
// record: a VV that a write releases, and that a later acquiring read
// folds into the reader's own clock.
//
// The same shape is attached to every atomic write and every shaded
// primitive operation (mutex unlock, condvar notify, oneshot send)
// instead of being looked up from a global address-keyed map, since
// loomgo's callers always already hold the concrete object whose
// Synchronize they need.
package synchronize

import "github.com/kolkov/loomgo/internal/loom/vv"

// Order is one of the five C11-subset memory orderings the atomic and
// shaded-primitive surface accepts.
type Order int

const (
	Relaxed Order = iota
	Acquire
	Release
	AcqRel
	SeqCst
)

// hasAcquire reports whether order includes acquire semantics on read.
func (o Order) hasAcquire() bool {
	return o == Acquire || o == AcqRel || o == SeqCst
}

// hasRelease reports whether order includes release semantics on write.
func (o Order) hasRelease() bool {
	return o == Release || o == AcqRel || o == SeqCst
}

// Weaken implements the compare_and_swap failure-order derivation from
// Release→Relaxed, AcqRel→Acquire, SeqCst stays SeqCst.
func (o Order) Weaken() Order {
	switch o {
	case Release:
		return Relaxed
	case AcqRel:
		return Acquire
	default:
		return o
	}
}

// Record holds the happens-before clock a synchronizing event releases.
type Record struct {
	happensBefore *vv.VV
}

// New returns a Record with an empty happens-before clock.
func New() *Record {
	return &Record{happensBefore: vv.New()}
}

// SyncRead folds this record's happens-before into reader's clock when
// order carries acquire semantics, then (for SeqCst) further fuses reader
// with the process-wide SeqCst fence clock in both directions so that all
// SeqCst operations observe a single total order.
//
// Release is a write-only ordering; reading with it is a caller error and
// panics, same as Unlock called by a thread that doesn't hold the mutex.
func (r *Record) SyncRead(reader *vv.VV, order Order, seqCst *vv.VV) {
	if order == Release {
		panic("loom: read with Release ordering")
	}
	if order.hasAcquire() {
		reader.Join(r.happensBefore)
	}
	if order == SeqCst {
		reader.Join(seqCst)
		seqCst.Join(reader)
	}
}

// SyncWrite folds writer's clock into this record's happens-before when
// order carries release semantics, then (for SeqCst) fuses with the
// process-wide SeqCst fence clock the same way SyncRead does.
//
// Acquire is a read-only ordering; writing with it is a caller error and
// panics for the same reason SyncRead rejects read-with-Release.
func (r *Record) SyncWrite(writer *vv.VV, order Order, seqCst *vv.VV) {
	if order == Acquire {
		panic("loom: write with Acquire ordering")
	}
	if order.hasRelease() {
		r.happensBefore.Join(writer)
	}
	if order == SeqCst {
		writer.Join(seqCst)
		seqCst.Join(writer)
	}
}

// Clone deep-copies the happens-before clock, used when a new write
// inherits the prior write's Record before SyncWrite folds in the new
// writer's own clock.
func (r *Record) Clone() *Record {
	return &Record{happensBefore: r.happensBefore.Clone()}
}

// HappensBefore exposes the raw clock for LessOrEqual comparisons, e.g.
// when CausalCell or the atomic write-selection algorithm needs to compare
// a write's release clock against a reader's causality directly.
func (r *Record) HappensBefore() *vv.VV {
	return r.happensBefore
}
