// Package vv implements the vector clocks used to decide happens-before
// between events inside a single simulated execution.
//
// Unlike a race detector watching a real concurrent program, loomgo drives
// one coroutine at a time: only one VV is ever "live" per thread, and all
// joins happen on the thread that owns the engine for that tick. There is
// no concurrent access to guard against here, only the partial order math.
package vv

import (
	"fmt"
	"strings"
)

// MaxThreads bounds how many distinct thread slots a VV can address.
// loomgo's Builder.MaxThreads defaults to 4. Nothing checks it against
// this bound; a thread id at or above MaxThreads is out of range for a VV.
const MaxThreads = 4096

// VV is a fixed-width vector clock indexed by thread id (0..MaxThreads).
// clocks[tid] is thread tid's logical time as observed by whoever holds
// this VV.
type VV struct {
	clocks [MaxThreads]uint32
	maxTid uint16
}

// New returns a zero-initialized vector clock.
func New() *VV {
	return &VV{}
}

// Clone returns a deep copy, used whenever an execution needs to snapshot
// "what has this thread observed so far" (e.g. stamping a write's
// Synchronize record). A spawned thread's clock is filled with CopyFrom
// instead.
func (c *VV) Clone() *VV {
	out := &VV{maxTid: c.maxTid}
	for i := uint32(0); i <= uint32(c.maxTid); i++ {
		out.clocks[i] = c.clocks[i]
	}
	return out
}

// Join computes the point-wise maximum vc = vc ⊔ other. This is the only
// operation that carries causality across threads: every synchronizing
// primitive (store/load pair, mutex handoff, unpark) bottoms out in a Join.
func (c *VV) Join(other *VV) {
	limit := uint32(c.maxTid)
	if uint32(other.maxTid) > limit {
		limit = uint32(other.maxTid)
	}
	for i := uint32(0); i <= limit; i++ {
		if other.clocks[i] > c.clocks[i] {
			c.clocks[i] = other.clocks[i]
		}
	}
	if other.maxTid > c.maxTid {
		c.maxTid = other.maxTid
	}
}

// LessOrEqual reports whether c ⊑ other, i.e. c[i] <= other[i] for every
// thread i. This is the happens-before test: a write's release clock
// LessOrEqual a reader's clock means the reader has already observed it
// through some synchronization edge.
func (c *VV) LessOrEqual(other *VV) bool {
	for i := uint32(0); i <= uint32(c.maxTid); i++ {
		if c.clocks[i] > other.clocks[i] {
			return false
		}
	}
	return true
}

// Increment advances tid's own slot by one. Every atomic op is its own
// causality event and ends with the acting thread incrementing its own
// slot; CausalCell accesses and mutex/condvar ops do not increment.
func (c *VV) Increment(tid uint16) {
	c.clocks[tid]++
	if tid > c.maxTid {
		c.maxTid = tid
	}
}

// Get reads thread tid's logical time.
func (c *VV) Get(tid uint16) uint32 {
	return c.clocks[tid]
}

// Set overwrites thread tid's logical time. A freshly spawned thread's
// clock is seeded with CopyFrom, not Set.
func (c *VV) Set(tid uint16, value uint32) {
	c.clocks[tid] = value
	if value > 0 && tid > c.maxTid {
		c.maxTid = tid
	}
}

// Reset zeroes the clock in place so an arena-pooled VV can be reused for
// a fresh execution without a new allocation.
func (c *VV) Reset() {
	for i := uint32(0); i <= uint32(c.maxTid); i++ {
		c.clocks[i] = 0
	}
	c.maxTid = 0
}

// CopyFrom overwrites c with other's contents. Used instead of Clone when
// c is a pre-allocated, arena-owned VV that must be reused in place
// rather than replaced by a freshly heap-allocated one.
func (c *VV) CopyFrom(other *VV) {
	c.clocks = other.clocks
	c.maxTid = other.maxTid
}

// String renders slots 0 through the highest thread id in use, so a
// failure report never
// spells out thousands of zero entries for a run that used a handful of
// threads.
func (c *VV) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i := uint32(0); i <= uint32(c.maxTid); i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d:%d", i, c.clocks[i])
	}
	b.WriteByte(']')
	return b.String()
}
