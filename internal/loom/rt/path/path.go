// Package path implements the DFS frontier over branch-point decisions:
// the append-only log of "which thread ran next" and "which write did
// this load observe" choices for one execution, plus the
// rewind-and-advance logic that drives the engine through every
// reachable interleaving exactly once.
//
// The log/replay shape (a small append-only log consulted by index on
// the next pass) is the same idiom deterministic test fixtures elsewhere
// in this codebase use, applied here to the two decision kinds a branch
// point can record.
package path

import "fmt"

// ThreadMark is the schedulability of one thread as seen at a Schedule
// branch point.
type ThreadMark int

const (
	// Skip means the thread is not runnable right now (Blocked).
	Skip ThreadMark = iota
	// Pending means the thread is runnable and not yet chosen at this
	// branch point in this execution.
	Pending
	// Visited means a prior execution already explored this thread being
	// chosen at this exact branch point.
	Visited
	// Terminated means the thread's closure has already returned.
	Terminated
)

// DefaultMaxDepth bounds how many branch points a single execution may
// record before the search is declared runaway.
const DefaultMaxDepth = 1000

// ErrDepthExceeded is returned (and then wrapped into a loom.Failure by
// the caller) when a single execution would need to record more branch
// points than MaxDepth allows.
var ErrDepthExceeded = fmt.Errorf("path: depth exceeded")

type kind int

const (
	kindSchedule kind = iota
	kindWrite
)

// record is one entry in the path: either a Schedule (pick-a-thread) or a
// Write (pick-a-write) branch point.
type record struct {
	kind    kind
	threads []ThreadMark // kindSchedule
	offsets []int        // kindWrite, front = chosen offset
}

// Path is the ordered, append-only log of branch decisions for one
// execution, plus the cursor that walks it during replay.
type Path struct {
	records  []record
	pos      int
	maxDepth int
	reverse  bool
}

// New returns an empty Path ready for a first, unconstrained execution.
func New() *Path {
	return &Path{maxDepth: DefaultMaxDepth}
}

// Reverse flips BranchThread's tie-break to highest-id-Pending-first
// instead of the default lowest-id-first. Enumeration still covers every
// reachable interleaving exactly once; only the order differs. Used to
// diversify coverage across independent shards of the same search.
func (p *Path) Reverse() *Path {
	p.reverse = true
	return p
}

// WithMaxDepth overrides the default branch-depth bound, mainly for tests
// that want to observe ErrDepthExceeded without looping 1000 times.
func (p *Path) WithMaxDepth(depth int) *Path {
	p.maxDepth = depth
	return p
}

// Rewind resets the replay cursor to the start of the path. The scheduler
// driver calls this at the beginning of every execution.
func (p *Path) Rewind() {
	p.pos = 0
}

// BranchThread is the pick-a-thread decision point. candidates holds one
// mark per known thread, indexed by Tid. On the frontier (pos == len of
// recorded branches) it records a fresh Schedule built from candidates;
// otherwise it replays the previously recorded Schedule, reconciling it
// against candidates if new threads have since been spawned. It returns
// the lowest-id Pending thread (the highest-id one after Reverse) and
// advances the cursor, or ok=false if no
// thread is Pending (a terminal branch — the caller decides whether that
// means "done" or "deadlock").
func (p *Path) BranchThread(candidates []ThreadMark) (tid int, ok bool, err error) {
	if p.pos == len(p.records) {
		if len(p.records) >= p.maxDepth {
			return 0, false, ErrDepthExceeded
		}
		marks := make([]ThreadMark, len(candidates))
		copy(marks, candidates)
		p.records = append(p.records, record{kind: kindSchedule, threads: marks})
	}

	rec := &p.records[p.pos]
	if rec.kind != kindSchedule {
		return 0, false, fmt.Errorf("path: branch kind mismatch at pos %d: want Schedule", p.pos)
	}
	// A previously spawned thread can appear after this record was first
	// written; extend it with the new threads' live candidate marks
	// rather than losing the new thread's schedulability.
	for len(rec.threads) < len(candidates) {
		rec.threads = append(rec.threads, candidates[len(rec.threads)])
	}

	if p.reverse {
		for i := len(rec.threads) - 1; i >= 0; i-- {
			if rec.threads[i] == Pending {
				p.pos++
				return i, true, nil
			}
		}
	} else {
		for i, mark := range rec.threads {
			if mark == Pending {
				p.pos++
				return i, true, nil
			}
		}
	}
	p.pos++
	return 0, false, nil
}

// BranchWrite is the pick-a-write decision point. offsets lists candidate
// write offsets newest-to-oldest, already filtered to the relaxed-
// admissible frontier by the caller (the atomic cell). It returns the
// front (newest) candidate and advances the cursor.
func (p *Path) BranchWrite(offsets []int) (int, error) {
	if len(offsets) == 0 {
		return 0, fmt.Errorf("path: branch_write called with no candidate writes")
	}
	if p.pos == len(p.records) {
		if len(p.records) >= p.maxDepth {
			return 0, ErrDepthExceeded
		}
		queue := make([]int, len(offsets))
		copy(queue, offsets)
		p.records = append(p.records, record{kind: kindWrite, offsets: queue})
	}

	rec := &p.records[p.pos]
	if rec.kind != kindWrite {
		return 0, fmt.Errorf("path: branch kind mismatch at pos %d: want Write", p.pos)
	}
	p.pos++
	return rec.offsets[0], nil
}

// Step rewinds the cursor and advances the DFS frontier by one step:
// popping the most recently explored alternative off the deepest branch
// point and reporting whether a live alternative remains anywhere in the
// path. Returning false means every interleaving has been enumerated.
func (p *Path) Step() bool {
	p.Rewind()

	for len(p.records) > 0 {
		i := len(p.records) - 1
		rec := &p.records[i]

		switch rec.kind {
		case kindSchedule:
			head := -1
			for idx, mark := range rec.threads {
				if mark == Pending {
					head = idx
					break
				}
			}
			if head == -1 {
				// Nothing was ever chosen at this branch (a no-op
				// terminal record); drop it and keep unwinding.
				p.records = p.records[:i]
				continue
			}
			rec.threads[head] = Visited
			if hasPending(rec.threads) {
				return true
			}
			p.records = p.records[:i]
		case kindWrite:
			rec.offsets = rec.offsets[1:]
			if len(rec.offsets) > 0 {
				return true
			}
			p.records = p.records[:i]
		}
	}
	return false
}

func hasPending(marks []ThreadMark) bool {
	for _, m := range marks {
		if m == Pending {
			return true
		}
	}
	return false
}

// Depth reports how many branch points are currently recorded, used for
// logging and failure-trace reporting.
func (p *Path) Depth() int {
	return len(p.records)
}

// SnapshotRecord is the exported, gob-serializable form of one record,
// used by Snapshot/Restore to serialize a Path's recorded branches to
// disk for checkpointing.
type SnapshotRecord struct {
	Write   bool // false: Schedule, true: Write
	Threads []ThreadMark
	Offsets []int
}

// Snapshot captures the path's recorded branches (not the replay cursor,
// which Rewind always resets) in a form encoding/gob can serialize.
type Snapshot struct {
	Records []SnapshotRecord
}

// Snapshot returns a deep copy of the recorded branches.
func (p *Path) Snapshot() Snapshot {
	snap := Snapshot{Records: make([]SnapshotRecord, len(p.records))}
	for i, rec := range p.records {
		sr := SnapshotRecord{Write: rec.kind == kindWrite}
		if rec.kind == kindSchedule {
			sr.Threads = append([]ThreadMark(nil), rec.threads...)
		} else {
			sr.Offsets = append([]int(nil), rec.offsets...)
		}
		snap.Records[i] = sr
	}
	return snap
}

// Restore replaces the path's recorded branches with snap's and rewinds
// the cursor, so the next execution replays snap's schedule from the
// start.
func (p *Path) Restore(snap Snapshot) {
	p.records = make([]record, len(snap.Records))
	for i, sr := range snap.Records {
		if sr.Write {
			p.records[i] = record{kind: kindWrite, offsets: append([]int(nil), sr.Offsets...)}
		} else {
			p.records[i] = record{kind: kindSchedule, threads: append([]ThreadMark(nil), sr.Threads...)}
		}
	}
	p.Rewind()
}
