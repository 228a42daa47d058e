package sync

import (
	"github.com/kolkov/loomgo/internal/loom/rt/engine"
	"github.com/kolkov/loomgo/internal/loom/rt/synchronize"
	"github.com/kolkov/loomgo/internal/loom/rt/thread"
)

// Oneshot is the shaded single-value channel: send sets the cell and
// unparks a parked receiver; recv parks until set.
type Oneshot[T any] struct {
	value       T
	set         bool
	sync        *synchronize.Record
	receiver    thread.Tid
	hasReceiver bool
}

// NewOneshot returns an empty Oneshot.
func NewOneshot[T any]() *Oneshot[T] {
	return &Oneshot[T]{sync: synchronize.New()}
}

// Send stores v, unconditionally releases the sender's happens-before
// into the channel's Record (exactly as a Cell write does, so a Recv
// that finds the value already set still has something to fold in), and,
// if a receiver is already parked, unparks it.
func (o *Oneshot[T]) Send(v T) {
	e := engine.Current()
	active := e.Exec.Active()
	o.value = v
	o.sync.SyncWrite(active.Causality, synchronize.AcqRel, e.Exec.SeqCstClock())
	o.set = true
	if o.hasReceiver {
		e.Exec.UnparkThread(o.receiver)
	}
	e.Branch()
}

// Recv parks the active thread until a value has been sent, then returns
// it. Either way, the receiver folds the channel's Record into its own
// clock before returning, so a send that completed before Recv was ever
// called still establishes happens-before.
func (o *Oneshot[T]) Recv() T {
	e := engine.Current()
	if !o.set {
		tid := e.Exec.ActiveTid()
		o.receiver = tid
		o.hasReceiver = true
		for {
			e.Exec.Active().Run = thread.Blocked
			e.Branch()
			if o.set {
				break
			}
		}
	} else {
		e.Branch()
	}
	o.sync.SyncRead(e.Exec.Active().Causality, synchronize.AcqRel, e.Exec.SeqCstClock())
	return o.value
}
