package sync

import (
	"github.com/kolkov/loomgo/internal/loom/rt/engine"
	"github.com/kolkov/loomgo/internal/loom/rt/thread"
)

// Spawn starts f running as a new thread and returns a JoinHandle
// delivering its result, built on SpawnThread plus a Oneshot.
func Spawn[T any](f func() T) *JoinHandle[T] {
	ch := NewOneshot[T]()
	engine.Current().SpawnThread(func() {
		ch.Send(f())
	})
	return &JoinHandle[T]{ch: ch}
}

// Go starts f running as a new thread with no result, for callers that
// only need the interleaving, not a value back.
func Go(f func()) thread.Tid {
	return engine.Current().SpawnThread(f)
}

// JoinHandle is the handle Spawn returns.
type JoinHandle[T any] struct {
	ch *Oneshot[T]
}

// Join blocks until the spawned thread's closure returns, then issues a
// SeqCst fence.
func (h *JoinHandle[T]) Join() T {
	v := h.ch.Recv()
	engine.Current().Exec.SeqCst()
	return v
}
