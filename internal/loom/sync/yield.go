package sync

import "github.com/kolkov/loomgo/internal/loom/rt/engine"

// YieldNow demotes the calling thread beneath any other Runnable thread
// for the next scheduling decision. Spin loops over an atomic flag must call this each
// time the check fails, so the thread that could make it true gets a
// turn.
func YieldNow() {
	engine.Current().Yield()
}
