// Package coro implements a stackful-thread abstraction: exactly two
// operations, Resume (enter or re-enter a thread) and Suspend (called
// from inside a thread to yield control back to the scheduler), with the
// thread's own goroutine standing in for a small fixed stack — the
// scheduler never runs two thread bodies concurrently, it only ever has
// one unblocked via a channel handoff at a time, so this satisfies the
// single-executor invariant despite being backed by real goroutines.
//
// Three coroutine backends are worth naming (generator-, fringe-, and
// standard-thread-backed); Go has no public stackful-coroutine or
// generator primitive to ground the first two on, so this package
// implements the standard-thread backend — the stable form — using a
// goroutine blocked on an unbuffered channel instead of a native OS
// thread.
package coro

// Coroutine is one cooperatively-scheduled user thread. Its goroutine
// never runs except between a Resume call and the next Suspend (or
// return).
type Coroutine struct {
	toCoro     chan struct{}
	toSched    chan struct{}
	bodyCh     chan func()
	terminated bool
	panicVal   any
}

// newBare starts the coroutine's backing goroutine in a loop that waits
// for a body to run, so the same goroutine (and its stack) can be reused
// across many logical threads via a Pool.
//
// A panic from body (a user assertion failure, or a *failure.Failure
// raised by the core) is recovered here, on the coroutine's own
// goroutine, and replayed by Resume on the scheduler's goroutine — Go
// cannot recover a panic across a goroutine boundary, so the value has
// to be carried across the same channel handoff that already separates
// the two.
func newBare() *Coroutine {
	c := &Coroutine{
		toCoro:  make(chan struct{}),
		toSched: make(chan struct{}),
		bodyCh:  make(chan func()),
	}
	go func() {
		for body := range c.bodyCh {
			<-c.toCoro
			c.runBody(body)
			c.terminated = true
			c.toSched <- struct{}{}
		}
	}()
	return c
}

func (c *Coroutine) runBody(body func()) {
	defer func() {
		if r := recover(); r != nil {
			c.panicVal = r
		}
	}()
	c.panicVal = nil
	body()
}

// Start assigns body as this coroutine's next thread; it does not run
// until the first Resume.
func (c *Coroutine) Start(body func()) {
	c.terminated = false
	c.bodyCh <- body
}

// Resume runs the coroutine until it calls Suspend or its body returns.
// If the body panicked since the last Resume, Resume re-panics with the
// same value on the calling (scheduler) goroutine.
func (c *Coroutine) Resume() {
	c.toCoro <- struct{}{}
	<-c.toSched
	if c.terminated && c.panicVal != nil {
		p := c.panicVal
		c.panicVal = nil
		panic(p)
	}
}

// Suspend yields control back to whoever called Resume, and blocks until
// Resume is called again. It must only be called from inside the
// coroutine's own body.
func (c *Coroutine) Suspend() {
	c.toSched <- struct{}{}
	<-c.toCoro
}

// Terminated reports whether the coroutine's body has returned.
func (c *Coroutine) Terminated() bool {
	return c.terminated
}

// Close permanently stops the backing goroutine. Only used when a Pool
// is discarded entirely (e.g. at the end of a whole search).
func (c *Coroutine) Close() {
	close(c.bodyCh)
}

// Pool recycles Coroutines (and their backing goroutines) across threads
// within one execution and across executions — the same pooling idiom
// the clock arena applies to VV allocations, applied here to goroutines
// instead.
type Pool struct {
	free []*Coroutine
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// Get returns an idle Coroutine ready for Start, creating a new backing
// goroutine only if the pool is empty.
func (p *Pool) Get() *Coroutine {
	if n := len(p.free); n > 0 {
		c := p.free[n-1]
		p.free = p.free[:n-1]
		return c
	}
	return newBare()
}

// Put returns a terminated Coroutine to the pool for reuse by a later
// thread. Putting back a still-running Coroutine is a caller bug.
func (p *Pool) Put(c *Coroutine) {
	if !c.terminated {
		panic("coro: Put called on a non-terminated coroutine")
	}
	p.free = append(p.free, c)
}

// Close tears down every pooled backing goroutine. Call once the whole
// search (every execution) has finished.
func (p *Pool) Close() {
	for _, c := range p.free {
		c.Close()
	}
	p.free = nil
}
