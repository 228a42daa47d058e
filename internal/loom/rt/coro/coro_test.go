package coro

import "testing"

func TestResumeRunsUntilSuspend(t *testing.T) {
	pool := NewPool()
	defer pool.Close()

	c := pool.Get()
	var steps []int
	c.Start(func() {
		steps = append(steps, 1)
		c.Suspend()
		steps = append(steps, 2)
		c.Suspend()
		steps = append(steps, 3)
	})

	c.Resume()
	if got := len(steps); got != 1 || steps[0] != 1 {
		t.Fatalf("after first Resume, steps = %v, want [1]", steps)
	}
	if c.Terminated() {
		t.Fatalf("expected not terminated after first suspend")
	}

	c.Resume()
	if got := len(steps); got != 2 {
		t.Fatalf("after second Resume, steps = %v, want [1 2]", steps)
	}

	c.Resume()
	if got := len(steps); got != 3 {
		t.Fatalf("after third Resume, steps = %v, want [1 2 3]", steps)
	}
	if !c.Terminated() {
		t.Fatalf("expected terminated after body returns")
	}
}

func TestPoolReusesBackingGoroutine(t *testing.T) {
	pool := NewPool()
	defer pool.Close()

	c1 := pool.Get()
	c1.Start(func() {})
	c1.Resume()
	pool.Put(c1)

	c2 := pool.Get()
	if c2 != c1 {
		t.Fatalf("expected pool to return the recycled coroutine")
	}

	ran := false
	c2.Start(func() { ran = true })
	c2.Resume()
	if !ran {
		t.Fatalf("recycled coroutine did not run its new body")
	}
}

func TestResumeReplaysBodyPanic(t *testing.T) {
	pool := NewPool()
	defer pool.Close()

	c := pool.Get()
	c.Start(func() {
		c.Suspend()
		panic("boom")
	})

	c.Resume() // runs up to the Suspend, no panic yet.

	defer func() {
		r := recover()
		if r != "boom" {
			t.Fatalf("recovered %v, want \"boom\"", r)
		}
		if !c.Terminated() {
			t.Fatalf("expected coroutine to be terminated after panicking body")
		}
	}()
	c.Resume()
}

func TestPutNonTerminatedPanics(t *testing.T) {
	pool := NewPool()
	defer pool.Close()

	c := pool.Get()
	c.Start(func() { c.Suspend() })
	c.Resume()

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic when Put is called on a running coroutine")
		}
	}()
	pool.Put(c)
}
