package sync

// Semaphore is a counting semaphore built entirely from Mutex and
// Condvar, deliberately kept out of the core as a plain client rather
// than an intrusive MPSC waiter queue.
type Semaphore struct {
	mu      *Mutex
	cond    *Condvar
	permits int
}

// NewSemaphore returns a Semaphore starting with permits available.
func NewSemaphore(permits int) *Semaphore {
	return &Semaphore{mu: NewMutex(), cond: NewCondvar(), permits: permits}
}

// Acquire blocks until a permit is available, then takes one.
func (s *Semaphore) Acquire() {
	s.mu.Lock()
	for s.permits == 0 {
		s.cond.Wait(s.mu)
	}
	s.permits--
	s.mu.Unlock()
}

// Release returns a permit and wakes one waiter, if any.
func (s *Semaphore) Release() {
	s.mu.Lock()
	s.permits++
	s.cond.NotifyOne()
	s.mu.Unlock()
}
