package goro

import "sync"

// AutoResetEvent is an event that, once Set, wakes exactly one waiter (the
// longest-waiting one) and then immediately reverts to the not-set state.
// A Set call with no waiter currently parked increments a pending
// signal count, so the k-th Set pairs with the k-th Wait that finds no
// signal already waiting for it: two Sets followed later by two Waits
// release both waits without blocking, exactly as a counting semaphore
// capped only by however many Sets ran ahead of their Waits would.
//
// The Open Question of whether this should be lock-free is resolved in
// favour of a plain mutex-protected FIFO queue: a CAS-based design can
// only provide single-waiter handoff, not the strict FIFO ordering across
// many blocked waiters that this type promises, without reintroducing a
// queue under a lock anyway.
type AutoResetEvent struct {
	mu      sync.Mutex
	pending int
	waiters []chan struct{}
}

// NewAutoResetEvent returns an event initialised to the given state: a
// single pending signal if initiallySet, none otherwise.
func NewAutoResetEvent(initiallySet bool) *AutoResetEvent {
	e := &AutoResetEvent{}
	if initiallySet {
		e.pending = 1
	}
	return e
}

// Set wakes the single longest-waiting goroutine blocked in Wait, if any;
// otherwise it increments the pending signal count so a future Wait
// returns immediately without blocking.
func (e *AutoResetEvent) Set() {
	e.mu.Lock()
	if len(e.waiters) > 0 {
		ch := e.waiters[0]
		e.waiters = e.waiters[1:]
		e.mu.Unlock()
		close(ch)
		return
	}
	e.pending++
	e.mu.Unlock()
}

// Wait blocks until the event is set, consuming one pending signal (or its
// own turn in the FIFO queue of waiters) exactly once.
func (e *AutoResetEvent) Wait() {
	e.mu.Lock()
	if e.pending > 0 {
		e.pending--
		e.mu.Unlock()
		return
	}
	ch := make(chan struct{})
	e.waiters = append(e.waiters, ch)
	e.mu.Unlock()
	<-ch
}
