package goro

import "sync/atomic"

// SingleConsumerAutoResetEvent is AutoResetEvent's lock-free sibling for
// the single-producer/single-consumer case: at most one goroutine may ever
// be blocked in Wait at a time. That restriction is what lets Set be a
// plain CAS with no queue behind it; violating it (two concurrent Waits
// with no intervening Set) is caller misuse and is reported as a
// LogicError panic rather than silently corrupting state, matching
// cppcoro's documented undefined behaviour being turned into a detectable
// fault here instead.
type SingleConsumerAutoResetEvent struct {
	// state: 0 = not set, 1 = set, 2 = a Wait is parked (ready holds it)
	state atomic.Int32
	ready chan struct{}
}

// NewSingleConsumerAutoResetEvent returns an event initialised to the
// given state.
func NewSingleConsumerAutoResetEvent(initiallySet bool) *SingleConsumerAutoResetEvent {
	e := &SingleConsumerAutoResetEvent{ready: make(chan struct{}, 1)}
	if initiallySet {
		e.state.Store(1)
	}
	return e
}

// Set puts the event into the set state, waking the parked Wait if one is
// in progress.
func (e *SingleConsumerAutoResetEvent) Set() {
	for {
		switch e.state.Load() {
		case 0:
			if e.state.CompareAndSwap(0, 1) {
				return
			}
		case 1:
			return
		case 2:
			if e.state.CompareAndSwap(2, 0) {
				e.ready <- struct{}{}
				return
			}
		}
	}
}

// Wait blocks until the event is set, then consumes it. Calling Wait from
// two goroutines concurrently, with no Set separating them, is a contract
// violation and panics with a *LogicError.
func (e *SingleConsumerAutoResetEvent) Wait() {
	if !e.state.CompareAndSwap(1, 0) {
		if !e.state.CompareAndSwap(0, 2) {
			panicLogic("SingleConsumerAutoResetEvent: concurrent Wait from more than one goroutine")
		}
		<-e.ready
	}
}
