package goro

import (
	"sync/atomic"
	"unsafe"
)

// ManualResetEvent is a level-triggered event: once Set, every current and
// future Wait returns immediately, until Reset clears it again. Waiters
// queue on a lock-free stack rooted in state; Set swaps the stack out for
// a sentinel and wakes every waiter that was parked on it.
type ManualResetEvent struct {
	// state holds one of:
	//   notSetState           - no waiters, event not set
	//   setState              - event set, no parked waiters remain
	//   <*waiterNode>         - head of a lock-free stack of parked waiters
	state unsafe.Pointer
}

type waiterNode struct {
	next   unsafe.Pointer
	ready  chan struct{}
}

var (
	notSetSentinel waiterNode
	setSentinel    waiterNode
)

//nolint:gochecknoglobals // sentinels compared by address, never dereferenced
var (
	notSetState = unsafe.Pointer(&notSetSentinel)
	setState    = unsafe.Pointer(&setSentinel)
)

// NewManualResetEvent returns an event initialised to the given state.
func NewManualResetEvent(initiallySet bool) *ManualResetEvent {
	e := &ManualResetEvent{}
	if initiallySet {
		e.state = setState
	} else {
		e.state = notSetState
	}
	return e
}

// IsSet reports whether the event is currently set.
func (e *ManualResetEvent) IsSet() bool {
	return atomic.LoadPointer(&e.state) == setState
}

// Wait blocks until the event is set. If it is already set, Wait returns
// immediately without allocating a waiter node.
func (e *ManualResetEvent) Wait() {
	for {
		cur := atomic.LoadPointer(&e.state)
		if cur == setState {
			return
		}
		node := &waiterNode{ready: make(chan struct{})}
		if cur == notSetState {
			node.next = nil
		} else {
			node.next = cur
		}
		if atomic.CompareAndSwapPointer(&e.state, cur, unsafe.Pointer(node)) {
			<-node.ready
			return
		}
	}
}

// Set puts the event into the set state, waking every goroutine currently
// parked in Wait. Subsequent Wait calls return immediately until Reset.
func (e *ManualResetEvent) Set() {
	old := atomic.SwapPointer(&e.state, setState)
	if old == notSetState || old == setState {
		return
	}
	for n := (*waiterNode)(old); n != nil; {
		next := (*waiterNode)(n.next)
		close(n.ready)
		n = next
	}
}

// Reset clears the event if it is set. It never disturbs waiters already
// parked (there can be none: Set drains them all before returning set).
func (e *ManualResetEvent) Reset() {
	atomic.CompareAndSwapPointer(&e.state, setState, notSetState)
}
