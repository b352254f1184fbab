package goro

import "sync/atomic"

// Latch is a single-use countdown gate: it starts at an initial count, each
// call to CountDown (optionally by more than one) decrements it, and every
// goroutine blocked in Wait (plus every future Wait call) is released the
// instant the count reaches zero. Unlike sync.WaitGroup, a Latch's count
// can never be incremented back up, and Wait itself never mutates the
// count, so any number of independent waiters may observe the same
// completion.
type Latch struct {
	remaining atomic.Int64
	done      *ManualResetEvent
}

// NewLatch returns a latch requiring initial CountDown calls (in aggregate)
// before it opens. A non-positive initial count starts the latch already
// open.
func NewLatch(initial int64) *Latch {
	l := &Latch{done: NewManualResetEvent(false)}
	l.remaining.Store(initial)
	if initial <= 0 {
		l.done.Set()
	}
	return l
}

// CountDown decrements the remaining count by one (it is CountDownBy(1)),
// releasing every current and future waiter once it reaches zero. Calls
// made once the count is already zero have no effect.
func (l *Latch) CountDown() {
	l.CountDownBy(1)
}

// CountDownBy decrements the remaining count by n, releasing every current
// and future waiter once it reaches zero. A decrement larger than the
// remaining count stops at zero. A non-positive n panics with a
// *LogicError.
func (l *Latch) CountDownBy(n int64) {
	if n <= 0 {
		panicLogic("Latch: CountDownBy requires a positive n")
	}
	for {
		cur := l.remaining.Load()
		if cur <= 0 {
			return
		}
		next := cur - n
		if next < 0 {
			next = 0
		}
		if l.remaining.CompareAndSwap(cur, next) {
			if next == 0 {
				l.done.Set()
			}
			return
		}
	}
}

// IsReady reports whether the latch has reached zero.
func (l *Latch) IsReady() bool {
	return l.done.IsSet()
}

// Remaining returns the current count, which can race with concurrent
// CountDown calls; it exists for diagnostics, not for synchronization.
func (l *Latch) Remaining() int64 {
	return l.remaining.Load()
}

// Wait blocks until the latch reaches zero.
func (l *Latch) Wait() {
	l.done.Wait()
}
