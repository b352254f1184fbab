package goro

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// CancellationSource is the owning side of a cancellation signal. Creating
// one and handing out its Token lets unrelated goroutines observe, and
// register callbacks against, a single cancellation event without any of
// them needing a reference back to the source.
//
// A zero CancellationSource is not usable; construct one with
// NewCancellationSource.
type CancellationSource struct {
	state *cancellationState
}

// cancellationState is the shared, refcounted-by-reference object both the
// source and every token/registration point into. Splitting it out from
// CancellationSource lets a Token outlive the source that produced it.
type cancellationState struct {
	cancelled atomic.Bool

	mu       sync.Mutex
	handlers map[*CancellationRegistration]func()
	nextID   uint64

	// firingGoroutine holds the id of the goroutine currently running
	// cancel()'s handler loop, or 0 when no Cancel call is in flight. It
	// lets Close distinguish "a handler is running on some other
	// goroutine, wait for it" from "I am that very goroutine, calling
	// back into Close reentrantly, so waiting would deadlock against
	// myself".
	firingGoroutine atomic.Int64
}

// goroutineID extracts the calling goroutine's id from its stack trace
// header ("goroutine 123 [running]:"). It is only ever compared for
// equality against another value produced the same way, so the exact
// numbering scheme doesn't matter.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return -1
	}
	id, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		return -1
	}
	return id
}

// NewCancellationSource returns a fresh, not-yet-cancelled source.
func NewCancellationSource() *CancellationSource {
	return &CancellationSource{state: &cancellationState{
		handlers: make(map[*CancellationRegistration]func()),
	}}
}

// Token returns the CancellationToken observers should register against.
// Multiple calls return tokens that observe the same underlying state.
func (s *CancellationSource) Token() *CancellationToken {
	return &CancellationToken{state: s.state}
}

// CanBeCancelled reports whether this source is capable of ever entering
// the cancelled state. It always can; the method exists so CancellationToken
// can expose the same query for a token built from a non-cancellable
// default (see Background).
func (s *CancellationSource) CanBeCancelled() bool { return true }

// IsCancellationRequested reports whether Cancel has been called.
func (s *CancellationSource) IsCancellationRequested() bool {
	return s.state.cancelled.Load()
}

// Cancel requests cancellation, synchronously invoking every registered
// callback on the calling goroutine; the order in which the callbacks run
// is not defined. It is idempotent: calling it more than once after the
// first has no further effect.
//
// The handlers mutex is not held while callbacks run, so a callback that
// calls Cancel again gets an immediate return, like any other repeat call.
func (s *CancellationSource) Cancel() {
	s.state.cancel()
}

func (st *cancellationState) cancel() {
	if !st.cancelled.CompareAndSwap(false, true) {
		return
	}
	st.mu.Lock()
	handlers := st.handlers
	st.handlers = nil
	st.mu.Unlock()

	st.firingGoroutine.Store(goroutineID())
	for reg, fn := range handlers {
		fn()
		close(reg.done)
	}
	st.firingGoroutine.Store(0)
}

// CancellationToken is the read-only handle to a cancellation signal, the
// thing passed down into functions that should observe but never trigger
// cancellation.
type CancellationToken struct {
	state *cancellationState
}

// Background returns a token that can never be cancelled, for call sites
// that need a CancellationToken but have no real source (mirrors
// cppcoro's default-constructed cancellation_token).
func Background() *CancellationToken {
	return &CancellationToken{}
}

// CanBeCancelled reports whether this token was derived from a real source.
// A Background token always returns false.
func (t *CancellationToken) CanBeCancelled() bool {
	return t != nil && t.state != nil
}

// IsCancellationRequested reports whether the originating source has had
// Cancel called on it.
func (t *CancellationToken) IsCancellationRequested() bool {
	return t.CanBeCancelled() && t.state.cancelled.Load()
}

// ThrowIfCancellationRequested panics with a *CancelledError carrying op if
// cancellation has been requested. It is the token equivalent of cppcoro's
// throw_if_cancellation_requested, matching the idiom other goro
// primitives use of reporting cancellation as a typed error rather than a
// boolean.
func (t *CancellationToken) ThrowIfCancellationRequested(op string) {
	if t.IsCancellationRequested() {
		panic(&CancelledError{Op: op})
	}
}

// Register attaches fn to be invoked (synchronously, on whichever goroutine
// calls Cancel, or immediately on the calling goroutine if cancellation has
// already happened) when cancellation occurs. The returned registration
// must be released with Close once the caller no longer cares, even if
// cancellation never happens, or the handler map leaks entries for the
// lifetime of the source.
//
// Register on a token that can never be cancelled returns a registration
// whose Close is a no-op.
func (t *CancellationToken) Register(fn func()) *CancellationRegistration {
	if !t.CanBeCancelled() {
		return &CancellationRegistration{}
	}
	st := t.state
	reg := &CancellationRegistration{state: st, done: make(chan struct{})}

	st.mu.Lock()
	if st.handlers == nil {
		// Already cancelled: handlers was nilled out by cancel(). Fire
		// inline, outside the lock, matching Cancel's own ordering.
		st.mu.Unlock()
		fn()
		close(reg.done)
		return reg
	}
	st.handlers[reg] = fn
	st.mu.Unlock()
	return reg
}

// CancellationRegistration is the token returned by Register, releasable
// exactly once via Close.
type CancellationRegistration struct {
	state *cancellationState

	// done is closed once this registration's handler is known to never
	// run (deregistered in time) or has finished running. A registration
	// on a token that was never cancellable has a nil state, and a nil state means done is also nil and
	// unused, since Close on such a registration always returns
	// immediately.
	done chan struct{}

	closeOnce sync.Once
}

// Close deregisters the handler if it has not already fired, blocking until
// any in-flight invocation of it (from a concurrent Cancel on another
// goroutine) completes. It is safe to call from inside the very handler it
// guards, or from another handler firing on the same Cancel call: either
// case runs on cancel()'s own goroutine, so Close recognises that goroutine
// and returns immediately rather than waiting on a loop that cannot make
// progress until this very call returns.
func (r *CancellationRegistration) Close() {
	if r == nil || r.state == nil {
		return
	}
	r.closeOnce.Do(func() {
		st := r.state
		st.mu.Lock()
		if st.handlers != nil {
			if _, ok := st.handlers[r]; ok {
				delete(st.handlers, r)
				st.mu.Unlock()
				close(r.done)
				return
			}
		}
		st.mu.Unlock()

		if st.firingGoroutine.Load() == goroutineID() {
			return
		}
		<-r.done
	})
}
