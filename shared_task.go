package goro

// SharedTask is the copyable counterpart to Task: many independent
// SharedTask values can refer to the same underlying computation, and all
// of them observe the same result. Where a plain Task is conceptually
// consumed by awaiting it, a SharedTask is just a handle - copying the
// Go value (or keeping several around) is always valid, because the
// handle is a pointer to shared state and Go's garbage collector, not a
// manual refcount, is what reclaims that state once every handle and the
// goroutine it may have started are gone.
type SharedTask[T any] struct {
	inner *Task[T]
}

// NewSharedTask wraps fn as a lazy, multi-awaiter SharedTask.
func NewSharedTask[T any](fn func() T) SharedTask[T] {
	return SharedTask[T]{inner: NewTask(fn)}
}

// SharedFromTask adopts an existing Task as a SharedTask, letting a
// single-shot Task be upgraded to support many awaiters after the fact.
// The original Task must not be Awaited directly afterwards by code that
// also expects SharedTask semantics, since both views share one
// underlying run.
func SharedFromTask[T any](t *Task[T]) SharedTask[T] {
	return SharedTask[T]{inner: t}
}

// Clone returns another handle to the same underlying computation.
func (s SharedTask[T]) Clone() SharedTask[T] {
	return s
}

// Start triggers the computation if it has not already started.
func (s SharedTask[T]) Start() {
	s.inner.Start()
}

// Await blocks until the computation completes, starting it if necessary,
// and returns its shared result. Any number of SharedTask handles -
// including clones made before or after the first Await - may call this
// concurrently and will all observe the same outcome.
func (s SharedTask[T]) Await() (T, error) {
	return s.inner.Await()
}

// IsReady reports whether the computation has finished.
func (s SharedTask[T]) IsReady() bool {
	return s.inner.IsReady()
}

// WhenReady returns a Task that completes once the shared computation
// does, without exposing its value or error.
func (s SharedTask[T]) WhenReady() *Task[struct{}] {
	return s.inner.WhenReady()
}
