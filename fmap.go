package goro

// Fmap returns a Task that awaits t and applies fn to its result, the
// single-argument functor map over Task that cppcoro spells fmap. Errors
// (including cancellation) short-circuit: fn is never called if t failed,
// and the returned task fails the same way.
func Fmap[T, U any](t *Task[T], fn func(T) U) *Task[U] {
	return NewTask(func() U {
		v, err := t.Await()
		if err != nil {
			panic(err)
		}
		return fn(v)
	})
}
