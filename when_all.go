package goro

import "sync"

// WhenAll starts every task concurrently and returns a Task that completes
// with the slice of all their results, in input order, once every one of
// them has succeeded - or with the first error encountered (in task
// order, not completion order) if any failed.
func WhenAll[T any](tasks ...*Task[T]) *Task[[]T] {
	return NewTask(func() []T {
		results := make([]T, len(tasks))
		errs := make([]error, len(tasks))
		var wg sync.WaitGroup
		wg.Add(len(tasks))
		for i, t := range tasks {
			i, t := i, t
			go func() {
				defer wg.Done()
				results[i], errs[i] = t.Await()
			}()
		}
		wg.Wait()
		for _, err := range errs {
			if err != nil {
				panic(err)
			}
		}
		return results
	})
}

// WhenAll2 combines two differently-typed tasks, returning their results
// as a pair once both succeed. Go generics cannot express a variadic
// heterogeneous WhenAll, so each arity gets its own named combinator
// mirroring cppcoro's tuple-returning when_all overload.
func WhenAll2[A, B any](ta *Task[A], tb *Task[B]) *Task[struct {
	A A
	B B
}] {
	type pair = struct {
		A A
		B B
	}
	return NewTask(func() pair {
		var a A
		var b B
		var ea, eb error
		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); a, ea = ta.Await() }()
		go func() { defer wg.Done(); b, eb = tb.Await() }()
		wg.Wait()
		if ea != nil {
			panic(ea)
		}
		if eb != nil {
			panic(eb)
		}
		return pair{A: a, B: b}
	})
}
