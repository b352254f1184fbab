package goro

import "sync"

// WhenAllReady starts every task concurrently and returns a Task that
// completes once all of them have finished, regardless of whether any
// individual one failed. Unlike WhenAll it never short-circuits on error
// and never panics on one: the returned slice always has one entry per
// input task, holding whatever that task produced - including its error,
// which callers must inspect themselves via a follow-up Await on the
// originals (WhenAllReady's own Task always succeeds).
func WhenAllReady[T any](tasks ...*Task[T]) *Task[[]*Task[T]] {
	return NewTask(func() []*Task[T] {
		var wg sync.WaitGroup
		wg.Add(len(tasks))
		for _, t := range tasks {
			t := t
			go func() {
				defer wg.Done()
				t.Start()
				t.Await()
			}()
		}
		wg.Wait()
		return tasks
	})
}
