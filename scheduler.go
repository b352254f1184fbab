package goro

// Scheduler abstracts "somewhere a closure can run": the static thread
// pool (goro/pool), a new goroutine per call (GoScheduler), or
// InlineScheduler, which just calls the function where it stands.
// reactor.Loop does not implement it: its Schedule takes a context and
// no closure. ScheduleOn and ResumeOn are built on top of this
// single-method interface so any implementation can act as a Task's
// execution context without the core package importing goro/pool.
type Scheduler interface {
	// Schedule arranges for fn to run. Depending on the implementation fn
	// may run before Schedule returns (InlineScheduler) or asynchronously
	// on another goroutine (GoScheduler, goro/pool).
	Schedule(fn func())
}

// SchedulerFunc adapts a plain function to the Scheduler interface.
type SchedulerFunc func(fn func())

// Schedule implements Scheduler.
func (f SchedulerFunc) Schedule(fn func()) { f(fn) }

// inlineScheduler runs every scheduled function synchronously, on the
// calling goroutine, before Schedule returns. It is the scheduler used
// when no other one is supplied, matching cppcoro's inline_scheduler.
type inlineScheduler struct{}

// InlineScheduler is the zero-cost default Scheduler: Schedule calls fn
// immediately, on the calling goroutine.
var InlineScheduler Scheduler = inlineScheduler{}

func (inlineScheduler) Schedule(fn func()) { fn() }

// goScheduler runs every scheduled function on a brand new goroutine. It
// is a convenient Scheduler for tests and small programs that have no
// goro/pool or goro/reactor instance to hand.
type goScheduler struct{}

// GoScheduler schedules each function onto its own new goroutine.
var GoScheduler Scheduler = goScheduler{}

func (goScheduler) Schedule(fn func()) { go fn() }

// ScheduleOn returns a Task that, when awaited, first transfers execution
// onto sched before running fn and producing its result. It is the
// Task-producing half of cppcoro's schedule_on: the point at which a
// computation's starting goroutine is chosen.
func ScheduleOn[T any](sched Scheduler, fn func() T) *Task[T] {
	return NewTask(func() T {
		done := make(chan T, 1)
		sched.Schedule(func() {
			done <- fn()
		})
		return <-done
	})
}

// ResumeOn returns a Task that awaits inner and then, before delivering
// inner's result to its own awaiters, transfers onto sched. It is the
// continuation-side half of cppcoro's resume_on: the point at which an
// already-running computation's remainder switches execution contexts.
func ResumeOn[T any](sched Scheduler, inner *Task[T]) *Task[T] {
	return NewTask(func() T {
		v, err := inner.Await()
		if err != nil {
			panic(err)
		}
		done := make(chan T, 1)
		sched.Schedule(func() {
			done <- v
		})
		return <-done
	})
}
