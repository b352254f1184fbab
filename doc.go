// Package goro is a coroutine-free async runtime core.
//
// Go has no language-level coroutines, so every "await" from the coroutine
// model this package is grounded in becomes a blocking call that may park
// the calling goroutine, and every "resume a continuation" becomes either a
// direct return or a channel send performed by whichever primitive produced
// the result. Goroutines already have growable stacks, so the symmetric
// continuation transfer trick the original model relies on to avoid stack
// growth is unnecessary here: Task.Await is a plain (possibly blocking)
// call.
//
// The package provides:
//   - Task / SharedTask: lazy, single-shot and multi-awaiter suspendable
//     computations.
//   - ManualResetEvent, AutoResetEvent, SingleConsumerAutoResetEvent, Latch,
//     Mutex: synchronization primitives with well-defined wake semantics.
//   - CancellationSource / CancellationToken / CancellationRegistration: a
//     cooperative cancellation framework safe under concurrent registration
//     and cancellation.
//   - WhenAll, WhenAllReady, SyncWait, Fmap, ScheduleOn, ResumeOn, AsyncScope:
//     structured composition combinators.
//   - Generator / AsyncGenerator: externally-iterated lazy sequences.
//
// Subpackages goro/reactor, goro/pool, goro/ring, goro/netaddr, and goro/aio
// build the I/O reactor, work-stealing scheduler, disruptor-style sequencer,
// endpoint parsing, and cancellable file/socket operations on top of this
// core.
package goro
