// Package reactor is the I/O event loop goro/aio and the rest of the
// goro runtime schedule work on top of: a single-threaded run loop that
// multiplexes timers, deferred callbacks, and readiness-based I/O through
// one poller, the same role cppcoro's io_service plays for the coroutine
// runtime it was grounded on.
//
// A Loop owns exactly one OS-level poller (epoll on Linux, kqueue on
// Darwin, IOCP on Windows) and must have Run called on it from the
// goroutine that is meant to drive it; every other method is safe to call
// from any goroutine and works by handing the loop a closure to run on its
// own turn, either through the external Schedule queue or, for
// I/O-completion and timer continuations, the internal microtask ring.
package reactor
