package reactor

import "errors"

// Sentinel errors returned by Loop's public API. Platform poller files
// contribute their own narrower sentinels (ErrFDOutOfRange and friends)
// for registration-time failures; these cover the loop's own lifecycle.
var (
	// ErrLoopClosed is returned by Schedule and ScheduleAfter once the
	// Loop has terminated, and delivered to any Schedule or ScheduleAfter
	// call still pending when Run returns.
	ErrLoopClosed = errors.New("reactor: loop closed")

	// ErrLoopAlreadyRunning is returned by Run unless the Loop is still
	// in StateAwake: by a second Run while the first is running, and by
	// any Run after the first has returned.
	ErrLoopAlreadyRunning = errors.New("reactor: loop already running")

	// ErrShutdownTimeout is returned by Shutdown if the loop did not
	// reach StateTerminated before the supplied context was done.
	ErrShutdownTimeout = errors.New("reactor: shutdown deadline exceeded")
)

// errEventLoopClosed is the loop's internal spelling of ErrLoopClosed,
// kept distinct so call sites inside the package never need to reach
// across to the exported name.
var errEventLoopClosed = ErrLoopClosed
