package reactor

// Option configures a Loop at construction time, following the same
// functional-options idiom the teacher's loopOptions used, minus the
// JS-engine-specific fast-path and strict-microtask-ordering knobs that
// had no cppcoro/io_service analogue.
type Option func(*loopOptions)

type loopOptions struct {
	metricsEnabled bool
	logger         Logger
	wakeupTimeout  int // poll timeout in ms when idle with no timers due
}

func defaultLoopOptions() *loopOptions {
	return &loopOptions{
		logger:        &NoOpLogger{},
		wakeupTimeout: 1000,
	}
}

// WithMetrics enables tracking of per-job run latency, retrievable
// afterwards via Loop.Metrics. Queue depth and throughput are not
// recorded by the loop.
func WithMetrics(enabled bool) Option {
	return func(o *loopOptions) { o.metricsEnabled = enabled }
}

// WithLogger sets the Logger the loop reports internal diagnostics
// through. The default is a NoOpLogger.
func WithLogger(l Logger) Option {
	return func(o *loopOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithIdlePollTimeoutMillis bounds how long the loop may block in the
// poller when no timer is due and no external work is queued, so it
// periodically wakes to notice shutdown requests even without an FD or
// timer to wait on.
func WithIdlePollTimeoutMillis(ms int) Option {
	return func(o *loopOptions) {
		if ms > 0 {
			o.wakeupTimeout = ms
		}
	}
}
