package reactor

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/goro"
)

// Job is a unit of work the loop runs on its own goroutine: either a
// plain callback scheduled via Schedule/ScheduleAfter, or an I/O
// completion delivered by the poller.
type Job = func()

// timerEntry is one pending ScheduleAfter, ordered by deadline in the
// loop's min-heap. A timer that is cancelled before it fires is not
// removed from the heap directly (removing an arbitrary element from a
// binary heap is O(n) and timers cancel far more often than they fire in
// most workloads); instead it is tombstoned and lazily dropped when it
// reaches the top, matching the lazy-deletion approach cppcoro's
// io_service timer queue takes for the same reason.
type timerEntry struct {
	deadline  time.Time
	seq       uint64 // tiebreaker for equal deadlines, also doubles as an id
	fn        Job
	cancelled *bool
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].seq < h[j].seq
	}
	return h[i].deadline.Before(h[j].deadline)
}
func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x any)   { *h = append(*h, x.(*timerEntry)) }
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

var loopIDSeq atomic.Int64

// Loop is a single-threaded I/O event loop: one goroutine, selected by the
// call to Run, drives timers, scheduled callbacks and poller-delivered I/O
// completions to completion, one at a time, in the order their readiness
// became known. Every other exported method is safe to call concurrently
// from any goroutine; they work by enqueuing a closure for the loop
// goroutine to run on its own turn.
type Loop struct {
	id int64

	opts *loopOptions

	state *FastState

	// external holds user-submitted Schedule work; internal holds
	// poller/timer-fired continuations, which run ahead of external work
	// on each tick so I/O completions are not starved by a backlog of
	// scheduled callbacks.
	externalMu sync.Mutex
	external   *ChunkedIngress
	internal   *MicrotaskRing

	timersMu sync.Mutex
	timers   timerHeap
	timerSeq uint64

	poller FastPoller

	registry *completionRegistry

	metrics *Metrics

	wakeFd      int
	wakeWriteFd int

	closeOnce sync.Once
	closeErr  error
}

// New constructs a Loop. The poller is initialized but not started; call
// Run to begin processing.
func New(opts ...Option) (*Loop, error) {
	o := defaultLoopOptions()
	for _, opt := range opts {
		opt(o)
	}

	l := &Loop{
		id:       loopIDSeq.Add(1),
		opts:     o,
		state:    NewFastState(),
		external: NewChunkedIngress(),
		internal: NewMicrotaskRing(),
		registry: newCompletionRegistry(),
	}
	if o.metricsEnabled {
		l.metrics = &Metrics{}
	}

	if err := l.poller.Init(); err != nil {
		return nil, fmt.Errorf("reactor: init poller: %w", err)
	}

	readFd, writeFd, err := createWakeFd(0, EFD_NONBLOCK|EFD_CLOEXEC)
	if err != nil {
		_ = l.poller.Close()
		return nil, fmt.Errorf("reactor: create wake fd: %w", err)
	}
	l.wakeFd = readFd
	l.wakeWriteFd = writeFd

	if l.wakeFd >= 0 {
		if err := l.poller.RegisterFD(l.wakeFd, EventRead, func(IOEvents) {
			l.drainWake()
		}); err != nil {
			_ = closeWakeFd(l.wakeFd, l.wakeWriteFd)
			_ = l.poller.Close()
			return nil, fmt.Errorf("reactor: register wake fd: %w", err)
		}
	}

	return l, nil
}

// MetricsSnapshot is a plain-value copy of a Loop's latency percentiles,
// taken without retaining any lock from the underlying Metrics, safe to
// pass around or print.
type MetricsSnapshot struct {
	P50, P90, P95, P99, Max, Mean time.Duration
	Samples                       int
}

// Metrics returns a snapshot of the loop's latency counters. It is valid
// to call regardless of whether WithMetrics was supplied; in that case it
// returns a zero MetricsSnapshot.
func (l *Loop) Metrics() MetricsSnapshot {
	if l.metrics == nil {
		return MetricsSnapshot{}
	}
	n := l.metrics.Latency.Sample()
	return MetricsSnapshot{
		P50:     l.metrics.Latency.P50,
		P90:     l.metrics.Latency.P90,
		P95:     l.metrics.Latency.P95,
		P99:     l.metrics.Latency.P99,
		Max:     l.metrics.Latency.Max,
		Mean:    l.metrics.Latency.Mean,
		Samples: n,
	}
}

// Schedule queues a job on the loop goroutine for a future tick and
// blocks until the loop has run it or ctx is done, whichever comes first.
// It takes no callback: the queued job only resolves this call's
// completion. It is the reactor equivalent of io_service::schedule: an
// awaitable whose completion marks "the loop has reached this point".
func (l *Loop) Schedule(ctx context.Context) error {
	if l.state.Load() == StateTerminated {
		return ErrLoopClosed
	}
	comp := newCompletion()
	l.registry.track(comp)

	l.externalMu.Lock()
	l.external.Push(func() { comp.resolve() })
	l.externalMu.Unlock()
	l.wake()

	return l.waitCompletion(ctx, comp)
}

// ScheduleAfter is Schedule delayed until d has elapsed, cancellable via
// tok before it fires. Passing goro.Background() disables cancellation.
func (l *Loop) ScheduleAfter(ctx context.Context, d time.Duration, tok *goro.CancellationToken) error {
	if l.state.Load() == StateTerminated {
		return ErrLoopClosed
	}
	comp := newCompletion()
	l.registry.track(comp)
	cancelled := new(bool)

	l.timersMu.Lock()
	l.timerSeq++
	entry := &timerEntry{
		deadline:  time.Now().Add(d),
		seq:       l.timerSeq,
		cancelled: cancelled,
	}
	timerID := entry.seq
	entry.fn = func() {
		LogTimerFired(l.opts.logger, l.id, timerID, time.Since(entry.deadline.Add(-d)))
		comp.resolve()
	}
	heap.Push(&l.timers, entry)
	l.timersMu.Unlock()
	LogTimerScheduled(l.opts.logger, l.id, timerID, d)
	l.wake()

	if tok.CanBeCancelled() {
		scheduledAt := time.Now()
		reg := tok.Register(func() {
			l.timersMu.Lock()
			*cancelled = true
			l.timersMu.Unlock()
			LogTimerCanceled(l.opts.logger, l.id, timerID, time.Since(scheduledAt))
			comp.reject(&goro.CancelledError{Op: "ScheduleAfter"})
		})
		defer reg.Close()
	}

	return l.waitCompletion(ctx, comp)
}

func (l *Loop) waitCompletion(ctx context.Context, comp *completion) error {
	done := make(chan error, 1)
	go func() { done <- comp.wait() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RegisterFD registers fd with the loop's poller; cb runs on the loop
// goroutine whenever fd becomes ready for one of the given events.
func (l *Loop) RegisterFD(fd int, events IOEvents, cb IOCallback) error {
	return l.poller.RegisterFD(fd, events, func(ev IOEvents) {
		l.internal.Push(func() { cb(ev) })
	})
}

// UnregisterFD removes fd from the poller.
func (l *Loop) UnregisterFD(fd int) error {
	return l.poller.UnregisterFD(fd)
}

// ModifyFD updates the event mask the poller watches fd for.
func (l *Loop) ModifyFD(fd int, events IOEvents) error {
	return l.poller.ModifyFD(fd, events)
}

// Run drives the loop on the calling goroutine until ctx is cancelled or
// Shutdown is called. It returns nil on an orderly shutdown, or ctx.Err()
// if ctx ended the run.
func (l *Loop) Run(ctx context.Context) error {
	if !l.state.TryTransition(StateAwake, StateRunning) {
		return ErrLoopAlreadyRunning
	}

	for {
		if l.state.Load() == StateTerminating {
			break
		}
		select {
		case <-ctx.Done():
			l.state.Store(StateTerminating)
		default:
		}
		if l.state.Load() == StateTerminating {
			break
		}

		l.runDueTimers()
		l.tick()

		if l.state.Load() == StateTerminating {
			break
		}

		timeout := l.pollTimeout()
		if !l.state.TryTransition(StateRunning, StateSleeping) {
			continue // Shutdown moved the loop to StateTerminating
		}
		if _, err := l.poller.PollIO(timeout); err != nil {
			LogPollIOError(l.opts.logger, l.id, err, l.state.Load() != StateTerminating)
		}
		l.state.TryTransition(StateSleeping, StateRunning)

		l.registry.scavenge(64)
	}

	l.state.Store(StateTerminated)
	l.registry.rejectAll(l.id, l.opts.logger, ErrLoopClosed)
	return ctx.Err()
}

// tick drains one full pass of the internal (I/O/timer) queue followed
// by one full pass of the external (user Schedule) queue. Internal work
// runs first on every tick so poller-driven continuations are never
// starved by a backlog of externally scheduled callbacks.
func (l *Loop) tick() {
	for {
		fn := l.internal.Pop()
		if fn == nil {
			break
		}
		l.runJob(fn, "internal")
	}

	for {
		l.externalMu.Lock()
		fn, ok := l.external.Pop()
		l.externalMu.Unlock()
		if !ok {
			break
		}
		l.runJob(fn, "external")
	}
}

func (l *Loop) runJob(fn Job, category string) {
	var start time.Time
	if l.metrics != nil {
		start = time.Now()
	}
	l.safeExecute(fn, category)
	if l.metrics != nil {
		l.metrics.Latency.Record(time.Since(start))
	}
}

func (l *Loop) safeExecute(fn Job, category string) {
	defer func() {
		if r := recover(); r != nil {
			LogJobPanicked(l.opts.logger, l.id, category, r)
		}
	}()
	fn()
}

func (l *Loop) runDueTimers() {
	now := time.Now()
	for {
		l.timersMu.Lock()
		if len(l.timers) == 0 {
			l.timersMu.Unlock()
			break
		}
		top := l.timers[0]
		if top.cancelled != nil && *top.cancelled {
			heap.Pop(&l.timers)
			l.timersMu.Unlock()
			continue
		}
		if top.deadline.After(now) {
			l.timersMu.Unlock()
			break
		}
		heap.Pop(&l.timers)
		l.timersMu.Unlock()
		l.internal.Push(top.fn)
	}
}

func (l *Loop) pollTimeout() int {
	l.timersMu.Lock()
	defer l.timersMu.Unlock()
	if len(l.timers) == 0 {
		return l.opts.wakeupTimeout
	}
	d := time.Until(l.timers[0].deadline)
	if d <= 0 {
		return 0
	}
	ms := int(d / time.Millisecond)
	if ms > l.opts.wakeupTimeout {
		return l.opts.wakeupTimeout
	}
	if ms <= 0 {
		return 1
	}
	return ms
}

func (l *Loop) wake() {
	var buf [8]byte
	buf[0] = 1
	_ = writeWakeFd(l.wakeWriteFd, buf[:])
}

func (l *Loop) drainWake() {
	_ = drainWakeFd(l.wakeFd)
}

// Shutdown requests an orderly stop and blocks until Run has returned (the
// loop reached StateTerminated), or ctx is done first. Called before Run
// has started, it waits for Run to start and then stops it.
func (l *Loop) Shutdown(ctx context.Context) error {
	for {
		if l.state.TransitionAny([]LoopState{StateRunning, StateSleeping}, StateTerminating) {
			l.wake()
		}
		if l.state.Load() == StateTerminated {
			return nil
		}
		select {
		case <-ctx.Done():
			return ErrShutdownTimeout
		case <-time.After(time.Millisecond):
		}
	}
}

// Close releases the loop's OS resources (poller fd, wake fd). It must
// only be called after Run has returned.
func (l *Loop) Close() error {
	l.closeOnce.Do(func() {
		l.closeErr = closeWakeFd(l.wakeFd, l.wakeWriteFd)
		if err := l.poller.Close(); err != nil && l.closeErr == nil {
			l.closeErr = err
		}
	})
	return l.closeErr
}
