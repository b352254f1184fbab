package ring

import (
	"context"
	"sync"
	"time"
)

// SequenceBarrier lets one or more consumers wait for the producer's
// cursor to advance past a sequence they care about, without polling: a
// consumer parks on a channel that the producer's Publish call closes and
// replaces, exactly once per published sequence range, waking every
// waiter in one broadcast rather than one wakeup per consumer per item.
type SequenceBarrier struct {
	mu      sync.Mutex
	cursor  *Cursor
	waiters []chan struct{}
}

// NewSequenceBarrier returns a barrier tracking cursor.
func NewSequenceBarrier(cursor *Cursor) *SequenceBarrier {
	return &SequenceBarrier{cursor: cursor}
}

// WaitFor blocks until the producer has published at least through seq,
// or ctx is done. It returns the cursor's value at the moment the wait
// was satisfied, which may be further ahead than seq if more has been
// published since.
func (b *SequenceBarrier) WaitFor(ctx context.Context, seq Sequence) (Sequence, error) {
	for {
		cur := b.cursor.Load()
		if SignedDiff(cur, seq) >= 0 {
			return cur, nil
		}
		b.mu.Lock()
		// Re-check under lock in case Publish raced us between the load
		// above and taking the lock.
		cur = b.cursor.Load()
		if SignedDiff(cur, seq) >= 0 {
			b.mu.Unlock()
			return cur, nil
		}
		ch := make(chan struct{})
		b.waiters = append(b.waiters, ch)
		b.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return b.cursor.Load(), ctx.Err()
		}
	}
}

// notifyPublished wakes every consumer currently blocked in WaitFor. It is
// called by the producer after advancing the cursor.
func (b *SequenceBarrier) notifyPublished() {
	b.mu.Lock()
	waiters := b.waiters
	b.waiters = nil
	b.mu.Unlock()
	for _, ch := range waiters {
		close(ch)
	}
}

// SingleProducerSequencer coordinates exactly one producer claiming slots
// in a Buffer and publishing them for any number of independent consumers
// to read, each tracked through its own SequenceBarrier. Claiming is not
// safe for concurrent producers - that restriction is what lets Claim
// avoid a CAS loop entirely (a plain increment suffices) - matching
// cppcoro's single_producer_sequencer, which carries the same
// single-writer restriction in its name.
type SingleProducerSequencer[T any] struct {
	buf     *Buffer[T]
	claimed Sequence // next sequence the producer will claim; producer-owned
	cursor  *Cursor  // published-up-to cursor, visible to consumers

	barriersMu sync.Mutex
	consumers  []*Cursor // read cursors the producer must not overrun
}

// NewSingleProducerSequencer builds a sequencer over buf, with the
// producer's published cursor starting at initial-1 (nothing published
// yet).
func NewSingleProducerSequencer[T any](buf *Buffer[T], initial Sequence) *SingleProducerSequencer[T] {
	return &SingleProducerSequencer[T]{
		buf:     buf,
		claimed: initial,
		cursor:  NewCursor(initial - 1),
	}
}

// AddConsumer registers cursor as one the producer must not lap, i.e. the
// producer will block in Claim rather than overwrite a slot a registered
// consumer has not yet read.
func (s *SingleProducerSequencer[T]) AddConsumer(cursor *Cursor) {
	s.barriersMu.Lock()
	s.consumers = append(s.consumers, cursor)
	s.barriersMu.Unlock()
}

// NewBarrier returns a SequenceBarrier tracking this sequencer's published
// cursor, for consumers to wait on.
func (s *SingleProducerSequencer[T]) NewBarrier() *SequenceBarrier {
	return NewSequenceBarrier(s.cursor)
}

// Claim blocks (polling the slowest consumer's cursor, sleeping 50µs
// between checks) until the next slot is free - i.e. every
// registered consumer has moved past it by at least one full lap of the
// buffer - then returns its sequence number for the caller to write into
// via s.Buffer().At(seq).
func (s *SingleProducerSequencer[T]) Claim(ctx context.Context) (Sequence, error) {
	seq := s.claimed
	wrapPoint := Sequence(int64(seq) - int64(s.buf.Capacity()))
	for {
		if s.slowestConsumerPast(wrapPoint) {
			break
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(time.Microsecond * 50):
		}
	}
	s.claimed++
	return seq, nil
}

func (s *SingleProducerSequencer[T]) slowestConsumerPast(wrapPoint Sequence) bool {
	s.barriersMu.Lock()
	defer s.barriersMu.Unlock()
	for _, c := range s.consumers {
		if SignedDiff(c.Load(), wrapPoint) < 0 {
			return false
		}
	}
	return true
}

// Buffer returns the underlying ring buffer, for Claim's caller to index
// into with the returned sequence.
func (s *SingleProducerSequencer[T]) Buffer() *Buffer[T] { return s.buf }

// Publish advances the published cursor to seq, making every slot up to
// and including it visible to consumers waiting on a SequenceBarrier.
// Sequences must be published in claim order; publishing out of order
// would let a consumer observe a later slot's data before an earlier,
// not-yet-written one, violating this entire type's reason for existing.
func (s *SingleProducerSequencer[T]) Publish(seq Sequence, barrier *SequenceBarrier) {
	s.cursor.Store(seq)
	barrier.notifyPublished()
}
