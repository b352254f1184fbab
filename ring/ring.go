// Package ring implements a single-producer sequencer over a fixed,
// power-of-two-sized ring buffer: one producer claims the next slot(s) in
// strictly increasing order, writes into them, and publishes the
// resulting sequence; any number of consumers track their own read
// cursor and use a SequenceBarrier to learn how far the producer has
// published: reading the published cursor is an atomic load, and only a
// consumer that has to wait takes the barrier's mutex. It is the Go rendering of
// cppcoro's single_producer_sequencer/sequence_barrier, grounded on the
// power-of-two masking technique in joeycumines-go-utilpkg's catrate ring
// buffer, generalized from that package's resizable single-cursor ring to
// a fixed-capacity multi-cursor one (capacity here is chosen once, by the
// caller, rather than grown on demand, since a disruptor-style ring's
// whole point is a pre-sized lock-free channel between producer and
// consumers).
package ring

import (
	"sync/atomic"

	"golang.org/x/exp/constraints"
)

// Sequence is a monotonically increasing cursor position. Comparisons
// between two sequences must use SignedDiff, not direct subtraction with
// unsigned reasoning, so wrap-around (a Sequence is a uint64 that can in
// principle overflow over a long enough run) compares correctly: the
// difference is computed as a signed int64, which is correct as long as
// no two sequences being compared are more than 2^63 apart, a bound no
// realistic ring buffer workload will ever approach.
type Sequence uint64

// SignedDiff returns a-b, interpreted with wrap-around awareness: it is
// positive if a is ahead of b in publication order, negative if behind,
// zero if equal.
func SignedDiff(a, b Sequence) int64 {
	return int64(a - b)
}

// Buffer is a fixed-capacity, power-of-two-sized array of T, indexed by a
// Sequence masked down to a slot index - there is no grow-on-demand here,
// unlike catrate's ringBuffer[E], because a disruptor-style ring's
// capacity is a deliberate backpressure bound, not an implementation
// detail to hide.
type Buffer[T any] struct {
	mask uint64
	data []T
}

// NewBuffer allocates a ring of the given capacity, which must be a power
// of two.
func NewBuffer[T any](capacity int) *Buffer[T] {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("ring: capacity must be a power of 2")
	}
	return &Buffer[T]{mask: uint64(capacity - 1), data: make([]T, capacity)}
}

// Capacity returns the buffer's fixed slot count.
func (b *Buffer[T]) Capacity() int { return len(b.data) }

// At returns a pointer to the slot seq maps to, for the producer to write
// into or a consumer to read from once the barrier confirms seq is
// published.
func (b *Buffer[T]) At(seq Sequence) *T {
	return &b.data[uint64(seq)&b.mask]
}

// Cursor is an atomic Sequence position, the building block both the
// producer's published cursor and each consumer's read cursor are made
// from.
type Cursor struct {
	v atomic.Uint64
}

// NewCursor returns a cursor initialised to the given sequence.
func NewCursor(initial Sequence) *Cursor {
	c := &Cursor{}
	c.v.Store(uint64(initial))
	return c
}

// Load reads the cursor's current sequence.
func (c *Cursor) Load() Sequence { return Sequence(c.v.Load()) }

// Store sets the cursor's sequence.
func (c *Cursor) Store(s Sequence) { c.v.Store(uint64(s)) }

// Ordered re-exports constraints.Ordered so callers building typed ring
// payloads (e.g. a sum-checked sequence of numbers) can constrain their
// own generic helpers the same way catrate's ring buffer constrains E,
// without importing golang.org/x/exp/constraints directly.
type Ordered = constraints.Ordered
