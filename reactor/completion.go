package reactor

import (
	"sync"

	"github.com/google/uuid"
)

type completionState int

const (
	completionPending completionState = iota
	completionResolved
	completionRejected
)

// completion tracks the outcome of one loop-internal pending operation - a
// Schedule call or a ScheduleAfter timer - so
// Shutdown can mass-reject every one still outstanding instead of leaving
// callers blocked forever. It replaces the teacher's JS-Promise-flavoured
// promise/ChainedPromise type with the one piece of that design the
// reactor actually needs: a single-resolution result box with a fan-out
// notification channel.
type completion struct {
	id    string // debug correlation id, surfaced through Logger on rejectAll
	mu    sync.Mutex
	state completionState
	err   error
	subs  []chan struct{}
}

func newCompletion() *completion {
	return &completion{id: uuid.NewString()}
}

// resolve marks the completion successful. A completion may only be
// resolved or rejected once; later calls are no-ops.
func (c *completion) resolve() {
	c.finish(completionResolved, nil)
}

// reject marks the completion failed with err.
func (c *completion) reject(err error) {
	c.finish(completionRejected, err)
}

func (c *completion) finish(state completionState, err error) {
	c.mu.Lock()
	if c.state != completionPending {
		c.mu.Unlock()
		return
	}
	c.state = state
	c.err = err
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()
	for _, ch := range subs {
		close(ch)
	}
}

// wait blocks until the completion is resolved or rejected, returning the
// error (nil on success).
func (c *completion) wait() error {
	c.mu.Lock()
	if c.state != completionPending {
		err := c.err
		c.mu.Unlock()
		return err
	}
	ch := make(chan struct{})
	c.subs = append(c.subs, ch)
	c.mu.Unlock()
	<-ch
	return c.err
}

// done reports whether the completion has settled, without blocking.
func (c *completion) done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != completionPending
}
