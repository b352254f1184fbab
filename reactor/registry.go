package reactor

import (
	"sync"
	"weak"
)

// completionRegistry tracks every completion the loop has handed out via
// Schedule/ScheduleAfter, using weak pointers so a completion whose caller
// has stopped waiting on it (and dropped every strong reference) can be
// garbage collected without the registry itself holding it alive forever.
// This is the teacher's weak-pointer promise registry, renamed for
// completion and trimmed to the one operation the reactor actually needs
// beyond tracking: rejecting everything still outstanding at Shutdown.
type completionRegistry struct {
	mu      sync.Mutex
	entries []weak.Pointer[completion]
}

func newCompletionRegistry() *completionRegistry {
	return &completionRegistry{}
}

// track registers c so a future rejectAll also rejects it.
func (r *completionRegistry) track(c *completion) {
	r.mu.Lock()
	r.entries = append(r.entries, weak.Make(c))
	r.mu.Unlock()
}

// scavenge drops entries whose completion has already been collected or
// has already settled, bounding the registry's size to roughly the number
// of genuinely still-pending completions. It is called opportunistically
// by Run after each poll rather than on a timer, matching the teacher's
// "piggyback scavenging on other work" approach to keeping weak-pointer
// registries from growing unboundedly between explicit compactions.
func (r *completionRegistry) scavenge(batchSize int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if batchSize <= 0 || batchSize > len(r.entries) {
		batchSize = len(r.entries)
	}
	kept := r.entries[:0]
	for i := 0; i < batchSize; i++ {
		wp := r.entries[i]
		if c := wp.Value(); c != nil && !c.done() {
			kept = append(kept, wp)
		}
	}
	kept = append(kept, r.entries[batchSize:]...)
	r.entries = kept
}

// rejectAll rejects every still-live, still-pending completion with err,
// for use at Shutdown so no caller of Schedule/ScheduleAfter is left
// blocked on a loop that will never run again. Each rejection still
// pending at the time is logged against its debug correlation id, so a
// caller stuck waiting on a particular Schedule call can be matched back
// to the shutdown that unblocked it.
func (r *completionRegistry) rejectAll(loopID int64, logger Logger, err error) {
	r.mu.Lock()
	entries := r.entries
	r.entries = nil
	r.mu.Unlock()
	for _, wp := range entries {
		if c := wp.Value(); c != nil && !c.done() {
			LogCompletionRejected(logger, loopID, c.id)
			c.reject(err)
		}
	}
}
