package goro

import "sync"

// AsyncScope is a structured-concurrency nursery: Spawn starts a
// fire-and-forget Task and registers it with the scope, and Join blocks
// until every task spawned into the scope (including ones spawned while
// Join is already waiting) has completed. It is the supplemented feature
// grounded on original_source's async_scope.hpp, whose entire purpose -
// guaranteeing no detached work outlives its enclosing scope - has no
// built-in Go equivalent (goroutines have no structured lifetime by
// default).
//
// A zero AsyncScope is ready to use.
type AsyncScope struct {
	mu        sync.Mutex
	wg        sync.WaitGroup
	closed    bool
	firstErr  error
}

// NewAsyncScope returns a ready-to-use scope.
func NewAsyncScope() *AsyncScope {
	return &AsyncScope{}
}

// Spawn starts fn on its own goroutine, registered with the scope so Join
// will wait for it. Calling Spawn after Join has already returned (the
// scope is closed) panics with a *LogicError: a closed scope can no
// longer make any liveness promise about work spawned into it.
func (s *AsyncScope) Spawn(fn func() error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		panicLogic("AsyncScope: Spawn after Join")
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				err, ok := r.(error)
				if !ok {
					err = &LogicError{Message: "AsyncScope: spawned function panicked"}
				}
				s.recordErr(err)
			}
		}()
		if err := fn(); err != nil {
			s.recordErr(err)
		}
	}()
}

// SpawnTask registers an already-constructed Task with the scope,
// starting it if necessary and waiting for it as part of Join.
func (s *AsyncScope) SpawnTask(t *Task[struct{}]) {
	s.Spawn(func() error {
		_, err := t.Await()
		return err
	})
}

func (s *AsyncScope) recordErr(err error) {
	s.mu.Lock()
	if s.firstErr == nil {
		s.firstErr = err
	}
	s.mu.Unlock()
}

// Join blocks until every task spawned into the scope has completed, then
// marks the scope closed (rejecting further Spawn calls), and returns the
// first error recorded by any of them, in the order they finished (not
// the order they were spawned).
func (s *AsyncScope) Join() error {
	s.wg.Wait()
	s.mu.Lock()
	s.closed = true
	err := s.firstErr
	s.mu.Unlock()
	return err
}
