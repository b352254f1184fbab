package goro

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancellationBasic(t *testing.T) {
	src := NewCancellationSource()
	tok := src.Token()
	assert.False(t, tok.IsCancellationRequested())
	src.Cancel()
	assert.True(t, tok.IsCancellationRequested())
	// Idempotent.
	src.Cancel()
}

func TestCancellationRegisterBeforeCancel(t *testing.T) {
	src := NewCancellationSource()
	tok := src.Token()
	var fired bool
	reg := tok.Register(func() { fired = true })
	defer reg.Close()
	src.Cancel()
	assert.True(t, fired)
}

func TestCancellationRegisterAfterCancelFiresInline(t *testing.T) {
	src := NewCancellationSource()
	src.Cancel()
	tok := src.Token()
	var fired bool
	reg := tok.Register(func() { fired = true })
	defer reg.Close()
	assert.True(t, fired)
}

func TestCancellationRegistrationCloseIsReentrant(t *testing.T) {
	src := NewCancellationSource()
	tok := src.Token()
	var reg *CancellationRegistration
	reg = tok.Register(func() {
		reg.Close() // must not deadlock
	})
	done := make(chan struct{})
	go func() {
		src.Cancel()
		close(done)
	}()
	<-done
}

func TestCancellationCloseBlocksUntilInFlightCallbackFinishes(t *testing.T) {
	src := NewCancellationSource()
	tok := src.Token()

	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	reg := tok.Register(func() {
		close(started)
		<-release
		finished.Store(true)
	})

	go src.Cancel()
	<-started // Cancel is now running reg's handler on its own goroutine.

	closeDone := make(chan struct{})
	go func() {
		reg.Close() // must block until the handler above returns
		close(closeDone)
	}()

	select {
	case <-closeDone:
		t.Fatal("Close returned before the in-flight callback finished")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-closeDone
	assert.True(t, finished.Load())
}

func TestCancellationConcurrentRegisterAndCancel(t *testing.T) {
	src := NewCancellationSource()
	tok := src.Token()
	var wg sync.WaitGroup
	var mu sync.Mutex
	fireCount := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg := tok.Register(func() {
				mu.Lock()
				fireCount++
				mu.Unlock()
			})
			defer reg.Close()
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		src.Cancel()
	}()
	wg.Wait()
	assert.True(t, tok.IsCancellationRequested())
}

func TestBackgroundTokenNeverCancelled(t *testing.T) {
	tok := Background()
	assert.False(t, tok.CanBeCancelled())
	assert.False(t, tok.IsCancellationRequested())
	reg := tok.Register(func() { t.Fatal("should never fire") })
	reg.Close()
}

func TestThrowIfCancellationRequestedPanics(t *testing.T) {
	src := NewCancellationSource()
	tok := src.Token()
	src.Cancel()
	assert.PanicsWithValue(t, &CancelledError{Op: "read"}, func() {
		tok.ThrowIfCancellationRequested("read")
	})
}

func TestIsCancelledHelper(t *testing.T) {
	task := NewTask(func() int {
		panic(&CancelledError{Op: "x"})
	})
	_, err := task.Await()
	require.Error(t, err)
	assert.True(t, IsCancelled(err))
}
