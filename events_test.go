package goro

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualResetEventBasic(t *testing.T) {
	e := NewManualResetEvent(false)
	assert.False(t, e.IsSet())

	done := make(chan struct{})
	go func() {
		e.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait returned before Set")
	case <-time.After(20 * time.Millisecond):
	}

	e.Set()
	<-done
	assert.True(t, e.IsSet())

	// Subsequent waits return immediately.
	e.Wait()

	e.Reset()
	assert.False(t, e.IsSet())
}

func TestManualResetEventWakesAllWaiters(t *testing.T) {
	e := NewManualResetEvent(false)
	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			e.Wait()
		}()
	}
	time.Sleep(10 * time.Millisecond)
	e.Set()

	waitDone := make(chan struct{})
	go func() { wg.Wait(); close(waitDone) }()
	select {
	case <-waitDone:
	case <-time.After(time.Second):
		t.Fatal("not all waiters woke")
	}
}

func TestAutoResetEventSingleWakePerSet(t *testing.T) {
	e := NewAutoResetEvent(false)
	const n = 4
	woke := make(chan int, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			e.Wait()
			woke <- i
		}()
	}
	time.Sleep(10 * time.Millisecond)
	for i := 0; i < n; i++ {
		e.Set()
		time.Sleep(5 * time.Millisecond)
	}
	wg.Wait()
	close(woke)
	count := 0
	for range woke {
		count++
	}
	assert.Equal(t, n, count)
}

func TestAutoResetEventPendingPermit(t *testing.T) {
	e := NewAutoResetEvent(false)
	e.Set()
	// Wait should consume the pending permit without blocking.
	done := make(chan struct{})
	go func() { e.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked despite pending Set")
	}
}

func TestAutoResetEventMultiplePendingSetsArentCollapsed(t *testing.T) {
	e := NewAutoResetEvent(false)
	e.Set()
	e.Set()
	e.Set()
	// Three Sets ran ahead of any Wait: all three must be redeemable, one
	// per Wait, none of them lost to a single remembered bool.
	for i := 0; i < 3; i++ {
		done := make(chan struct{})
		go func() { e.Wait(); close(done) }()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("Wait %d blocked despite a pending Set", i)
		}
	}
	// A 4th Wait must now block: every pending signal has been consumed.
	done := make(chan struct{})
	go func() { e.Wait(); close(done) }()
	select {
	case <-done:
		t.Fatal("Wait returned with no pending Set and no waiter woken")
	case <-time.After(20 * time.Millisecond):
	}
	e.Set()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("final Set failed to wake the blocked Wait")
	}
}

func TestSingleConsumerAutoResetEvent(t *testing.T) {
	e := NewSingleConsumerAutoResetEvent(false)
	done := make(chan struct{})
	go func() {
		e.Wait()
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	e.Set()
	<-done
}

func TestSingleConsumerAutoResetEventConcurrentWaitPanics(t *testing.T) {
	e := NewSingleConsumerAutoResetEvent(false)
	release := make(chan struct{})
	go func() {
		defer close(release)
		e.Wait()
	}()
	time.Sleep(10 * time.Millisecond)

	assert.Panics(t, func() {
		e.Wait()
	})
	e.Set()
	<-release
}

func TestLightweightManualResetEvent(t *testing.T) {
	e := NewLightweightManualResetEvent()
	assert.False(t, e.IsSet())
	done := make(chan struct{})
	go func() {
		e.Wait()
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	e.Set()
	<-done
	assert.True(t, e.IsSet())
}

func TestLatchCountDown(t *testing.T) {
	l := NewLatch(3)
	assert.False(t, l.IsReady())
	l.CountDown()
	l.CountDown()
	assert.False(t, l.IsReady())
	l.CountDown()
	assert.True(t, l.IsReady())
	l.Wait() // must not block
}

func TestLatchZeroInitialAlreadyOpen(t *testing.T) {
	l := NewLatch(0)
	assert.True(t, l.IsReady())
}

func TestMutexGuardReleasesToQueuedLockers(t *testing.T) {
	m := NewMutex()
	var order []int
	var mu sync.Mutex

	g := m.Guard()
	const n = 5
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Lock()
			defer m.Unlock()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}()
		time.Sleep(time.Millisecond) // encourage FIFO arrival order
	}
	time.Sleep(10 * time.Millisecond)
	g.Close()
	wg.Wait()
	require.Len(t, order, n)
}

func TestMutexUnlockWithoutLockPanics(t *testing.T) {
	m := NewMutex()
	assert.Panics(t, func() { m.Unlock() })
}

func TestMutexTryLock(t *testing.T) {
	m := NewMutex()
	assert.True(t, m.TryLock())
	assert.False(t, m.TryLock())
	m.Unlock()
	assert.True(t, m.TryLock())
	m.Unlock()
}
