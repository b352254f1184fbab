package goro

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskLazyStart(t *testing.T) {
	started := newTestFlag()
	task := NewTask(func() int {
		started.set()
		return 42
	})
	assert.False(t, started.get())
	v, err := task.Await()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.True(t, started.get())
}

func TestTaskRunsOnce(t *testing.T) {
	var runs int
	var mu sync.Mutex
	task := NewTask(func() int {
		mu.Lock()
		runs++
		mu.Unlock()
		return runs
	})

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := task.Await()
			require.NoError(t, err)
			results[i] = v
		}()
	}
	wg.Wait()
	for _, v := range results {
		assert.Equal(t, 1, v)
	}
}

func TestTaskPropagatesError(t *testing.T) {
	sentinel := errors.New("boom")
	task := NewTask(func() int {
		panic(sentinel)
	})
	_, err := task.Await()
	assert.ErrorIs(t, err, sentinel)
}

func TestCompletedAndFailedTask(t *testing.T) {
	v, err := CompletedTask(7).Await()
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	sentinel := errors.New("failed")
	_, err = FailedTask[int](sentinel).Await()
	assert.ErrorIs(t, err, sentinel)
}

func TestTaskWhenReady(t *testing.T) {
	task := NewTask(func() int { return 1 })
	_, err := task.WhenReady().Await()
	require.NoError(t, err)
	assert.True(t, task.IsReady())
}

// testFlag is a tiny mutex-guarded bool for observing whether a task body
// ran, shared by the tests in this file.
type testFlag struct {
	mu sync.Mutex
	v  bool
}

func newTestFlag() *testFlag { return &testFlag{} }

func (f *testFlag) set()      { f.mu.Lock(); f.v = true; f.mu.Unlock() }
func (f *testFlag) get() bool { f.mu.Lock(); defer f.mu.Unlock(); return f.v }
