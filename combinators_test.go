package goro

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhenAllSuccess(t *testing.T) {
	a := NewTask(func() int { return 1 })
	b := NewTask(func() int { return 2 })
	c := NewTask(func() int { return 3 })
	results, err := WhenAll(a, b, c).Await()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, results)
}

func TestWhenAllPropagatesError(t *testing.T) {
	sentinel := errors.New("bad")
	a := NewTask(func() int { return 1 })
	b := NewTask(func() int { panic(sentinel) })
	_, err := WhenAll(a, b).Await()
	assert.ErrorIs(t, err, sentinel)
}

func TestWhenAll2(t *testing.T) {
	a := NewTask(func() int { return 1 })
	b := NewTask(func() string { return "x" })
	pair, err := WhenAll2(a, b).Await()
	require.NoError(t, err)
	assert.Equal(t, 1, pair.A)
	assert.Equal(t, "x", pair.B)
}

func TestWhenAllReadyAlwaysSucceeds(t *testing.T) {
	sentinel := errors.New("bad")
	a := NewTask(func() int { return 1 })
	b := NewTask(func() int { panic(sentinel) })
	done, err := WhenAllReady(a, b).Await()
	require.NoError(t, err)
	require.Len(t, done, 2)
	_, aerr := done[0].Await()
	assert.NoError(t, aerr)
	_, berr := done[1].Await()
	assert.ErrorIs(t, berr, sentinel)
}

func TestSyncWaitReturnsValue(t *testing.T) {
	task := NewTask(func() int { return 9 })
	assert.Equal(t, 9, SyncWait(task))
}

func TestSyncWaitPanicsOnError(t *testing.T) {
	sentinel := errors.New("oops")
	task := NewTask(func() int { panic(sentinel) })
	assert.PanicsWithValue(t, sentinel, func() {
		SyncWait(task)
	})
}

func TestSyncWaitErr(t *testing.T) {
	sentinel := errors.New("oops")
	task := NewTask(func() int { panic(sentinel) })
	_, err := SyncWaitErr(task)
	assert.ErrorIs(t, err, sentinel)
}

func TestFmap(t *testing.T) {
	task := NewTask(func() int { return 3 })
	mapped := Fmap(task, func(v int) string { return "v" })
	v, err := mapped.Await()
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestFmapShortCircuitsOnError(t *testing.T) {
	sentinel := errors.New("fail")
	task := NewTask(func() int { panic(sentinel) })
	called := false
	mapped := Fmap(task, func(v int) int {
		called = true
		return v
	})
	_, err := mapped.Await()
	assert.ErrorIs(t, err, sentinel)
	assert.False(t, called)
}

func TestScheduleOnAndResumeOn(t *testing.T) {
	task := ScheduleOn(GoScheduler, func() int { return 5 })
	v, err := task.Await()
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	resumed := ResumeOn(InlineScheduler, task)
	v2, err := resumed.Await()
	require.NoError(t, err)
	assert.Equal(t, 5, v2)
}

func TestAsyncScopeJoinWaitsAndCollectsFirstError(t *testing.T) {
	scope := NewAsyncScope()
	sentinel := errors.New("scope error")
	var ran int
	scope.Spawn(func() error {
		ran++
		return nil
	})
	scope.Spawn(func() error {
		return sentinel
	})
	err := scope.Join()
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, ran)
}

func TestAsyncScopeSpawnAfterJoinPanics(t *testing.T) {
	scope := NewAsyncScope()
	require.NoError(t, scope.Join())
	assert.Panics(t, func() {
		scope.Spawn(func() error { return nil })
	})
}
