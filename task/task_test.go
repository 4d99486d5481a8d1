package task

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"flemish/cancel"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const wait = 2 * time.Second

type mailbox[M any] chan M

func (m mailbox[M]) send(v M) {
	select {
	case m <- v:
	default:
	}
}

func (m mailbox[M]) next(t *testing.T) M {
	t.Helper()
	select {
	case v := <-m:
		return v
	case <-time.After(wait):
		t.Fatal("timed out waiting for a result")
	}
	var zero M
	return zero
}

func newExecutor[M any](t *testing.T, workers int, quit func()) (*Executor[M], mailbox[M]) {
	t.Helper()
	box := make(mailbox[M], 64)
	e := NewExecutor[M](workers, box.send, quit, nil)
	t.Cleanup(func() {
		require.NoError(t, e.Shutdown(context.Background()))
	})
	return e, box
}

func TestMappedPerformDeliversMappedResult(t *testing.T) {
	e, box := newExecutor[int](t, 2, nil)

	e.Execute(Map(Perform(func() int { return 2 + 2 }), func(v int) int { return v * 10 }))
	assert.Equal(t, 40, box.next(t))
}

func TestMappedNoneSendsNothing(t *testing.T) {
	e, box := newExecutor[int](t, 1, nil)

	mapped := Map(None[int](), func(v int) int { return v * 10 })
	assert.True(t, mapped.IsNone())
	e.Execute(mapped)
	require.NoError(t, e.Shutdown(context.Background()))
	assert.Empty(t, box)
	assert.Zero(t, e.Stats().Started)
}

func TestExitCallsQuitHook(t *testing.T) {
	var quits atomic.Int32
	e, box := newExecutor[string](t, 1, func() { quits.Add(1) })

	task := Map(Exit[int](), func(int) string { return "never" })
	assert.True(t, task.IsExit())
	e.Execute(task)
	assert.Equal(t, int32(1), quits.Load())
	assert.Empty(t, box)
}

func TestCancelledResultIsDropped(t *testing.T) {
	e, box := newExecutor[string](t, 1, nil)
	gate := make(chan struct{})
	flag := cancel.New()
	var ran atomic.Bool

	e.Execute(Perform(func() string {
		<-gate
		ran.Store(true)
		return "late"
	}).Cancelable(flag))
	flag.Set()
	close(gate)

	// The executor is still live, so only the flag can stop the result.
	require.Eventually(t, func() bool { return e.Stats().Dropped == 1 }, wait, time.Millisecond)
	assert.True(t, ran.Load())
	assert.Empty(t, box)
	assert.Equal(t, Stats{Started: 1, Dropped: 1}, e.Stats())
}

func TestFlagSetAfterStartStillDrops(t *testing.T) {
	e, box := newExecutor[string](t, 1, nil)
	started := make(chan struct{})
	gate := make(chan struct{})
	flag := cancel.New()

	e.Execute(PerformAsync(func(context.Context) string {
		close(started)
		<-gate
		return "late"
	}).Cancelable(flag))
	<-started
	flag.Set()
	close(gate)

	require.Eventually(t, func() bool { return e.Stats().Dropped == 1 }, wait, time.Millisecond)
	assert.Empty(t, box)
	assert.Zero(t, e.Stats().Delivered)
}

func TestCancelableReachesBatchChildren(t *testing.T) {
	e, box := newExecutor[int](t, 2, nil)
	flag := cancel.New()
	flag.Set()
	own := cancel.New()

	e.Execute(Batch(
		Perform(func() int { return 1 }),
		Perform(func() int { return 2 }).Cancelable(own),
	).Cancelable(flag))

	assert.Equal(t, 2, box.next(t))
	require.NoError(t, e.Shutdown(context.Background()))
	assert.Empty(t, box)
}

func TestAsyncSeesShutdown(t *testing.T) {
	box := make(mailbox[string], 1)
	e := NewExecutor[string](1, box.send, nil, nil)
	started := make(chan struct{})

	e.Execute(PerformAsync(func(ctx context.Context) string {
		close(started)
		<-ctx.Done()
		return "stopped"
	}))
	<-started

	require.NoError(t, e.Shutdown(context.Background()))
	assert.Empty(t, box)
	assert.Equal(t, int64(1), e.Stats().Dropped)
}

func TestBatchRunsEverything(t *testing.T) {
	e, box := newExecutor[int](t, 4, nil)

	e.Execute(Map(Batch(
		Perform(func() int { return 1 }),
		PerformAsync(func(context.Context) int { return 2 }),
		None[int](),
		Batch(Perform(func() int { return 3 })),
	), func(v int) int { return v + 100 }))

	got := map[int]bool{}
	for range 3 {
		got[box.next(t)] = true
	}
	assert.Equal(t, map[int]bool{101: true, 102: true, 103: true}, got)
}

func TestWorkerPoolIsBounded(t *testing.T) {
	e, box := newExecutor[int](t, 2, nil)
	var running, peak atomic.Int32

	for i := range 8 {
		e.Execute(Perform(func() int {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return i
		}))
	}
	for range 8 {
		box.next(t)
	}
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestJoinKeepsOrderAndSkipsCancelled(t *testing.T) {
	e, box := newExecutor[[]int](t, 2, nil)
	flag := cancel.New()
	flag.Set()

	e.Execute(Join(
		Perform(func() int { return 1 }),
		PerformAsync(func(context.Context) int {
			time.Sleep(5 * time.Millisecond)
			return 2
		}),
		Perform(func() int { return 3 }).Cancelable(flag),
		Exit[int](),
		Batch(Perform(func() int { return 4 })),
	))
	assert.Equal(t, []int{1, 2, 4}, box.next(t))
}
