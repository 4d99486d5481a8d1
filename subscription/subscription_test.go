package subscription

import (
	"context"
	"os"
	"path/filepath"
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

type sink[M any] struct {
	ch chan M
}

func newSink[M any]() *sink[M] {
	return &sink[M]{ch: make(chan M, 1024)}
}

func (s *sink[M]) send(m M) {
	select {
	case s.ch <- m:
	default:
	}
}

func (s *sink[M]) next(t *testing.T) M {
	t.Helper()
	select {
	case m := <-s.ch:
		return m
	case <-time.After(wait):
		t.Fatal("timed out waiting for a message")
	}
	var zero M
	return zero
}

func (s *sink[M]) quiet(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case m := <-s.ch:
		t.Fatalf("unexpected message %v", m)
	case <-time.After(d):
	}
}

func newRuntime[M any](t *testing.T, ctx context.Context) (*Runtime[M], *sink[M]) {
	t.Helper()
	out := newSink[M]()
	r := NewRuntime[M](ctx, out.send, nil)
	t.Cleanup(func() {
		require.NoError(t, r.Shutdown(context.Background()))
	})
	return r, out
}

// idle emits the given values and then waits to be cancelled.
func idle[T any](values ...T) func(ctx context.Context, out chan<- T) {
	return func(ctx context.Context, out chan<- T) {
		for _, v := range values {
			if !send(ctx, out, v) {
				return
			}
		}
		<-ctx.Done()
	}
}

func hashOf[M any](s Subscription[M]) []uint64 {
	sums := make([]uint64, len(s.slots))
	for i, sl := range s.slots {
		sums[i] = sl.sum()
	}
	return sums
}

func TestHashFollowsConfiguration(t *testing.T) {
	assert.Equal(t, hashOf(Every(time.Second)), hashOf(Every(time.Second)))
	assert.NotEqual(t, hashOf(Every(time.Second)), hashOf(Every(2*time.Second)))
	assert.Equal(t, hashOf(Watch("/tmp/a")), hashOf(Watch("/tmp/a")))
	assert.NotEqual(t, hashOf(Run("x", idle[int]())), hashOf(Run("y", idle[int]())))

	mapped := Map(Every(time.Second), func(time.Time) string { return "tick" })
	assert.Equal(t, hashOf(Every(time.Second)), hashOf(mapped))
}

func TestHashSeparatesRecipeTypes(t *testing.T) {
	h := NewHasher()
	h.WriteString("ab")
	h.WriteString("c")
	other := NewHasher()
	other.WriteString("a")
	other.WriteString("bc")
	assert.NotEqual(t, h.Sum64(), other.Sum64())

	assert.NotEqual(t, hashOf(Run[int]("", idle[int]())), hashOf(Watch("")))
}

func TestNoneAndBatchSlots(t *testing.T) {
	assert.Zero(t, None[int]().Len())
	b := Batch(Run("a", idle[int]()), None[int](), Batch(Run("b", idle[int]()), Run("c", idle[int]())))
	assert.Equal(t, 3, b.Len())
}

func TestUpdateKeepsProducerWithSameHash(t *testing.T) {
	r, out := newRuntime[int](t, context.Background())

	r.Update(Run("numbers", idle(1)))
	assert.Equal(t, 1, out.next(t))

	r.Update(Run("numbers", idle(2)))
	out.quiet(t, 50*time.Millisecond)
	assert.Equal(t, Stats{Spawned: 1, Running: 1}, r.Stats())
}

func TestUpdateReplacesChangedSlot(t *testing.T) {
	r, out := newRuntime[string](t, context.Background())

	r.Update(Run("a", idle("from a")))
	assert.Equal(t, "from a", out.next(t))

	r.Update(Run("b", idle("from b")))
	assert.Equal(t, "from b", out.next(t))
	assert.Equal(t, Stats{Spawned: 2, Cancelled: 1, Running: 1}, r.Stats())
}

func TestUpdateCancelsSurplusSlots(t *testing.T) {
	r, _ := newRuntime[int](t, context.Background())

	r.Update(Batch(Run("a", idle[int]()), Run("b", idle[int]())))
	r.Update(Run("a", idle[int]()))
	assert.Equal(t, Stats{Spawned: 2, Cancelled: 1, Running: 1}, r.Stats())

	r.Update(None[int]())
	assert.Equal(t, Stats{Spawned: 2, Cancelled: 2}, r.Stats())
}

func TestMapConvertsValues(t *testing.T) {
	r, out := newRuntime[int](t, context.Background())
	times10 := func(v int) int { return v * 10 }

	r.Update(Map(Run("n", idle(1, 2, 3)), times10))
	assert.Equal(t, 10, out.next(t))
	assert.Equal(t, 20, out.next(t))
	assert.Equal(t, 30, out.next(t))

	r.Update(Map(Run("n", idle(1, 2, 3)), times10))
	assert.Equal(t, 1, r.Stats().Spawned)
}

// stubborn sends v once gate opens, whatever ctx says, and closes sent
// afterwards.
func stubborn(gate <-chan struct{}, sent chan<- struct{}, v int) func(context.Context, chan<- int) {
	return func(_ context.Context, out chan<- int) {
		<-gate
		out <- v
		close(sent)
	}
}

func TestCancelableSuppressesDelivery(t *testing.T) {
	t.Run("unset flag delivers", func(t *testing.T) {
		r, out := newRuntime[int](t, context.Background())
		gate, sent := make(chan struct{}), make(chan struct{})

		r.Update(Run("stubborn", stubborn(gate, sent, 1)).Cancelable(cancel.New()))
		close(gate)
		<-sent
		assert.Equal(t, 1, out.next(t))
	})

	t.Run("set flag drops at send time", func(t *testing.T) {
		r, out := newRuntime[int](t, context.Background())
		gate, sent := make(chan struct{}), make(chan struct{})
		flag := cancel.New()

		r.Update(Run("stubborn", stubborn(gate, sent, 1)).Cancelable(flag))
		flag.Set()
		close(gate)
		<-sent
		out.quiet(t, 50*time.Millisecond)
	})
}

func TestEveryPeriodChangeReplacesProducer(t *testing.T) {
	r, out := newRuntime[int](t, context.Background())

	r.Update(Map(Every(10*time.Millisecond), func(time.Time) int { return 10 }))
	assert.Equal(t, 10, out.next(t))

	r.Update(Map(Every(20*time.Millisecond), func(time.Time) int { return 20 }))
	assert.Equal(t, Stats{Spawned: 2, Cancelled: 1, Running: 1}, r.Stats())
	require.Eventually(t, func() bool {
		select {
		case v := <-out.ch:
			return v == 20
		default:
			return false
		}
	}, wait, 5*time.Millisecond)
}

func TestEveryNonPositivePeriod(t *testing.T) {
	assert.Equal(t, hashOf(Every(MinPeriod)), hashOf(Every(0)))
	assert.Equal(t, hashOf(Every(MinPeriod)), hashOf(Every(-time.Second)))

	r, out := newRuntime[string](t, context.Background())
	r.Update(Batch(
		Map(Every(0), func(time.Time) string { return "zero" }),
		Map(Every(-time.Second), func(time.Time) string { return "negative" }),
	))
	seen := map[string]bool{}
	for len(seen) < 2 {
		seen[out.next(t)] = true
	}
	assert.Equal(t, map[string]bool{"zero": true, "negative": true}, seen)
}

func TestEveryTicks(t *testing.T) {
	r, out := newRuntime[string](t, context.Background())

	r.Update(Map(Every(5*time.Millisecond), func(time.Time) string { return "tick" }))
	assert.Equal(t, "tick", out.next(t))
	assert.Equal(t, "tick", out.next(t))
}

func TestEventsFollowTheTap(t *testing.T) {
	tap := NewEventTap()
	r, out := newRuntime[Event](t, WithEventTap(context.Background(), tap))

	r.Update(Events())
	require.Eventually(t, func() bool {
		tap.Record(Event{Kind: KeyTyped, Key: "Return"})
		select {
		case ev := <-out.ch:
			return ev.Kind == KeyTyped && ev.Key == "Return"
		default:
			return false
		}
	}, wait, 20*time.Millisecond)
}

func TestEventsWithoutTapStayQuiet(t *testing.T) {
	r, out := newRuntime[Event](t, context.Background())
	r.Update(Events())
	out.quiet(t, 30*time.Millisecond)
}

func TestEventTapNumbersEvents(t *testing.T) {
	tap := NewEventTap()
	tap.Record(Event{Kind: RuneTyped, Rune: 'a'})
	first := tap.Latest()
	tap.Record(Event{Kind: RuneTyped, Rune: 'a'})
	assert.NotEqual(t, first, tap.Latest())
	assert.Equal(t, uint64(2), tap.Latest().Seq)
}

func TestWatchReportsWrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "settings.yaml")
	r, out := newRuntime[Change](t, context.Background())

	r.Update(Watch(dir))
	require.Eventually(t, func() bool {
		_ = os.WriteFile(target, []byte("theme: light\n"), 0o644)
		select {
		case c := <-out.ch:
			return c.Err == nil && c.Path == target
		default:
			return false
		}
	}, wait, 20*time.Millisecond)
}

func TestWatchMissingPathReportsError(t *testing.T) {
	r, out := newRuntime[Change](t, context.Background())
	r.Update(Watch(filepath.Join(t.TempDir(), "missing")))
	assert.Error(t, out.next(t).Err)
}

func TestShutdownStopsProducers(t *testing.T) {
	out := newSink[int]()
	r := NewRuntime[int](context.Background(), out.send, nil)
	r.Update(Batch(Run("a", idle[int]()), Map(Every(time.Millisecond), func(time.Time) int { return 0 })))

	require.NoError(t, r.Shutdown(context.Background()))
	assert.Equal(t, Stats{Spawned: 2, Cancelled: 2}, r.Stats())
}

func TestParentContextEndsProducers(t *testing.T) {
	ctx, stop := context.WithCancel(context.Background())
	r, out := newRuntime[int](t, ctx)
	r.Update(Run("a", idle(1)))
	assert.Equal(t, 1, out.next(t))

	stop()
	require.NoError(t, r.Shutdown(context.Background()))
}
