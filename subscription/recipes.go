package subscription

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
)

// send delivers v unless ctx ends first.
func send[T any](ctx context.Context, ch chan<- T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-ctx.Done():
		return false
	}
}

type every struct {
	period time.Duration
}

func (e every) Hash(h *Hasher) {
	h.WriteInt64(int64(e.period))
}

func (e every) Stream(ctx context.Context) <-chan time.Time {
	ch := make(chan time.Time)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(e.period)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				if !send(ctx, ch, now) {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// MinPeriod is the period Every uses when given zero or less.
const MinPeriod = time.Millisecond

// Every yields the current time once per period.
func Every(period time.Duration) Subscription[time.Time] {
	if period <= 0 {
		period = MinPeriod
	}
	return FromRecipe[time.Time](every{period: period})
}

type run[T any] struct {
	id string
	fn func(ctx context.Context, out chan<- T)
}

func (r run[T]) Hash(h *Hasher) {
	h.WriteString(r.id)
}

func (r run[T]) Stream(ctx context.Context) <-chan T {
	ch := make(chan T)
	go func() {
		defer close(ch)
		r.fn(ctx, ch)
	}()
	return ch
}

// Run builds a recipe from a function. id alone identifies it, so the same
// id with a different fn keeps the producer that is already running. fn must
// return once ctx is done; the channel is closed for it.
func Run[T any](id string, fn func(ctx context.Context, out chan<- T)) Subscription[T] {
	return FromRecipe[T](run[T]{id: id, fn: fn})
}

// Change is one file system notification from Watch. Err is set when the
// watcher itself failed.
type Change struct {
	Path string
	Op   fsnotify.Op
	Err  error
}

type watch struct {
	path string
}

func (w watch) Hash(h *Hasher) {
	h.WriteString(w.path)
}

func (w watch) Stream(ctx context.Context) <-chan Change {
	ch := make(chan Change)
	go func() {
		defer close(ch)
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			send(ctx, ch, Change{Path: w.path, Err: err})
			return
		}
		defer watcher.Close()
		if err := watcher.Add(w.path); err != nil {
			send(ctx, ch, Change{Path: w.path, Err: err})
			return
		}
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !send(ctx, ch, Change{Path: ev.Name, Op: ev.Op}) {
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if !send(ctx, ch, Change{Path: w.path, Err: err}) {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// Watch reports changes to a file or the entries of a directory.
func Watch(path string) Subscription[Change] {
	return FromRecipe[Change](watch{path: path})
}
