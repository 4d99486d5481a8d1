// Package subscription runs long-lived message producers on behalf of an
// application and keeps the running set in step with the subscription its
// model asks for.
package subscription

import (
	"context"
	"reflect"

	"flemish/cancel"
)

// Recipe describes a stream of values. Stream starts producing lazily and
// must close the channel once ctx is done. Hash identifies the recipe by its
// configuration: two recipes with the same hash are treated as the same
// stream and only the first one is ever started.
type Recipe[T any] interface {
	Hash(h *Hasher)
	Stream(ctx context.Context) <-chan T
}

type slot[M any] struct {
	hash func(*Hasher)
	run  func(ctx context.Context, deliver func(M))
	flag *cancel.Flag
}

// Subscription is either empty, a single recipe or a batch. Each recipe in a
// batch occupies its own slot in the runtime.
type Subscription[M any] struct {
	slots []slot[M]
}

// None asks for no producers.
func None[M any]() Subscription[M] {
	return Subscription[M]{}
}

// FromRecipe wraps a recipe. The recipe's type takes part in the hash, so
// distinct recipe types never collide.
func FromRecipe[T any](r Recipe[T]) Subscription[T] {
	return Subscription[T]{slots: []slot[T]{{
		hash: func(h *Hasher) {
			h.WriteString(reflect.TypeOf(r).String())
			r.Hash(h)
		},
		run: func(ctx context.Context, deliver func(T)) {
			for v := range r.Stream(ctx) {
				deliver(v)
			}
		},
	}}}
}

// Batch combines subscriptions. Slot order follows argument order.
func Batch[M any](subs ...Subscription[M]) Subscription[M] {
	var out Subscription[M]
	for _, s := range subs {
		out.slots = append(out.slots, s.slots...)
	}
	return out
}

// Map converts every value s produces. The result hashes like s, so mapping
// the same recipe on every render does not restart it.
func Map[A, B any](s Subscription[A], f func(A) B) Subscription[B] {
	out := Subscription[B]{slots: make([]slot[B], len(s.slots))}
	for i, inner := range s.slots {
		out.slots[i] = slot[B]{
			hash: inner.hash,
			run: func(ctx context.Context, deliver func(B)) {
				inner.run(ctx, func(v A) { deliver(f(v)) })
			},
			flag: inner.flag,
		}
	}
	return out
}

// Cancelable attaches flag to every slot. Once it is set nothing more is
// delivered and the producers are stopped.
func (s Subscription[M]) Cancelable(flag *cancel.Flag) Subscription[M] {
	out := Subscription[M]{slots: make([]slot[M], len(s.slots))}
	for i, sl := range s.slots {
		sl.flag = flag
		out.slots[i] = sl
	}
	return out
}

// Len returns the number of slots.
func (s Subscription[M]) Len() int {
	return len(s.slots)
}

func (sl slot[M]) sum() uint64 {
	h := NewHasher()
	sl.hash(h)
	return h.Sum64()
}
