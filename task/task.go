// Package task describes one-shot work requested by an application's update
// function and runs it off the UI goroutine.
package task

import (
	"context"

	"golang.org/x/sync/errgroup"

	"flemish/cancel"
)

type kind uint8

const (
	kindNone kind = iota
	kindExit
	kindPerform
	kindAsync
	kindBatch
)

// Task is a value describing work whose result becomes a message. The zero
// Task does nothing.
type Task[M any] struct {
	kind    kind
	perform func() M
	async   func(ctx context.Context) M
	batch   []Task[M]
	flag    *cancel.Flag
}

func None[M any]() Task[M] {
	return Task[M]{}
}

// Exit asks the application to terminate. It produces no message.
func Exit[M any]() Task[M] {
	return Task[M]{kind: kindExit}
}

// Perform runs fn on the executor's worker pool.
func Perform[M any](fn func() M) Task[M] {
	return Task[M]{kind: kindPerform, perform: fn}
}

// PerformAsync runs fn on its own goroutine. ctx ends when the executor
// shuts down.
func PerformAsync[M any](fn func(ctx context.Context) M) Task[M] {
	return Task[M]{kind: kindAsync, async: fn}
}

// Batch runs every task independently.
func Batch[M any](tasks ...Task[M]) Task[M] {
	return Task[M]{kind: kindBatch, batch: tasks}
}

// Cancelable attaches flag. A result is only delivered if the flag is still
// unset when the work finishes; the work itself always runs to completion.
// Tasks in a batch that carry no flag of their own inherit it.
func (t Task[M]) Cancelable(flag *cancel.Flag) Task[M] {
	if t.kind == kindBatch {
		children := make([]Task[M], len(t.batch))
		for i, child := range t.batch {
			if child.flag == nil {
				child = child.Cancelable(flag)
			}
			children[i] = child
		}
		t.batch = children
		return t
	}
	t.flag = flag
	return t
}

func (t Task[M]) IsNone() bool { return t.kind == kindNone }
func (t Task[M]) IsExit() bool { return t.kind == kindExit }

// Map converts the result of t. None and Exit are passed through unchanged.
func Map[A, B any](t Task[A], f func(A) B) Task[B] {
	switch t.kind {
	case kindExit:
		return Exit[B]()
	case kindPerform:
		fn := t.perform
		return Task[B]{kind: kindPerform, flag: t.flag, perform: func() B { return f(fn()) }}
	case kindAsync:
		fn := t.async
		return Task[B]{kind: kindAsync, flag: t.flag, async: func(ctx context.Context) B { return f(fn(ctx)) }}
	case kindBatch:
		children := make([]Task[B], len(t.batch))
		for i, child := range t.batch {
			children[i] = Map(child, f)
		}
		return Task[B]{kind: kindBatch, flag: t.flag, batch: children}
	default:
		return None[B]()
	}
}

// Join runs tasks concurrently and yields the results of those that were not
// cancelled, in argument order. None and Exit contribute nothing.
func Join[M any](tasks ...Task[M]) Task[[]M] {
	return PerformAsync(func(ctx context.Context) []M {
		var leaves []Task[M]
		for _, t := range tasks {
			leaves = t.flatten(leaves)
		}

		results := make([]M, len(leaves))
		delivered := make([]bool, len(leaves))
		g, gctx := errgroup.WithContext(ctx)
		for i, leaf := range leaves {
			g.Go(func() error {
				results[i], delivered[i] = leaf.resolve(gctx)
				return nil
			})
		}
		_ = g.Wait()

		out := make([]M, 0, len(leaves))
		for i, ok := range delivered {
			if ok {
				out = append(out, results[i])
			}
		}
		return out
	})
}

func (t Task[M]) flatten(into []Task[M]) []Task[M] {
	switch t.kind {
	case kindPerform, kindAsync:
		return append(into, t)
	case kindBatch:
		for _, child := range t.batch {
			into = child.flatten(into)
		}
	}
	return into
}

// resolve runs a perform or async task in place.
func (t Task[M]) resolve(ctx context.Context) (M, bool) {
	var v M
	switch t.kind {
	case kindPerform:
		v = t.perform()
	case kindAsync:
		v = t.async(ctx)
	default:
		return v, false
	}
	return v, !t.flag.IsSet()
}
