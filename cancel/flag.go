// Package cancel provides the cooperative cancellation flag shared between the
// UI goroutine and background producers.
//
// A Flag is advisory: setting it never interrupts running work. Producers poll
// IsSet at their delivery points, or select on Done while waiting.
package cancel

import (
	"context"
	"sync"
	"sync/atomic"
)

type Flag struct {
	set  atomic.Bool
	once sync.Once
	done chan struct{}
}

func New() *Flag {
	return &Flag{done: make(chan struct{})}
}

// Set marks the flag. Calling it more than once is harmless.
func (f *Flag) Set() {
	if f == nil {
		return
	}
	f.set.Store(true)
	f.once.Do(func() { close(f.done) })
}

// IsSet reports whether Set has been called. A nil flag is never set.
func (f *Flag) IsSet() bool {
	return f != nil && f.set.Load()
}

// Done is closed once the flag is set. A nil flag returns a nil channel,
// which blocks forever in a select.
func (f *Flag) Done() <-chan struct{} {
	if f == nil {
		return nil
	}
	return f.done
}

// Bind derives a context that ends when either parent ends or the flag is set.
func (f *Flag) Bind(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	if f == nil {
		return ctx, cancel
	}
	go func() {
		select {
		case <-f.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
