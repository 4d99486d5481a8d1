package subscription

import (
	"context"
	"sync"
	"time"
)

// EventPollInterval is how often Events samples the tap.
const EventPollInterval = 8 * time.Millisecond

type EventKind uint8

const (
	KeyTyped EventKind = iota + 1
	RuneTyped
	FocusLost
	FocusGained
)

// Event is a toolkit input event as recorded by the window.
type Event struct {
	Kind EventKind
	Key  string
	Rune rune
	// Seq numbers events in arrival order, so two identical key presses
	// still count as two events.
	Seq uint64
}

// EventTap holds the most recent window event. The window writes it from the
// UI goroutine while Events producers read it.
type EventTap struct {
	mu     sync.Mutex
	latest Event
}

func NewEventTap() *EventTap {
	return &EventTap{}
}

func (t *EventTap) Record(ev Event) {
	t.mu.Lock()
	ev.Seq = t.latest.Seq + 1
	t.latest = ev
	t.mu.Unlock()
}

func (t *EventTap) Latest() Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest
}

type tapKey struct{}

// WithEventTap returns a context carrying tap. The runtime's context must
// carry one for Events to produce anything.
func WithEventTap(ctx context.Context, tap *EventTap) context.Context {
	return context.WithValue(ctx, tapKey{}, tap)
}

func EventTapFrom(ctx context.Context) (*EventTap, bool) {
	tap, ok := ctx.Value(tapKey{}).(*EventTap)
	return tap, ok && tap != nil
}

type events struct{}

func (events) Hash(*Hasher) {}

func (events) Stream(ctx context.Context) <-chan Event {
	ch := make(chan Event)
	go func() {
		defer close(ch)
		tap, ok := EventTapFrom(ctx)
		if !ok {
			<-ctx.Done()
			return
		}
		last := tap.Latest()
		ticker := time.NewTicker(EventPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ev := tap.Latest()
				if ev == last {
					continue
				}
				last = ev
				if !send(ctx, ch, ev) {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// Events yields window input events. Events that arrive faster than the poll
// interval collapse into the latest one.
func Events() Subscription[Event] {
	return FromRecipe[Event](events{})
}
