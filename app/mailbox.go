package app

import (
	"context"
	"sync"
)

// mailbox is an unbounded FIFO queue. Push never blocks, so widget callbacks
// running on the UI goroutine can always hand over a message while the
// driver waits for that goroutine.
type mailbox[M any] struct {
	mu     sync.Mutex
	queue  []M
	closed bool
	signal chan struct{}
}

func newMailbox[M any]() *mailbox[M] {
	return &mailbox[M]{signal: make(chan struct{}, 1)}
}

// Push enqueues msg. Messages pushed after Close are dropped.
func (m *mailbox[M]) Push(msg M) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.queue = append(m.queue, msg)
	m.mu.Unlock()
	m.wake()
}

func (m *mailbox[M]) wake() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

// Pop waits for the next message. It reports false once the mailbox is
// closed or ctx ends; queued messages are not drained.
func (m *mailbox[M]) Pop(ctx context.Context) (M, bool) {
	var zero M
	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return zero, false
		}
		if len(m.queue) > 0 {
			msg := m.queue[0]
			m.queue[0] = zero
			m.queue = m.queue[1:]
			m.mu.Unlock()
			return msg, true
		}
		m.mu.Unlock()

		select {
		case <-m.signal:
		case <-ctx.Done():
			return zero, false
		}
	}
}

func (m *mailbox[M]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

func (m *mailbox[M]) Close() {
	m.mu.Lock()
	m.closed = true
	m.queue = nil
	m.mu.Unlock()
	m.wake()
}
