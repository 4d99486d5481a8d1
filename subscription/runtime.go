package subscription

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"flemish/cancel"
	"flemish/internal/logger"
)

const component = "SubscriptionRuntime"

// Stats summarises a runtime's activity.
type Stats struct {
	Spawned   int
	Cancelled int
	Running   int
}

type producer struct {
	id   uuid.UUID
	hash uint64
	flag *cancel.Flag
	user *cancel.Flag
	stop context.CancelFunc
}

func (p *producer) cancelled() bool {
	return p.flag.IsSet() || p.user.IsSet()
}

// Runtime keeps one producer per subscription slot. Producers send their
// values through the sender given to NewRuntime, which must not block.
type Runtime[M any] struct {
	ctx  context.Context
	send func(M)
	log  logger.Logger

	mu      sync.Mutex
	running []*producer
	stats   Stats
	wg      sync.WaitGroup
}

// NewRuntime creates a runtime whose producers live no longer than ctx.
func NewRuntime[M any](ctx context.Context, send func(M), log logger.Logger) *Runtime[M] {
	if log == nil {
		log = logger.NoOpLogger{}
	}
	return &Runtime[M]{ctx: ctx, send: send, log: log}
}

// Update reconciles the running producers with sub, slot by slot. A slot
// whose hash is unchanged keeps its producer and the new recipe is dropped.
// A changed slot has its old producer cancelled and a new one started.
// Surplus old slots are cancelled.
func (r *Runtime[M]) Update(sub Subscription[M]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, sl := range sub.slots {
		hash := sl.sum()
		if i < len(r.running) {
			if r.running[i].hash == hash {
				continue
			}
			r.cancel(r.running[i])
			r.running[i] = r.spawn(sl, hash)
			continue
		}
		r.running = append(r.running, r.spawn(sl, hash))
	}

	for _, p := range r.running[len(sub.slots):] {
		r.cancel(p)
	}
	clear(r.running[len(sub.slots):])
	r.running = r.running[:len(sub.slots)]
}

func (r *Runtime[M]) spawn(sl slot[M], hash uint64) *producer {
	ctx, stop := context.WithCancel(r.ctx)
	p := &producer{
		id:   uuid.New(),
		hash: hash,
		flag: cancel.New(),
		user: sl.flag,
		stop: stop,
	}
	r.stats.Spawned++
	r.log.Debug(component, "producer started", map[string]interface{}{
		"producer": p.id.String(),
		"hash":     hash,
	})

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer stop()
		if p.user != nil {
			var unbind context.CancelFunc
			ctx, unbind = p.user.Bind(ctx)
			defer unbind()
		}
		sl.run(ctx, func(msg M) {
			if p.cancelled() {
				return
			}
			r.send(msg)
		})
	}()
	return p
}

func (r *Runtime[M]) cancel(p *producer) {
	p.flag.Set()
	p.stop()
	r.stats.Cancelled++
	r.log.Debug(component, "producer cancelled", map[string]interface{}{
		"producer": p.id.String(),
	})
}

func (r *Runtime[M]) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.stats
	s.Running = len(r.running)
	return s
}

// Shutdown cancels every producer and waits for them to return.
func (r *Runtime[M]) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	for _, p := range r.running {
		r.cancel(p)
	}
	r.running = nil
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
