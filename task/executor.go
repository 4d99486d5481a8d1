package task

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"flemish/cancel"
	"flemish/internal/logger"
)

const component = "TaskExecutor"

// Stats counts executed work and its outcome.
type Stats struct {
	Started   int64
	Delivered int64
	Dropped   int64
}

// Executor runs tasks and sends their results through send, which must not
// block. Perform tasks share a pool of workers; async tasks each get a
// goroutine.
type Executor[M any] struct {
	ctx  context.Context
	stop context.CancelFunc
	send func(M)
	quit func()
	sem  *semaphore.Weighted
	log  logger.Logger
	wg   sync.WaitGroup

	started   atomic.Int64
	delivered atomic.Int64
	dropped   atomic.Int64
}

// NewExecutor creates an executor with the given number of perform workers.
// Zero or less means one per CPU. quit is called for Exit tasks.
func NewExecutor[M any](workers int, send func(M), quit func(), log logger.Logger) *Executor[M] {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if log == nil {
		log = logger.NoOpLogger{}
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Executor[M]{
		ctx:  ctx,
		stop: stop,
		send: send,
		quit: quit,
		sem:  semaphore.NewWeighted(int64(workers)),
		log:  log,
	}
}

// Execute starts t and returns without waiting for it.
func (e *Executor[M]) Execute(t Task[M]) {
	switch t.kind {
	case kindNone:
	case kindExit:
		e.log.Debug(component, "exit requested", nil)
		if e.quit != nil {
			e.quit()
		}
	case kindPerform:
		e.started.Add(1)
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			if err := e.sem.Acquire(e.ctx, 1); err != nil {
				e.dropped.Add(1)
				return
			}
			v := t.perform()
			e.sem.Release(1)
			e.deliver(t.flag, v)
		}()
	case kindAsync:
		e.started.Add(1)
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.deliver(t.flag, t.async(e.ctx))
		}()
	case kindBatch:
		for _, child := range t.batch {
			e.Execute(child)
		}
	}
}

func (e *Executor[M]) deliver(flag *cancel.Flag, v M) {
	if flag.IsSet() || e.ctx.Err() != nil {
		e.dropped.Add(1)
		e.log.Debug(component, "result dropped", map[string]interface{}{
			"cancelled": flag.IsSet(),
		})
		return
	}
	e.delivered.Add(1)
	e.send(v)
}

func (e *Executor[M]) Stats() Stats {
	return Stats{
		Started:   e.started.Load(),
		Delivered: e.delivered.Load(),
		Dropped:   e.dropped.Load(),
	}
}

// Shutdown ends the context of running async tasks, stops queued perform
// tasks from starting and waits for the rest to return.
func (e *Executor[M]) Shutdown(ctx context.Context) error {
	e.stop()
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
