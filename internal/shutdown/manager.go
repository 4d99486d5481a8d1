package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"flemish/internal/logger"
)

const DefaultTimeout = 5 * time.Second

// Component is anything with resources to release at exit.
type Component interface {
	Shutdown(ctx context.Context) error
}

// Func adapts a plain function to Component.
type Func func(ctx context.Context) error

func (f Func) Shutdown(ctx context.Context) error { return f(ctx) }

type registered struct {
	name      string
	component Component
}

// Manager shuts registered components down in reverse registration order,
// giving each its own timeout.
type Manager struct {
	components []registered
	logger     logger.Logger
	timeout    time.Duration
	mu         sync.Mutex
	done       chan struct{}
	err        error
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewManager(log logger.Logger, timeout time.Duration) *Manager {
	if log == nil {
		log = logger.NoOpLogger{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		logger:  log,
		timeout: timeout,
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (m *Manager) Register(name string, component Component) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.components = append(m.components, registered{name: name, component: component})
}

// Listen shuts down on SIGINT or SIGTERM until the returned stop function is
// called or the manager has shut down.
func (m *Manager) Listen() (stop func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	quit := make(chan struct{})

	go func() {
		select {
		case sig := <-sigChan:
			m.logger.Info("ShutdownManager", "shutdown signal received", map[string]interface{}{
				"signal": sig.String(),
			})
			_ = m.Shutdown()
		case <-quit:
		case <-m.done:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(quit)
		})
	}
}

// Shutdown runs at most once; later calls return the first result.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.done:
		return m.err
	default:
		close(m.done)
	}

	m.logger.Info("ShutdownManager", "shutdown sequence initiated", map[string]interface{}{
		"components": len(m.components),
	})
	m.cancel()

	var errs []error
	for i := len(m.components) - 1; i >= 0; i-- {
		if err := m.stop(m.components[i]); err != nil {
			errs = append(errs, err)
		}
	}
	m.err = errors.Join(errs...)

	m.logger.Info("ShutdownManager", "shutdown sequence completed", map[string]interface{}{
		"failed": len(errs),
	})
	return m.err
}

func (m *Manager) stop(r registered) error {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	result := make(chan error, 1)
	go func() {
		result <- r.component.Shutdown(ctx)
	}()

	select {
	case err := <-result:
		if err != nil {
			m.logger.Error("ShutdownManager", err, map[string]interface{}{
				"component": r.name,
			})
			return fmt.Errorf("shut down %s: %w", r.name, err)
		}
		return nil
	case <-ctx.Done():
		m.logger.Warning("ShutdownManager", "component shutdown timeout", map[string]interface{}{
			"component": r.name,
		})
		return fmt.Errorf("shut down %s: %w", r.name, ctx.Err())
	}
}

// Context ends when shutdown begins.
func (m *Manager) Context() context.Context {
	return m.ctx
}

func (m *Manager) Done() <-chan struct{} {
	return m.done
}
