package app

import (
	"context"
	"sync"
	"sync/atomic"

	"fyne.io/fyne/v2"

	"flemish/internal/logger"
	"flemish/internal/shutdown"
	"flemish/internal/timing"
	"flemish/subscription"
	"flemish/task"
	"flemish/vdom"
)

// State is where a loop is in its life.
type State int32

const (
	StateInitializing State = iota
	StateIdle
	StateProcessing
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Loop is one running instance of an Application. Messages from any
// goroutine are queued with Send and handled one at a time: observers see
// the message, the model is updated, the task is started, the view is
// rebuilt and patched onto the window and the subscriptions are refreshed.
type Loop[Model, Msg any] struct {
	app   *Application[Model, Msg]
	host  Host
	model Model

	mailbox  *mailbox[Msg]
	store    *vdom.Store[Msg]
	assigner *vdom.Assigner
	exec     *task.Executor[Msg]
	subs     *subscription.Runtime[Msg]
	tap      *subscription.EventTap
	timing   *timing.Tracker
	manager  *shutdown.Manager
	log      logger.Logger

	state     atomic.Int32
	ctx       context.Context
	cancel    context.CancelFunc
	terminate sync.Once
	done      chan struct{}
}

func newLoop[Model, Msg any](a *Application[Model, Msg], host Host, tap *subscription.EventTap, model Model, log logger.Logger) *Loop[Model, Msg] {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Loop[Model, Msg]{
		app:      a,
		host:     host,
		model:    model,
		mailbox:  newMailbox[Msg](),
		assigner: vdom.NewAssigner(),
		tap:      tap,
		timing:   timing.NewTracker(timing.DefaultWindow),
		manager:  shutdown.NewManager(log, shutdown.DefaultTimeout),
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	l.exec = task.NewExecutor(a.settings.WorkerThreads, l.Send, l.Terminate, log)
	l.subs = subscription.NewRuntime(subscription.WithEventTap(ctx, tap), l.Send, log)

	l.manager.Register("executor", l.exec)
	l.manager.Register("subscriptions", l.subs)
	l.manager.Register("loop", shutdown.Func(func(context.Context) error {
		l.Terminate()
		return nil
	}))
	l.manager.Register("host", shutdown.Func(func(context.Context) error {
		host.Quit()
		return nil
	}))
	return l
}

// Send queues msg. It never blocks and may be called from any goroutine.
func (l *Loop[Model, Msg]) Send(msg Msg) {
	l.mailbox.Push(msg)
}

func (l *Loop[Model, Msg]) State() State {
	return State(l.state.Load())
}

// Terminate stops the loop after the message being handled, if any. Queued
// messages are discarded.
func (l *Loop[Model, Msg]) Terminate() {
	l.terminate.Do(func() {
		l.state.Store(int32(StateTerminated))
		l.cancel()
		l.mailbox.Close()
		l.log.Info("Application", "terminating", nil)
	})
}

// Done is closed when Run has returned.
func (l *Loop[Model, Msg]) Done() <-chan struct{} {
	return l.done
}

func (l *Loop[Model, Msg]) Timing() *timing.Tracker {
	return l.timing
}

// Model returns the current model. Only safe once Run has returned or from
// within the host's UI goroutine.
func (l *Loop[Model, Msg]) Model() Model {
	return l.model
}

// Run mounts the first view and handles messages until the loop terminates.
func (l *Loop[Model, Msg]) Run() error {
	defer close(l.done)

	l.host.Do(l.mount)
	l.exec.Execute(l.app.init)
	if l.State() != StateTerminated {
		l.state.Store(int32(StateIdle))
	}

	for {
		msg, ok := l.mailbox.Pop(l.ctx)
		if !ok {
			break
		}
		l.host.Do(func() { l.process(msg) })
		if l.State() == StateTerminated {
			break
		}
	}

	l.timing.Report(l.log, "Application")
	return l.manager.Shutdown()
}

func (l *Loop[Model, Msg]) mount() {
	root := l.render()
	l.store = vdom.NewStore(root, nil, l.Send, l.log)
	l.host.Show(l.store.Host())
	l.host.OnClose(l.closeRequested)
	l.refreshSubscriptions()

	l.log.Debug("Application", "initial view mounted", map[string]interface{}{
		"widgets": l.store.Registry().Len(),
	})
}

func (l *Loop[Model, Msg]) closeRequested() {
	if l.app.closeMsg != nil {
		l.Send(*l.app.closeMsg)
		return
	}
	l.Terminate()
}

func (l *Loop[Model, Msg]) render() vdom.Node[Msg] {
	var root vdom.Node[Msg]
	l.timing.Measure(timing.PhaseView, func() { root = l.app.view(l.model) })
	vdom.AssignIDs(l.assigner, root)
	return root
}

// process runs one cycle. It runs on the UI goroutine.
func (l *Loop[Model, Msg]) process(msg Msg) {
	if !l.state.CompareAndSwap(int32(StateIdle), int32(StateProcessing)) {
		return
	}
	l.store.Dispatch(msg)

	var t task.Task[Msg]
	l.timing.Measure(timing.PhaseUpdate, func() { t = l.app.update(&l.model, msg) })
	l.exec.Execute(t)
	if l.State() == StateTerminated {
		return
	}

	root := l.render()
	l.timing.Measure(timing.PhasePatch, func() { l.store.Patch(root) })
	l.host.Redraw()
	l.refreshSubscriptions()

	l.state.CompareAndSwap(int32(StateProcessing), int32(StateIdle))
}

func (l *Loop[Model, Msg]) refreshSubscriptions() {
	l.timing.Measure(timing.PhaseSubscriptions, func() {
		l.subs.Update(l.app.subscriptionFor(l.model))
	})
}

// Content returns the container the view is mounted in, for hosts that embed
// the application elsewhere.
func (l *Loop[Model, Msg]) Content() *fyne.Container {
	if l.store == nil {
		return nil
	}
	return l.store.Host()
}

// Stats is a snapshot of the work a loop has started.
type Stats struct {
	Queued        int
	Tasks         task.Stats
	Subscriptions subscription.Stats
}

func (l *Loop[Model, Msg]) Stats() Stats {
	return Stats{
		Queued:        l.mailbox.Len(),
		Tasks:         l.exec.Stats(),
		Subscriptions: l.subs.Stats(),
	}
}
