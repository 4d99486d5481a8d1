// Package app drives an application: it owns the model, turns messages into
// model updates and keeps the window in step with the view of the model.
package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	fyneapp "fyne.io/fyne/v2/app"

	"flemish/internal/logger"
	"flemish/internal/shutdown"
	"flemish/subscription"
	"flemish/task"
	"flemish/vdom"
)

const DefaultID = "io.flemish.app"

// Application describes an application. Build it with New and the With
// methods, then call Run or RunWith.
type Application[Model, Msg any] struct {
	id           string
	title        string
	update       func(*Model, Msg) task.Task[Msg]
	view         func(Model) vdom.Node[Msg]
	subscription func(Model) subscription.Subscription[Msg]
	init         task.Task[Msg]
	closeMsg     *Msg
	settings     Settings
	log          logger.Logger
}

// New describes an application. update may change the model and asks for
// follow-up work through the task it returns; view must build a fresh tree
// from the model without side effects.
func New[Model, Msg any](title string, update func(*Model, Msg) task.Task[Msg], view func(Model) vdom.Node[Msg]) *Application[Model, Msg] {
	return &Application[Model, Msg]{
		id:       DefaultID,
		title:    title,
		update:   update,
		view:     view,
		settings: DefaultSettings(),
	}
}

func (a *Application[Model, Msg]) WithID(id string) *Application[Model, Msg] {
	a.id = id
	return a
}

func (a *Application[Model, Msg]) WithSettings(s Settings) *Application[Model, Msg] {
	a.settings = s
	return a
}

// WithSubscription sets the function asked after every update which
// producers should be running.
func (a *Application[Model, Msg]) WithSubscription(fn func(Model) subscription.Subscription[Msg]) *Application[Model, Msg] {
	a.subscription = fn
	return a
}

// WithInit runs t once the first view is on screen.
func (a *Application[Model, Msg]) WithInit(t task.Task[Msg]) *Application[Model, Msg] {
	a.init = t
	return a
}

// OnClose makes closing the window send msg instead of terminating. The
// update function decides whether to exit.
func (a *Application[Model, Msg]) OnClose(msg Msg) *Application[Model, Msg] {
	a.closeMsg = &msg
	return a
}

// WithLogger replaces the logger built from the settings.
func (a *Application[Model, Msg]) WithLogger(l logger.Logger) *Application[Model, Msg] {
	a.log = l
	return a
}

func (a *Application[Model, Msg]) logger() (logger.Logger, error) {
	if a.log != nil {
		return a.log, nil
	}
	level, err := logger.ParseLevel(a.settings.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	a.log = logger.New(os.Stderr, level, a.settings.JSONLogs)
	return a.log, nil
}

// Run starts the application with the zero model.
func (a *Application[Model, Msg]) Run() error {
	var model Model
	return a.RunWith(model)
}

// RunWith opens the window and blocks until the application terminates.
// It must be called from the main goroutine.
func (a *Application[Model, Msg]) RunWith(model Model) error {
	if err := a.settings.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	log, err := a.logger()
	if err != nil {
		return err
	}

	fa := fyneapp.NewWithID(a.id)
	tap := subscription.NewEventTap()
	host := newFyneHost(fa, a.title, a.settings, tap, log)
	loop := a.NewLoop(host, tap, model)

	stopSignals := loop.manager.Listen()
	defer stopSignals()

	result := make(chan error, 1)
	go func() { result <- loop.Run() }()

	log.Info("Application", "starting", map[string]interface{}{
		"title":   a.title,
		"workers": a.settings.WorkerThreads,
	})
	host.window.ShowAndRun()
	host.stop()

	// The toolkit has stopped; the loop may still be waiting for it.
	loop.Terminate()
	select {
	case err := <-result:
		return err
	case <-time.After(shutdown.DefaultTimeout):
		return errors.New("driver loop did not stop")
	}
}

// NewLoop wires a driver loop for model onto host. tap may be nil when the
// host records no input events.
func (a *Application[Model, Msg]) NewLoop(host Host, tap *subscription.EventTap, model Model) *Loop[Model, Msg] {
	log := a.log
	if log == nil {
		log = logger.NoOpLogger{}
	}
	if tap == nil {
		tap = subscription.NewEventTap()
	}
	return newLoop(a, host, tap, model, log)
}

func (a *Application[Model, Msg]) subscriptionFor(model Model) subscription.Subscription[Msg] {
	if a.subscription == nil {
		return subscription.None[Msg]()
	}
	return a.subscription(model)
}
