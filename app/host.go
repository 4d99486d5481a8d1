package app

import (
	"sync"

	"fyne.io/fyne/v2"

	"flemish/internal/logger"
	"flemish/subscription"
)

// Host is the window side of an application. The driver loop runs on its
// own goroutine and reaches the toolkit only through a Host.
type Host interface {
	// Do runs fn on the UI goroutine and returns once it has run, or once
	// the toolkit has stopped.
	Do(fn func())
	// Show makes content the window's content. Called from within Do.
	Show(content fyne.CanvasObject)
	// Redraw asks the toolkit to repaint. Called from within Do.
	Redraw()
	// OnClose replaces the default close behaviour with fn.
	OnClose(fn func())
	Quit()
}

type fyneHost struct {
	app     fyne.App
	window  fyne.Window
	content fyne.CanvasObject
	log     logger.Logger

	// stopped is closed once the toolkit has stopped running callbacks.
	stopped  chan struct{}
	stopOnce sync.Once
}

func newFyneHost(a fyne.App, title string, s Settings, tap *subscription.EventTap, log logger.Logger) *fyneHost {
	a.Settings().SetTheme(newSettingsTheme(s))

	w := a.NewWindow(title)
	w.Resize(fyne.NewSize(s.Size.Width, s.Size.Height))
	w.SetFixedSize(!s.Resizable)
	if s.CenterOnScreen {
		w.CenterOnScreen()
	}
	w.SetMaster()

	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		tap.Record(subscription.Event{Kind: subscription.KeyTyped, Key: string(ev.Name)})
	})
	w.Canvas().SetOnTypedRune(func(r rune) {
		tap.Record(subscription.Event{Kind: subscription.RuneTyped, Rune: r})
	})
	a.Lifecycle().SetOnEnteredForeground(func() {
		tap.Record(subscription.Event{Kind: subscription.FocusGained})
	})
	a.Lifecycle().SetOnExitedForeground(func() {
		tap.Record(subscription.Event{Kind: subscription.FocusLost})
	})

	log.Debug("Window", "window created", map[string]interface{}{
		"title":     title,
		"size":      s.Size,
		"resizable": s.Resizable,
		"theme":     s.Theme,
	})
	h := &fyneHost{app: a, window: w, log: log, stopped: make(chan struct{})}
	a.Lifecycle().SetOnStopped(h.stop)
	return h
}

// Do runs fn on the UI goroutine. Once the toolkit has stopped it returns
// without waiting, and fn may never run.
func (h *fyneHost) Do(fn func()) {
	runOrAbandon(fyne.Do, fn, h.stopped)
}

func (h *fyneHost) stop() {
	h.stopOnce.Do(func() { close(h.stopped) })
}

// runOrAbandon hands fn to schedule and waits until it has run or stopped
// is closed, whichever comes first.
func runOrAbandon(schedule func(func()), fn func(), stopped <-chan struct{}) {
	select {
	case <-stopped:
		return
	default:
	}
	done := make(chan struct{})
	schedule(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
	case <-stopped:
	}
}

func (h *fyneHost) Show(content fyne.CanvasObject) {
	h.content = content
	h.window.SetContent(content)
}

func (h *fyneHost) Redraw() {
	if h.content != nil {
		h.content.Refresh()
	}
}

func (h *fyneHost) OnClose(fn func()) {
	h.window.SetCloseIntercept(fn)
}

func (h *fyneHost) Quit() {
	fyne.Do(h.app.Quit)
}
