package app

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flemish/internal/timing"
	"flemish/subscription"
	"flemish/task"
	"flemish/vdom"
	"flemish/view"
)

func TestMain(m *testing.M) {
	a := test.NewApp()
	code := m.Run()
	a.Quit()
	os.Exit(code)
}

const wait = 2 * time.Second

type fakeHost struct {
	mu      sync.Mutex
	content fyne.CanvasObject
	redraws int
	onClose func()
	quits   atomic.Int32
}

func (h *fakeHost) Do(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn()
}

func (h *fakeHost) Show(content fyne.CanvasObject) { h.content = content }
func (h *fakeHost) Redraw()                        { h.redraws++ }
func (h *fakeHost) OnClose(fn func())              { h.onClose = fn }
func (h *fakeHost) Quit()                          { h.quits.Add(1) }

func (h *fakeHost) mounted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.content != nil
}

func (h *fakeHost) close() {
	h.Do(func() { h.onClose() })
}

// find returns the first object of type W in the mounted tree.
func find[W fyne.CanvasObject](h *fakeHost) (W, bool) {
	var found W
	var ok bool
	h.Do(func() {
		var walk func(fyne.CanvasObject)
		walk = func(o fyne.CanvasObject) {
			if ok {
				return
			}
			if w, match := o.(W); match {
				found, ok = w, true
				return
			}
			if c, isContainer := o.(*fyne.Container); isContainer {
				for _, child := range c.Objects {
					walk(child)
				}
			}
		}
		if h.content != nil {
			walk(h.content)
		}
	})
	return found, ok
}

type kind int

const (
	inc kind = iota
	compute
	result
	quit
	closing
	tick
	stop
)

type msg struct {
	kind  kind
	value int
}

type model struct {
	count   int
	result  int
	closing bool
	ticking bool
	ticks   int
}

func update(m *model, ev msg) task.Task[msg] {
	switch ev.kind {
	case inc:
		m.count++
	case compute:
		return task.Map(task.Perform(func() int { return 2 + 2 }), func(v int) msg {
			return msg{kind: result, value: v * 10}
		})
	case result:
		m.result = ev.value
	case quit:
		return task.Exit[msg]()
	case closing:
		m.closing = true
		return task.Exit[msg]()
	case tick:
		m.ticks++
	case stop:
		m.ticking = false
	}
	return task.None[msg]()
}

func counterView(m model) vdom.Node[msg] {
	return view.Column[msg](
		view.Label[msg](fmt.Sprint(m.count)),
		view.Button[msg]("+").OnPress(msg{kind: inc}),
	)
}

func start(t *testing.T, a *Application[model, msg], m model) (*Loop[model, msg], *fakeHost, <-chan error) {
	t.Helper()
	host := &fakeHost{}
	loop := a.NewLoop(host, nil, m)
	result := make(chan error, 1)
	go func() { result <- loop.Run() }()
	require.Eventually(t, host.mounted, wait, time.Millisecond)
	t.Cleanup(loop.Terminate)
	return loop, host, result
}

func finished(t *testing.T, loop *Loop[model, msg], result <-chan error) {
	t.Helper()
	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(wait):
		t.Fatal("loop did not stop")
	}
	assert.Equal(t, StateTerminated, loop.State())
}

// current reads the model on the host's UI goroutine.
func current(h *fakeHost, loop *Loop[model, msg]) model {
	var m model
	h.Do(func() { m = loop.Model() })
	return m
}

func labelText(h *fakeHost) func() string {
	return func() string {
		l, ok := find[*widget.Label](h)
		if !ok {
			return ""
		}
		var text string
		h.Do(func() { text = l.Text })
		return text
	}
}

func TestLoopRunsCycles(t *testing.T) {
	a := New("counter", update, counterView)
	loop, host, result := start(t, a, model{})
	text := labelText(host)
	assert.Equal(t, "0", text())

	for range 3 {
		loop.Send(msg{kind: inc})
	}
	require.Eventually(t, func() bool { return text() == "3" }, wait, time.Millisecond)

	b, ok := find[*widget.Button](host)
	require.True(t, ok)
	host.Do(func() { test.Tap(b) })
	require.Eventually(t, func() bool { return text() == "4" }, wait, time.Millisecond)

	loop.Send(msg{kind: quit})
	finished(t, loop, result)
	assert.Equal(t, 4, loop.Model().count)
	assert.Equal(t, int32(1), host.quits.Load())
	assert.GreaterOrEqual(t, host.redraws, 4)
	assert.NotEmpty(t, loop.Timing().Samples(timing.PhasePatch))
}

func TestLoopDeliversTaskResults(t *testing.T) {
	a := New("tasks", update, counterView).WithInit(task.Perform(func() msg { return msg{kind: inc} }))
	loop, host, result := start(t, a, model{})

	loop.Send(msg{kind: compute})
	require.Eventually(t, func() bool {
		m := current(host, loop)
		return m.result == 40 && m.count == 1
	}, wait, time.Millisecond)

	loop.Send(msg{kind: quit})
	finished(t, loop, result)
	assert.Equal(t, 1, loop.Model().count)
	assert.Equal(t, int64(2), loop.Stats().Tasks.Delivered)
}

func TestLoopCloseWithoutHandlerTerminates(t *testing.T) {
	loop, host, result := start(t, New("close", update, counterView), model{})

	host.close()
	finished(t, loop, result)
	assert.False(t, loop.Model().closing)
}

func TestLoopCloseWithHandlerAsksUpdate(t *testing.T) {
	a := New("close", update, counterView).OnClose(msg{kind: closing})
	loop, host, result := start(t, a, model{})

	host.close()
	finished(t, loop, result)
	assert.True(t, loop.Model().closing)
}

func TestLoopTerminateDropsQueuedMessages(t *testing.T) {
	loop, _, result := start(t, New("drop", update, counterView), model{})

	loop.Terminate()
	for range 10 {
		loop.Send(msg{kind: inc})
	}
	finished(t, loop, result)
	assert.Zero(t, loop.Model().count)
	assert.Zero(t, loop.Stats().Queued)
}

func TestLoopFollowsSubscriptions(t *testing.T) {
	ticker := func(m model) subscription.Subscription[msg] {
		if !m.ticking {
			return subscription.None[msg]()
		}
		return subscription.Map(subscription.Every(2*time.Millisecond), func(time.Time) msg {
			return msg{kind: tick}
		})
	}
	a := New("ticks", update, counterView).WithSubscription(ticker)
	loop, _, result := start(t, a, model{ticking: true})

	require.Eventually(t, func() bool { return loop.Stats().Subscriptions.Spawned == 1 }, wait, time.Millisecond)
	loop.Send(msg{kind: stop})
	require.Eventually(t, func() bool { return loop.Stats().Subscriptions.Cancelled == 1 }, wait, time.Millisecond)

	loop.Send(msg{kind: quit})
	finished(t, loop, result)
	assert.Equal(t, 1, loop.Stats().Subscriptions.Spawned)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "terminated", StateTerminated.String())
	assert.Equal(t, "unknown", State(42).String())
}
