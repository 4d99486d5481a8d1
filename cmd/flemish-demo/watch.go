package main

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2/widget"
	"github.com/spf13/cobra"

	"flemish/app"
	"flemish/subscription"
	"flemish/task"
	"flemish/vdom"
	"flemish/view"
)

// watchHistory is how many changes the watch window keeps.
const watchHistory = 100

type watchMsg struct {
	change *subscription.Change
	at     time.Time
	pause  *bool
	clear  bool
}

type watchEntry struct {
	At     time.Time
	Change subscription.Change
}

type watcher struct {
	Path    string
	Paused  bool
	Entries []watchEntry
}

func updateWatch(m *watcher, msg watchMsg) task.Task[watchMsg] {
	switch {
	case msg.change != nil:
		m.Entries = append(m.Entries, watchEntry{At: msg.at, Change: *msg.change})
		if over := len(m.Entries) - watchHistory; over > 0 {
			m.Entries = m.Entries[over:]
		}
	case msg.pause != nil:
		m.Paused = *msg.pause
	case msg.clear:
		m.Entries = nil
	}
	return task.None[watchMsg]()
}

func viewWatch(m watcher) vdom.Node[watchMsg] {
	lines := make([]vdom.Node[watchMsg], 0, len(m.Entries))
	for i := len(m.Entries) - 1; i >= 0; i-- {
		e := m.Entries[i]
		props := []vdom.Prop{}
		if e.Change.Err != nil {
			props = append(props, vdom.WithImportance(widget.DangerImportance))
		}
		lines = append(lines, view.Label[watchMsg](describeChange(e), props...))
	}
	return view.Column[watchMsg](
		view.Label[watchMsg](fmt.Sprintf("Watching %s", m.Path), vdom.Fixed(28)),
		view.Row[watchMsg](
			view.Check[watchMsg]("Paused", m.Paused).OnToggle(func(b bool) watchMsg { return watchMsg{pause: &b} }),
			view.Button[watchMsg]("Clear", vdom.Disabled(len(m.Entries) == 0)).OnPress(watchMsg{clear: true}),
		).With(vdom.Fixed(40)),
		view.Scroll[watchMsg](lines...),
	).Margins(8, 8)
}

func describeChange(e watchEntry) string {
	if e.Change.Err != nil {
		return fmt.Sprintf("%s  error: %v", e.At.Format(time.TimeOnly), e.Change.Err)
	}
	return fmt.Sprintf("%s  %-6s %s", e.At.Format(time.TimeOnly), e.Change.Op, e.Change.Path)
}

// watchChanges drops the watcher while paused and starts a fresh one when
// resumed.
func watchChanges(m watcher) subscription.Subscription[watchMsg] {
	if m.Paused {
		return subscription.None[watchMsg]()
	}
	return subscription.Map(subscription.Watch(m.Path), func(c subscription.Change) watchMsg {
		return watchMsg{change: &c, at: time.Now()}
	})
}

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <path>",
		Short: "List file system changes under a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings()
			if err != nil {
				return err
			}
			return app.New("Watch", updateWatch, viewWatch).
				WithSettings(s).
				WithSubscription(watchChanges).
				RunWith(watcher{Path: args[0]})
		},
	}
}
