package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"flemish/app"
	"flemish/subscription"
	"flemish/task"
	"flemish/vdom"
	"flemish/view"
)

type timerOp uint8

const (
	timerToggle timerOp = iota
	timerReset
	timerTick
	timerPeriod
)

type timerMsg struct {
	op  timerOp
	at  time.Time
	val float64
}

type stopwatch struct {
	Running bool
	Elapsed time.Duration
	Last    time.Time
	Period  time.Duration
	Lap     time.Duration
}

func updateTimer(m *stopwatch, msg timerMsg) task.Task[timerMsg] {
	switch msg.op {
	case timerToggle:
		m.Running = !m.Running
		m.Last = time.Time{}
	case timerReset:
		m.Elapsed = 0
		m.Last = time.Time{}
	case timerTick:
		if !m.Running {
			break
		}
		if !m.Last.IsZero() {
			m.Elapsed += msg.at.Sub(m.Last)
		}
		m.Last = msg.at
	case timerPeriod:
		m.Period = time.Duration(msg.val) * time.Millisecond
	}
	return task.None[timerMsg]()
}

func viewTimer(m stopwatch) vdom.Node[timerMsg] {
	toggle := "Start"
	if m.Running {
		toggle = "Stop"
	}
	lap := m.Lap
	if lap <= 0 {
		lap = time.Minute
	}
	return view.Column[timerMsg](
		view.Label[timerMsg](formatElapsed(m.Elapsed), vdom.Fixed(32)),
		view.Progress[timerMsg](float64(m.Elapsed%lap)/float64(lap), vdom.Fixed(24)),
		view.Row[timerMsg](
			view.Button[timerMsg](toggle).OnPress(timerMsg{op: timerToggle}),
			view.Button[timerMsg]("Reset", vdom.Disabled(m.Elapsed == 0)).OnPress(timerMsg{op: timerReset}),
		).With(vdom.Fixed(40)),
		view.Label[timerMsg](fmt.Sprintf("Tick every %s", m.Period), vdom.Fixed(24)),
		view.Slider[timerMsg](10, 1000, float64(m.Period.Milliseconds())).
			Step(10).
			OnChange(func(v float64) timerMsg { return timerMsg{op: timerPeriod, val: v} }).
			With(vdom.Fixed(32)),
	).Margins(8, 8)
}

// timerTicks only runs while the stopwatch does. Changing the period
// changes the recipe hash, so the old ticker stops and a new one starts.
func timerTicks(m stopwatch) subscription.Subscription[timerMsg] {
	if !m.Running || m.Period <= 0 {
		return subscription.None[timerMsg]()
	}
	return subscription.Map(subscription.Every(m.Period), func(t time.Time) timerMsg {
		return timerMsg{op: timerTick, at: t}
	})
}

func formatElapsed(d time.Duration) string {
	d = d.Round(10 * time.Millisecond)
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	d -= seconds * time.Second
	return fmt.Sprintf("%02d:%02d.%02d", minutes, seconds, d/(10*time.Millisecond))
}

func newTimerCmd(opts *options) *cobra.Command {
	var period, lap time.Duration
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "A stopwatch driven by a ticking subscription",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings()
			if err != nil {
				return err
			}
			return app.New("Stopwatch", updateTimer, viewTimer).
				WithSettings(s).
				WithSubscription(timerTicks).
				RunWith(stopwatch{Period: period, Lap: lap})
		},
	}
	cmd.Flags().DurationVar(&period, "period", 50*time.Millisecond, "tick period")
	cmd.Flags().DurationVar(&lap, "lap", time.Minute, "length of one turn of the progress bar")
	return cmd
}
