package main

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/cobra"

	"flemish/app"
	"flemish/subscription"
	"flemish/task"
	"flemish/vdom"
	"flemish/view"
)

type counterMsg int

const (
	counterInc counterMsg = iota
	counterDec
	counterReset
	counterIgnore
)

type counter struct {
	Count int
}

func updateCounter(m *counter, msg counterMsg) task.Task[counterMsg] {
	switch msg {
	case counterInc:
		m.Count++
	case counterDec:
		m.Count--
	case counterReset:
		m.Count = 0
	}
	return task.None[counterMsg]()
}

func viewCounter(m counter) vdom.Node[counterMsg] {
	importance := widget.MediumImportance
	if m.Count < 0 {
		importance = widget.DangerImportance
	}
	return view.Column[counterMsg](
		view.Label[counterMsg](strconv.Itoa(m.Count),
			vdom.WithImportance(importance),
			vdom.WithAlign(fyne.TextAlignCenter),
			vdom.WithTextStyle(fyne.TextStyle{Bold: true}),
		),
		view.Row[counterMsg](
			view.Button[counterMsg]("-").OnPress(counterDec),
			view.Button[counterMsg]("+").OnPress(counterInc),
		).With(vdom.Fixed(40)),
		view.Button[counterMsg]("Reset", vdom.Disabled(m.Count == 0)).OnPress(counterReset).With(vdom.Fixed(40)),
	).Margins(8, 8)
}

// counterKeys maps typed + and - to the buttons.
func counterKeys(counter) subscription.Subscription[counterMsg] {
	return subscription.Map(subscription.Events(), func(ev subscription.Event) counterMsg {
		switch {
		case ev.Kind == subscription.RuneTyped && ev.Rune == '+':
			return counterInc
		case ev.Kind == subscription.RuneTyped && ev.Rune == '-':
			return counterDec
		default:
			return counterIgnore
		}
	})
}

func newCounterCmd(opts *options) *cobra.Command {
	var start int
	cmd := &cobra.Command{
		Use:   "counter",
		Short: "A counter driven by buttons and the keyboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings()
			if err != nil {
				return err
			}
			return app.New("Counter", updateCounter, viewCounter).
				WithSettings(s).
				WithSubscription(counterKeys).
				RunWith(counter{Count: start})
		},
	}
	cmd.Flags().IntVar(&start, "start", 0, "initial count")
	return cmd
}
