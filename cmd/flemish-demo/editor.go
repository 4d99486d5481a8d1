package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
	"unicode/utf8"

	"fyne.io/fyne/v2/widget"
	"github.com/spf13/cobra"

	"flemish/app"
	"flemish/cancel"
	"flemish/task"
	"flemish/vdom"
	"flemish/view"
)

type editorOp uint8

const (
	editorInput editorOp = iota
	editorCommand
	editorMeasured
	editorSave
	editorSaved
	editorLoaded
	editorAbort
	editorQuit
)

type editorMsg struct {
	op      editorOp
	text    string
	command view.EditorOp
	n       int
	err     error
}

type editorModel struct {
	Path   string
	Text   string
	Chars  int
	Status string
	Dirty  bool
	// saving is set while a save is in flight and cancels it when set.
	saving *cancel.Flag
	delay  time.Duration
}

func updateEditor(m *editorModel, msg editorMsg) task.Task[editorMsg] {
	switch msg.op {
	case editorInput:
		m.Text = msg.text
		m.Chars = utf8.RuneCountInString(msg.text)
		m.Dirty = true
	case editorCommand:
		// The editor widget runs the command itself. Anything but a measure
		// may change the buffer, so measure again afterwards.
		if msg.command != view.EditorMeasure {
			return measure()
		}
	case editorMeasured:
		m.Chars = msg.n
	case editorSave:
		if m.saving != nil {
			return task.None[editorMsg]()
		}
		m.saving = cancel.New()
		m.Status = "saving…"
		return saveFile(m.Path, m.Text, m.delay).Cancelable(m.saving)
	case editorAbort:
		if m.saving != nil {
			m.saving.Set()
			m.saving = nil
			m.Status = "save cancelled"
		}
	case editorSaved:
		m.saving = nil
		if msg.err != nil {
			m.Status = msg.err.Error()
			break
		}
		m.Dirty = false
		m.Status = fmt.Sprintf("saved %s", m.Path)
	case editorLoaded:
		if msg.err != nil {
			m.Status = msg.err.Error()
			break
		}
		m.Text = msg.text
		m.Status = fmt.Sprintf("opened %s", m.Path)
		return measure()
	case editorQuit:
		return task.Exit[editorMsg]()
	}
	return task.None[editorMsg]()
}

func viewEditor(m editorModel) vdom.Node[editorMsg] {
	command := func(label string, op view.EditorOp) *view.ButtonNode[editorMsg] {
		return view.Button[editorMsg](label).OnPress(editorMsg{op: editorCommand, command: op})
	}
	title := m.Path
	if m.Dirty {
		title += " *"
	}
	return view.Column[editorMsg](
		view.Label[editorMsg](title, vdom.Fixed(28), vdom.WithImportance(widget.HighImportance)),
		view.Row[editorMsg](
			command("Copy", view.EditorCopy),
			command("Cut", view.EditorCut),
			command("Paste", view.EditorPaste),
			command("Select all", view.EditorSelectAll),
			command("Clear", view.EditorClear),
		).With(vdom.Fixed(40)),
		view.TextEditor[editorMsg](m.Text).
			OnInput(func(s string) editorMsg { return editorMsg{op: editorInput, text: s} }).
			Commands(editorCommands).
			OnMeasure(func(n int) editorMsg { return editorMsg{op: editorMeasured, n: n} }),
		view.Row[editorMsg](
			view.Label[editorMsg](fmt.Sprintf("%d characters", m.Chars)),
			view.Label[editorMsg](m.Status, vdom.WithImportance(widget.LowImportance)),
			view.Button[editorMsg]("Save", vdom.Disabled(m.saving != nil || m.Path == "")).
				OnPress(editorMsg{op: editorSave}),
			view.Button[editorMsg]("Cancel", vdom.Visible(m.saving != nil)).
				OnPress(editorMsg{op: editorAbort}),
		).With(vdom.Fixed(40)),
	).Margins(8, 8)
}

func measure() task.Task[editorMsg] {
	return task.Perform(func() editorMsg { return editorMsg{op: editorCommand, command: view.EditorMeasure} })
}

func editorCommands(msg editorMsg) (view.EditorCommand, bool) {
	if msg.op != editorCommand {
		return view.EditorCommand{}, false
	}
	return view.EditorCommand{Op: msg.command}, true
}

// saveFile writes text to path after delay. delay exists so a slow disk can
// be simulated and the save cancelled.
func saveFile(path, text string, delay time.Duration) task.Task[editorMsg] {
	return task.PerformAsync(func(ctx context.Context) editorMsg {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return editorMsg{op: editorSaved, err: ctx.Err()}
		}
		err := os.WriteFile(path, []byte(text), 0o644)
		return editorMsg{op: editorSaved, err: err}
	})
}

func loadFile(path string) task.Task[editorMsg] {
	return task.PerformAsync(func(ctx context.Context) editorMsg {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return editorMsg{op: editorLoaded}
		}
		return editorMsg{op: editorLoaded, text: string(data), err: err}
	})
}

func newEditorCmd(opts *options) *cobra.Command {
	var delay time.Duration
	cmd := &cobra.Command{
		Use:   "editor [file]",
		Short: "A text editor with clipboard commands and cancellable saves",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings()
			if err != nil {
				return err
			}
			model := editorModel{delay: delay}
			application := app.New("Editor", updateEditor, viewEditor).
				WithSettings(s).
				OnClose(editorMsg{op: editorQuit})
			if len(args) == 1 {
				model.Path = args[0]
				application.WithInit(loadFile(model.Path))
			}
			return application.RunWith(model)
		},
	}
	cmd.Flags().DurationVar(&delay, "save-delay", 0, "wait this long before writing")
	return cmd
}
