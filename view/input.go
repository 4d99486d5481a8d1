package view

import (
	"unicode/utf8"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"flemish/vdom"
)

// EntryNode is a single line text input. Its value is controlled: the widget
// is only written to when the value given by the view differs from what the
// widget shows.
type EntryNode[M any] struct {
	vdom.Leaf[M]
	value    string
	onInput  func(string) M
	onSubmit func(string) M
}

// Entry is a text input. vdom.WithLabel sets its placeholder and
// vdom.WithTrigger picks when OnInput fires.
func Entry[M any](value string, props ...vdom.Prop) *EntryNode[M] {
	return &EntryNode[M]{Leaf: vdom.NewLeaf[M](vdom.KindEntry, props...), value: value}
}

// Password is an Entry that hides what is typed.
func Password[M any](value string, props ...vdom.Prop) *EntryNode[M] {
	return &EntryNode[M]{Leaf: vdom.NewLeaf[M](vdom.KindPassword, props...), value: value}
}

func (n *EntryNode[M]) With(props ...vdom.Prop) *EntryNode[M] {
	n.Props().Apply(props...)
	return n
}

func (n *EntryNode[M]) OnInput(fn func(string) M) *EntryNode[M] {
	n.onInput = fn
	return n
}

// OnSubmit fires when Enter is pressed, whatever the trigger.
func (n *EntryNode[M]) OnSubmit(fn func(string) M) *EntryNode[M] {
	n.onSubmit = fn
	return n
}

func bindEntry[M any](s *vdom.Store[M], w *widget.Entry, trigger vdom.Trigger, input, submit func(string) M) {
	w.OnChanged = nil
	w.OnSubmitted = nil
	if input != nil && trigger != vdom.TriggerSubmit {
		w.OnChanged = func(v string) { s.Send(input(v)) }
	}
	submitInput := input != nil && trigger != vdom.TriggerChanged
	if submitInput || submit != nil {
		w.OnSubmitted = func(v string) {
			if submitInput {
				s.Send(input(v))
			}
			if submit != nil {
				s.Send(submit(v))
			}
		}
	}
}

func (n *EntryNode[M]) Mount(s *vdom.Store[M]) fyne.CanvasObject {
	var w *widget.Entry
	if n.Kind() == vdom.KindPassword {
		w = widget.NewPasswordEntry()
	} else {
		w = widget.NewEntry()
	}
	w.SetText(n.value)
	bindEntry(s, w, n.Props().Trigger.OrZero(), n.onInput, n.onSubmit)
	return s.Register(n, w)
}

func (n *EntryNode[M]) Patch(old vdom.Node[M], s *vdom.Store[M]) {
	w, ok := vdom.Reconcile[*widget.Entry](s, n, old)
	prev, same := old.(*EntryNode[M])
	if !ok || !same {
		return
	}
	if prev.value != n.value && w.Text != n.value {
		s.Set(n.ID(), "value", func() {
			w.OnChanged = nil
			w.SetText(n.value)
		})
	}
	bindEntry(s, w, n.Props().Trigger.OrZero(), n.onInput, n.onSubmit)
}

// EditorOp is an operation a TextEditor performs on request.
type EditorOp uint8

const (
	EditorCopy EditorOp = iota + 1
	EditorCut
	EditorPaste
	EditorSelectAll
	EditorAppend
	EditorClear
	// EditorMeasure replies through OnMeasure with the buffer length in runes.
	EditorMeasure
)

// EditorCommand is what an application message asks an editor to do. Text is
// used by EditorAppend.
type EditorCommand struct {
	Op   EditorOp
	Text string
}

// TextEditorNode is a multi-line text area. Besides typing, it can be driven
// by application messages: every dispatched message is offered to the
// function given to Commands.
type TextEditorNode[M any] struct {
	vdom.Leaf[M]
	value     string
	wrap      fyne.TextWrap
	onInput   func(string) M
	commands  func(M) (EditorCommand, bool)
	onMeasure func(int) M
}

func TextEditor[M any](value string, props ...vdom.Prop) *TextEditorNode[M] {
	return &TextEditorNode[M]{Leaf: vdom.NewLeaf[M](vdom.KindTextEditor, props...), value: value, wrap: fyne.TextWrapWord}
}

func (n *TextEditorNode[M]) With(props ...vdom.Prop) *TextEditorNode[M] {
	n.Props().Apply(props...)
	return n
}

func (n *TextEditorNode[M]) Wrap(w fyne.TextWrap) *TextEditorNode[M] {
	n.wrap = w
	return n
}

func (n *TextEditorNode[M]) OnInput(fn func(string) M) *TextEditorNode[M] {
	n.onInput = fn
	return n
}

// Commands installs the function that picks editor commands out of
// dispatched messages.
func (n *TextEditorNode[M]) Commands(fn func(M) (EditorCommand, bool)) *TextEditorNode[M] {
	n.commands = fn
	return n
}

func (n *TextEditorNode[M]) OnMeasure(fn func(int) M) *TextEditorNode[M] {
	n.onMeasure = fn
	return n
}

func (n *TextEditorNode[M]) Mount(s *vdom.Store[M]) fyne.CanvasObject {
	w := widget.NewMultiLineEntry()
	w.Wrapping = n.wrap
	w.SetText(n.value)
	bindEntry(s, w, n.Props().Trigger.OrZero(), n.onInput, nil)
	s.Register(n, w)
	if fn := n.observer(s, w); fn != nil {
		s.SubscribeOwned(n.ID(), fn)
	}
	return w
}

func (n *TextEditorNode[M]) Patch(old vdom.Node[M], s *vdom.Store[M]) {
	w, ok := vdom.Reconcile[*widget.Entry](s, n, old)
	prev, same := old.(*TextEditorNode[M])
	if !ok || !same {
		return
	}
	if prev.wrap != n.wrap {
		s.Set(n.ID(), "wrap", func() {
			w.Wrapping = n.wrap
			w.Refresh()
		})
	}
	if prev.value != n.value && w.Text != n.value {
		s.Set(n.ID(), "value", func() {
			w.OnChanged = nil
			w.SetText(n.value)
		})
	}
	bindEntry(s, w, n.Props().Trigger.OrZero(), n.onInput, nil)
	if fn := n.observer(s, w); fn != nil {
		s.Resubscribe(n.ID(), fn)
	} else {
		s.UnsubscribeOwner(n.ID())
	}
}

func (n *TextEditorNode[M]) observer(s *vdom.Store[M], w *widget.Entry) func(M) {
	if n.commands == nil {
		return nil
	}
	commands, measure := n.commands, n.onMeasure
	return func(msg M) {
		cmd, ok := commands(msg)
		if !ok {
			return
		}
		switch cmd.Op {
		case EditorCopy:
			if cb := clipboard(); cb != nil {
				w.TypedShortcut(&fyne.ShortcutCopy{Clipboard: cb})
			}
		case EditorCut:
			if cb := clipboard(); cb != nil {
				w.TypedShortcut(&fyne.ShortcutCut{Clipboard: cb})
			}
		case EditorPaste:
			if cb := clipboard(); cb != nil {
				w.TypedShortcut(&fyne.ShortcutPaste{Clipboard: cb})
			}
		case EditorSelectAll:
			w.TypedShortcut(&fyne.ShortcutSelectAll{})
		case EditorAppend:
			w.Append(cmd.Text)
		case EditorClear:
			w.SetText("")
		case EditorMeasure:
			if measure != nil {
				s.Send(measure(utf8.RuneCountInString(w.Text)))
			}
		}
	}
}

func clipboard() fyne.Clipboard {
	a := fyne.CurrentApp()
	if a == nil {
		return nil
	}
	windows := a.Driver().AllWindows()
	if len(windows) == 0 {
		return nil
	}
	return windows[0].Clipboard()
}
