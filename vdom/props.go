package vdom

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// Trigger selects which input events fire a node's callbacks.
type Trigger uint8

const (
	// TriggerChanged fires on every edit.
	TriggerChanged Trigger = iota
	// TriggerSubmit fires only when the user submits (Enter).
	TriggerSubmit
	// TriggerAlways fires on both.
	TriggerAlways
)

// Props are the properties every node kind understands. A zero Props leaves
// the widget's defaults untouched.
type Props struct {
	Label      Option[string]
	Fixed      Option[float32]
	Importance Option[widget.Importance]
	Align      Option[fyne.TextAlign]
	TextStyle  Option[fyne.TextStyle]
	Trigger    Option[Trigger]
	Visible    Option[bool]
	Disabled   Option[bool]
	X          Option[float32]
	Y          Option[float32]
	W          Option[float32]
	H          Option[float32]
}

// Prop sets one generic property while a node is being built.
type Prop func(*Props)

func (p *Props) Apply(props ...Prop) {
	for _, prop := range props {
		prop(p)
	}
}

func WithLabel(label string) Prop {
	return func(p *Props) { p.Label = Some(label) }
}

// Fixed pins the node's size along its parent's main axis.
func Fixed(size float32) Prop {
	return func(p *Props) { p.Fixed = Some(size) }
}

func WithImportance(i widget.Importance) Prop {
	return func(p *Props) { p.Importance = Some(i) }
}

func WithAlign(a fyne.TextAlign) Prop {
	return func(p *Props) { p.Align = Some(a) }
}

func WithTextStyle(s fyne.TextStyle) Prop {
	return func(p *Props) { p.TextStyle = Some(s) }
}

func WithTrigger(t Trigger) Prop {
	return func(p *Props) { p.Trigger = Some(t) }
}

func Visible(v bool) Prop {
	return func(p *Props) { p.Visible = Some(v) }
}

func Disabled(d bool) Prop {
	return func(p *Props) { p.Disabled = Some(d) }
}

// Position places the node inside a canvas (layout-free) parent.
func Position(x, y float32) Prop {
	return func(p *Props) {
		p.X = Some(x)
		p.Y = Some(y)
	}
}

func Size(w, h float32) Prop {
	return func(p *Props) {
		p.W = Some(w)
		p.H = Some(h)
	}
}

func (p *Props) hasGeometry() bool {
	return p.X.IsSome() || p.Y.IsSome() || p.W.IsSome() || p.H.IsSome()
}

func (p *Props) geometryChanged(other *Props) bool {
	return p.X != other.X || p.Y != other.Y || p.W != other.W || p.H != other.H
}

// applyProps sets every present property on a freshly created widget.
func applyProps(obj fyne.CanvasObject, p *Props) {
	if p.hasGeometry() {
		setGeometry(obj, p)
	}
	if v, ok := p.Label.Get(); ok {
		setLabel(obj, v)
	}
	if v, ok := p.Importance.Get(); ok {
		setImportance(obj, v)
	}
	if v, ok := p.Align.Get(); ok {
		setAlign(obj, v)
	}
	if v, ok := p.TextStyle.Get(); ok {
		setTextStyle(obj, v)
	}
	if v, ok := p.Visible.Get(); ok {
		setVisible(obj, v)
	}
	if v, ok := p.Disabled.Get(); ok {
		setDisabled(obj, v)
	}
}

// updateProps calls a setter for each field that differs between old and
// next, and nothing else.
func (s *Store[M]) updateProps(id ID, obj fyne.CanvasObject, parent *fyne.Container, old, next *Props) {
	if old.geometryChanged(next) && next.hasGeometry() {
		s.Set(id, "geometry", func() { setGeometry(obj, next) })
	}
	if old.Label != next.Label {
		s.Set(id, "label", func() { setLabel(obj, next.Label.OrZero()) })
	}
	if old.Fixed != next.Fixed {
		s.Set(id, "fixed", func() { applyFixed(parent, obj, next.Fixed) })
	}
	if old.Importance != next.Importance {
		if v, ok := next.Importance.Get(); ok {
			s.Set(id, "importance", func() { setImportance(obj, v) })
		}
	}
	if old.Align != next.Align {
		if v, ok := next.Align.Get(); ok {
			s.Set(id, "align", func() { setAlign(obj, v) })
		}
	}
	if old.TextStyle != next.TextStyle {
		if v, ok := next.TextStyle.Get(); ok {
			s.Set(id, "text_style", func() { setTextStyle(obj, v) })
		}
	}
	if old.Visible != next.Visible {
		if v, ok := next.Visible.Get(); ok {
			s.Set(id, "visible", func() { setVisible(obj, v) })
		}
	}
	if old.Disabled != next.Disabled {
		if v, ok := next.Disabled.Get(); ok {
			s.Set(id, "disabled", func() { setDisabled(obj, v) })
		}
	}
}

func setGeometry(obj fyne.CanvasObject, p *Props) {
	obj.Move(fyne.NewPos(p.X.OrZero(), p.Y.OrZero()))
	if p.W.IsSome() || p.H.IsSome() {
		obj.Resize(fyne.NewSize(p.W.OrZero(), p.H.OrZero()))
	}
}

func setLabel(obj fyne.CanvasObject, text string) {
	switch w := obj.(type) {
	case *widget.Check:
		w.Text = text
		w.Refresh()
	case *widget.Entry:
		w.SetPlaceHolder(text)
	case *widget.Select:
		w.PlaceHolder = text
		w.Refresh()
	case interface{ SetText(string) }:
		w.SetText(text)
	}
}

func setImportance(obj fyne.CanvasObject, i widget.Importance) {
	switch w := obj.(type) {
	case *widget.Label:
		w.Importance = i
		w.Refresh()
	case *widget.Button:
		w.Importance = i
		w.Refresh()
	}
}

func setAlign(obj fyne.CanvasObject, a fyne.TextAlign) {
	switch w := obj.(type) {
	case *widget.Label:
		w.Alignment = a
		w.Refresh()
	case *widget.Select:
		w.Alignment = a
		w.Refresh()
	case *widget.Button:
		switch a {
		case fyne.TextAlignLeading:
			w.Alignment = widget.ButtonAlignLeading
		case fyne.TextAlignTrailing:
			w.Alignment = widget.ButtonAlignTrailing
		default:
			w.Alignment = widget.ButtonAlignCenter
		}
		w.Refresh()
	}
}

func setTextStyle(obj fyne.CanvasObject, s fyne.TextStyle) {
	switch w := obj.(type) {
	case *widget.Label:
		w.TextStyle = s
		w.Refresh()
	case *widget.Entry:
		w.TextStyle = s
		w.Refresh()
	}
}

func setVisible(obj fyne.CanvasObject, v bool) {
	if v {
		obj.Show()
	} else {
		obj.Hide()
	}
}

func setDisabled(obj fyne.CanvasObject, d bool) {
	w, ok := obj.(fyne.Disableable)
	if !ok {
		return
	}
	if d {
		w.Disable()
	} else {
		w.Enable()
	}
}

// applyFixed pins or unpins obj in its parent's flex layout. Parents with
// any other layout ignore the hint.
func applyFixed(parent *fyne.Container, obj fyne.CanvasObject, size Option[float32]) {
	if parent == nil {
		return
	}
	flex, ok := parent.Layout.(*FlexLayout)
	if !ok {
		return
	}
	if v, ok := size.Get(); ok {
		flex.SetFixed(obj, v)
	} else {
		flex.ClearFixed(obj)
	}
	parent.Refresh()
}
