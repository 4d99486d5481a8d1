package view

import (
	"slices"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"flemish/vdom"
)

// Message callbacks are not comparable, so every patch rebinds them on the
// live widget. Rebinding is a plain field store and is not counted as a
// property update.

// LabelNode shows read-only text.
type LabelNode[M any] struct {
	vdom.Leaf[M]
	wrap vdom.Option[fyne.TextWrap]
}

func Label[M any](text string, props ...vdom.Prop) *LabelNode[M] {
	return &LabelNode[M]{Leaf: vdom.NewLeaf[M](vdom.KindLabel, append([]vdom.Prop{vdom.WithLabel(text)}, props...)...)}
}

func (n *LabelNode[M]) With(props ...vdom.Prop) *LabelNode[M] {
	n.Props().Apply(props...)
	return n
}

func (n *LabelNode[M]) Wrap(w fyne.TextWrap) *LabelNode[M] {
	n.wrap = vdom.Some(w)
	return n
}

func (n *LabelNode[M]) Mount(s *vdom.Store[M]) fyne.CanvasObject {
	w := widget.NewLabel("")
	if v, ok := n.wrap.Get(); ok {
		w.Wrapping = v
	}
	return s.Register(n, w)
}

func (n *LabelNode[M]) Patch(old vdom.Node[M], s *vdom.Store[M]) {
	w, ok := vdom.Reconcile[*widget.Label](s, n, old)
	prev, same := old.(*LabelNode[M])
	if !ok || !same {
		return
	}
	if prev.wrap != n.wrap {
		s.Set(n.ID(), "wrap", func() {
			w.Wrapping = n.wrap.OrZero()
			w.Refresh()
		})
	}
}

// ButtonNode sends a message when tapped.
type ButtonNode[M any] struct {
	vdom.Leaf[M]
	onPress func() M
}

func Button[M any](text string, props ...vdom.Prop) *ButtonNode[M] {
	return &ButtonNode[M]{Leaf: vdom.NewLeaf[M](vdom.KindButton, append([]vdom.Prop{vdom.WithLabel(text)}, props...)...)}
}

func (n *ButtonNode[M]) With(props ...vdom.Prop) *ButtonNode[M] {
	n.Props().Apply(props...)
	return n
}

// OnPress sends msg on every tap.
func (n *ButtonNode[M]) OnPress(msg M) *ButtonNode[M] {
	n.onPress = func() M { return msg }
	return n
}

// OnPressFunc sends whatever fn returns on every tap.
func (n *ButtonNode[M]) OnPressFunc(fn func() M) *ButtonNode[M] {
	n.onPress = fn
	return n
}

func (n *ButtonNode[M]) bind(s *vdom.Store[M], w *widget.Button) {
	if n.onPress == nil {
		w.OnTapped = nil
		return
	}
	press := n.onPress
	w.OnTapped = func() { s.Send(press()) }
}

func (n *ButtonNode[M]) Mount(s *vdom.Store[M]) fyne.CanvasObject {
	w := widget.NewButton("", nil)
	n.bind(s, w)
	return s.Register(n, w)
}

func (n *ButtonNode[M]) Patch(old vdom.Node[M], s *vdom.Store[M]) {
	if w, ok := vdom.Reconcile[*widget.Button](s, n, old); ok {
		n.bind(s, w)
	}
}

// CheckNode is a labelled checkbox.
type CheckNode[M any] struct {
	vdom.Leaf[M]
	checked  bool
	onToggle func(bool) M
}

func Check[M any](text string, checked bool, props ...vdom.Prop) *CheckNode[M] {
	return &CheckNode[M]{
		Leaf:    vdom.NewLeaf[M](vdom.KindCheck, append([]vdom.Prop{vdom.WithLabel(text)}, props...)...),
		checked: checked,
	}
}

func (n *CheckNode[M]) With(props ...vdom.Prop) *CheckNode[M] {
	n.Props().Apply(props...)
	return n
}

func (n *CheckNode[M]) OnToggle(fn func(bool) M) *CheckNode[M] {
	n.onToggle = fn
	return n
}

func (n *CheckNode[M]) bind(s *vdom.Store[M], w *widget.Check) {
	if n.onToggle == nil {
		w.OnChanged = nil
		return
	}
	toggle := n.onToggle
	w.OnChanged = func(v bool) { s.Send(toggle(v)) }
}

func (n *CheckNode[M]) Mount(s *vdom.Store[M]) fyne.CanvasObject {
	w := widget.NewCheck("", nil)
	w.SetChecked(n.checked)
	n.bind(s, w)
	return s.Register(n, w)
}

func (n *CheckNode[M]) Patch(old vdom.Node[M], s *vdom.Store[M]) {
	w, ok := vdom.Reconcile[*widget.Check](s, n, old)
	prev, same := old.(*CheckNode[M])
	if !ok || !same {
		return
	}
	if prev.checked != n.checked && w.Checked != n.checked {
		s.Set(n.ID(), "checked", func() {
			w.OnChanged = nil
			w.SetChecked(n.checked)
		})
	}
	n.bind(s, w)
}

// SliderNode picks a number from a range.
type SliderNode[M any] struct {
	vdom.Leaf[M]
	min, max, value float64
	step            vdom.Option[float64]
	onChange        func(float64) M
}

func Slider[M any](lo, hi, value float64, props ...vdom.Prop) *SliderNode[M] {
	return &SliderNode[M]{Leaf: vdom.NewLeaf[M](vdom.KindSlider, props...), min: lo, max: hi, value: value}
}

func (n *SliderNode[M]) With(props ...vdom.Prop) *SliderNode[M] {
	n.Props().Apply(props...)
	return n
}

func (n *SliderNode[M]) Step(step float64) *SliderNode[M] {
	n.step = vdom.Some(step)
	return n
}

func (n *SliderNode[M]) OnChange(fn func(float64) M) *SliderNode[M] {
	n.onChange = fn
	return n
}

// defaultStep is the step widget.NewSlider starts with.
const defaultStep = 1

func (n *SliderNode[M]) stepOrDefault() float64 {
	if v, ok := n.step.Get(); ok {
		return v
	}
	return defaultStep
}

func (n *SliderNode[M]) bind(s *vdom.Store[M], w *widget.Slider) {
	if n.onChange == nil {
		w.OnChanged = nil
		return
	}
	change := n.onChange
	w.OnChanged = func(v float64) { s.Send(change(v)) }
}

func (n *SliderNode[M]) Mount(s *vdom.Store[M]) fyne.CanvasObject {
	w := widget.NewSlider(n.min, n.max)
	w.Step = n.stepOrDefault()
	w.SetValue(n.value)
	n.bind(s, w)
	return s.Register(n, w)
}

func (n *SliderNode[M]) Patch(old vdom.Node[M], s *vdom.Store[M]) {
	w, ok := vdom.Reconcile[*widget.Slider](s, n, old)
	prev, same := old.(*SliderNode[M])
	if !ok || !same {
		return
	}
	if prev.min != n.min || prev.max != n.max || prev.step != n.step {
		s.Set(n.ID(), "range", func() {
			w.Min, w.Max = n.min, n.max
			w.Step = n.stepOrDefault()
			w.Refresh()
		})
	}
	if prev.value != n.value && w.Value != n.value {
		s.Set(n.ID(), "value", func() {
			w.OnChanged = nil
			w.SetValue(n.value)
		})
	}
	n.bind(s, w)
}

// ProgressNode shows how far along some work is.
type ProgressNode[M any] struct {
	vdom.Leaf[M]
	min, max, value float64
}

// Progress shows value on a 0 to 1 scale.
func Progress[M any](value float64, props ...vdom.Prop) *ProgressNode[M] {
	return &ProgressNode[M]{Leaf: vdom.NewLeaf[M](vdom.KindProgress, props...), max: 1, value: value}
}

func (n *ProgressNode[M]) With(props ...vdom.Prop) *ProgressNode[M] {
	n.Props().Apply(props...)
	return n
}

func (n *ProgressNode[M]) Range(lo, hi float64) *ProgressNode[M] {
	n.min, n.max = lo, hi
	return n
}

func (n *ProgressNode[M]) Mount(s *vdom.Store[M]) fyne.CanvasObject {
	w := widget.NewProgressBar()
	w.Min, w.Max = n.min, n.max
	w.SetValue(n.value)
	return s.Register(n, w)
}

func (n *ProgressNode[M]) Patch(old vdom.Node[M], s *vdom.Store[M]) {
	w, ok := vdom.Reconcile[*widget.ProgressBar](s, n, old)
	prev, same := old.(*ProgressNode[M])
	if !ok || !same {
		return
	}
	if prev.min != n.min || prev.max != n.max {
		s.Set(n.ID(), "range", func() {
			w.Min, w.Max = n.min, n.max
			w.Refresh()
		})
	}
	if prev.value != n.value {
		s.Set(n.ID(), "value", func() { w.SetValue(n.value) })
	}
}

// SelectNode is a drop-down choice between options.
type SelectNode[M any] struct {
	vdom.Leaf[M]
	options  []string
	selected string
	onSelect func(string) M
}

func Select[M any](options []string, selected string, props ...vdom.Prop) *SelectNode[M] {
	return &SelectNode[M]{Leaf: vdom.NewLeaf[M](vdom.KindSelect, props...), options: options, selected: selected}
}

func (n *SelectNode[M]) With(props ...vdom.Prop) *SelectNode[M] {
	n.Props().Apply(props...)
	return n
}

func (n *SelectNode[M]) OnSelect(fn func(string) M) *SelectNode[M] {
	n.onSelect = fn
	return n
}

func (n *SelectNode[M]) bind(s *vdom.Store[M], w *widget.Select) {
	if n.onSelect == nil {
		w.OnChanged = nil
		return
	}
	pick := n.onSelect
	w.OnChanged = func(v string) { s.Send(pick(v)) }
}

func (n *SelectNode[M]) Mount(s *vdom.Store[M]) fyne.CanvasObject {
	w := widget.NewSelect(slices.Clone(n.options), nil)
	if n.selected != "" {
		w.SetSelected(n.selected)
	}
	n.bind(s, w)
	return s.Register(n, w)
}

func (n *SelectNode[M]) Patch(old vdom.Node[M], s *vdom.Store[M]) {
	w, ok := vdom.Reconcile[*widget.Select](s, n, old)
	prev, same := old.(*SelectNode[M])
	if !ok || !same {
		return
	}
	if !slices.Equal(prev.options, n.options) {
		s.Set(n.ID(), "options", func() { w.SetOptions(slices.Clone(n.options)) })
	}
	if prev.selected != n.selected && w.Selected != n.selected {
		s.Set(n.ID(), "selected", func() {
			w.OnChanged = nil
			if n.selected == "" {
				w.ClearSelected()
			} else {
				w.SetSelected(n.selected)
			}
		})
	}
	n.bind(s, w)
}
