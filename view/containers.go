// Package view provides the node kinds applications build their trees from,
// each backed by a fyne widget or container.
package view

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"

	"flemish/vdom"
)

// BoxNode is a column or a row. Children share the main axis equally unless
// they carry vdom.Fixed.
type BoxNode[M any] struct {
	vdom.Group[M]
	padding vdom.Option[float32]
	margins vdom.Option[fyne.Size]
}

func Column[M any](children ...vdom.Node[M]) *BoxNode[M] {
	return &BoxNode[M]{Group: vdom.NewGroup(vdom.KindColumn, children)}
}

func Row[M any](children ...vdom.Node[M]) *BoxNode[M] {
	return &BoxNode[M]{Group: vdom.NewGroup(vdom.KindRow, children)}
}

func (b *BoxNode[M]) With(props ...vdom.Prop) *BoxNode[M] {
	b.Props().Apply(props...)
	return b
}

// Padding sets the gap between children. The theme padding is used otherwise.
func (b *BoxNode[M]) Padding(p float32) *BoxNode[M] {
	b.padding = vdom.Some(p)
	return b
}

// Margins sets the empty border around the children.
func (b *BoxNode[M]) Margins(horizontal, vertical float32) *BoxNode[M] {
	b.margins = vdom.Some(fyne.NewSize(horizontal, vertical))
	return b
}

func (b *BoxNode[M]) gap() float32 {
	if p, ok := b.padding.Get(); ok {
		return p
	}
	return theme.Padding()
}

func (b *BoxNode[M]) layout() *vdom.FlexLayout {
	if b.Kind() == vdom.KindRow {
		return vdom.NewRowLayout(b.gap())
	}
	return vdom.NewColumnLayout(b.gap())
}

func (b *BoxNode[M]) Mount(s *vdom.Store[M]) fyne.CanvasObject {
	l := b.layout()
	if m, ok := b.margins.Get(); ok {
		l.SetMargins(m.Width, m.Height)
	}
	c := container.New(l)
	s.Register(b, c)
	vdom.MountChildren(s, c, b.Children())
	return c
}

func (b *BoxNode[M]) Patch(old vdom.Node[M], s *vdom.Store[M]) {
	vdom.PatchGroup(s, b, old, func(c *fyne.Container) *fyne.Container {
		prev, ok := old.(*BoxNode[M])
		l, isFlex := c.Layout.(*vdom.FlexLayout)
		if !ok || !isFlex {
			return c
		}
		if prev.padding != b.padding {
			s.Set(b.ID(), "padding", func() {
				l.SetPadding(b.gap())
				c.Refresh()
			})
		}
		if prev.margins != b.margins {
			s.Set(b.ID(), "margins", func() {
				m := b.margins.OrZero()
				l.SetMargins(m.Width, m.Height)
				c.Refresh()
			})
		}
		return c
	})
}

// StackNode draws its children on top of each other, each filling the
// container.
type StackNode[M any] struct {
	vdom.Group[M]
}

func Stack[M any](children ...vdom.Node[M]) *StackNode[M] {
	return &StackNode[M]{Group: vdom.NewGroup(vdom.KindStack, children)}
}

func (n *StackNode[M]) With(props ...vdom.Prop) *StackNode[M] {
	n.Props().Apply(props...)
	return n
}

func (n *StackNode[M]) Mount(s *vdom.Store[M]) fyne.CanvasObject {
	c := container.NewStack()
	s.Register(n, c)
	vdom.MountChildren(s, c, n.Children())
	return c
}

func (n *StackNode[M]) Patch(old vdom.Node[M], s *vdom.Store[M]) {
	vdom.PatchGroup(s, n, old, identity)
}

// CanvasNode places children where their vdom.Position and vdom.Size props
// say, without any layout.
type CanvasNode[M any] struct {
	vdom.Group[M]
}

func Canvas[M any](children ...vdom.Node[M]) *CanvasNode[M] {
	return &CanvasNode[M]{Group: vdom.NewGroup(vdom.KindCanvas, children)}
}

func (n *CanvasNode[M]) With(props ...vdom.Prop) *CanvasNode[M] {
	n.Props().Apply(props...)
	return n
}

func (n *CanvasNode[M]) Mount(s *vdom.Store[M]) fyne.CanvasObject {
	c := container.NewWithoutLayout()
	s.Register(n, c)
	vdom.MountChildren(s, c, n.Children())
	return c
}

func (n *CanvasNode[M]) Patch(old vdom.Node[M], s *vdom.Store[M]) {
	vdom.PatchGroup(s, n, old, identity)
}

// ScrollNode stacks its children vertically inside a scrollable area.
type ScrollNode[M any] struct {
	vdom.Group[M]
}

func Scroll[M any](children ...vdom.Node[M]) *ScrollNode[M] {
	return &ScrollNode[M]{Group: vdom.NewGroup(vdom.KindScroll, children)}
}

func (n *ScrollNode[M]) With(props ...vdom.Prop) *ScrollNode[M] {
	n.Props().Apply(props...)
	return n
}

func (n *ScrollNode[M]) Mount(s *vdom.Store[M]) fyne.CanvasObject {
	box := container.NewVBox()
	sc := container.NewVScroll(box)
	s.Register(n, sc)
	vdom.MountChildren(s, box, n.Children())
	return sc
}

func (n *ScrollNode[M]) Patch(old vdom.Node[M], s *vdom.Store[M]) {
	vdom.PatchGroup(s, n, old, func(sc *container.Scroll) *fyne.Container {
		box, _ := sc.Content.(*fyne.Container)
		return box
	})
}

func identity(c *fyne.Container) *fyne.Container { return c }
