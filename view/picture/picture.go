// Package picture shows images held in an imaging.Table.
package picture

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"flemish/internal/imaging"
	"flemish/vdom"
)

// Node displays one image handle. Changing the handle swaps the picture in
// the existing canvas object.
type Node[M any] struct {
	vdom.Leaf[M]
	table  *imaging.Table
	handle imaging.Handle
	fill   canvas.ImageFill
}

func New[M any](table *imaging.Table, handle imaging.Handle, props ...vdom.Prop) *Node[M] {
	return &Node[M]{
		Leaf:   vdom.NewLeaf[M](vdom.KindImage, props...),
		table:  table,
		handle: handle,
		fill:   canvas.ImageFillContain,
	}
}

func (n *Node[M]) With(props ...vdom.Prop) *Node[M] {
	n.Props().Apply(props...)
	return n
}

func (n *Node[M]) Fill(mode canvas.ImageFill) *Node[M] {
	n.fill = mode
	return n
}

func (n *Node[M]) Mount(s *vdom.Store[M]) fyne.CanvasObject {
	img := canvas.NewImageFromImage(nil)
	img.FillMode = n.fill
	n.load(s, img)
	return s.Register(n, img)
}

func (n *Node[M]) Patch(old vdom.Node[M], s *vdom.Store[M]) {
	img, ok := vdom.Reconcile[*canvas.Image](s, n, old)
	prev, same := old.(*Node[M])
	if !ok || !same {
		return
	}
	if prev.fill != n.fill {
		s.Set(n.ID(), "fill", func() {
			img.FillMode = n.fill
			img.Refresh()
		})
	}
	if prev.handle != n.handle || prev.table != n.table {
		s.Set(n.ID(), "image", func() {
			n.load(s, img)
			img.Refresh()
		})
	}
}

func (n *Node[M]) load(s *vdom.Store[M], img *canvas.Image) {
	img.Image = nil
	if n.table == nil || n.handle == 0 {
		return
	}
	decoded, err := n.table.Image(n.handle)
	if err != nil {
		s.Logger().Error("Picture", err, map[string]interface{}{
			"message": "image lookup failed",
			"handle":  uint64(n.handle),
		})
		return
	}
	img.Image = decoded
	if w, h, err := n.table.Size(n.handle); err == nil {
		img.SetMinSize(fyne.NewSize(float32(w), float32(h)))
	}
}
