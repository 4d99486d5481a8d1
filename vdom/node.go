package vdom

import "fyne.io/fyne/v2"

// Node is one element of a virtual tree. A fresh tree is built by every
// render; building a node must not touch any widget.
//
// Mount creates the widget, registers it with the store and returns it.
// Patch brings the widget registered for old in line with the receiver; it
// is called with an old node of the same concrete type unless the kinds
// differ, in which case the receiver replaces old outright.
type Node[M any] interface {
	ID() ID
	SetID(ID)
	Kind() Kind
	Props() *Props
	Children() []Node[M]
	Mount(s *Store[M]) fyne.CanvasObject
	Patch(old Node[M], s *Store[M])
}

// Base holds the part of a node every kind shares.
type Base struct {
	id    ID
	kind  Kind
	props Props
}

func NewBase(kind Kind, props ...Prop) Base {
	b := Base{kind: kind}
	b.props.Apply(props...)
	return b
}

func (b *Base) ID() ID        { return b.id }
func (b *Base) SetID(id ID)   { b.id = id }
func (b *Base) Kind() Kind    { return b.kind }
func (b *Base) Props() *Props { return &b.props }

// Leaf is embedded by nodes without children.
type Leaf[M any] struct {
	Base
}

func NewLeaf[M any](kind Kind, props ...Prop) Leaf[M] {
	return Leaf[M]{Base: NewBase(kind, props...)}
}

func (Leaf[M]) Children() []Node[M] { return nil }

// Group is embedded by container nodes. Children are reconciled by position.
type Group[M any] struct {
	Base
	Kids []Node[M]
}

func NewGroup[M any](kind Kind, children []Node[M], props ...Prop) Group[M] {
	return Group[M]{Base: NewBase(kind, props...), Kids: children}
}

func (g *Group[M]) Children() []Node[M] { return g.Kids }

// Add appends children after the ones given at construction.
func (g *Group[M]) Add(children ...Node[M]) {
	g.Kids = append(g.Kids, children...)
}
