package vdom

import "fyne.io/fyne/v2"

// Reconcile does the part of Patch every kind shares. When the kinds differ
// old's subtree is replaced by a freshly mounted n and ok is false. Otherwise
// n takes over old's id, the generic props are diffed onto the registered
// widget and that widget is returned. ok is also false when no widget of type
// W is registered for the id; callers then skip their own updates.
func Reconcile[W fyne.CanvasObject, M any](s *Store[M], n, old Node[M]) (w W, ok bool) {
	if n.Kind() != old.Kind() {
		s.replace(old, n)
		return w, false
	}

	n.SetID(old.ID())
	obj, found := s.registry.Get(n.ID())
	if !found {
		return w, false
	}
	if w, ok = obj.(W); !ok {
		return w, false
	}
	s.updateProps(n.ID(), obj, s.registry.parentOf(n.ID()), old.Props(), n.Props())
	return w, true
}

// PatchGroup patches a container node. box returns the container that holds
// the children of the registered widget W.
func PatchGroup[W fyne.CanvasObject, M any](s *Store[M], n, old Node[M], box func(W) *fyne.Container) {
	if n.Kind() != old.Kind() {
		s.replace(old, n)
		return
	}
	var c *fyne.Container
	if w, ok := Reconcile[W](s, n, old); ok {
		c = box(w)
	}
	PatchChildren(s, c, n.Children(), old.Children())
}

// PatchChildren reconciles two child lists by position: the common prefix is
// patched, surplus new children are mounted at the end of c and surplus old
// ones unmounted. With a nil c new children cannot be mounted and are dropped.
func PatchChildren[M any](s *Store[M], c *fyne.Container, next, prev []Node[M]) {
	common := min(len(next), len(prev))
	for i := 0; i < common; i++ {
		next[i].Patch(prev[i], s)
	}

	if len(next) > common && c != nil {
		for _, child := range next[common:] {
			s.mountInto(child, c, -1)
		}
		c.Refresh()
	}
	for _, child := range prev[common:] {
		s.removeSubtree(child)
	}
}

// MountChildren mounts children into c in order. Container Mount
// implementations call it after registering themselves.
func MountChildren[M any](s *Store[M], c *fyne.Container, children []Node[M]) {
	for _, child := range children {
		s.mountInto(child, c, -1)
	}
}

func (s *Store[M]) mountInto(n Node[M], parent *fyne.Container, index int) {
	obj := n.Mount(s)
	insertAt(parent, obj, index)
	s.registry.setParent(n.ID(), parent)
	if fixed := n.Props().Fixed; fixed.IsSome() {
		applyFixed(parent, obj, fixed)
	}
}

// replace unmounts old and mounts n where old used to be.
func (s *Store[M]) replace(old, n Node[M]) {
	parent := s.registry.parentOf(old.ID())
	index := -1
	if obj, ok := s.registry.Get(old.ID()); ok && parent != nil {
		index = indexOf(parent.Objects, obj)
	}
	s.removeSubtree(old)

	if parent == nil {
		s.log.Debug(component, "replacement skipped, parent unknown", map[string]interface{}{
			"id":   uint64(old.ID()),
			"from": old.Kind().String(),
			"to":   n.Kind().String(),
		})
		return
	}
	s.mountInto(n, parent, index)
	parent.Refresh()
}

// removeSubtree tears n's subtree down children first and detaches n's own
// widget from its parent last.
func (s *Store[M]) removeSubtree(n Node[M]) {
	e, ok := s.release(n)
	if !ok || e.parent == nil {
		return
	}
	if flex, isFlex := e.parent.Layout.(*FlexLayout); isFlex {
		flex.ClearFixed(e.object)
	}
	e.parent.Remove(e.object)
}

func (s *Store[M]) release(n Node[M]) (entry, bool) {
	for _, child := range n.Children() {
		s.release(child)
	}
	s.UnsubscribeOwner(n.ID())
	e, ok := s.registry.remove(n.ID())
	if ok {
		s.stats.Unmounts++
	}
	return e, ok
}

func insertAt(parent *fyne.Container, obj fyne.CanvasObject, index int) {
	if index < 0 || index >= len(parent.Objects) {
		parent.Add(obj)
		return
	}
	parent.Objects = append(parent.Objects, nil)
	copy(parent.Objects[index+1:], parent.Objects[index:])
	parent.Objects[index] = obj
}

func indexOf(objects []fyne.CanvasObject, obj fyne.CanvasObject) int {
	for i, o := range objects {
		if o == obj {
			return i
		}
	}
	return -1
}
