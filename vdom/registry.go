package vdom

import "fyne.io/fyne/v2"

type entry struct {
	object fyne.CanvasObject
	parent *fyne.Container
}

// Registry maps node ids to the widgets currently on screen.
type Registry struct {
	entries map[ID]entry
}

func newRegistry() *Registry {
	return &Registry{entries: make(map[ID]entry)}
}

func (r *Registry) Get(id ID) (fyne.CanvasObject, bool) {
	e, ok := r.entries[id]
	return e.object, ok
}

func (r *Registry) Len() int {
	return len(r.entries)
}

func (r *Registry) has(id ID) bool {
	_, ok := r.entries[id]
	return ok
}

func (r *Registry) put(id ID, obj fyne.CanvasObject) {
	r.entries[id] = entry{object: obj}
}

func (r *Registry) parentOf(id ID) *fyne.Container {
	return r.entries[id].parent
}

func (r *Registry) setParent(id ID, parent *fyne.Container) {
	if e, ok := r.entries[id]; ok {
		e.parent = parent
		r.entries[id] = e
	}
}

func (r *Registry) remove(id ID) (entry, bool) {
	e, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	return e, ok
}

// Lookup returns the widget registered for id when it has type W.
func Lookup[W fyne.CanvasObject](r *Registry, id ID) (W, bool) {
	obj, ok := r.Get(id)
	if !ok {
		var zero W
		return zero, false
	}
	w, ok := obj.(W)
	return w, ok
}
