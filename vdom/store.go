package vdom

import (
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"github.com/petermattis/goid"

	"flemish/internal/logger"
)

const component = "TreeStore"

// Stats counts the widget operations a store has performed.
type Stats struct {
	Mounts   int
	Unmounts int
	Updates  int
}

type observer[M any] struct {
	owner ID
	fn    func(M)
}

// Store owns the current virtual tree, the widgets it is mounted to and the
// observers nodes registered for incoming messages. It is not safe for
// concurrent use; every method must run on the goroutine that created it.
type Store[M any] struct {
	root      Node[M]
	host      *fyne.Container
	registry  *Registry
	observers []observer[M]
	send      func(M)
	log       logger.Logger

	owner   int64
	strayed atomic.Bool
	highest ID
	stats   Stats
}

// NewStore mounts root into host. A nil host gets a fresh stack container,
// reachable through Host. root should already carry ids from AssignIDs.
func NewStore[M any](root Node[M], host *fyne.Container, send func(M), log logger.Logger) *Store[M] {
	if host == nil {
		host = container.NewStack()
	}
	if log == nil {
		log = logger.NoOpLogger{}
	}
	s := &Store[M]{
		root:     root,
		host:     host,
		registry: newRegistry(),
		send:     send,
		log:      log,
		owner:    goid.Get(),
	}
	s.mountInto(root, host, -1)
	host.Refresh()

	log.Debug(component, "tree mounted", map[string]interface{}{
		"widgets": s.registry.Len(),
	})
	return s
}

func (s *Store[M]) Root() Node[M]                          { return s.root }
func (s *Store[M]) Host() *fyne.Container                  { return s.host }
func (s *Store[M]) Registry() *Registry                    { return s.registry }
func (s *Store[M]) Logger() logger.Logger                  { return s.log }
func (s *Store[M]) Stats() Stats                           { return s.stats }
func (s *Store[M]) Widget(id ID) (fyne.CanvasObject, bool) { return s.registry.Get(id) }

// Send hands msg to the application's mailbox. Widget callbacks use it.
func (s *Store[M]) Send(msg M) {
	if s.send != nil {
		s.send(msg)
	}
}

// SubscribeOwned registers fn to see every dispatched message until the node
// with id owner is unmounted.
func (s *Store[M]) SubscribeOwned(owner ID, fn func(M)) {
	s.observers = append(s.observers, observer[M]{owner: owner, fn: fn})
}

// Resubscribe swaps the observer owned by owner for fn, keeping its place in
// dispatch order. An owner with no observer gets fn appended.
func (s *Store[M]) Resubscribe(owner ID, fn func(M)) {
	for i, o := range s.observers {
		if o.owner == owner {
			s.observers[i].fn = fn
			return
		}
	}
	s.SubscribeOwned(owner, fn)
}

func (s *Store[M]) UnsubscribeOwner(owner ID) {
	kept := s.observers[:0]
	for _, o := range s.observers {
		if o.owner != owner {
			kept = append(kept, o)
		}
	}
	clear(s.observers[len(kept):])
	s.observers = kept
}

// Dispatch shows msg to every observer in registration order.
func (s *Store[M]) Dispatch(msg M) {
	s.checkOwner("dispatch")
	for _, o := range s.observers {
		o.fn(msg)
	}
}

// Patch reconciles the mounted widgets with next and keeps next as the
// current tree.
func (s *Store[M]) Patch(next Node[M]) {
	s.checkOwner("patch")
	next.Patch(s.root, s)
	s.root = next
}

// Set runs a single widget property setter. All patch-time mutations go
// through here.
func (s *Store[M]) Set(id ID, prop string, fn func()) {
	s.stats.Updates++
	s.log.Debug(component, "set property", map[string]interface{}{
		"id":   uint64(id),
		"prop": prop,
	})
	fn()
}

// Register records obj as n's widget and applies n's generic props to it.
// Mount implementations call it as soon as the widget exists, before mounting
// any children. A node whose id is already live gets a fresh one.
func (s *Store[M]) Register(n Node[M], obj fyne.CanvasObject) fyne.CanvasObject {
	id := n.ID()
	if id == 0 || s.registry.has(id) {
		fresh := s.highest + 1
		s.log.Debug(component, "re-keyed colliding node", map[string]interface{}{
			"from": uint64(id),
			"to":   uint64(fresh),
			"kind": n.Kind().String(),
		})
		id = fresh
		n.SetID(id)
	}
	if id > s.highest {
		s.highest = id
	}
	s.registry.put(id, obj)
	s.stats.Mounts++
	applyProps(obj, n.Props())
	return obj
}

func (s *Store[M]) checkOwner(op string) {
	if gid := goid.Get(); gid != s.owner && s.strayed.CompareAndSwap(false, true) {
		s.log.Warning(component, "store used off its owning goroutine", map[string]interface{}{
			"op":        op,
			"owner":     s.owner,
			"goroutine": gid,
		})
	}
}
