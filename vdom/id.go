package vdom

// ID identifies a node across renders. Zero means unassigned.
type ID uint64

const firstID ID = 1

// Assigner issues node ids for one render pass.
type Assigner struct {
	next ID
}

func NewAssigner() *Assigner {
	return &Assigner{next: firstID}
}

// Next returns the current counter value and advances it.
func (a *Assigner) Next() ID {
	if a.next < firstID {
		a.next = firstID
	}
	id := a.next
	a.next++
	return id
}

// Reset puts the counter back to its initial value.
func (a *Assigner) Reset() {
	a.next = firstID
}

// AssignIDs resets a and numbers root and its descendants depth-first,
// parents before children. Two trees of the same shape get the same ids.
func AssignIDs[M any](a *Assigner, root Node[M]) {
	a.Reset()
	assignTopDown(a, root)
}

func assignTopDown[M any](a *Assigner, n Node[M]) {
	if n == nil {
		return
	}
	n.SetID(a.Next())
	for _, child := range n.Children() {
		assignTopDown(a, child)
	}
}
