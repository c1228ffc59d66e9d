package strata

// --- ID counter ---

// nodeIDCounter is a plain counter (no atomic: strata is single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// hierarchyListener is implemented by payloads that cache values derived from
// the node's position in the tree.
type hierarchyListener interface {
	hierarchyChanged()
}

// --- Node ---

// Node is a tree element carrying a payload. Children are owned by their
// parent and the tree is kept acyclic. PreVisit and PostVisit run around the
// children during Visit.
type Node[T any] struct {
	// Identity
	ID   uint32
	Name string

	// Hierarchy
	Parent   *Node[T]
	children []*Node[T]

	// Enabled controls whether Visit descends into this subtree.
	Enabled bool

	Payload T

	PreVisit  func(n *Node[T], rc *RenderContext)
	PostVisit func(n *Node[T], rc *RenderContext)

	disposed bool
}

// NewNode creates an enabled, detached node.
func NewNode[T any](name string, payload T) *Node[T] {
	return &Node[T]{
		ID:      nextNodeID(),
		Name:    name,
		Enabled: true,
		Payload: payload,
	}
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node[T]) AddChild(child *Node[T]) {
	if child == nil {
		panic("strata: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("strata: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	markHierarchyChanged(child)
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild.
func (n *Node[T]) AddChildAt(child *Node[T], index int) {
	if child == nil {
		panic("strata: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("strata: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	if index < 0 || index > len(n.children) {
		panic("strata: child index out of range")
	}
	child.Parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	markHierarchyChanged(child)
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node[T]) RemoveChild(child *Node[T]) {
	if child.Parent != n {
		panic("strata: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	markHierarchyChanged(child)
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node[T]) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node[T]) Children() []*Node[T] {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node[T]) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node[T]) ChildAt(index int) *Node[T] {
	return n.children[index]
}

// Root returns the topmost ancestor, or n itself when detached.
func (n *Node[T]) Root() *Node[T] {
	r := n
	for r.Parent != nil {
		r = r.Parent
	}
	return r
}

// Depth returns the number of ancestors.
func (n *Node[T]) Depth() int {
	d := 0
	for p := n.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// Walk calls fn for n and its descendants in pre-order. Returning false from
// fn skips that node's children.
func (n *Node[T]) Walk(fn func(*Node[T]) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Visit runs PreVisit, visits each child, then runs PostVisit. Disabled
// subtrees are skipped entirely.
func (n *Node[T]) Visit(rc *RenderContext) {
	if !n.Enabled {
		return
	}
	rc.Stats.NodesVisited++
	if n.PreVisit != nil {
		n.PreVisit(n, rc)
	}
	for _, c := range n.children {
		c.Visit(rc)
	}
	if n.PostVisit != nil {
		n.PostVisit(n, rc)
	}
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants.
func (n *Node[T]) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node[T]) dispose() {
	n.disposed = true
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.PreVisit = nil
	n.PostVisit = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node[T]) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is node or one of its ancestors.
func isAncestor[T any](candidate, node *Node[T]) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node[T]) removeChildByPtr(child *Node[T]) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// markHierarchyChanged tells every payload in the subtree that its ancestor
// chain changed.
func markHierarchyChanged[T any](node *Node[T]) {
	node.Walk(func(c *Node[T]) bool {
		if l, ok := any(c.Payload).(hierarchyListener); ok {
			l.hierarchyChanged()
		}
		return true
	})
}
