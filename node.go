package fx

import "fmt"

// --- ID counter ---

// nodeIDCounter is a plain counter; nodes are built on the scheduler
// goroutine.
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// Style property names understood by the presets and the ebiten driver.
const (
	StyleOpacity = "opacity"
	StyleX       = "x"
	StyleY       = "y"
	StyleWidth   = "width"
	StyleHeight  = "height"
	StyleRed     = "r"
	StyleGreen   = "g"
	StyleBlue    = "b"
)

// styleDefaults are the values read for properties that were never set.
var styleDefaults = map[string]float64{
	StyleOpacity: 1,
	StyleRed:     1,
	StyleGreen:   1,
	StyleBlue:    1,
}

// --- Node ---

// Node is a minimal element: a named tree node carrying numeric style
// properties. It stands in for a document element wherever the scheduler
// needs a concrete node, and satisfies Styled so the presets can animate it.
//
// *Node is comparable and is used directly as a scheduler key.
type Node struct {
	ID     uint32
	Name   string
	Parent *Node

	children []*Node
	style    map[string]float64
	disposed bool
}

// NewNode creates a detached node.
func NewNode(name string) *Node {
	return &Node{ID: nextNodeID(), Name: name, style: make(map[string]float64)}
}

// String returns "name#id".
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s#%d", n.Name, n.ID)
}

// --- Style ---

// Style returns the property value, or its default when unset.
func (n *Node) Style(prop string) float64 {
	if v, ok := n.style[prop]; ok {
		return v
	}
	return styleDefaults[prop]
}

// HasStyle reports whether the property has been set explicitly.
func (n *Node) HasStyle(prop string) bool {
	_, ok := n.style[prop]
	return ok
}

// SetStyle sets a property. Writes to a disposed node are ignored.
func (n *Node) SetStyle(prop string, v float64) {
	if n.disposed {
		return
	}
	n.style[prop] = v
}

// Styles returns a copy of the explicitly set properties.
func (n *Node) Styles() map[string]float64 {
	out := make(map[string]float64, len(n.style))
	for k, v := range n.style {
		out[k] = v
	}
	return out
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("fx: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("fx: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("fx: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// Walk visits n and its descendants depth-first in document order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Select returns the nodes under root (root included) whose name is one of
// names, in document order and without duplicates. It is the whole selector
// language of this package: names only.
func Select(root *Node, names ...string) []*Node {
	want := make(map[string]bool, len(names))
	for _, name := range names {
		want[name] = true
	}
	var out []*Node
	root.Walk(func(n *Node) {
		if want[n.Name] {
			out = append(out, n)
		}
	})
	return out
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants. Animations targeting a disposed
// node end on their next frame without calling back.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}
