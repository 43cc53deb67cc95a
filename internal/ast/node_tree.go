package ast

import "github.com/standardbeagle/asjs/internal/diag"

// Parent returns n's parent, or nil for the tree root or a detached node.
func (n *Node) Parent() *Node { return n.parent }

// ChildCount returns the number of children n owns.
func (n *Node) ChildCount() int { return len(n.children) }

// Child returns the i'th child. Out-of-range i is a programmer error.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		diag.Bug("Node.Child", "index %d out of range (have %d children)", i, len(n.children))
	}
	return n.children[i]
}

// Children returns a copy of n's child slice; mutating it does not affect n.
func (n *Node) Children() []*Node { return append([]*Node(nil), n.children...) }

// Offset returns child's position within its parent's children, or -1 if
// child is detached.
func (n *Node) Offset() int {
	if n.parent == nil {
		return -1
	}
	return n.offset
}

func (n *Node) reindexFrom(start int) {
	for i := start; i < len(n.children); i++ {
		n.children[i].offset = i
	}
}

// AppendChild attaches child as n's last child. child must be detached
// (have no parent); reparenting an already-attached node is a programmer
// error — callers must RemoveChild it first.
func (n *Node) AppendChild(child *Node) {
	n.modifying("Node.AppendChild")
	if child.parent != nil {
		diag.Bug("Node.AppendChild", "child %s already attached to a parent", child.kind)
	}
	child.parent = n
	child.offset = len(n.children)
	n.children = append(n.children, child)
}

// InsertChild attaches child at index i, shifting later children right.
func (n *Node) InsertChild(i int, child *Node) {
	n.modifying("Node.InsertChild")
	if child.parent != nil {
		diag.Bug("Node.InsertChild", "child %s already attached to a parent", child.kind)
	}
	if i < 0 || i > len(n.children) {
		diag.Bug("Node.InsertChild", "index %d out of range (have %d children)", i, len(n.children))
	}
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
	child.parent = n
	n.reindexFrom(i)
}

// SetChild replaces the child at index i with replacement, detaching the
// old child (its Parent becomes nil).
func (n *Node) SetChild(i int, replacement *Node) {
	n.modifying("Node.SetChild")
	if i < 0 || i >= len(n.children) {
		diag.Bug("Node.SetChild", "index %d out of range (have %d children)", i, len(n.children))
	}
	if replacement.parent != nil {
		diag.Bug("Node.SetChild", "replacement %s already attached to a parent", replacement.kind)
	}
	old := n.children[i]
	old.parent = nil
	old.offset = 0
	replacement.parent = n
	replacement.offset = i
	n.children[i] = replacement
}

// DeleteChild removes the child at index i and returns it, detached.
func (n *Node) DeleteChild(i int) *Node {
	n.modifying("Node.DeleteChild")
	if i < 0 || i >= len(n.children) {
		diag.Bug("Node.DeleteChild", "index %d out of range (have %d children)", i, len(n.children))
	}
	child := n.children[i]
	n.children = append(n.children[:i], n.children[i+1:]...)
	child.parent = nil
	child.offset = 0
	n.reindexFrom(i)
	return child
}

// RemoveChild finds and detaches child from n's children, the convenience
// form of DeleteChild for callers that hold the child, not its index.
func (n *Node) RemoveChild(child *Node) {
	if child.parent != n {
		diag.Bug("Node.RemoveChild", "node is not a child of this parent")
	}
	n.DeleteChild(child.offset)
}

// ReplaceWith substitutes n for replacement in n's parent's children,
// detaching n. n must be attached.
func (n *Node) ReplaceWith(replacement *Node) {
	if n.parent == nil {
		diag.Bug("Node.ReplaceWith", "node has no parent to replace it in")
	}
	n.parent.SetChild(n.offset, replacement)
}

// FindFirstChild returns the first child of kind k, or nil.
func (n *Node) FindFirstChild(k Kind) *Node {
	for _, c := range n.children {
		if c.kind == k {
			return c
		}
	}
	return nil
}

// FindNextChild returns the first child of kind k after the child at
// index after (exclusive), or nil.
func (n *Node) FindNextChild(after int, k Kind) *Node {
	for i := after + 1; i < len(n.children); i++ {
		if n.children[i].kind == k {
			return n.children[i]
		}
	}
	return nil
}

// FindDescendent performs a depth-first search for the first descendant
// (including n itself) of kind k.
func (n *Node) FindDescendent(k Kind) *Node {
	if n.kind == k {
		return n
	}
	for _, c := range n.children {
		if found := c.FindDescendent(k); found != nil {
			return found
		}
	}
	return nil
}

// CloneShallow returns a new detached node of the same kind, position, and
// payload as n, with no children and no cross-links — the starting point
// for CreateReplacement.
func (n *Node) CloneShallow() *Node {
	clone := n.tree.New(n.kind, n.pos)
	clone.hasInt, clone.intVal = n.hasInt, n.intVal
	clone.hasFloat, clone.floatVal = n.hasFloat, n.floatVal
	clone.hasStr, clone.strVal = n.hasStr, n.strVal
	clone.switchOp = n.switchOp
	for f, v := range n.flags {
		if clone.flags == nil {
			clone.flags = make(map[Flag]bool)
		}
		clone.flags[f] = v
	}
	for a, v := range n.attrs {
		if clone.attrs == nil {
			clone.attrs = make(map[Attribute]bool)
		}
		clone.attrs[a] = v
	}
	return clone
}

// CreateReplacement returns a new detached node of kind newKind at n's
// position, used by the flattener when it lowers one node into another of
// a different tag (e.g. Add with a single child becomes Identity).
func (n *Node) CreateReplacement(newKind Kind) *Node {
	return n.tree.New(newKind, n.pos)
}
