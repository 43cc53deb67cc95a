package ast

import (
	"github.com/standardbeagle/asjs/internal/diag"
	"github.com/standardbeagle/asjs/internal/literal"
	"github.com/standardbeagle/asjs/internal/position"
)

// Node is one AST tree node. Children are strongly owned (a *Node's
// children slice is its only strong reference); every other cross-link
// (Parent, TypeNode, Instance, goto targets, referenced variables) is a
// plain *Node pointer rather than an owning reference.
//
// The original as2js design note (spec.md §9) models these cross-links as
// non-owning indices into an arena because C++ has no way to express "this
// pointer participates in cycles but does not keep its target alive" other
// than weak_ptr or a raw pointer into a bump allocator. Go's tracing
// collector has no such problem — a *Node cycle is reclaimed like any other
// unreachable graph — so cross-links here are ordinary pointers. What the
// arena design bought the original (a single owner per node, an O(1)
// "discard if unused" tree walk) is what the Tree type below still provides,
// it just doesn't need to play the role of a memory allocator too.
type Node struct {
	kind Kind
	pos  position.Position
	tree *Tree

	hasInt   bool
	intVal   literal.Integer
	hasFloat bool
	floatVal literal.Float
	hasStr   bool
	strVal   string

	flags map[Flag]bool
	attrs map[Attribute]bool

	switchOp Kind

	parent   *Node
	children []*Node
	offset   int

	typeNode *Node
	instance *Node

	gotoEnter *Node
	gotoExit  *Node

	variables []*Node
	labels    map[string]*Node

	paramDepth []int
	paramIndex []int

	lock int
}

// Tree owns the root of an AST and the diagnostic sink its nodes report
// through. It plays the role the original's node allocator/arena played:
// every node created via Tree.New is reachable from Root until its parent
// drops it, at which point ordinary GC reclaims it.
type Tree struct {
	Sink *diag.Sink
	Root *Node
}

// NewTree returns an empty Tree reporting through sink. A nil sink falls
// back to diag.Default.
func NewTree(sink *diag.Sink) *Tree {
	if sink == nil {
		sink = diag.Default
	}
	t := &Tree{Sink: sink}
	t.Root = t.New(Root, position.Position{})
	return t
}

// New constructs a detached node of the given kind at pos, owned by t.
// The node is not attached to any parent; call AppendChild to attach it.
func (t *Tree) New(kind Kind, pos position.Position) *Node {
	if !kind.Valid() {
		diag.Bug("Tree.New", "invalid kind %d", int(kind))
	}
	return &Node{kind: kind, pos: pos, tree: t, switchOp: Unknown}
}

// Kind returns the node's tag.
func (n *Node) Kind() Kind { return n.kind }

// Position returns the node's source location.
func (n *Node) Position() position.Position { return n.pos }

// Tree returns the owning Tree.
func (n *Node) Tree() *Tree { return n.tree }

func (n *Node) sink() *diag.Sink {
	if n.tree != nil && n.tree.Sink != nil {
		return n.tree.Sink
	}
	return diag.Default
}

// --- literal / name payload ---

// SetInteger stores v as the node's integer payload. Valid only on Integer
// nodes; any other kind is a programmer error.
func (n *Node) SetInteger(v literal.Integer) {
	if n.kind != Integer {
		diag.Bug("Node.SetInteger", "kind %s does not carry an integer payload", n.kind)
	}
	n.modifying("Node.SetInteger")
	n.intVal = v
	n.hasInt = true
}

// Integer returns the node's integer payload. Valid only on Integer nodes.
func (n *Node) Integer() literal.Integer {
	if n.kind != Integer || !n.hasInt {
		diag.Bug("Node.Integer", "kind %s has no integer payload set", n.kind)
	}
	return n.intVal
}

// SetFloat stores v as the node's floating-point payload. Valid only on
// FloatingPoint nodes.
func (n *Node) SetFloat(v literal.Float) {
	if n.kind != FloatingPoint {
		diag.Bug("Node.SetFloat", "kind %s does not carry a float payload", n.kind)
	}
	n.modifying("Node.SetFloat")
	n.floatVal = v
	n.hasFloat = true
}

// Float returns the node's floating-point payload. Valid only on
// FloatingPoint nodes.
func (n *Node) Float() literal.Float {
	if n.kind != FloatingPoint || !n.hasFloat {
		diag.Bug("Node.Float", "kind %s has no float payload set", n.kind)
	}
	return n.floatVal
}

func acceptsString(k Kind) bool {
	switch k {
	case String, Identifier, VIdentifier, Label, RegularExpression,
		Template, TemplateHead, TemplateMiddle, TemplateTail:
		return true
	default:
		return false
	}
}

// SetString stores v as the node's string payload: the text of a String
// literal, or the name of an Identifier/VIdentifier/Label.
func (n *Node) SetString(v string) {
	if !acceptsString(n.kind) {
		diag.Bug("Node.SetString", "kind %s does not carry a string payload", n.kind)
	}
	n.modifying("Node.SetString")
	n.strVal = v
	n.hasStr = true
}

// String returns the node's string payload.
func (n *Node) String() string {
	if !acceptsString(n.kind) {
		diag.Bug("Node.String", "kind %s has no string payload", n.kind)
	}
	return n.strVal
}

// --- flags ---

// SetFlag sets or clears flag f. Panics via diag.Bug if f is not valid for
// the node's kind.
func (n *Node) SetFlag(f Flag, value bool) {
	if !f.ValidOn(n.kind) {
		diag.Bug("Node.SetFlag", "flag %s invalid on kind %s", f, n.kind)
	}
	n.modifying("Node.SetFlag")
	if n.flags == nil {
		n.flags = make(map[Flag]bool)
	}
	if value {
		n.flags[f] = true
	} else {
		delete(n.flags, f)
	}
}

// Flag reports whether f is set. Returns false for flags not valid on this
// kind rather than panicking, so callers can probe without a prior Kind
// check (matches the original's get_flag tolerating a false return).
func (n *Node) Flag(f Flag) bool {
	return n.flags[f]
}

// --- attributes ---

// SetAttribute attempts to set attribute a. If a conflicts with an
// attribute already set in the same exclusion group (and the pair isn't one
// of the documented exceptions), it reports CodeConflictingAttribute and
// returns false, leaving the node's attributes unchanged.
func (n *Node) SetAttribute(a Attribute) bool {
	n.modifying("Node.SetAttribute")
	group, grouped := groupOf(a)
	if grouped {
		for _, m := range group {
			if m == a || !n.attrs[m] {
				continue
			}
			if allowedPairs[[2]Attribute{a, m}] {
				continue
			}
			n.sink().ReportAt(n.pos, diag.Error, diag.CodeConflictingAttribute,
				"attribute %s conflicts with already-set attribute %s", a, m)
			return false
		}
	}
	if n.attrs == nil {
		n.attrs = make(map[Attribute]bool)
	}
	n.attrs[a] = true
	return true
}

// ClearAttribute removes attribute a unconditionally.
func (n *Node) ClearAttribute(a Attribute) {
	n.modifying("Node.ClearAttribute")
	delete(n.attrs, a)
}

// Attribute reports whether a is set.
func (n *Node) Attribute(a Attribute) bool {
	return n.attrs[a]
}

// --- switch operator (for Conditional / Compare nodes carrying an
// operator kind distinct from their own kind, e.g. a Compare node
// recording which of Equal/Less/Greater produced it) ---

// SetSwitchOperator records the operator kind this node was built from.
func (n *Node) SetSwitchOperator(k Kind) {
	n.modifying("Node.SetSwitchOperator")
	n.switchOp = k
}

// SwitchOperator returns the recorded operator kind, or Unknown if unset.
func (n *Node) SwitchOperator() Kind { return n.switchOp }

// --- type / instance cross-links ---

// SetTypeNode records n's resolved type as a non-owning link to other.
func (n *Node) SetTypeNode(other *Node) { n.modifying("Node.SetTypeNode"); n.typeNode = other }

// TypeNode returns the resolved type node, or nil if unset.
func (n *Node) TypeNode() *Node { return n.typeNode }

// SetInstance records the declaration node (e.g. a Variable) that an
// Identifier reference resolves to.
func (n *Node) SetInstance(other *Node) { n.modifying("Node.SetInstance"); n.instance = other }

// Instance returns the resolved declaration, or nil if unset.
func (n *Node) Instance() *Node { return n.instance }

// SetGotoEnter/SetGotoExit record the label nodes a Goto/labelled-break
// targets on entry/exit of a compound statement.
func (n *Node) SetGotoEnter(other *Node) { n.modifying("Node.SetGotoEnter"); n.gotoEnter = other }
func (n *Node) SetGotoExit(other *Node)  { n.modifying("Node.SetGotoExit"); n.gotoExit = other }

func (n *Node) GotoEnter() *Node { return n.gotoEnter }
func (n *Node) GotoExit() *Node  { return n.gotoExit }

// AddVariable records other (expected to be a Variable/Var node) as
// referenced by n, without taking ownership of it.
func (n *Node) AddVariable(other *Node) {
	n.modifying("Node.AddVariable")
	n.variables = append(n.variables, other)
}

// Variables returns the non-owning list of referenced variable nodes.
func (n *Node) Variables() []*Node { return append([]*Node(nil), n.variables...) }

// SetLabel records a named label target reachable from n (e.g. a
// DirectiveList recording its Case/Default children by name).
func (n *Node) SetLabel(name string, target *Node) {
	n.modifying("Node.SetLabel")
	if n.labels == nil {
		n.labels = make(map[string]*Node)
	}
	n.labels[name] = target
}

// Label looks up a previously recorded label by name.
func (n *Node) Label(name string) (*Node, bool) {
	target, ok := n.labels[name]
	return target, ok
}

// --- ParamMatch depth/index vectors ---

// SetParamMatch records the depth/index vectors a ParamMatch node uses to
// rank overload candidates (spec.md's function-overload resolution).
func (n *Node) SetParamMatch(depth, index []int) {
	if n.kind != ParamMatch {
		diag.Bug("Node.SetParamMatch", "kind %s is not ParamMatch", n.kind)
	}
	n.modifying("Node.SetParamMatch")
	n.paramDepth = append([]int(nil), depth...)
	n.paramIndex = append([]int(nil), index...)
}

// ParamMatch returns the depth/index vectors previously set.
func (n *Node) ParamMatch() (depth, index []int) {
	if n.kind != ParamMatch {
		diag.Bug("Node.ParamMatch", "kind %s is not ParamMatch", n.kind)
	}
	return append([]int(nil), n.paramDepth...), append([]int(nil), n.paramIndex...)
}
