package ast

// Attribute is one of the node.h-style member/function modifiers (public,
// static, native, ...). Unlike Flag, attributes are grouped into mutually
// exclusive sets (spec.md §4.1 invariant 5): setting a second member of a
// group the node already has a member of reports a CodeConflictingAttribute
// diagnostic and leaves the node unchanged, except for the two documented
// exceptions below.
type Attribute int

const (
	Public Attribute = iota
	Private
	Protected
	Internal
	Transient
	Volatile

	Static
	Abstract
	Virtual
	Array_
	Inline

	RequireElse
	EnsureThen

	Native
	Deprecated
	Unsafe
	Extern
	Constructor
	Final
	Enumerable

	ConditionTrue
	ConditionFalse
	Unused

	Dynamic

	Foreach
	NoBreak
	AutoBreak
)

var attributeNames = map[Attribute]string{
	Public:        "Public",
	Private:       "Private",
	Protected:     "Protected",
	Internal:      "Internal",
	Transient:     "Transient",
	Volatile:      "Volatile",
	Static:        "Static",
	Abstract:      "Abstract",
	Virtual:       "Virtual",
	Array_:        "Array",
	Inline:        "Inline",
	RequireElse:   "RequireElse",
	EnsureThen:    "EnsureThen",
	Native:        "Native",
	Deprecated:    "Deprecated",
	Unsafe:        "Unsafe",
	Extern:        "Extern",
	Constructor:   "Constructor",
	Final:         "Final",
	Enumerable:    "Enumerable",
	ConditionTrue: "True",
	ConditionFalse: "False",
	Unused:        "Unused",
	Dynamic:       "Dynamic",
	Foreach:       "Foreach",
	NoBreak:       "NoBreak",
	AutoBreak:     "AutoBreak",
}

func (a Attribute) String() string {
	if name, ok := attributeNames[a]; ok {
		return name
	}
	return "Attribute(?)"
}

// exclusionGroups lists the mutually-exclusive attribute sets. A node may
// carry at most one member of each group at a time.
var exclusionGroups = [][]Attribute{
	{Public, Private, Protected},
	{Static, Abstract, Virtual, Constructor, Inline, Native},
	{RequireElse, EnsureThen},
	{Foreach, NoBreak, AutoBreak},
	{ConditionTrue, ConditionFalse},
}

// allowedPairs lists attribute pairs that may coexist despite sharing a
// group: Native may combine with Constructor, Virtual, or Static, and
// Static may combine with Inline (spec.md §4.1 invariant 5 exceptions).
var allowedPairs = map[[2]Attribute]bool{
	{Native, Constructor}: true,
	{Constructor, Native}: true,
	{Native, Virtual}:     true,
	{Virtual, Native}:     true,
	{Native, Static}:      true,
	{Static, Native}:      true,
	{Static, Inline}:      true,
	{Inline, Static}:      true,
}

func groupOf(a Attribute) ([]Attribute, bool) {
	for _, g := range exclusionGroups {
		for _, m := range g {
			if m == a {
				return g, true
			}
		}
	}
	return nil, false
}
