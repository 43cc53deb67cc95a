package ast

import (
	"fmt"
	"sort"
	"strings"
)

// Dump renders the subtree rooted at n as an indented ASCII tree, grounded
// on the teacher's TreeFormatter branch-drawing convention (├── / └── /
// vertical continuation bars) adapted to this package's node shape instead
// of a function-call tree.
func (n *Node) Dump() string {
	var sb strings.Builder
	n.dumpNode(&sb, "", true)
	return sb.String()
}

func (n *Node) dumpNode(sb *strings.Builder, prefix string, isLast bool) {
	branch := "├── "
	nextPrefix := prefix + "│   "
	if isLast {
		branch = "└── "
		nextPrefix = prefix + "    "
	}
	if prefix == "" {
		branch = ""
	}

	sb.WriteString(prefix)
	sb.WriteString(branch)
	sb.WriteString(n.describe())
	sb.WriteString("\n")

	for i, c := range n.children {
		c.dumpNode(sb, nextPrefix, i == len(n.children)-1)
	}
}

func (n *Node) describe() string {
	var parts []string
	parts = append(parts, n.kind.String())

	switch {
	case n.hasInt:
		parts = append(parts, fmt.Sprintf("%d", n.intVal.Value()))
	case n.hasFloat:
		parts = append(parts, fmt.Sprintf("%g", n.floatVal.Value()))
	case n.hasStr:
		parts = append(parts, fmt.Sprintf("%q", n.strVal))
	}

	if n.switchOp != Unknown {
		parts = append(parts, "op="+n.switchOp.String())
	}

	if len(n.flags) > 0 {
		names := make([]string, 0, len(n.flags))
		for f := range n.flags {
			names = append(names, f.String())
		}
		sort.Strings(names)
		parts = append(parts, "flags=["+strings.Join(names, ",")+"]")
	}

	if len(n.attrs) > 0 {
		names := make([]string, 0, len(n.attrs))
		for a := range n.attrs {
			names = append(names, a.String())
		}
		sort.Strings(names)
		parts = append(parts, "attrs=["+strings.Join(names, ",")+"]")
	}

	return strings.Join(parts, " ")
}
