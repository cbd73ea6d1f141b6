// Package promql contains PromQL concrete syntax tree and parser.
package promql

import (
	"fmt"
	"strings"
	"text/scanner"
)

// NodeID is an index of the node in the Tree.
type NodeID int32

// NoNode is an invalid node ID.
const NoNode NodeID = -1

// Span is a half-open byte range in the source text.
type Span struct {
	Start int
	End   int
}

// Len returns span length.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains whether s contains o.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// Touches whether s and o intersect or share a boundary.
func (s Span) Touches(o Span) bool {
	return s.Start <= o.End && o.Start <= s.End
}

// String implements fmt.Stringer.
func (s Span) String() string {
	return fmt.Sprintf("[%d:%d]", s.Start, s.End)
}

type node struct {
	cat      Category
	span     Span
	children []NodeID
}

// Tree is a PromQL concrete syntax tree.
//
// Nodes are stored in the arena and addressed by NodeID.
// Tree is immutable and safe for concurrent use.
type Tree struct {
	source string
	nodes  []node
	root   NodeID
}

// Source returns source text of the tree.
func (t *Tree) Source() string {
	return t.source
}

// Root returns root node.
func (t *Tree) Root() NodeID {
	return t.root
}

// Len returns number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) node(n NodeID) *node {
	if n < 0 || int(n) >= len(t.nodes) {
		panic(fmt.Sprintf("promql: invalid node %d", n))
	}
	return &t.nodes[n]
}

// Category returns category of given node.
func (t *Tree) Category(n NodeID) Category {
	return t.node(n).cat
}

// Span returns source span of given node.
func (t *Tree) Span(n NodeID) Span {
	return t.node(n).span
}

// Children returns children of given node in document order.
//
// Returned slice must not be modified.
func (t *Tree) Children(n NodeID) []NodeID {
	return t.node(n).children
}

// Child returns first direct child of given category.
func (t *Tree) Child(n NodeID, cat Category) (NodeID, bool) {
	for _, c := range t.node(n).children {
		if t.nodes[c].cat == cat {
			return c, true
		}
	}
	return NoNode, false
}

// Text returns source text of given node.
func (t *Tree) Text(n NodeID) string {
	s := t.node(n).span
	return t.source[s.Start:s.End]
}

// Position returns line and column of given byte offset.
func (t *Tree) Position(offset int) scanner.Position {
	return position(t.source, offset)
}

// String returns indented tree dump.
func (t *Tree) String() string {
	var sb strings.Builder
	t.dump(&sb, t.root, 0)
	return sb.String()
}

func (t *Tree) dump(sb *strings.Builder, n NodeID, depth int) {
	nd := t.node(n)
	for i := 0; i < depth; i++ {
		sb.WriteString("  ")
	}
	fmt.Fprintf(sb, "%s%s", nd.cat, nd.span)
	if len(nd.children) == 0 {
		fmt.Fprintf(sb, " %q", t.Text(n))
	}
	sb.WriteByte('\n')
	for _, c := range nd.children {
		t.dump(sb, c, depth+1)
	}
}
