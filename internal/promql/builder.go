package promql

import (
	"github.com/go-faster/errors"
)

// Builder builds a Tree bottom-up.
//
// Children must be added before their parent.
type Builder struct {
	source string
	nodes  []node
}

// NewBuilder creates new Builder for given source text.
func NewBuilder(source string) *Builder {
	return &Builder{source: source}
}

// Add adds new node and returns its ID.
func (b *Builder) Add(cat Category, span Span, children ...NodeID) NodeID {
	id := NodeID(len(b.nodes))
	b.nodes = append(b.nodes, node{
		cat:      cat,
		span:     span,
		children: children,
	})
	return id
}

// Finish validates nodes and returns the Tree rooted at given node.
//
// Builder must not be used after Finish.
func (b *Builder) Finish(root NodeID) (*Tree, error) {
	if root < 0 || int(root) >= len(b.nodes) {
		return nil, errors.Errorf("invalid root %d", root)
	}

	parents := make([]NodeID, len(b.nodes))
	for i := range parents {
		parents[i] = NoNode
	}
	for i, n := range b.nodes {
		id := NodeID(i)
		if s := n.span; s.Start < 0 || s.Start > s.End || s.End > len(b.source) {
			return nil, errors.Errorf("node %d (%s): invalid span %s", id, n.cat, s)
		}
		if n.cat >= categoryCount {
			return nil, errors.Errorf("node %d: invalid category %s", id, n.cat)
		}

		prevEnd := n.span.Start
		for _, c := range n.children {
			if c < 0 || c >= id {
				return nil, errors.Errorf("node %d (%s): child %d must be added before parent", id, n.cat, c)
			}
			if p := parents[c]; p != NoNode {
				return nil, errors.Errorf("node %d (%s): child %d already belongs to %d", id, n.cat, c, p)
			}
			parents[c] = id

			cs := b.nodes[c].span
			if cs.Start < prevEnd || cs.End > n.span.End {
				return nil, errors.Errorf("node %d (%s): child %d span %s is out of order or out of parent span %s",
					id, n.cat, c, cs, n.span,
				)
			}
			prevEnd = cs.End
		}
	}
	if p := parents[root]; p != NoNode {
		return nil, errors.Errorf("root %d has parent %d", root, p)
	}

	t := &Tree{
		source: b.source,
		nodes:  b.nodes,
		root:   root,
	}
	b.nodes = nil
	return t, nil
}
