package promql

// Walk traverses the subtree of root in pre-order.
//
// If fn returns false, children of the node are skipped.
func Walk(t *Tree, root NodeID, fn func(n NodeID) bool) {
	if !fn(root) {
		return
	}
	for _, c := range t.Children(root) {
		Walk(t, c, fn)
	}
}

// Find returns first node of target category in the subtree of root, including root itself.
//
// Nodes are visited depth-first in document order.
func Find(t *Tree, root NodeID, target Category) (NodeID, bool) {
	return FindFunc(t, root, t.Span(root), func(c Category) bool {
		return c == target
	})
}

// FindIn is like Find, but matches only nodes lying within scope.
//
// Subtrees outside of scope are not entered.
func FindIn(t *Tree, root NodeID, target Category, scope Span) (NodeID, bool) {
	return FindFunc(t, root, scope, func(c Category) bool {
		return c == target
	})
}

// FindFunc returns first node within scope which category satisfies pred.
func FindFunc(t *Tree, root NodeID, scope Span, pred func(Category) bool) (NodeID, bool) {
	span := t.Span(root)
	if !span.Touches(scope) {
		return NoNode, false
	}
	if scope.Contains(span) && pred(t.Category(root)) {
		return root, true
	}
	for _, c := range t.Children(root) {
		if n, ok := FindFunc(t, c, scope, pred); ok {
			return n, true
		}
	}
	return NoNode, false
}
