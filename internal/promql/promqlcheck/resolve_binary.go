package promqlcheck

import (
	"github.com/go-faster/promqlcheck/internal/promql"
)

// BinaryInfo describes resolved binary expression.
type BinaryInfo struct {
	Node promql.NodeID
	Span promql.Span
	// Op is a lowercase operator, like "+" or "and".
	Op string
	// ReturnBool is true if bool modifier is set.
	ReturnBool bool
	LHS        ValueType
	RHS        ValueType
	Type       ValueType
	Matching   VectorMatching
}

// IsVectorMatching whether both operands are instant vectors.
func (b BinaryInfo) IsVectorMatching() bool {
	return b.LHS == ValueTypeVector && b.RHS == ValueTypeVector
}

func (r *resolver) resolveBinary(n promql.NodeID) ValueType {
	b := splitBinaryExpr(r.t, n)

	idx := -1
	if r.collectBinaries {
		idx = len(r.binaries)
		r.binaries = append(r.binaries, BinaryInfo{})
	}

	lt := r.resolve(b.lhs)
	rt := r.resolve(b.rhs)

	boolNode, returnBool := promql.FindIn(r.t, n, promql.BoolModifier, b.gap)
	if returnBool && !b.opCat.IsComparisonOperator() {
		r.report(boolNode, KindInvalidModifier, "bool modifier can only be used on comparison operators")
	}
	if b.opCat.IsComparisonOperator() && !returnBool &&
		lt == ValueTypeScalar && rt == ValueTypeScalar {
		r.report(n, KindInvalidModifier, "comparisons between scalars must use BOOL modifier")
	}

	for _, operand := range [2]struct {
		node promql.NodeID
		typ  ValueType
	}{
		{b.lhs, lt},
		{b.rhs, rt},
	} {
		switch operand.typ {
		case ValueTypeNone, ValueTypeScalar, ValueTypeVector:
		default:
			r.report(operand.node, KindTypeMismatch, "binary expression must contain only scalar and instant vector types")
		}
	}

	vectors := lt == ValueTypeVector && rt == ValueTypeVector
	if clause, ok := promql.FindIn(r.t, n, promql.MatchingModifierClause, b.gap); ok &&
		!vectors && lt != ValueTypeNone && rt != ValueTypeNone {
		if labels, ok := r.t.Child(clause, promql.GroupingLabels); ok && len(r.t.Children(labels)) > 0 {
			r.report(clause, KindInvalidModifier, "vector matching only allowed between instant vectors")
		}
	}

	if b.opCat.IsSetOperator() && (lt == ValueTypeScalar || rt == ValueTypeScalar) {
		r.report(n, KindTypeMismatch, "set operator %q not allowed in binary scalar expression", b.opName(r.t))
	}

	// Builder diagnostics are reported only for vector/vector expressions.
	sink := r.sink
	if !vectors {
		sink = nopSink
	}
	matching := r.c.buildVectorMatching(r.t, b, sink)

	typ := ValueTypeVector
	if !b.opCat.IsSetOperator() && lt == ValueTypeScalar && rt == ValueTypeScalar {
		typ = ValueTypeScalar
	}

	if idx >= 0 {
		r.binaries[idx] = BinaryInfo{
			Node:       n,
			Span:       r.t.Span(n),
			Op:         b.opName(r.t),
			ReturnBool: returnBool,
			LHS:        lt,
			RHS:        rt,
			Type:       typ,
			Matching:   matching,
		}
	}
	return typ
}
