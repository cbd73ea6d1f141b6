package promqlcheck

import (
	"github.com/go-faster/promqlcheck/internal/promql"
)

// ResolveType resolves type of given node, reporting diagnostics to sink.
//
// Any node could be given: non-expression nodes resolve to ValueTypeNone.
func (c *Checker) ResolveType(t *promql.Tree, n promql.NodeID, sink Sink) ValueType {
	if sink == nil {
		sink = nopSink
	}
	r := resolver{
		c:    c,
		t:    t,
		sink: sink,
	}
	return r.resolve(n)
}

type resolver struct {
	c    *Checker
	t    *promql.Tree
	sink Sink

	// binaries collects binary expressions in pre-order, if enabled.
	collectBinaries bool
	binaries        []BinaryInfo
}

func (r *resolver) resolve(n promql.NodeID) ValueType {
	switch cat := r.t.Category(n); cat {
	case promql.Query:
		expr, ok := r.firstExpr(n)
		if !ok {
			return ValueTypeNone
		}
		return r.resolve(expr)
	case promql.NumberLiteral:
		return ValueTypeScalar
	case promql.StringLiteral:
		return ValueTypeString
	case promql.VectorSelector:
		r.checkVectorSelector(n)
		return ValueTypeVector
	case promql.MatrixSelector:
		return r.resolveMatrixSelector(n)
	case promql.SubqueryExpr:
		return r.resolveSubquery(n)
	case promql.OffsetExpr, promql.StepInvariantExpr:
		return r.resolveModifier(n)
	case promql.AggregateExpr:
		return r.resolveAggregate(n)
	case promql.FunctionCall:
		return r.resolveCall(n)
	case promql.UnaryExpr:
		return r.resolveUnary(n)
	case promql.BinaryExpr:
		return r.resolveBinary(n)
	case promql.ParenExpr:
		expr, ok := r.firstExpr(n)
		if !ok {
			return ValueTypeNone
		}
		return r.resolve(expr)
	case promql.Error,
		promql.MetricIdentifier,
		promql.LabelMatchers,
		promql.LabelMatcher,
		promql.LabelName,
		promql.MatchOp,
		promql.Duration,
		promql.AtModifierPreprocessor,
		promql.AggregateOp,
		promql.AggregateModifier,
		promql.By,
		promql.Without,
		promql.GroupingLabels,
		promql.FunctionIdentifier,
		promql.FunctionArgs,
		promql.Add,
		promql.Sub,
		promql.Mul,
		promql.Div,
		promql.Mod,
		promql.Pow,
		promql.Atan2,
		promql.Eql,
		promql.Neq,
		promql.Gtr,
		promql.Gte,
		promql.Lss,
		promql.Lte,
		promql.And,
		promql.Or,
		promql.Unless,
		promql.BoolModifier,
		promql.MatchingModifierClause,
		promql.On,
		promql.Ignoring,
		promql.GroupModifier,
		promql.GroupLeft,
		promql.GroupRight:
		return ValueTypeNone
	default:
		return ValueTypeNone
	}
}

// firstExpr returns first expression child.
func (r *resolver) firstExpr(n promql.NodeID) (promql.NodeID, bool) {
	for _, c := range r.t.Children(n) {
		if r.t.Category(c).IsExpr() {
			return c, true
		}
	}
	return promql.NoNode, false
}

func (r *resolver) resolveUnary(n promql.NodeID) ValueType {
	expr, ok := r.firstExpr(n)
	if !ok {
		return ValueTypeNone
	}

	switch typ := r.resolve(expr); typ {
	case ValueTypeNone, ValueTypeScalar, ValueTypeVector:
		return typ
	case ValueTypeMatrix:
		r.reportUnary(expr, typ)
		return ValueTypeVector
	default:
		r.reportUnary(expr, typ)
		return ValueTypeScalar
	}
}

func (r *resolver) reportUnary(n promql.NodeID, typ ValueType) {
	r.report(n, KindTypeMismatch,
		"unary expression only allowed on expressions of type scalar or instant vector, got %q",
		typ.DocumentedType(),
	)
}

func (r *resolver) report(n promql.NodeID, kind Kind, format string, args ...any) {
	report(r.sink, r.t.Span(n), kind, format, args...)
}

func (r *resolver) expectType(n promql.NodeID, want, got ValueType, context string) {
	if got == want || got == ValueTypeNone {
		return
	}
	r.report(n, KindTypeMismatch, "expected type %s in %s, got %s",
		want.DocumentedType(), context, got.DocumentedType(),
	)
}
