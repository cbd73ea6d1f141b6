package promqlcheck

import (
	"github.com/prometheus/prometheus/model/labels"
	"github.com/prometheus/prometheus/util/strutil"

	"github.com/go-faster/promqlcheck/internal/promql"
)

func (r *resolver) checkVectorSelector(n promql.NodeID) {
	var (
		metric   promql.NodeID = promql.NoNode
		matchers []*labels.Matcher
	)
	if id, ok := r.t.Child(n, promql.MetricIdentifier); ok {
		metric = id
		matchers = append(matchers, labels.MustNewMatcher(labels.MatchEqual, labels.MetricName, r.t.Text(id)))
	}

	if list, ok := r.t.Child(n, promql.LabelMatchers); ok {
		for _, lm := range r.t.Children(list) {
			m, ok := r.labelMatcher(lm)
			if !ok {
				// Invalid matcher is already reported.
				return
			}
			if m.Name == labels.MetricName && metric != promql.NoNode {
				r.report(lm, KindInvalidSelector, "metric name must not be set twice: %q or %q",
					r.t.Text(metric), m.Value,
				)
			}
			matchers = append(matchers, m)
		}
	}

	for _, m := range matchers {
		if !m.Matches("") {
			return
		}
	}
	r.report(n, KindInvalidSelector, "vector selector must contain at least one non-empty matcher")
}

func (r *resolver) labelMatcher(n promql.NodeID) (*labels.Matcher, bool) {
	children := r.t.Children(n)
	switch len(children) {
	case 1:
		// Quoted metric name, like {"foo.bar"}.
		value, err := strutil.Unquote(r.t.Text(children[0]))
		if err != nil {
			r.report(n, KindInvalidSelector, "invalid metric name: %s", err)
			return nil, false
		}
		return labels.MustNewMatcher(labels.MatchEqual, labels.MetricName, value), true
	case 3:
	default:
		return nil, false
	}
	nameNode, opNode, valueNode := children[0], children[1], children[2]

	name, err := labelName(r.t.Text(nameNode))
	if err != nil {
		r.report(nameNode, KindInvalidSelector, "invalid label name: %s", err)
		return nil, false
	}
	value, err := strutil.Unquote(r.t.Text(valueNode))
	if err != nil {
		r.report(valueNode, KindInvalidSelector, "invalid label value: %s", err)
		return nil, false
	}

	var typ labels.MatchType
	switch op := r.t.Text(opNode); op {
	case "=":
		typ = labels.MatchEqual
	case "!=":
		typ = labels.MatchNotEqual
	case "=~":
		typ = labels.MatchRegexp
	case "!~":
		typ = labels.MatchNotRegexp
	default:
		r.report(opNode, KindInvalidSelector, "unknown match operator %q", op)
		return nil, false
	}

	m, err := labels.NewMatcher(typ, name, value)
	if err != nil {
		r.report(valueNode, KindInvalidSelector, "%s", err)
		return nil, false
	}
	return m, true
}

func (r *resolver) resolveMatrixSelector(n promql.NodeID) ValueType {
	expr, ok := r.firstExpr(n)
	if !ok {
		return ValueTypeNone
	}
	r.resolve(expr)

	switch cat := r.t.Category(expr); cat {
	case promql.VectorSelector:
	case promql.OffsetExpr, promql.StepInvariantExpr:
		if base, _ := r.unwrapModifiers(expr); r.t.Category(base) == promql.VectorSelector {
			if cat == promql.OffsetExpr {
				r.report(expr, KindInvalidModifier, "no offset modifiers allowed before range")
			} else {
				r.report(expr, KindInvalidModifier, "no @ modifiers allowed before range")
			}
			break
		}
		r.report(expr, KindTypeMismatch, "ranges only allowed for vector selectors")
	default:
		r.report(expr, KindTypeMismatch, "ranges only allowed for vector selectors")
	}
	return ValueTypeMatrix
}

func (r *resolver) resolveSubquery(n promql.NodeID) ValueType {
	expr, ok := r.firstExpr(n)
	if !ok {
		return ValueTypeNone
	}
	switch typ := r.resolve(expr); typ {
	case ValueTypeVector, ValueTypeNone:
	default:
		r.report(expr, KindTypeMismatch, "subquery is only allowed on instant vector, got %s instead", typ)
	}
	return ValueTypeMatrix
}

// unwrapModifiers returns the expression under offset and @ modifiers
// and the modifier categories seen.
func (r *resolver) unwrapModifiers(n promql.NodeID) (promql.NodeID, []promql.Category) {
	var seen []promql.Category
	for {
		switch cat := r.t.Category(n); cat {
		case promql.OffsetExpr, promql.StepInvariantExpr:
			expr, ok := r.firstExpr(n)
			if !ok {
				return n, seen
			}
			seen = append(seen, cat)
			n = expr
		default:
			return n, seen
		}
	}
}

func (r *resolver) resolveModifier(n promql.NodeID) ValueType {
	expr, ok := r.firstExpr(n)
	if !ok {
		return ValueTypeNone
	}
	typ := r.resolve(expr)

	cat := r.t.Category(n)
	base, inner := r.unwrapModifiers(expr)
	for _, c := range inner {
		if c != cat {
			continue
		}
		if cat == promql.OffsetExpr {
			r.report(n, KindInvalidModifier, "offset may not be set multiple times")
		} else {
			r.report(n, KindInvalidModifier, "@ <timestamp> may not be set multiple times")
		}
		break
	}

	switch r.t.Category(base) {
	case promql.VectorSelector, promql.MatrixSelector, promql.SubqueryExpr:
	default:
		if cat == promql.OffsetExpr {
			r.report(n, KindInvalidModifier,
				"offset modifier must be preceded by an instant vector selector or range vector selector or a subquery")
		} else {
			r.report(n, KindInvalidModifier,
				"@ modifier must be preceded by an instant vector selector or range vector selector or a subquery")
		}
	}
	return typ
}
