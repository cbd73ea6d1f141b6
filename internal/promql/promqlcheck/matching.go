package promqlcheck

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-faster/errors"
	"github.com/prometheus/prometheus/util/strutil"

	"github.com/go-faster/promqlcheck/internal/promql"
)

// VectorMatchCardinality describes how many series on each side of a binary
// expression may be matched.
type VectorMatchCardinality int

const (
	CardOneToOne VectorMatchCardinality = iota
	CardManyToOne
	CardOneToMany
	CardManyToMany
)

// String implements fmt.Stringer.
func (c VectorMatchCardinality) String() string {
	switch c {
	case CardOneToOne:
		return "one-to-one"
	case CardManyToOne:
		return "many-to-one"
	case CardOneToMany:
		return "one-to-many"
	case CardManyToMany:
		return "many-to-many"
	default:
		return fmt.Sprintf("<unknown cardinality %d>", int(c))
	}
}

// VectorMatching describes how series of binary expression operands are paired.
type VectorMatching struct {
	// Card is a matching cardinality.
	Card VectorMatchCardinality
	// MatchingLabels are labels from on/ignoring clause, as written.
	MatchingLabels []string
	// On is true for on(...) clause and false for ignoring(...) or no clause.
	On bool
	// Include are labels from group_left/group_right modifier, as written.
	Include []string
}

// binaryExpr is a split binary expression node.
type binaryExpr struct {
	node  promql.NodeID
	lhs   promql.NodeID
	rhs   promql.NodeID
	op    promql.NodeID
	opCat promql.Category
	// gap is a span between operands, containing operator and modifiers.
	gap promql.Span
}

// splitBinaryExpr splits binary expression into parts.
//
// Panics if node is not a well-formed binary expression.
func splitBinaryExpr(t *promql.Tree, n promql.NodeID) binaryExpr {
	if cat := t.Category(n); cat != promql.BinaryExpr {
		panic(errors.Errorf("promqlcheck: node %d is %s, not %s", n, cat, promql.BinaryExpr))
	}

	children := t.Children(n)
	if len(children) < 3 {
		panic(errors.Errorf("promqlcheck: binary expression %d has %d children", n, len(children)))
	}
	lhs, rhs := children[0], children[len(children)-1]
	if !t.Category(lhs).IsExpr() || !t.Category(rhs).IsExpr() {
		panic(errors.Errorf("promqlcheck: binary expression %d operands are %s and %s",
			n, t.Category(lhs), t.Category(rhs),
		))
	}

	gap := promql.Span{
		Start: t.Span(lhs).End,
		End:   t.Span(rhs).Start,
	}
	op, ok := promql.FindFunc(t, n, gap, promql.Category.IsBinaryOperator)
	if !ok {
		panic(errors.Errorf("promqlcheck: binary expression %d has no operator", n))
	}

	return binaryExpr{
		node:  n,
		lhs:   lhs,
		rhs:   rhs,
		op:    op,
		opCat: t.Category(op),
		gap:   gap,
	}
}

// opName returns lowercase operator name, like "and".
func (b binaryExpr) opName(t *promql.Tree) string {
	return strings.ToLower(t.Text(b.op))
}

// BuildVectorMatching returns vector matching of given binary expression.
//
// Panics if node is not a binary expression.
func (c *Checker) BuildVectorMatching(t *promql.Tree, n promql.NodeID, sink Sink) VectorMatching {
	if sink == nil {
		sink = nopSink
	}
	return c.buildVectorMatching(t, splitBinaryExpr(t, n), sink)
}

func (c *Checker) buildVectorMatching(t *promql.Tree, b binaryExpr, sink Sink) VectorMatching {
	var m VectorMatching
	isSet := b.opCat.IsSetOperator()
	if isSet {
		m.Card = CardManyToMany
	}

	clause, ok := promql.FindIn(t, b.node, promql.MatchingModifierClause, b.gap)
	if !ok {
		return m
	}
	_, m.On = t.Child(clause, promql.On)
	m.MatchingLabels = c.labelList(t, clause, true, sink)

	if group, ok := promql.FindIn(t, b.node, promql.GroupModifier, b.gap); ok {
		m.Card = CardOneToMany
		if _, left := t.Child(group, promql.GroupLeft); left {
			m.Card = CardManyToOne
		}
		m.Include = c.labelList(t, group, false, sink)

		if isSet {
			report(sink, t.Span(group), KindInvalidModifier,
				"no grouping allowed for %q operation", b.opName(t))
		}
	}

	if m.On {
		for _, l := range m.MatchingLabels {
			if slices.Contains(m.Include, l) {
				report(sink, t.Span(clause), KindInvalidModifier,
					"label %q must not occur in ON and GROUP clause at once", l)
			}
		}
	}
	return m
}

// labelList returns labels of the list owned by given clause node.
func (c *Checker) labelList(t *promql.Tree, owner promql.NodeID, required bool, sink Sink) []string {
	clause := clauseName(t, owner)

	list, ok := t.Child(owner, promql.GroupingLabels)
	if !ok {
		if required {
			report(sink, t.Span(owner), KindMalformedClause,
				"%s clause must have a label list", clause)
		}
		return nil
	}

	var (
		labels []string
		seen   = map[string]struct{}{}
	)
	for _, n := range t.Children(list) {
		if t.Category(n) != promql.LabelName {
			report(sink, t.Span(n), KindMalformedClause,
				"unexpected %q in %s label list", t.Text(n), clause)
			return nil
		}

		label, err := labelName(t.Text(n))
		if err != nil {
			report(sink, t.Span(n), KindMalformedClause,
				"invalid label name %s in %s label list: %s", t.Text(n), clause, err)
			return nil
		}

		if _, ok := seen[label]; ok {
			sink.Report(Diagnostic{
				Span:     t.Span(n),
				Severity: SeverityWarning,
				Kind:     KindDuplicateLabel,
				Message:  fmt.Sprintf("label %q is repeated in %s label list", label, clause),
			})
			if c.dedupe {
				continue
			}
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	return labels
}

// clauseName returns lowercase keyword of the clause, like "group_left".
func clauseName(t *promql.Tree, owner promql.NodeID) string {
	if children := t.Children(owner); len(children) > 0 {
		return strings.ToLower(t.Text(children[0]))
	}
	return strings.ToLower(t.Category(owner).String())
}

// labelName returns label name, unquoting it if needed.
func labelName(s string) (string, error) {
	if s == "" {
		return s, nil
	}
	switch s[0] {
	case '"', '\'', '`':
		return strutil.Unquote(s)
	default:
		return s, nil
	}
}

func report(sink Sink, span promql.Span, kind Kind, format string, args ...any) {
	sink.Report(Diagnostic{
		Span:     span,
		Severity: SeverityError,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
	})
}
