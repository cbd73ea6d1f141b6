package promqlcheck

import (
	"fmt"
	"testing"

	"github.com/prometheus/prometheus/promql/parser"
	"github.com/stretchr/testify/require"

	"github.com/go-faster/promqlcheck/internal/promql"
)

type wantDiag struct {
	kind Kind
	// text is a source text of the diagnostic span.
	text string
	// msg is an expected message, empty to skip the check.
	msg string
}

func requireDiagnostics(t *testing.T, source string, want []wantDiag, got Diagnostics) {
	t.Helper()

	require.Len(t, got, len(want), "diagnostics: %v", got)
	for i, w := range want {
		d := got[i]
		require.Equal(t, w.kind, d.Kind, "diagnostic %d: %s", i, d)
		require.Equal(t, w.text, source[d.Span.Start:d.Span.End], "diagnostic %d: %s", i, d)
		if w.msg != "" {
			require.Equal(t, w.msg, d.Message, "diagnostic %d: %s", i, d)
		}
	}
}

type ResolveTestCase struct {
	input string
	want  ValueType
	diags []wantDiag
}

var resolveTests = []ResolveTestCase{
	{`1`, ValueTypeScalar, nil},
	{`Inf`, ValueTypeScalar, nil},
	{`"foo"`, ValueTypeString, nil},
	{`foo`, ValueTypeVector, nil},
	{`{"foo.bar"}`, ValueTypeVector, nil},
	{`foo[5m]`, ValueTypeMatrix, nil},
	{`foo[5m:1m]`, ValueTypeMatrix, nil},
	{`rate(foo[5m])`, ValueTypeVector, nil},
	{`sum by (job) (rate(foo[5m]))`, ValueTypeVector, nil},
	{`sum BY (job) (foo)`, ValueTypeVector, nil},
	{`count WITHOUT (a) (foo)`, ValueTypeVector, nil},
	{`Sum By (job) (foo) > Bool 1`, ValueTypeVector, nil},
	{`topk(3, foo)`, ValueTypeVector, nil},
	{`count_values("value", foo)`, ValueTypeVector, nil},
	{`1 + 2`, ValueTypeScalar, nil},
	{`1 + foo`, ValueTypeVector, nil},
	{`foo and bar`, ValueTypeVector, nil},
	{`1 == bool 2`, ValueTypeScalar, nil},
	{`foo > bool 2`, ValueTypeVector, nil},
	{`-foo`, ValueTypeVector, nil},
	{`-1`, ValueTypeScalar, nil},
	{`(1)`, ValueTypeScalar, nil},
	{`time()`, ValueTypeScalar, nil},
	{`scalar(foo)`, ValueTypeScalar, nil},
	{`vector(1)`, ValueTypeVector, nil},
	{`foo offset 5m`, ValueTypeVector, nil},
	{`rate(foo[5m] offset 1m)`, ValueTypeVector, nil},
	{`foo @ end()`, ValueTypeVector, nil},
	{`foo[5m] @ 100 offset 1m`, ValueTypeMatrix, nil},
	{`label_replace(foo, "a", "$1", "b", "(.*)")`, ValueTypeVector, nil},
	{`label_join(foo, "a", ",", "b", "c", "d")`, ValueTypeVector, nil},
	{`histogram_quantile(0.9, sum by (le) (rate(foo[5m])))`, ValueTypeVector, nil},
	{`max_over_time(rate(foo[1m])[1h:])`, ValueTypeVector, nil},

	// Binary expressions.
	{
		`1 == 2`, ValueTypeScalar,
		[]wantDiag{{KindInvalidModifier, `1 == 2`, `comparisons between scalars must use BOOL modifier`}},
	},
	{
		`foo + bool bar`, ValueTypeVector,
		[]wantDiag{{KindInvalidModifier, `bool`, `bool modifier can only be used on comparison operators`}},
	},
	{
		`foo[5m] + 1`, ValueTypeVector,
		[]wantDiag{{KindTypeMismatch, `foo[5m]`, `binary expression must contain only scalar and instant vector types`}},
	},
	{
		`1 / "a"`, ValueTypeVector,
		[]wantDiag{{KindTypeMismatch, `"a"`, `binary expression must contain only scalar and instant vector types`}},
	},
	{
		`1 * on(a) foo`, ValueTypeVector,
		[]wantDiag{{KindInvalidModifier, `on(a)`, `vector matching only allowed between instant vectors`}},
	},
	{`1 * on() foo`, ValueTypeVector, nil},
	{
		`1 and foo`, ValueTypeVector,
		[]wantDiag{{KindTypeMismatch, `1 and foo`, `set operator "and" not allowed in binary scalar expression`}},
	},
	{
		`foo unless 1`, ValueTypeVector,
		[]wantDiag{{KindTypeMismatch, `foo unless 1`, `set operator "unless" not allowed in binary scalar expression`}},
	},
	{
		`foo and on(a) group_left bar`, ValueTypeVector,
		[]wantDiag{{KindInvalidModifier, `group_left`, `no grouping allowed for "and" operation`}},
	},
	{
		`foo * on bar`, ValueTypeVector,
		[]wantDiag{{KindMalformedClause, `on`, `on clause must have a label list`}},
	},

	// Aggregations.
	{
		`sum(foo[5m])`, ValueTypeVector,
		[]wantDiag{{KindTypeMismatch, `foo[5m]`, `expected type instant vector in aggregation expression, got range vector`}},
	},
	{
		`topk(foo)`, ValueTypeVector,
		[]wantDiag{{KindArityMismatch, `topk(foo)`, `wrong number of arguments for aggregate expression provided, expected 2, got 1`}},
	},
	{
		`sum(1, foo)`, ValueTypeVector,
		[]wantDiag{{KindArityMismatch, `sum(1, foo)`, `wrong number of arguments for aggregate expression provided, expected 1, got 2`}},
	},
	{
		`sum()`, ValueTypeVector,
		[]wantDiag{{KindArityMismatch, `sum()`, `no arguments for aggregate expression provided`}},
	},
	{
		`topk("3", foo)`, ValueTypeVector,
		[]wantDiag{{KindTypeMismatch, `"3"`, `expected type scalar in aggregation parameter, got string`}},
	},
	{
		`count_values(1, foo)`, ValueTypeVector,
		[]wantDiag{{KindTypeMismatch, `1`, `expected type string in aggregation parameter, got scalar`}},
	},
	{
		`sum by (a, a) (foo)`, ValueTypeVector,
		[]wantDiag{{KindDuplicateLabel, `a`, `label "a" is repeated in by label list`}},
	},
	{
		`limitk(2, foo)`, ValueTypeVector,
		[]wantDiag{{KindUnknownFunction, `limitk`, `aggregation "limitk" is experimental and is not enabled`}},
	},

	// Functions.
	{
		`rate(foo)`, ValueTypeVector,
		[]wantDiag{{KindTypeMismatch, `foo`, `expected type range vector in call to function "rate", got instant vector`}},
	},
	{
		`rate(foo[5m], 1)`, ValueTypeVector,
		[]wantDiag{{KindArityMismatch, `rate(foo[5m], 1)`, `expected 1 argument(s) in call to "rate", got 2`}},
	},
	{
		`round()`, ValueTypeVector,
		[]wantDiag{{KindArityMismatch, `round()`, `expected at least 1 argument(s) in call to "round", got 0`}},
	},
	{
		`round(foo, 1, 2)`, ValueTypeVector,
		[]wantDiag{{KindArityMismatch, `round(foo, 1, 2)`, `expected at most 2 argument(s) in call to "round", got 3`}},
	},
	{
		`label_join(foo, "a", ",", "b", 1)`, ValueTypeVector,
		[]wantDiag{{KindTypeMismatch, `1`, `expected type string in call to function "label_join", got scalar`}},
	},
	{
		`unknown_func(foo)`, ValueTypeNone,
		[]wantDiag{{KindUnknownFunction, `unknown_func`, `unknown function with name "unknown_func"`}},
	},
	{
		`sort_by_label(foo, "a")`, ValueTypeVector,
		[]wantDiag{{KindUnknownFunction, `sort_by_label`, `function "sort_by_label" is not enabled`}},
	},

	// Unary expressions.
	{
		`-"foo"`, ValueTypeScalar,
		[]wantDiag{{KindTypeMismatch, `"foo"`, `unary expression only allowed on expressions of type scalar or instant vector, got "string"`}},
	},
	{
		`-foo[5m]`, ValueTypeVector,
		[]wantDiag{{KindTypeMismatch, `foo[5m]`, `unary expression only allowed on expressions of type scalar or instant vector, got "range vector"`}},
	},

	// Selectors and modifiers.
	{
		`rate(foo[5m])[5m]`, ValueTypeMatrix,
		[]wantDiag{{KindTypeMismatch, `rate(foo[5m])`, `ranges only allowed for vector selectors`}},
	},
	{
		`foo[5m][5m:]`, ValueTypeMatrix,
		[]wantDiag{{KindTypeMismatch, `foo[5m]`, `subquery is only allowed on instant vector, got matrix instead`}},
	},
	{
		`{}`, ValueTypeVector,
		[]wantDiag{{KindInvalidSelector, `{}`, `vector selector must contain at least one non-empty matcher`}},
	},
	{
		`{a=~".*", b!="c"}`, ValueTypeVector,
		[]wantDiag{{KindInvalidSelector, `{a=~".*", b!="c"}`, `vector selector must contain at least one non-empty matcher`}},
	},
	{`{a=~".+"}`, ValueTypeVector, nil},
	{
		`foo{__name__="bar"}`, ValueTypeVector,
		[]wantDiag{{KindInvalidSelector, `__name__="bar"`, `metric name must not be set twice: "foo" or "bar"`}},
	},
	{
		`foo{a=~"("}`, ValueTypeVector,
		[]wantDiag{{KindInvalidSelector, `"("`, ``}},
	},
	{
		`(foo) offset 5m`, ValueTypeVector,
		[]wantDiag{{
			KindInvalidModifier,
			`(foo) offset 5m`,
			`offset modifier must be preceded by an instant vector selector or range vector selector or a subquery`,
		}},
	},
	{
		`sum(foo) @ start()`, ValueTypeVector,
		[]wantDiag{{
			KindInvalidModifier,
			`sum(foo) @ start()`,
			`@ modifier must be preceded by an instant vector selector or range vector selector or a subquery`,
		}},
	},
	{
		`foo offset 5m offset 1m`, ValueTypeVector,
		[]wantDiag{{KindInvalidModifier, `foo offset 5m offset 1m`, `offset may not be set multiple times`}},
	},
	{
		`foo @ 1 @ 2`, ValueTypeVector,
		[]wantDiag{{KindInvalidModifier, `foo @ 1 @ 2`, `@ <timestamp> may not be set multiple times`}},
	},
	{
		`foo offset 5m [5m]`, ValueTypeMatrix,
		[]wantDiag{{KindInvalidModifier, `foo offset 5m`, `no offset modifiers allowed before range`}},
	},

	// Diagnostics are reported innermost first, without cascading.
	{
		`unknown_func(foo) + bar[5m]`, ValueTypeVector,
		[]wantDiag{
			{KindUnknownFunction, `unknown_func`, ``},
			{KindTypeMismatch, `bar[5m]`, ``},
		},
	},
	{
		`-"a" + 1`, ValueTypeScalar,
		[]wantDiag{
			{KindTypeMismatch, `"a"`, ``},
		},
	},
	{
		`-"a" == 1`, ValueTypeScalar,
		[]wantDiag{
			{KindTypeMismatch, `"a"`, ``},
			{KindInvalidModifier, `-"a" == 1`, `comparisons between scalars must use BOOL modifier`},
		},
	},
	{
		`-foo[5m] and bar`, ValueTypeVector,
		[]wantDiag{
			{KindTypeMismatch, `foo[5m]`, ``},
		},
	},
	{
		`sum(foo[5m]) and 1`, ValueTypeVector,
		[]wantDiag{
			{KindTypeMismatch, `foo[5m]`, ``},
			{KindTypeMismatch, `sum(foo[5m]) and 1`, ``},
		},
	},
	{
		`rate(foo) + rate(bar, 1)`, ValueTypeVector,
		[]wantDiag{
			{KindTypeMismatch, `foo`, ``},
			{KindArityMismatch, `rate(bar, 1)`, ``},
			{KindTypeMismatch, `bar`, ``},
		},
	},
}

func TestResolveType(t *testing.T) {
	for i, tt := range resolveTests {
		tt := tt
		t.Run(fmt.Sprintf("Test%d", i+1), func(t *testing.T) {
			defer func() {
				if t.Failed() {
					t.Logf("Input:\n%s", tt.input)
				}
			}()

			tree, err := promql.Parse(tt.input)
			require.NoError(t, err)

			var diags Diagnostics
			require.Equal(t, tt.want, ResolveType(tree, tree.Root(), &diags))
			requireDiagnostics(t, tt.input, tt.diags, diags)
		})
	}
}

func TestResolveTypePrometheus(t *testing.T) {
	for i, tt := range resolveTests {
		tt := tt
		if len(tt.diags) > 0 {
			continue
		}
		t.Run(fmt.Sprintf("Test%d", i+1), func(t *testing.T) {
			defer func() {
				if t.Failed() {
					t.Logf("Input:\n%s", tt.input)
				}
			}()

			expr, err := parser.ParseExpr(tt.input)
			require.NoError(t, err)
			want, err := fromPrometheusType(expr.Type())
			require.NoError(t, err)

			tree, err := promql.Parse(tt.input)
			require.NoError(t, err)
			require.Equal(t, want, ResolveType(tree, tree.Root(), nil))
		})
	}
}

func TestResolveTypeNonExpr(t *testing.T) {
	tree, err := promql.Parse(`sum by (a) (foo{b="c"})`)
	require.NoError(t, err)

	for _, cat := range []promql.Category{
		promql.AggregateOp,
		promql.LabelName,
		promql.LabelMatchers,
		promql.FunctionArgs,
	} {
		n, ok := promql.Find(tree, tree.Root(), cat)
		require.True(t, ok, cat)
		require.Equal(t, ValueTypeNone, ResolveType(tree, n, nil), cat)
	}
}

func TestResolveTypeExperimental(t *testing.T) {
	c := NewChecker(Options{ExperimentalFunctions: true})
	for _, input := range []string{
		`sort_by_label(foo, "a", "b")`,
		`limitk(2, foo)`,
		`limit_ratio(0.5, foo)`,
	} {
		tree, err := promql.Parse(input)
		require.NoError(t, err)

		var diags Diagnostics
		require.Equal(t, ValueTypeVector, c.ResolveType(tree, tree.Root(), &diags), input)
		require.Empty(t, diags, input)
	}
}

func FuzzCheck(f *testing.F) {
	for _, tt := range resolveTests {
		f.Add(tt.input)
	}
	for _, tt := range matchingTests {
		f.Add(tt.input)
	}
	f.Fuzz(func(t *testing.T, input string) {
		defer func() {
			if r := recover(); r != nil || t.Failed() {
				t.Logf("Input:\n%s", input)
				if r != nil {
					panic(r)
				}
			}
		}()

		tree, err := promql.Parse(input)
		if err != nil {
			return
		}
		_ = Check(tree)
	})
}
