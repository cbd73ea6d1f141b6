package promql

import (
	"fmt"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/require"

	"github.com/go-faster/promqlcheck/internal/promql/lexer"
)

// render renders expression structure, making precedence explicit.
func render(t *Tree, n NodeID) string {
	children := t.Children(n)
	switch t.Category(n) {
	case Query, ParenExpr:
		inner := render(t, children[0])
		if t.Category(n) == ParenExpr {
			return "(" + inner + ")"
		}
		return inner
	case UnaryExpr:
		return "(" + t.Text(children[0]) + render(t, children[1]) + ")"
	case BinaryExpr:
		var sb strings.Builder
		sb.WriteString("(")
		sb.WriteString(render(t, children[0]))
		for _, c := range children[1 : len(children)-1] {
			sb.WriteString(" ")
			sb.WriteString(t.Text(c))
		}
		sb.WriteString(" ")
		sb.WriteString(render(t, children[len(children)-1]))
		sb.WriteString(")")
		return sb.String()
	default:
		return t.Text(n)
	}
}

type TestCase struct {
	input   string
	want    string
	wantErr bool
}

var tests = []TestCase{
	{`foo`, `foo`, false},
	{`foo{job="api"}`, `foo{job="api"}`, false},
	{`{"foo.bar", "a.b"=~"x"}`, `{"foo.bar", "a.b"=~"x"}`, false},
	{`foo * bar`, `(foo * bar)`, false},
	{`a + b * c`, `(a + (b * c))`, false},
	{`a * b + c`, `((a * b) + c)`, false},
	{`a - b - c`, `((a - b) - c)`, false},
	{`a ^ b ^ c`, `(a ^ (b ^ c))`, false},
	{`-a ^ b`, `(-(a ^ b))`, false},
	{`-a * b`, `((-a) * b)`, false},
	{`2 ^ -1`, `(2 ^ (-1))`, false},
	{`a > b atan2 c`, `(a > (b atan2 c))`, false},
	{`(a + b) * c`, `(((a + b)) * c)`, false},
	{`foo + bar or bla and blub`, `((foo + bar) or (bla and blub))`, false},
	{`foo and bar unless baz or qux`, `(((foo and bar) unless baz) or qux)`, false},
	{`foo == bool 1`, `(foo == bool 1)`, false},
	{`foo * sum`, `(foo * sum)`, false},
	{`2.5 / bar`, `(2.5 / bar)`, false},
	{`foo * on(test,blub) group_left bar`, `(foo * on(test,blub) group_left bar)`, false},
	{
		`foo - ignoring(test,blub) group_right(bar,foo) bar`,
		`(foo - ignoring(test,blub) group_right(bar,foo) bar)`,
		false,
	},
	{`foo and on() bar`, `(foo and on() bar)`, false},
	{`a > bool on(x) b`, `(a > bool on(x) b)`, false},
	{`sum by (job) (rate(foo[5m])) / 2`, `(sum by (job) (rate(foo[5m])) / 2)`, false},
	{`sum(foo) without (instance)`, `sum(foo) without (instance)`, false},
	{`sum BY (job) (foo)`, `sum BY (job) (foo)`, false},
	{`count WITHOUT (a) (foo)`, `count WITHOUT (a) (foo)`, false},
	{"sum # grouping follows\nby (job) (foo)", "sum # grouping follows\nby (job) (foo)", false},
	{`topk(5, foo)`, `topk(5, foo)`, false},
	{`count_values("value", foo)`, `count_values("value", foo)`, false},
	{`foo offset 5m @ start()`, `foo offset 5m @ start()`, false},
	{`foo @ 1609746000 offset -1h`, `foo @ 1609746000 offset -1h`, false},
	{`rate(foo[5m:1m])`, `rate(foo[5m:1m])`, false},
	{`max_over_time(rate(foo[1m])[1h:])`, `max_over_time(rate(foo[1m])[1h:])`, false},
	{`time()`, `time()`, false},
	{`Inf - NaN`, `(Inf - NaN)`, false},
	{`"string"`, `"string"`, false},
	{`foo[300]`, `foo[300]`, false},

	// Tolerated malformed clauses.
	{`foo * on bar`, `(foo * on bar)`, false},
	{`foo * on(a b) bar`, `(foo * on(a b) bar)`, false},
	{`foo * on(a,) group_left(rate(x)) bar`, `(foo * on(a,) group_left(rate(x)) bar)`, false},

	{``, ``, true},
	{`foo +`, ``, true},
	{`foo bar`, ``, true},
	{`foo{a}`, ``, true},
	{`foo{a="b"`, ``, true},
	{`foo{a:b="c"}`, ``, true},
	{`foo * group_left bar`, ``, true},
	{`foo * on(a`, ``, true},
	{`sum(foo) by (a b)`, ``, true},
	{`sum by (a) (foo) by (b)`, ``, true},
	{`foo[5m`, ``, true},
	{`foo[5m:1m:1m]`, ``, true},
	{`rate(foo,)`, ``, true},
	{`foo @ bar()`, ``, true},
	{`foo offset`, ``, true},
	{`(foo`, ``, true},
	{`foo $`, ``, true},
}

func TestParse(t *testing.T) {
	for i, tt := range tests {
		tt := tt
		t.Run(fmt.Sprintf("Test%d", i+1), func(t *testing.T) {
			defer func() {
				if t.Failed() {
					t.Logf("Input:\n%s", tt.input)
				}
			}()

			tree, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				t.Logf("Error: %s", err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, render(tree, tree.Root()))
			require.Equal(t, Query, tree.Category(tree.Root()))
			require.Equal(t, Span{0, len(tt.input)}, tree.Span(tree.Root()))
		})
	}
}

func TestParseTree(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{
			`foo * on(a) group_left bar`,
			`Query[0:26]
  BinaryExpr[0:26]
    VectorSelector[0:3]
      MetricIdentifier[0:3] "foo"
    Mul[4:5] "*"
    MatchingModifierClause[6:22]
      On[6:8] "on"
      GroupingLabels[8:11]
        LabelName[9:10] "a"
      GroupModifier[12:22]
        GroupLeft[12:22] "group_left"
    VectorSelector[23:26]
      MetricIdentifier[23:26] "bar"
`,
		},
		{
			`sum by (a) (x[5m])`,
			`Query[0:18]
  AggregateExpr[0:18]
    AggregateOp[0:3] "sum"
    AggregateModifier[4:10]
      By[4:6] "by"
      GroupingLabels[7:10]
        LabelName[8:9] "a"
    FunctionArgs[11:18]
      MatrixSelector[12:17]
        VectorSelector[12:13]
          MetricIdentifier[12:13] "x"
        Duration[14:16] "5m"
`,
		},
		{
			`-1 == bool 2`,
			`Query[0:12]
  BinaryExpr[0:12]
    UnaryExpr[0:2]
      Sub[0:1] "-"
      NumberLiteral[1:2] "1"
    Eql[3:5] "=="
    BoolModifier[6:10] "bool"
    NumberLiteral[11:12] "2"
`,
		},
	}
	for i, tt := range tests {
		tt := tt
		t.Run(fmt.Sprintf("Test%d", i+1), func(t *testing.T) {
			tree, err := Parse(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, tree.String())
		})
	}
}

func TestErrorFormat(t *testing.T) {
	var (
		_ errors.Formatter = (*SyntaxError)(nil)
		_ errors.Formatter = (*lexer.Error)(nil)
	)

	_, err := Parse(`foo bar`)
	require.Error(t, err)
	require.Equal(t, `parse: at <input>:1:5: unexpected token "bar"`, fmt.Sprintf("%v", errors.Wrap(err, "parse")))

	_, err = Parse(`foo $`)
	require.Error(t, err)
	require.Equal(t, `parse: tokenize: at <input>:1:5: unexpected character '$'`, fmt.Sprintf("%v", errors.Wrap(err, "parse")))
}

func TestParseTolerantClause(t *testing.T) {
	t.Run("MissingList", func(t *testing.T) {
		tree, err := Parse(`foo * ignoring bar`)
		require.NoError(t, err)

		clause, ok := Find(tree, tree.Root(), MatchingModifierClause)
		require.True(t, ok)
		require.Equal(t, "ignoring", tree.Text(clause))
		_, ok = tree.Child(clause, GroupingLabels)
		require.False(t, ok)
	})
	t.Run("MalformedList", func(t *testing.T) {
		tree, err := Parse(`foo * on(a, 1 + 2) group_right(b c) bar`)
		require.NoError(t, err)

		clause, ok := Find(tree, tree.Root(), MatchingModifierClause)
		require.True(t, ok)
		labels, ok := tree.Child(clause, GroupingLabels)
		require.True(t, ok)

		var got []string
		for _, c := range tree.Children(labels) {
			got = append(got, tree.Category(c).String()+":"+tree.Text(c))
		}
		require.Equal(t, []string{"LabelName:a", "Error:1 + 2"}, got)

		group, ok := Find(tree, clause, GroupModifier)
		require.True(t, ok)
		labels, ok = tree.Child(group, GroupingLabels)
		require.True(t, ok)
		errNode, ok := tree.Child(labels, Error)
		require.True(t, ok)
		require.Equal(t, "c", tree.Text(errNode))
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input   string
		wantErr string
	}{
		{``, `at <input>:1:1: no expression found in input`},
		{`foo +`, `at <input>:1:6: unexpected EOF`},
		{`foo bar`, `at <input>:1:5: unexpected token "bar"`},
		{"foo *\n  group_left bar", `at <input>:2:3: unexpected "group_left" without on or ignoring`},
		{`foo{a:b="c"}`, `at <input>:1:5: invalid label name "a:b"`},
		{`foo @ bar()`, `at <input>:1:7: unexpected "bar" in @, expected timestamp, start() or end()`},
	}
	for i, tt := range tests {
		tt := tt
		t.Run(fmt.Sprintf("Test%d", i+1), func(t *testing.T) {
			_, err := Parse(tt.input)
			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			require.EqualError(t, syntaxErr, tt.wantErr)
		})
	}

	_, err := Parse(`foo $`)
	var lexErr *lexer.Error
	require.ErrorAs(t, err, &lexErr)

	msg, pos, ok := ErrorPosition(err)
	require.True(t, ok)
	require.Equal(t, "unexpected character '$'", msg)
	require.Equal(t, 4, pos.Offset)

	_, err = Parse(`sum(foo`)
	msg, pos, ok = ErrorPosition(err)
	require.True(t, ok)
	require.Equal(t, "unexpected EOF", msg)
	require.Equal(t, 7, pos.Offset)

	_, _, ok = ErrorPosition(errors.New("foo"))
	require.False(t, ok)
}

func TestTreePosition(t *testing.T) {
	tree, err := Parse("foo\n  + bar")
	require.NoError(t, err)

	pos := tree.Position(6)
	require.Equal(t, 2, pos.Line)
	require.Equal(t, 3, pos.Column)
	require.Equal(t, 6, pos.Offset)

	pos = tree.Position(100)
	require.Equal(t, len(tree.Source()), pos.Offset)
}

func FuzzParse(f *testing.F) {
	for _, tt := range tests {
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

		tree, err := Parse(input)
		if err != nil {
			return
		}
		_ = tree.String()
	})
}
