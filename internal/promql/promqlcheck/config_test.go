package promqlcheck

import (
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/go-faster/yaml"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/go-faster/promqlcheck/internal/promql"
)

func TestConfig(t *testing.T) {
	input := heredoc.Doc(`
		experimental_functions: true
		dedupe_matching_labels: true
		functions:
		  - name: my_smoothing
		    args: [range vector, scalar, scalar]
		    returns: instant vector
		  - name: my_label_set
		    args: [vector, string]
		    variadic: -1
		    returns: vector
	`)

	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(input), &cfg))
	require.Equal(t, Config{
		Functions: []Function{
			{
				Name:       "my_smoothing",
				ArgTypes:   []ValueType{ValueTypeMatrix, ValueTypeScalar, ValueTypeScalar},
				ReturnType: ValueTypeVector,
			},
			{
				Name:       "my_label_set",
				ArgTypes:   []ValueType{ValueTypeVector, ValueTypeString},
				Variadic:   -1,
				ReturnType: ValueTypeVector,
			},
		},
		ExperimentalFunctions: true,
		DedupeMatchingLabels:  true,
	}, cfg)

	opts, err := cfg.Options(zaptest.NewLogger(t))
	require.NoError(t, err)
	require.True(t, opts.ExperimentalFunctions)
	require.True(t, opts.DedupeMatchingLabels)
	require.Equal(t, PrometheusFunctions().Len()+2, opts.Functions.Len())

	c := NewChecker(opts)
	for _, input := range []string{
		`my_smoothing(foo[5m], 0.5, 0.5)`,
		`my_label_set(foo, "a", "b", "c")`,
		`sort_by_label(foo, "a")`,
	} {
		tree, err := promql.Parse(input)
		require.NoError(t, err)

		result := c.Check(tree)
		require.Equal(t, ValueTypeVector, result.Type, input)
		require.Empty(t, result.Diagnostics, input)
	}
}

func TestConfigInvalid(t *testing.T) {
	var cfg Config
	err := yaml.Unmarshal([]byte(heredoc.Doc(`
		functions:
		  - name: foo
		    args: [tensor]
	`)), &cfg)
	require.ErrorContains(t, err, `unknown value type "tensor"`)

	cfg = Config{
		Functions: []Function{
			{Name: "foo", ReturnType: ValueTypeVector},
			{Name: "foo", ReturnType: ValueTypeScalar},
		},
	}
	_, err = cfg.Options(nil)
	require.Error(t, err)
}

func TestValueType(t *testing.T) {
	for _, tt := range []struct {
		typ        ValueType
		name       string
		documented string
	}{
		{ValueTypeNone, "none", "none"},
		{ValueTypeScalar, "scalar", "scalar"},
		{ValueTypeVector, "vector", "instant vector"},
		{ValueTypeMatrix, "matrix", "range vector"},
		{ValueTypeString, "string", "string"},
	} {
		require.Equal(t, tt.name, tt.typ.String())
		require.Equal(t, tt.documented, tt.typ.DocumentedType())

		for _, s := range []string{tt.name, tt.documented} {
			got, err := ParseValueType(s)
			require.NoError(t, err)
			require.Equal(t, tt.typ, got)
		}

		data, err := yaml.Marshal(tt.typ)
		require.NoError(t, err)
		require.Equal(t, tt.name+"\n", string(data))
	}

	_, err := ParseValueType("tensor")
	require.Error(t, err)
}
