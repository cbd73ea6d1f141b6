package promqlcheck

import (
	"maps"
	"slices"
	"sync"

	"github.com/go-faster/errors"
	"github.com/prometheus/prometheus/promql/parser"
)

// Function is a PromQL function signature.
type Function struct {
	Name     string      `yaml:"name"`
	ArgTypes []ValueType `yaml:"args"`
	// Variadic defines number of optional trailing arguments.
	//
	// Zero means fixed arity, negative value means unlimited number of arguments.
	Variadic     int       `yaml:"variadic"`
	ReturnType   ValueType `yaml:"returns"`
	Experimental bool      `yaml:"experimental"`
}

// MinArgs returns minimal number of arguments.
func (f Function) MinArgs() int {
	if f.Variadic == 0 {
		return len(f.ArgTypes)
	}
	return len(f.ArgTypes) - 1
}

// MaxArgs returns maximal number of arguments or -1, if it is unlimited.
func (f Function) MaxArgs() int {
	switch {
	case f.Variadic == 0:
		return len(f.ArgTypes)
	case f.Variadic < 0:
		return -1
	default:
		return len(f.ArgTypes) - 1 + f.Variadic
	}
}

// ArgType returns expected type of i-th argument.
//
// Extra arguments of variadic function have the type of the last declared argument.
func (f Function) ArgType(i int) (ValueType, bool) {
	switch {
	case i < 0:
		return 0, false
	case i < len(f.ArgTypes):
		return f.ArgTypes[i], true
	case f.Variadic != 0 && len(f.ArgTypes) > 0:
		return f.ArgTypes[len(f.ArgTypes)-1], true
	default:
		return 0, false
	}
}

func (f Function) validate() error {
	if f.Name == "" {
		return errors.New("name is empty")
	}
	if f.Variadic != 0 && len(f.ArgTypes) == 0 {
		return errors.New("variadic function must declare at least one argument")
	}
	for i, t := range f.ArgTypes {
		if t == ValueTypeNone {
			return errors.Errorf("argument %d: type is none", i)
		}
	}
	return nil
}

// FunctionTable is an immutable table of function signatures.
type FunctionTable struct {
	funcs map[string]Function
}

// NewFunctionTable creates new FunctionTable.
func NewFunctionTable(funcs ...Function) (*FunctionTable, error) {
	t := &FunctionTable{
		funcs: make(map[string]Function, len(funcs)),
	}
	for _, f := range funcs {
		if err := f.validate(); err != nil {
			return nil, errors.Wrapf(err, "function %q", f.Name)
		}
		if _, ok := t.funcs[f.Name]; ok {
			return nil, errors.Errorf("function %q defined twice", f.Name)
		}
		f.ArgTypes = slices.Clone(f.ArgTypes)
		t.funcs[f.Name] = f
	}
	return t, nil
}

// With returns new table, extended by given functions.
//
// Given functions override existing ones with the same name.
func (t *FunctionTable) With(funcs ...Function) (*FunctionTable, error) {
	ext, err := NewFunctionTable(funcs...)
	if err != nil {
		return nil, err
	}
	r := &FunctionTable{
		funcs: maps.Clone(t.funcs),
	}
	if r.funcs == nil {
		r.funcs = make(map[string]Function, len(ext.funcs))
	}
	maps.Copy(r.funcs, ext.funcs)
	return r, nil
}

// Lookup returns function signature by name.
func (t *FunctionTable) Lookup(name string) (Function, bool) {
	f, ok := t.funcs[name]
	return f, ok
}

// Len returns number of functions.
func (t *FunctionTable) Len() int {
	return len(t.funcs)
}

// Names returns sorted function names.
func (t *FunctionTable) Names() []string {
	return slices.Sorted(maps.Keys(t.funcs))
}

var prometheusFunctions = sync.OnceValue(func() *FunctionTable {
	funcs := make([]Function, 0, len(parser.Functions))
	for name, f := range parser.Functions {
		sig := Function{
			Name:         name,
			Variadic:     f.Variadic,
			Experimental: f.Experimental,
		}
		for _, arg := range f.ArgTypes {
			typ, err := fromPrometheusType(arg)
			if err != nil {
				panic(errors.Wrapf(err, "function %q", name))
			}
			sig.ArgTypes = append(sig.ArgTypes, typ)
		}
		typ, err := fromPrometheusType(f.ReturnType)
		if err != nil {
			panic(errors.Wrapf(err, "function %q", name))
		}
		sig.ReturnType = typ
		funcs = append(funcs, sig)
	}

	t, err := NewFunctionTable(funcs...)
	if err != nil {
		panic(err)
	}
	return t
})

// PrometheusFunctions returns the function table of Prometheus query engine.
//
// Experimental functions are included and marked.
func PrometheusFunctions() *FunctionTable {
	return prometheusFunctions()
}

// Aggregation is an aggregation operator signature.
type Aggregation struct {
	Name string
	// Param is a type of the parameter, if any.
	Param        ValueType
	Experimental bool
}

var aggregations = map[string]Aggregation{
	"sum":          {Name: "sum"},
	"avg":          {Name: "avg"},
	"count":        {Name: "count"},
	"min":          {Name: "min"},
	"max":          {Name: "max"},
	"group":        {Name: "group"},
	"stddev":       {Name: "stddev"},
	"stdvar":       {Name: "stdvar"},
	"topk":         {Name: "topk", Param: ValueTypeScalar},
	"bottomk":      {Name: "bottomk", Param: ValueTypeScalar},
	"quantile":     {Name: "quantile", Param: ValueTypeScalar},
	"count_values": {Name: "count_values", Param: ValueTypeString},
	"limitk":       {Name: "limitk", Param: ValueTypeScalar, Experimental: true},
	"limit_ratio":  {Name: "limit_ratio", Param: ValueTypeScalar, Experimental: true},
}

// LookupAggregation returns aggregation operator signature by name.
func LookupAggregation(name string) (Aggregation, bool) {
	a, ok := aggregations[name]
	return a, ok
}
