package promqlcheck

import (
	"fmt"
	"strings"

	"github.com/go-faster/promqlcheck/internal/promql"
)

func (r *resolver) resolveArgs(n promql.NodeID) ([]promql.NodeID, []ValueType) {
	list, ok := r.t.Child(n, promql.FunctionArgs)
	if !ok {
		return nil, nil
	}
	args := r.t.Children(list)
	types := make([]ValueType, len(args))
	for i, arg := range args {
		types[i] = r.resolve(arg)
	}
	return args, types
}

func (r *resolver) resolveCall(n promql.NodeID) ValueType {
	ident, ok := r.t.Child(n, promql.FunctionIdentifier)
	if !ok {
		return ValueTypeNone
	}
	name := r.t.Text(ident)
	args, types := r.resolveArgs(n)

	f, ok := r.c.functions.Lookup(name)
	if !ok {
		r.report(ident, KindUnknownFunction, "unknown function with name %q", name)
		return ValueTypeNone
	}
	if f.Experimental && !r.c.experimental {
		r.report(ident, KindUnknownFunction, "function %q is not enabled", name)
		return f.ReturnType
	}

	nargs := len(args)
	switch minArgs, maxArgs := f.MinArgs(), f.MaxArgs(); {
	case f.Variadic == 0 && nargs != minArgs:
		r.report(n, KindArityMismatch, "expected %d argument(s) in call to %q, got %d", minArgs, name, nargs)
	case nargs < minArgs:
		r.report(n, KindArityMismatch, "expected at least %d argument(s) in call to %q, got %d", minArgs, name, nargs)
	case maxArgs >= 0 && nargs > maxArgs:
		r.report(n, KindArityMismatch, "expected at most %d argument(s) in call to %q, got %d", maxArgs, name, nargs)
	}

	context := fmt.Sprintf("call to function %q", name)
	for i, arg := range args {
		want, ok := f.ArgType(i)
		if !ok {
			break
		}
		r.expectType(arg, want, types[i], context)
	}
	return f.ReturnType
}

func (r *resolver) resolveAggregate(n promql.NodeID) ValueType {
	opNode, ok := r.t.Child(n, promql.AggregateOp)
	if !ok {
		return ValueTypeNone
	}
	name := strings.ToLower(r.t.Text(opNode))
	args, types := r.resolveArgs(n)

	if modifier, ok := r.t.Child(n, promql.AggregateModifier); ok {
		r.c.labelList(r.t, modifier, true, r.sink)
	}

	agg, ok := LookupAggregation(name)
	if !ok {
		r.report(opNode, KindUnknownFunction, "unknown aggregation operator %q", name)
		return ValueTypeVector
	}
	if agg.Experimental && !r.c.experimental {
		r.report(opNode, KindUnknownFunction, "aggregation %q is experimental and is not enabled", name)
	}

	want := 1
	if agg.Param != ValueTypeNone {
		want = 2
	}
	switch {
	case len(args) == 0:
		r.report(n, KindArityMismatch, "no arguments for aggregate expression provided")
		return ValueTypeVector
	case len(args) != want:
		r.report(n, KindArityMismatch,
			"wrong number of arguments for aggregate expression provided, expected %d, got %d", want, len(args))
		return ValueTypeVector
	}

	if agg.Param != ValueTypeNone {
		r.expectType(args[0], agg.Param, types[0], "aggregation parameter")
	}
	last := len(args) - 1
	r.expectType(args[last], ValueTypeVector, types[last], "aggregation expression")
	return ValueTypeVector
}
