package promqlcheck

import (
	"sync"

	"go.uber.org/zap"

	"github.com/go-faster/promqlcheck/internal/promql"
)

// Options sets Checker options.
type Options struct {
	// Functions is a function signature table.
	//
	// Defaults to PrometheusFunctions.
	Functions *FunctionTable

	// ExperimentalFunctions enables experimental functions and aggregations.
	ExperimentalFunctions bool

	// DedupeMatchingLabels removes repeated labels from matching and grouping lists,
	// keeping the first occurrence.
	DedupeMatchingLabels bool

	// Logger to use.
	//
	// Defaults to zap.NewNop.
	Logger *zap.Logger
}

func (o *Options) setDefaults() {
	if o.Functions == nil {
		o.Functions = PrometheusFunctions()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// Checker performs PromQL semantic analysis.
//
// Checker is immutable and safe for concurrent use.
type Checker struct {
	functions    *FunctionTable
	experimental bool
	dedupe       bool

	lg *zap.Logger
}

// NewChecker creates new Checker.
func NewChecker(opts Options) *Checker {
	opts.setDefaults()

	return &Checker{
		functions:    opts.Functions,
		experimental: opts.ExperimentalFunctions,
		dedupe:       opts.DedupeMatchingLabels,
		lg:           opts.Logger,
	}
}

// Functions returns function table used by checker.
func (c *Checker) Functions() *FunctionTable {
	return c.functions
}

// Result is a result of expression check.
type Result struct {
	// Type is a type of the expression.
	Type ValueType
	// Diagnostics in report order.
	Diagnostics Diagnostics
	// Binaries are binary expressions in pre-order, outermost first.
	Binaries []BinaryInfo
}

// Check resolves type of the whole tree and collects diagnostics.
func (c *Checker) Check(t *promql.Tree) Result {
	var result Result
	r := resolver{
		c:               c,
		t:               t,
		sink:            &result.Diagnostics,
		collectBinaries: true,
	}
	result.Type = r.resolve(t.Root())
	result.Binaries = r.binaries

	if ce := c.lg.Check(zap.DebugLevel, "Checked expression"); ce != nil {
		ce.Write(
			zap.String("query", t.Source()),
			zap.Stringer("type", result.Type),
			zap.Int("diagnostics", len(result.Diagnostics)),
			zap.Int("binaries", len(result.Binaries)),
		)
	}
	return result
}

var defaultChecker = sync.OnceValue(func() *Checker {
	return NewChecker(Options{})
})

// ResolveType resolves type of given node using default Checker.
func ResolveType(t *promql.Tree, n promql.NodeID, sink Sink) ValueType {
	return defaultChecker().ResolveType(t, n, sink)
}

// BuildVectorMatching returns vector matching of given binary expression using default Checker.
//
// Panics if node is not a binary expression.
func BuildVectorMatching(t *promql.Tree, n promql.NodeID, sink Sink) VectorMatching {
	return defaultChecker().BuildVectorMatching(t, n, sink)
}

// Check checks given tree using default Checker.
func Check(t *promql.Tree) Result {
	return defaultChecker().Check(t)
}
