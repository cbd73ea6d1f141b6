package main

import (
	"io"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/go-faster/promqlcheck/internal/promql"
	"github.com/go-faster/promqlcheck/internal/promql/promqlcheck"
)

// checkResult is a result of expression check.
type checkResult struct {
	Expr   string
	Tree   *promql.Tree
	Result promqlcheck.Result
	// Err is a syntax error.
	Err error
}

func (r checkResult) failed() bool {
	return r.Err != nil || r.Result.Diagnostics.HasErrors()
}

func checkExpr(c *promqlcheck.Checker, expr string) checkResult {
	r := checkResult{Expr: expr}
	r.Tree, r.Err = promql.Parse(expr)
	if r.Err == nil {
		r.Result = c.Check(r.Tree)
	}
	return r
}

func newCheckCommand(root *rootOptions, s streams) *cobra.Command {
	return &cobra.Command{
		Use:   "check [expr...]",
		Short: "Check PromQL expressions",
		Long:  "Check PromQL expressions given as arguments or read from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx, err := root.setup(cmd.Context(), s)
			if err != nil {
				return err
			}

			exprs := args
			if len(exprs) == 0 {
				data, err := io.ReadAll(s.stdin)
				if err != nil {
					return errors.Wrap(err, "read stdin")
				}
				exprs = []string{strings.TrimSpace(string(data))}
			}

			var (
				results = make([]checkResult, 0, len(exprs))
				failed  bool
			)
			for _, expr := range exprs {
				r := checkExpr(a.checker, expr)
				failed = failed || r.failed()
				results = append(results, r)
			}
			zctx.From(ctx).Debug("Checked expressions",
				zap.Int("count", len(results)),
				zap.Bool("failed", failed),
			)

			if err := a.out.Check(results); err != nil {
				return errors.Wrap(err, "print")
			}
			if failed {
				return errProblems
			}
			return nil
		},
	}
}
