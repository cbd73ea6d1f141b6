package main

import (
	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
)

func newMatchingCommand(root *rootOptions, s streams) *cobra.Command {
	return &cobra.Command{
		Use:   "matching <expr>",
		Short: "Print vector matching of binary expressions, outermost first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := root.setup(cmd.Context(), s)
			if err != nil {
				return err
			}

			r := checkExpr(a.checker, args[0])
			if err := a.out.Matching(r); err != nil {
				return errors.Wrap(err, "print")
			}
			if r.failed() {
				return errProblems
			}
			return nil
		},
	}
}
