package main

import (
	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/go-faster/promqlcheck/internal/rulelint"
)

func newLintCommand(root *rootOptions, s streams) *cobra.Command {
	return &cobra.Command{
		Use:   "lint <rules.yml>...",
		Short: "Check expressions of Prometheus rule files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx, err := root.setup(cmd.Context(), s)
			if err != nil {
				return err
			}

			l, err := rulelint.NewLinter(rulelint.Options{
				Checker:     a.checker,
				Concurrency: a.cfg.Lint.Concurrency,
			})
			if err != nil {
				return errors.Wrap(err, "create linter")
			}
			report, err := l.Lint(ctx, args...)
			if err != nil {
				return errors.Wrap(err, "lint")
			}

			if err := a.out.Lint(report); err != nil {
				return errors.Wrap(err, "print")
			}
			if report.HasErrors() {
				return errProblems
			}
			return nil
		},
	}
}
