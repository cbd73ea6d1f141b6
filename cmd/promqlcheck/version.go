package main

import (
	"github.com/spf13/cobra"

	"github.com/go-faster/promqlcheck/internal/cliversion"
)

const modulePath = "github.com/go-faster/promqlcheck"

func newVersionCommand(root *rootOptions, s streams) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := root.printer(s)
			if err != nil {
				return err
			}
			info, ok := cliversion.GetInfo(modulePath)
			if !ok {
				info.Module = modulePath
			}
			return out.Version(info)
		},
	}
}
